package config_fx

import (
	"go.uber.org/fx"
	"tripwise/internal/infra"
)

var Module = fx.Provide(infra.LoadConfig)
