package controllers_fx

import (
	"go.uber.org/fx"
	"tripwise/internal/api/controllers"
)

var Module = fx.Options(
	fx.Provide(controllers.NewHealthController),
	fx.Provide(controllers.NewAccountController),
	fx.Provide(controllers.NewItineraryController),
	fx.Provide(controllers.NewExpenseController),
	fx.Provide(controllers.NewVoiceController),
	fx.Provide(controllers.NewMapController))
