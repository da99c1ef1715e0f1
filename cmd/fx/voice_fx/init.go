package voice_fx

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/internal/services"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(provideVoiceService)

func provideVoiceService(transcriber utils.TranscriberInterface, log *zap.Logger) services.VoiceServiceInterface {
	return services.NewVoiceService(transcriber, log.Named("voice"))
}
