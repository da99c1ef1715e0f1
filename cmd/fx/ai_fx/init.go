package ai_fx

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"tripwise/internal/infra"
	"tripwise/pkg/utils"
)

var Module = fx.Provide(
	provideAIClient,
	provideTranscriber)

func provideAIClient(lc fx.Lifecycle, cfg *infra.Config, log *zap.Logger) (utils.AIClientInterface, error) {
	client, err := utils.NewAIClient(context.Background(), cfg.AIProvider, cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
	if err != nil {
		return nil, err
	}
	log.Info("AI client ready", zap.String("provider", client.Provider()), zap.String("model", cfg.AIModel))
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

// provideTranscriber returns nil without OPENAI_API_KEY; transcription then
// answers 503.
func provideTranscriber(cfg *infra.Config, log *zap.Logger) utils.TranscriberInterface {
	if cfg.OpenAIAPIKey == "" {
		log.Warn("OPENAI_API_KEY not set, speech recognition disabled")
		return nil
	}
	return utils.NewWhisperTranscriber(cfg.OpenAIAPIKey, "")
}
