package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"tripwise/internal/models/response_models"
	"tripwise/pkg/metrics"
	"tripwise/pkg/utils"
)

const DefaultVoiceLanguage = "zh"

type VoiceServiceInterface interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*response_models.TranscriptionResponse, error)
}

type VoiceService struct {
	transcriber utils.TranscriberInterface
	logger      *zap.Logger
}

// NewVoiceService accepts a nil transcriber; every call then reports
// ErrNotConfigured.
func NewVoiceService(transcriber utils.TranscriberInterface, logger *zap.Logger) VoiceServiceInterface {
	return &VoiceService{transcriber: transcriber, logger: logger}
}

func (v *VoiceService) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (*response_models.TranscriptionResponse, error) {
	if v.transcriber == nil {
		return nil, fmt.Errorf("%w: speech recognition needs OPENAI_API_KEY", utils.ErrNotConfigured)
	}
	if strings.TrimSpace(language) == "" {
		language = DefaultVoiceLanguage
	}

	text, err := v.transcriber.Transcribe(ctx, audio, filename, language)
	metrics.RecordExternalCall("openai", "transcribe", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrTranscriptionFailed, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: no speech recognized", utils.ErrTranscriptionFailed)
	}

	v.logger.Debug("audio transcribed", zap.String("language", language), zap.Int("chars", len(text)))
	return &response_models.TranscriptionResponse{Text: text, Language: language}, nil
}
