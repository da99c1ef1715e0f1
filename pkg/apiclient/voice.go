package apiclient

import (
	"context"

	"tripwise/internal/models/response_models"
	"tripwise/pkg/gateway"
)

const DefaultLanguage = "zh"

type VoiceService struct {
	gw *gateway.Client
}

func NewVoiceService(gw *gateway.Client) *VoiceService {
	return &VoiceService{gw: gw}
}

// Transcribe uploads a recording as the multipart "audio" field.
func (s *VoiceService) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	if language == "" {
		language = DefaultLanguage
	}
	if filename == "" {
		filename = "recording.webm"
	}
	var out response_models.TranscriptionResponse
	err := s.gw.Upload(ctx, "/voice/transcribe",
		map[string]string{"language": language},
		gateway.File{Field: "audio", Name: filename, Data: audio},
		&out)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}
