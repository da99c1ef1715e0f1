package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"tripwise/pkg/utils"
)

func TestVoiceService_Transcribe(t *testing.T) {
	tr := &fakeTranscriber{text: "中午吃饭八十元"}
	svc := NewVoiceService(tr, zap.NewNop())

	got, err := svc.Transcribe(context.Background(), strings.NewReader("RIFF....WAVE"), "memo.wav", "")
	require.NoError(t, err)
	assert.Equal(t, "中午吃饭八十元", got.Text)
	assert.Equal(t, "zh", got.Language)
	assert.Equal(t, "zh", tr.language)
	assert.Equal(t, "RIFF....WAVE", string(tr.audio))
}

func TestVoiceService_Errors(t *testing.T) {
	_, err := NewVoiceService(nil, zap.NewNop()).Transcribe(context.Background(), strings.NewReader("x"), "a.wav", "en")
	assert.ErrorIs(t, err, utils.ErrNotConfigured)

	_, err = NewVoiceService(&fakeTranscriber{err: errors.New("413")}, zap.NewNop()).Transcribe(context.Background(), strings.NewReader("x"), "a.wav", "en")
	assert.ErrorIs(t, err, utils.ErrTranscriptionFailed)

	_, err = NewVoiceService(&fakeTranscriber{}, zap.NewNop()).Transcribe(context.Background(), strings.NewReader("x"), "a.wav", "en")
	assert.ErrorIs(t, err, utils.ErrTranscriptionFailed)
}
