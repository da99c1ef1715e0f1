package voice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tripwise/internal/models/response_models"
)

type bytesRecorder struct {
	audio    []byte
	startErr error
}

func (r *bytesRecorder) Start(context.Context) error { return r.startErr }

func (r *bytesRecorder) Stop(context.Context) ([]byte, error) { return r.audio, nil }

type fakeTranscriber struct {
	calls int
	text  string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio []byte, _, language string) (string, error) {
	f.calls++
	return f.text, nil
}

type fakeParser struct {
	parsed *response_models.ParsedExpense
	err    error
}

func (f *fakeParser) ParseVoice(context.Context, string) (*response_models.ParsedExpense, error) {
	return f.parsed, f.err
}

type warnings []string

func (w *warnings) Warning(msg string) { *w = append(*w, msg) }

func TestTranscribe_DiscardsShortRecording(t *testing.T) {
	tr := &fakeTranscriber{text: "午饭三十"}
	var warned warnings
	c := NewCapture(&bytesRecorder{audio: make([]byte, 400)}, tr, &fakeParser{}, &warned, nil)

	require.NoError(t, c.Start(context.Background()))
	_, err := c.Transcribe(context.Background())

	assert.ErrorIs(t, err, ErrRecordingTooShort)
	assert.Equal(t, 0, tr.calls)
	assert.Equal(t, warnings{MsgTooShort}, warned)
	assert.False(t, c.Recording())
}

func TestTranscribe_LongRecordingProceeds(t *testing.T) {
	tr := &fakeTranscriber{text: "午饭三十"}
	var warned warnings
	c := NewCapture(&bytesRecorder{audio: make([]byte, 4000)}, tr, &fakeParser{}, &warned, nil)

	require.NoError(t, c.Start(context.Background()))
	text, err := c.Transcribe(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "午饭三十", text)
	assert.Equal(t, 1, tr.calls)
	assert.Empty(t, warned)
}

func TestTranscribe_RequiresStart(t *testing.T) {
	c := NewCapture(&bytesRecorder{}, &fakeTranscriber{}, &fakeParser{}, new(warnings), nil)
	_, err := c.Transcribe(context.Background())
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestStart_MicFailureWarns(t *testing.T) {
	var warned warnings
	c := NewCapture(&bytesRecorder{startErr: errors.New("permission denied")}, &fakeTranscriber{}, &fakeParser{}, &warned, nil)

	assert.Error(t, c.Start(context.Background()))
	assert.Equal(t, warnings{MsgMicUnavailable}, warned)
	assert.False(t, c.Recording())
}

func TestExpenseFromRecording_LowConfidenceWarnsButReturns(t *testing.T) {
	var warned warnings
	parser := &fakeParser{parsed: &response_models.ParsedExpense{Category: "food", Amount: 30, Confidence: 0.3}}
	c := NewCapture(&bytesRecorder{audio: make([]byte, 2000)}, &fakeTranscriber{text: "吃饭花了三十"}, parser, &warned, nil)

	require.NoError(t, c.Start(context.Background()))
	parsed, text, err := c.ExpenseFromRecording(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "吃饭花了三十", text)
	assert.Equal(t, 30.0, parsed.Amount)
	assert.Equal(t, warnings{MsgLowConfidence}, warned)
}

func TestParseExpense_ConfidentParseIsQuiet(t *testing.T) {
	var warned warnings
	parser := &fakeParser{parsed: &response_models.ParsedExpense{Category: "transportation", Amount: 12, Confidence: 0.5}}
	c := NewCapture(&bytesRecorder{}, &fakeTranscriber{}, parser, &warned, nil)

	_, err := c.ParseExpense(context.Background(), "地铁十二")
	require.NoError(t, err)
	assert.Empty(t, warned)
}

func TestFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.m4a")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0o600))

	rec := FileRecorder{Path: path}
	require.NoError(t, rec.Start(context.Background()))
	data, err := rec.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))

	assert.Error(t, FileRecorder{Path: path + ".missing"}.Start(context.Background()))
}
