// Package voice captures a recording, sends it for transcription and asks the
// backend to structure the transcript into an expense.
package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"tripwise/internal/models/response_models"
)

// MinRecordingBytes is the smallest recording worth transcribing.
const MinRecordingBytes = 1000

// LowConfidence is the parse confidence below which the user is warned.
const LowConfidence = 0.5

const (
	MsgTooShort       = "recording too short, please try again"
	MsgLowConfidence  = "not sure I understood that expense, please check it before saving"
	MsgMicUnavailable = "recording is unavailable"
)

var (
	ErrRecordingTooShort = errors.New("voice: recording too short")
	ErrNotRecording      = errors.New("voice: not recording")
	ErrEmptyTranscript   = errors.New("voice: transcript is empty")
)

// Recorder is the platform audio source.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) ([]byte, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}

type ExpenseParser interface {
	ParseVoice(ctx context.Context, text string) (*response_models.ParsedExpense, error)
}

// Notifier receives non-blocking warnings.
type Notifier interface {
	Warning(msg string)
}

type Capture struct {
	recorder    Recorder
	transcriber Transcriber
	parser      ExpenseParser
	notifier    Notifier
	logger      *zap.Logger
	language    string

	mu        sync.Mutex
	recording bool
}

func NewCapture(recorder Recorder, transcriber Transcriber, parser ExpenseParser, notifier Notifier, logger *zap.Logger) *Capture {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capture{
		recorder:    recorder,
		transcriber: transcriber,
		parser:      parser,
		notifier:    notifier,
		logger:      logger,
		language:    "zh",
	}
}

// SetLanguage changes the transcription language hint.
func (c *Capture) SetLanguage(lang string) {
	if lang != "" {
		c.language = lang
	}
}

func (c *Capture) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Start begins recording. A recorder that cannot start disables voice input
// with a warning instead of failing the caller's flow.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.recording {
		return nil
	}
	if err := c.recorder.Start(ctx); err != nil {
		c.logger.Warn("recorder failed to start", zap.Error(err))
		c.notifier.Warning(MsgMicUnavailable)
		return err
	}
	c.recording = true
	return nil
}

// Transcribe stops the recording and returns its text. Recordings under
// MinRecordingBytes are discarded without calling the backend.
func (c *Capture) Transcribe(ctx context.Context) (string, error) {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return "", ErrNotRecording
	}
	c.recording = false
	c.mu.Unlock()

	audio, err := c.recorder.Stop(ctx)
	if err != nil {
		c.logger.Warn("recorder failed to stop", zap.Error(err))
		c.notifier.Warning(MsgMicUnavailable)
		return "", err
	}
	if len(audio) < MinRecordingBytes {
		c.logger.Debug("discarding short recording", zap.Int("bytes", len(audio)))
		c.notifier.Warning(MsgTooShort)
		return "", ErrRecordingTooShort
	}

	text, err := c.transcriber.Transcribe(ctx, audio, "recording.webm", c.language)
	if err != nil {
		return "", fmt.Errorf("transcribing recording: %w", err)
	}
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// ExpenseFromRecording stops the recording, transcribes it and parses the
// transcript. A low-confidence parse is still returned.
func (c *Capture) ExpenseFromRecording(ctx context.Context) (*response_models.ParsedExpense, string, error) {
	text, err := c.Transcribe(ctx)
	if err != nil {
		return nil, "", err
	}
	parsed, err := c.ParseExpense(ctx, text)
	return parsed, text, err
}

func (c *Capture) ParseExpense(ctx context.Context, text string) (*response_models.ParsedExpense, error) {
	parsed, err := c.parser.ParseVoice(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing expense: %w", err)
	}
	if parsed.Confidence < LowConfidence {
		c.notifier.Warning(MsgLowConfidence)
	}
	return parsed, nil
}

// FileRecorder replays an audio file as if it had just been recorded.
type FileRecorder struct {
	Path string
}

func (f FileRecorder) Start(context.Context) error {
	if _, err := os.Stat(f.Path); err != nil {
		return fmt.Errorf("audio file %s: %w", filepath.Base(f.Path), err)
	}
	return nil
}

func (f FileRecorder) Stop(context.Context) ([]byte, error) {
	return os.ReadFile(f.Path)
}
