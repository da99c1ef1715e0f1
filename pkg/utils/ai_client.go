package utils

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/pgvector/pgvector-go"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/option"
)

// EmbeddingDimensions matches the vector(1536) column.
const EmbeddingDimensions = 1536

// AIClientInterface is the text model used for generation, parsing and embeddings.
type AIClientInterface interface {
	Provider() string
	// CompleteJSON asks the model for a single JSON object.
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error)
	GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error)
	Close() error
}

// TranscriberInterface turns recorded speech into text.
type TranscriberInterface interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

// OpenAIClient talks to any OpenAI-compatible endpoint (OpenAI, DeepSeek).
type OpenAIClient struct {
	client         *openai.Client
	provider       string
	chatModel      string
	embeddingModel openai.EmbeddingModel
}

func NewOpenAIClient(provider, apiKey, baseURL, chatModel string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	c := &OpenAIClient{
		client:    openai.NewClientWithConfig(cfg),
		provider:  provider,
		chatModel: chatModel,
	}
	// Only OpenAI itself serves embeddings; the others fall back to hashed vectors.
	if strings.EqualFold(provider, "openai") {
		c.embeddingModel = openai.SmallEmbedding3
	}
	return c
}

func (c *OpenAIClient) Provider() string { return c.provider }

func (c *OpenAIClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   4000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: no choices", c.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GetEmbedding(ctx context.Context, text string) (pgvector.Vector, error) {
	if c.embeddingModel == "" {
		return TextToVector(text), nil
	}
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) == 0 {
		return pgvector.Vector{}, fmt.Errorf("openai embeddings: empty response")
	}
	return pgvector.NewVector(resp.Data[0].Embedding), nil
}

func (c *OpenAIClient) Close() error { return nil }

// WhisperTranscriber uses the OpenAI audio API.
type WhisperTranscriber struct {
	client *openai.Client
	model  string
}

func NewWhisperTranscriber(apiKey, baseURL string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &WhisperTranscriber{client: openai.NewClientWithConfig(cfg), model: openai.Whisper1}
}

func (w *WhisperTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	resp, err := w.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    w.model,
		FilePath: filename,
		Reader:   audio,
		Language: whisperLanguage(language),
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// whisperLanguage reduces a locale such as "zh-CN" to its ISO-639-1 code.
func whisperLanguage(lang string) string {
	lang = strings.TrimSpace(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return strings.ToLower(lang)
}

// GeminiClient implements AIClientInterface with Google's Gemini models.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Provider() string { return "gemini" }

func (c *GeminiClient) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	m := c.client.GenerativeModel(c.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(temperature)

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no content")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// GetEmbedding uses hashed vectors; Gemini's embedding size does not fit the column.
func (c *GeminiClient) GetEmbedding(_ context.Context, text string) (pgvector.Vector, error) {
	return TextToVector(text), nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// NewAIClient picks the implementation for provider: deepseek, openai or gemini.
func NewAIClient(ctx context.Context, provider, apiKey, baseURL, model string) (AIClientInterface, error) {
	switch strings.ToLower(provider) {
	case "deepseek", "openai":
		return NewOpenAIClient(strings.ToLower(provider), apiKey, baseURL, model), nil
	case "gemini":
		return NewGeminiClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q: use deepseek, openai or gemini", provider)
	}
}
