package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pratik-mahalle/sitevoice/internal/config"
	"github.com/pratik-mahalle/sitevoice/internal/domain/voice"
)

// OpenAIBackend implements voice.Backend with Whisper transcription and a
// chat model constrained to JSON object replies.
type OpenAIBackend struct {
	client *openai.Client
	cfg    config.VoiceConfig
}

// NewOpenAIBackend creates a voice backend for the OpenAI API or any
// compatible server at cfg.BaseURL.
func NewOpenAIBackend(cfg config.VoiceConfig) *OpenAIBackend {
	ocfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		ocfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	ocfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &OpenAIBackend{
		client: openai.NewClientWithConfig(ocfg),
		cfg:    cfg,
	}
}

// Name identifies the backend in health reports
func (b *OpenAIBackend) Name() string {
	return "openai"
}

// Transcribe converts a recording to text
func (b *OpenAIBackend) Transcribe(ctx context.Context, audio voice.Audio, locale string) (string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "recording.webm"
	}

	resp, err := b.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    b.cfg.TranscriptionModel,
		Reader:   bytes.NewReader(audio.Data),
		FilePath: filename,
		Language: language(locale),
	})
	if err != nil {
		return "", fmt.Errorf("%w: transcription: %v", voice.ErrBackend, err)
	}
	return resp.Text, nil
}

// CompleteJSON sends the prompts and returns the model's JSON object reply
func (b *OpenAIBackend) CompleteJSON(ctx context.Context, system, prompt string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.cfg.ExtractionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: 1500,
	})
	if err != nil {
		return "", fmt.Errorf("%w: completion: %v", voice.ErrBackend, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", voice.ErrBackend)
	}
	return resp.Choices[0].Message.Content, nil
}

// Ping checks that the backend is reachable and the key is accepted
func (b *OpenAIBackend) Ping(ctx context.Context) error {
	if _, err := b.client.ListModels(ctx); err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return fmt.Errorf("%w: status %d: %s", voice.ErrBackend, apiErr.HTTPStatusCode, apiErr.Message)
		}
		return fmt.Errorf("%w: %v", voice.ErrBackend, err)
	}
	return nil
}

// language reduces a BCP 47 locale to the ISO-639-1 code Whisper expects
func language(locale string) string {
	if locale == "" {
		return ""
	}
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}
