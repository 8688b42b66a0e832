package voice

import "context"

// Backend is the speech-to-text and language model backend
type Backend interface {
	// Name identifies the backend in health reports
	Name() string

	// Transcribe converts a recording to text
	Transcribe(ctx context.Context, audio Audio, locale string) (string, error)

	// CompleteJSON sends the prompts and returns the model's JSON object reply
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)

	// Ping checks that the backend is reachable
	Ping(ctx context.Context) error
}

// Archive stores original recordings
type Archive interface {
	Put(ctx context.Context, key string, audio Audio) error
}

// Service defines the interface for voice business logic
type Service interface {
	// Extract turns a transcript or recording into project data
	Extract(ctx context.Context, in ExtractInput) (*Extraction, error)

	// Health probes the voice backend
	Health(ctx context.Context) HealthStatus
}
