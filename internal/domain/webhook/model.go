package webhook

import "errors"

// Result describes how a webhook delivery was handled
type Result struct {
	EventID   string `json:"event_id"`
	Type      string `json:"type"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
}

// Outcome returns the metrics label of the result
func (r *Result) Outcome() string {
	switch {
	case r.Duplicate:
		return "duplicate"
	case r.Ignored:
		return "ignored"
	default:
		return "processed"
	}
}

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")
)
