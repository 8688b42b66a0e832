package voice

import (
	"errors"
	"time"
)

// Urgency is how soon the job needs attention
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// ScopeItem is one unit of work described in the walkthrough
type ScopeItem struct {
	Description string   `json:"description" validate:"notblank,max=500"`
	Quantity    *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit        string   `json:"unit,omitempty" validate:"max=32"`
}

// Material is a part or supply mentioned in the walkthrough
type Material struct {
	Name     string   `json:"name" validate:"notblank,max=200"`
	Quantity *float64 `json:"quantity,omitempty" validate:"omitempty,gte=0"`
	Unit     string   `json:"unit,omitempty" validate:"max=32"`
}

// ProjectData is the structured project extracted from a transcript
type ProjectData struct {
	Title          string      `json:"title" validate:"notblank,max=200"`
	ClientName     string      `json:"client_name,omitempty" validate:"max=200"`
	SiteAddress    string      `json:"site_address,omitempty" validate:"max=500"`
	Trade          string      `json:"trade,omitempty" validate:"omitempty,oneof=general plumbing electrical hvac roofing painting other"`
	Summary        string      `json:"summary" validate:"max=4000"`
	ScopeItems     []ScopeItem `json:"scope_items" validate:"max=100,dive"`
	Materials      []Material  `json:"materials" validate:"max=200,dive"`
	EstimatedHours *float64    `json:"estimated_hours,omitempty" validate:"omitempty,gte=0,lte=10000"`
	Urgency        Urgency     `json:"urgency,omitempty" validate:"omitempty,oneof=low normal high"`
	FollowUps      []string    `json:"follow_ups" validate:"max=50,dive,notblank"`
}

// Audio is an uploaded voice recording
type Audio struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExtractInput is one extraction request. Either Transcript or Audio is set;
// when both are, the audio is transcribed and the transcript is ignored.
type ExtractInput struct {
	UserID     string
	Transcript string
	Trade      string
	Locale     string
	Audio      *Audio
}

// Extraction is the result of an extraction request
type Extraction struct {
	Transcript string      `json:"transcript"`
	Project    ProjectData `json:"project"`
	AudioKey   string      `json:"audio_key,omitempty"`
}

// Health statuses
const (
	StatusOK          = "ok"
	StatusUnreachable = "unreachable"
)

// HealthStatus is the reachability of the voice backend
type HealthStatus struct {
	Status    string    `json:"status"`
	Backend   string    `json:"backend"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// OK reports whether the backend answered the probe
func (h HealthStatus) OK() bool {
	return h.Status == StatusOK
}

var (
	// ErrEmptyInput means neither a transcript nor audio was supplied.
	ErrEmptyInput = errors.New("transcript or audio is required")
	// ErrInvalidOutput means the backend returned data that is not a valid ProjectData.
	ErrInvalidOutput = errors.New("voice backend returned invalid project data")
	// ErrBackend wraps failures talking to the voice backend.
	ErrBackend = errors.New("voice backend request failed")
)
