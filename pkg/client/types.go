package client

import "time"

// HealthResponse represents the liveness response
type HealthResponse struct {
	Status string `json:"status"`
}

// VoiceHealth represents the voice backend probe
type VoiceHealth struct {
	Status    string    `json:"status"` // ok, unreachable
	Backend   string    `json:"backend"`
	LatencyMS int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Item is a scope item or material line
type Item struct {
	Description string   `json:"description,omitempty"`
	Name        string   `json:"name,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
}

// Project is the structured project extracted from a walkthrough
type Project struct {
	Title          string   `json:"title"`
	ClientName     string   `json:"client_name,omitempty"`
	SiteAddress    string   `json:"site_address,omitempty"`
	Trade          string   `json:"trade,omitempty"`
	Summary        string   `json:"summary"`
	ScopeItems     []Item   `json:"scope_items"`
	Materials      []Item   `json:"materials"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty"`
	Urgency        string   `json:"urgency,omitempty"`
	FollowUps      []string `json:"follow_ups"`
}

// Extraction is the response of an extraction request
type Extraction struct {
	Transcript string  `json:"transcript"`
	Project    Project `json:"project"`
	AudioKey   string  `json:"audio_key,omitempty"`
}

// User represents the signed-in user's profile
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	BusinessName *string    `json:"business_name,omitempty"`
	Trade        *string    `json:"trade,omitempty"`
	Plan         string     `json:"plan"` // free, pro
	HasBilling   bool       `json:"has_billing"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Plan represents a subscription plan
type Plan struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interval  string   `json:"interval,omitempty"`
	Features  []string `json:"features"`
	IsCurrent bool     `json:"isCurrent"`
}

type sessionURL struct {
	URL string `json:"url"`
}
