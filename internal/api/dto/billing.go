package dto

// PlanDTO represents a subscription plan
type PlanDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Interval  string   `json:"interval,omitempty"` // monthly, annual
	Features  []string `json:"features"`
	IsCurrent bool     `json:"isCurrent"`
}

// CheckoutRequest starts a pro subscription checkout
type CheckoutRequest struct {
	Interval string `json:"interval" validate:"required,oneof=monthly annual"`
}

// SessionURLResponse carries the URL of a hosted Stripe page
type SessionURLResponse struct {
	URL string `json:"url"`
}
