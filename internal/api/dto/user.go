package dto

import (
	"time"

	"github.com/pratik-mahalle/sitevoice/internal/domain/user"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	BusinessName *string    `json:"business_name,omitempty"`
	Trade        *string    `json:"trade,omitempty"`
	Plan         string     `json:"plan"`
	HasBilling   bool       `json:"has_billing"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// NewUserDTO converts a user to its API shape
func NewUserDTO(u *user.User) UserDTO {
	out := UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		BusinessName: u.BusinessName,
		Plan:         string(u.Plan),
		HasBilling:   u.StripeCustomerID != nil,
		CreatedAt:    u.CreatedAt,
	}
	if u.Trade != nil {
		trade := string(*u.Trade)
		out.Trade = &trade
	}
	if !u.UpdatedAt.IsZero() {
		updated := u.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

// UpdateProfileRequest represents a profile update request
type UpdateProfileRequest struct {
	BusinessName *string `json:"business_name,omitempty" validate:"omitempty,max=255"`
	Trade        *string `json:"trade,omitempty" validate:"omitempty,oneof=general plumbing electrical hvac roofing painting other"`
}
