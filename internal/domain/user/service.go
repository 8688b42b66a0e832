package user

import "context"

// ProfileUpdate carries the user-editable profile fields. Nil means unchanged.
type ProfileUpdate struct {
	BusinessName *string
	Trade        *Trade
}

// Service defines the interface for user business logic
type Service interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// EnsureProfile returns the user, creating a free profile when none exists
	EnsureProfile(ctx context.Context, id, email string) (*User, error)

	// Register creates the profile of a newly signed-up user
	Register(ctx context.Context, u *User) (*User, error)

	// ChangeEmail updates the contact email of a user
	ChangeEmail(ctx context.Context, id, email string) error

	// UpdateProfile applies a profile update
	UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*User, error)

	// SetPlan changes the subscription plan of a user
	SetPlan(ctx context.Context, id string, plan Plan) error

	// LinkStripeCustomer stores the Stripe customer id of a user
	LinkStripeCustomer(ctx context.Context, id, customerID string) error

	// GetByStripeCustomerID retrieves the user linked to a Stripe customer
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)
}
