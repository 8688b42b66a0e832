package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create inserts a new user. It returns ErrAlreadyExists when the ID is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by Clerk user id
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByStripeCustomerID retrieves the user linked to a Stripe customer
	GetByStripeCustomerID(ctx context.Context, customerID string) (*User, error)

	// Update writes the email, business name and trade of a user
	Update(ctx context.Context, user *User) error

	// SetPlan changes the subscription plan of a user
	SetPlan(ctx context.Context, id string, plan Plan) error

	// LinkStripeCustomer stores the Stripe customer id of a user
	LinkStripeCustomer(ctx context.Context, id, customerID string) error
}
