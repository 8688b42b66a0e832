package user

import (
	"errors"
	"time"
)

// User is the profile of a contractor account. ID is the Clerk user id.
type User struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	BusinessName     *string   `json:"business_name,omitempty" db:"business_name"`
	Trade            *Trade    `json:"trade,omitempty" db:"trade"`
	Plan             Plan      `json:"plan" db:"plan"`
	StripeCustomerID *string   `json:"stripe_customer_id,omitempty" db:"stripe_customer_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Plan is the subscription plan of a user
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// Valid reports whether p is a known plan
func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// Trade is the trade category of a contractor business
type Trade string

const (
	TradeGeneral    Trade = "general"
	TradePlumbing   Trade = "plumbing"
	TradeElectrical Trade = "electrical"
	TradeHVAC       Trade = "hvac"
	TradeRoofing    Trade = "roofing"
	TradePainting   Trade = "painting"
	TradeOther      Trade = "other"
)

// Trades lists every trade category in display order
var Trades = []Trade{
	TradeGeneral,
	TradePlumbing,
	TradeElectrical,
	TradeHVAC,
	TradeRoofing,
	TradePainting,
	TradeOther,
}

// Valid reports whether t is a known trade category
func (t Trade) Valid() bool {
	for _, known := range Trades {
		if t == known {
			return true
		}
	}
	return false
}

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
	// ErrCustomerTaken means the Stripe customer id is linked to another user.
	ErrCustomerTaken = errors.New("billing customer already linked to another user")
)
