// AngelaMos | 2026
// entity.go

package billing

import (
	"time"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is one billing agreement for a user. Cancelled rows are
// kept for history; at most one row per user is active at a time.
type Subscription struct {
	ID              string     `db:"id"`
	UserID          string     `db:"user_id"`
	Plan            Plan       `db:"plan"`
	PriceCents      int64      `db:"price_cents"`
	Currency        string     `db:"currency"`
	Status          string     `db:"status"`
	StartDate       time.Time  `db:"start_date"`
	NextBillingDate time.Time  `db:"next_billing_date"`
	CancelledAt     *time.Time `db:"cancelled_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (s *Subscription) Active() bool {
	return s.Status == SubscriptionStatusActive
}
