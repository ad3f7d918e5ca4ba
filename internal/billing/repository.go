// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

type Repository interface {
	CreateSubscription(ctx context.Context, sub *Subscription) error
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
	GetLatestByUserID(ctx context.Context, userID string) (*Subscription, error)
	MarkCancelled(ctx context.Context, id string, at time.Time) error

	// SetUserPlan updates a user's plan and its derived feature set in a
	// single statement so the two columns can never drift apart.
	SetUserPlan(ctx context.Context, userID string, plan Plan, features FeatureSet) error
	GetUserPlan(ctx context.Context, userID string) (Plan, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSubscription(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (
			id, user_id, plan, price_cents, currency, status,
			start_date, next_billing_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		sub.ID,
		sub.UserID,
		sub.Plan,
		sub.PriceCents,
		sub.Currency,
		sub.Status,
		sub.StartDate,
		sub.NextBillingDate,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating subscription: %w", err)
	}

	return nil
}

func (r *repository) GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error) {
	query := `
		SELECT id, user_id, plan, price_cents, currency, status,
		       start_date, next_billing_date, cancelled_at, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID, SubscriptionStatusActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("getting active subscription: %w", err)
	}

	return &sub, nil
}

func (r *repository) GetLatestByUserID(ctx context.Context, userID string) (*Subscription, error) {
	query := `
		SELECT id, user_id, plan, price_cents, currency, status,
		       start_date, next_billing_date, cancelled_at, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var sub Subscription
	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("getting latest subscription: %w", err)
	}

	return &sub, nil
}

func (r *repository) MarkCancelled(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = $2, cancelled_at = $3, updated_at = NOW()
		WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(ctx, query, id, SubscriptionStatusCancelled, at, SubscriptionStatusActive)
	if err != nil {
		return fmt.Errorf("cancelling subscription: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking cancel result: %w", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}

	return nil
}

func (r *repository) GetUserPlan(ctx context.Context, userID string) (Plan, error) {
	query := `SELECT plan FROM users WHERE id = $1 AND deleted_at IS NULL`

	var plan Plan
	err := r.db.GetContext(ctx, &plan, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrNotFound
		}
		return "", fmt.Errorf("getting user plan: %w", err)
	}

	return plan, nil
}

func (r *repository) SetUserPlan(ctx context.Context, userID string, plan Plan, features FeatureSet) error {
	query := `
		UPDATE users
		SET plan = $2, features = $3, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, userID, plan, features)
	if err != nil {
		return fmt.Errorf("setting user plan: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking plan update result: %w", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}

	return nil
}
