// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

// BusinessStats is the product-side dashboard: plan mix, subscription
// revenue and usage volume.
type BusinessStats struct {
	TotalUsers          int   `json:"total_users"`
	FreeUsers           int   `json:"free_users"`
	ProUsers            int   `json:"pro_users"`
	ActiveSubscriptions int   `json:"active_subscriptions"`
	MonthlyRevenueCents int64 `json:"monthly_revenue_cents"`
	TotalInvoices       int   `json:"total_invoices"`
	TotalHoldings       int   `json:"total_holdings"`
	TotalEvents         int   `json:"total_events"`
}

type StatsRepository struct {
	db core.DBTX
}

func NewStatsRepository(db core.DBTX) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) BusinessStats(ctx context.Context) (*BusinessStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL) AS total_users,
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND plan = 'free') AS free_users,
			(SELECT COUNT(*) FROM users WHERE deleted_at IS NULL AND plan = 'pro') AS pro_users,
			(SELECT COUNT(*) FROM subscriptions WHERE status = 'active') AS active_subscriptions,
			(SELECT COALESCE(SUM(price_cents), 0) FROM subscriptions WHERE status = 'active') AS monthly_revenue_cents,
			(SELECT COUNT(*) FROM invoices) AS total_invoices,
			(SELECT COUNT(*) FROM holdings) AS total_holdings,
			(SELECT COUNT(*) FROM analytics_events) AS total_events`

	var stats BusinessStats
	err := r.db.QueryRowxContext(ctx, query).Scan(
		&stats.TotalUsers,
		&stats.FreeUsers,
		&stats.ProUsers,
		&stats.ActiveSubscriptions,
		&stats.MonthlyRevenueCents,
		&stats.TotalInvoices,
		&stats.TotalHoldings,
		&stats.TotalEvents,
	)
	if err != nil {
		return nil, fmt.Errorf("business stats: %w", err)
	}

	return &stats, nil
}

var _ BusinessStatsProvider = (*StatsRepository)(nil)
