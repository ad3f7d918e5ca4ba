// AngelaMos | 2026
// entity.go

package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a generated invoice. Amounts are stored as exact decimals;
// Total is always Amount + TaxAmount, computed server side.
type Invoice struct {
	ID                string          `db:"id"`
	UserID            string          `db:"user_id"`
	Number            string          `db:"number"`
	ClientName        string          `db:"client_name"`
	ClientEmail       string          `db:"client_email"`
	Description       string          `db:"description"`
	Amount            decimal.Decimal `db:"amount"`
	TaxRate           decimal.Decimal `db:"tax_rate"`
	TaxAmount         decimal.Decimal `db:"tax_amount"`
	Total             decimal.Decimal `db:"total"`
	Currency          string          `db:"currency"`
	Recurring         bool            `db:"recurring"`
	RecurringInterval string          `db:"recurring_interval"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

const (
	IntervalWeekly  = "weekly"
	IntervalMonthly = "monthly"
	IntervalYearly  = "yearly"
)
