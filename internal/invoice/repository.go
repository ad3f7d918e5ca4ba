// AngelaMos | 2026
// repository.go

package invoice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

type Repository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	ListByUserID(ctx context.Context, userID string, params ListInvoicesParams) ([]Invoice, int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (
			id, user_id, number, client_name, client_email, description,
			amount, tax_rate, tax_amount, total, currency,
			recurring, recurring_interval
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		inv.ID,
		inv.UserID,
		inv.Number,
		inv.ClientName,
		inv.ClientEmail,
		inv.Description,
		inv.Amount,
		inv.TaxRate,
		inv.TaxAmount,
		inv.Total,
		inv.Currency,
		inv.Recurring,
		inv.RecurringInterval,
	).Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Invoice, error) {
	query := `
		SELECT id, user_id, number, client_name, client_email, description,
		       amount, tax_rate, tax_amount, total, currency,
		       recurring, recurring_interval, created_at, updated_at
		FROM invoices
		WHERE id = $1`

	var inv Invoice
	err := r.db.GetContext(ctx, &inv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get invoice: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

func (r *repository) ListByUserID(
	ctx context.Context,
	userID string,
	params ListInvoicesParams,
) ([]Invoice, int, error) {
	params.Normalize()

	countQuery := `SELECT COUNT(*) FROM invoices WHERE user_id = $1`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	query := `
		SELECT id, user_id, number, client_name, client_email, description,
		       amount, tax_rate, tax_amount, total, currency,
		       recurring, recurring_interval, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	var invoices []Invoice
	err := r.db.SelectContext(ctx, &invoices, query, userID, params.PageSize, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	return invoices, total, nil
}
