// AngelaMos | 2026
// repository.go

package portfolio

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

type Repository interface {
	Upsert(ctx context.Context, h *Holding) error
	Delete(ctx context.Context, userID, assetID string) (bool, error)
	ListByUserID(ctx context.Context, userID string) ([]Holding, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Upsert inserts the holding or replaces an existing position for the
// same asset. Replacement overwrites amount and purchase price; it never
// accumulates.
func (r *repository) Upsert(ctx context.Context, h *Holding) error {
	query := `
		INSERT INTO holdings (
			id, user_id, asset_id, name, symbol, amount, purchase_price
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, asset_id) DO UPDATE
		SET name = EXCLUDED.name,
		    symbol = EXCLUDED.symbol,
		    amount = EXCLUDED.amount,
		    purchase_price = EXCLUDED.purchase_price,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		h.ID,
		h.UserID,
		h.AssetID,
		h.Name,
		h.Symbol,
		h.Amount,
		h.PurchasePrice,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert holding: %w", err)
	}

	return nil
}

// Delete removes the position and reports whether a row existed.
// Removing an absent asset is not an error.
func (r *repository) Delete(ctx context.Context, userID, assetID string) (bool, error) {
	query := `DELETE FROM holdings WHERE user_id = $1 AND asset_id = $2`

	result, err := r.db.ExecContext(ctx, query, userID, assetID)
	if err != nil {
		return false, fmt.Errorf("delete holding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete holding: %w", err)
	}

	return rows > 0, nil
}

func (r *repository) ListByUserID(ctx context.Context, userID string) ([]Holding, error) {
	query := `
		SELECT id, user_id, asset_id, name, symbol, amount, purchase_price,
		       created_at, updated_at
		FROM holdings
		WHERE user_id = $1
		ORDER BY created_at ASC`

	var holdings []Holding
	if err := r.db.SelectContext(ctx, &holdings, query, userID); err != nil {
		return nil, fmt.Errorf("list holdings: %w", err)
	}

	return holdings, nil
}
