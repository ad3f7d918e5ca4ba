// AngelaMos | 2026
// entity.go

package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding is one asset position. A user holds at most one row per asset;
// re-adding an asset replaces the position outright rather than adding
// to it.
type Holding struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	AssetID       string          `db:"asset_id"`
	Name          string          `db:"name"`
	Symbol        string          `db:"symbol"`
	Amount        decimal.Decimal `db:"amount"`
	PurchasePrice decimal.Decimal `db:"purchase_price"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}
