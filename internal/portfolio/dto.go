// AngelaMos | 2026
// dto.go

package portfolio

import (
	"time"

	"github.com/shopspring/decimal"
)

type AddHoldingRequest struct {
	AssetID string          `json:"asset_id" validate:"required,min=1,max=100"`
	Name    string          `json:"name"     validate:"required,min=1,max=200"`
	Symbol  string          `json:"symbol"   validate:"required,min=1,max=20"`
	Amount  decimal.Decimal `json:"amount"`
}

type HoldingResponse struct {
	ID            string          `json:"id"`
	AssetID       string          `json:"asset_id"`
	Name          string          `json:"name"`
	Symbol        string          `json:"symbol"`
	Amount        decimal.Decimal `json:"amount"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	CurrentPrice  decimal.Decimal `json:"current_price"`
	Value         decimal.Decimal `json:"value"`
	AddedAt       time.Time       `json:"added_at"`
}

type PortfolioResponse struct {
	Holdings   []HoldingResponse `json:"holdings"`
	TotalValue decimal.Decimal   `json:"total_value"`
}
