// AngelaMos | 2026
// dto.go

package invoice

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateInvoiceRequest struct {
	ClientName        string          `json:"client_name"        validate:"required,min=1,max=200"`
	ClientEmail       string          `json:"client_email"       validate:"omitempty,email,max=255"`
	Description       string          `json:"description"        validate:"omitempty,max=2000"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"           validate:"omitempty,len=3"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	Recurring         bool            `json:"recurring"`
	RecurringInterval string          `json:"recurring_interval" validate:"omitempty,oneof=weekly monthly yearly"`
}

type InvoiceResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	ClientName        string          `json:"client_name"`
	ClientEmail       string          `json:"client_email,omitempty"`
	Description       string          `json:"description,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	TaxRate           decimal.Decimal `json:"tax_rate"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	Total             decimal.Decimal `json:"total"`
	Currency          string          `json:"currency"`
	Recurring         bool            `json:"recurring"`
	RecurringInterval string          `json:"recurring_interval,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// QuotaResponse describes how much invoice quota is left. Unlimited
// plans report no limit and a zero remaining count is meaningless there.
type QuotaResponse struct {
	Used      int  `json:"used"`
	Limit     int  `json:"limit"`
	Unlimited bool `json:"unlimited"`
	Remaining int  `json:"remaining"`
}

type ListInvoicesParams struct {
	Page     int
	PageSize int
}

func (p *ListInvoicesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListInvoicesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToInvoiceResponse(inv *Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:                inv.ID,
		Number:            inv.Number,
		ClientName:        inv.ClientName,
		ClientEmail:       inv.ClientEmail,
		Description:       inv.Description,
		Amount:            inv.Amount,
		TaxRate:           inv.TaxRate,
		TaxAmount:         inv.TaxAmount,
		Total:             inv.Total,
		Currency:          inv.Currency,
		Recurring:         inv.Recurring,
		RecurringInterval: inv.RecurringInterval,
		CreatedAt:         inv.CreatedAt,
	}
}

func ToInvoiceResponseList(invoices []Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		responses = append(responses, ToInvoiceResponse(&inv))
	}
	return responses
}
