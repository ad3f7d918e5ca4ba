// AngelaMos | 2026
// dto.go

package billing

import (
	"time"

	"github.com/Rhymond/go-money"
)

type UpgradeRequest struct {
	CardNumber     string `json:"card_number"     validate:"required"`
	Expiry         string `json:"expiry"          validate:"required"`
	CVV            string `json:"cvv"             validate:"required"`
	CardholderName string `json:"cardholder_name" validate:"required"`
}

func (r UpgradeRequest) Card() Card {
	return Card{
		Number:     r.CardNumber,
		Expiry:     r.Expiry,
		CVV:        r.CVV,
		HolderName: r.CardholderName,
	}
}

// CancelRequest requires an explicit confirmation flag so a cancel can
// never happen from a bare POST.
type CancelRequest struct {
	Confirm bool `json:"confirm" validate:"required"`
}

type PlanResponse struct {
	Plan         string     `json:"plan"`
	Name         string     `json:"name"`
	PriceCents   int64      `json:"price_cents"`
	Currency     string     `json:"currency"`
	PriceDisplay string     `json:"price_display"`
	Interval     string     `json:"interval"`
	Features     FeatureSet `json:"features"`
}

func ToPlanResponseList(plans []PlanInfo) []PlanResponse {
	out := make([]PlanResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanResponse{
			Plan:         string(p.Plan),
			Name:         p.Name,
			PriceCents:   p.Price.Amount(),
			Currency:     p.Price.Currency().Code,
			PriceDisplay: p.Price.Display(),
			Interval:     p.Interval,
			Features:     p.Features,
		})
	}
	return out
}

type SubscriptionResponse struct {
	ID              string     `json:"id"`
	Plan            string     `json:"plan"`
	PriceCents      int64      `json:"price_cents"`
	Currency        string     `json:"currency"`
	PriceDisplay    string     `json:"price_display"`
	Status          string     `json:"status"`
	StartDate       time.Time  `json:"start_date"`
	NextBillingDate time.Time  `json:"next_billing_date"`
	CancelledAt     *time.Time `json:"cancelled_at,omitempty"`
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:              s.ID,
		Plan:            string(s.Plan),
		PriceCents:      s.PriceCents,
		Currency:        s.Currency,
		PriceDisplay:    money.New(s.PriceCents, s.Currency).Display(),
		Status:          s.Status,
		StartDate:       s.StartDate,
		NextBillingDate: s.NextBillingDate,
		CancelledAt:     s.CancelledAt,
	}
}
