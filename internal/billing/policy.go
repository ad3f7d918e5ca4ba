// AngelaMos | 2026
// policy.go

package billing

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/Rhymond/go-money"

	"github.com/carterperez-dev/coinvoice/internal/config"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

func (p Plan) Valid() bool {
	return p == PlanFree || p == PlanPro
}

// FreeMaxInvoices is the invoice quota for the free plan.
const FreeMaxInvoices = 5

// FeatureSet is the concrete capability flags for a plan. It is always
// derived via DeriveFeatures and persisted in the same statement as the
// plan itself; it is never edited independently.
type FeatureSet struct {
	MaxInvoices       int  `json:"max_invoices"`
	UnlimitedInvoices bool `json:"unlimited_invoices"`
	MultiCurrency     bool `json:"multi_currency"`
	RecurringInvoices bool `json:"recurring_invoices"`
	TaxCalculation    bool `json:"tax_calculation"`
	ClientManagement  bool `json:"client_management"`
	AdvancedAnalytics bool `json:"advanced_analytics"`
}

// DeriveFeatures maps a plan to its feature set. Pure and total over the
// two-plan domain; unknown values collapse to the free set so a corrupted
// plan column can never grant paid capabilities.
func DeriveFeatures(plan Plan) FeatureSet {
	if plan == PlanPro {
		return FeatureSet{
			UnlimitedInvoices: true,
			MultiCurrency:     true,
			RecurringInvoices: true,
			TaxCalculation:    true,
			ClientManagement:  true,
			AdvancedAnalytics: true,
		}
	}

	return FeatureSet{
		MaxInvoices: FreeMaxInvoices,
	}
}

// CanCreateInvoice reports whether one more invoice may be created. Pro
// usage is never counted; free usage is bounded by the feature quota.
func CanCreateInvoice(plan Plan, features FeatureSet, invoiceCount int) bool {
	if plan == PlanPro || features.UnlimitedInvoices {
		return true
	}
	return invoiceCount < features.MaxInvoices
}

// Value implements driver.Valuer so FeatureSet persists as jsonb.
func (f FeatureSet) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// Scan implements sql.Scanner.
func (f *FeatureSet) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	case nil:
		*f = FeatureSet{}
		return nil
	default:
		return fmt.Errorf("unsupported feature set source type %T", src)
	}
}

// PlanInfo is one entry of the public plan catalog.
type PlanInfo struct {
	Plan     Plan
	Name     string
	Price    *money.Money
	Interval string
	Features FeatureSet
}

// Catalog returns the two offered plans with their monthly prices.
func Catalog(cfg config.BillingConfig) []PlanInfo {
	return []PlanInfo{
		{
			Plan:     PlanFree,
			Name:     "Free",
			Price:    money.New(0, cfg.Currency),
			Interval: "month",
			Features: DeriveFeatures(PlanFree),
		},
		{
			Plan:     PlanPro,
			Name:     "Pro",
			Price:    money.New(cfg.ProPriceCents, cfg.Currency),
			Interval: "month",
			Features: DeriveFeatures(PlanPro),
		},
	}
}
