// AngelaMos | 2026
// service.go

package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/coinvoice/internal/billing"
	"github.com/carterperez-dev/coinvoice/internal/core"
	"github.com/carterperez-dev/coinvoice/internal/user"
)

const EventInvoiceCreated = "invoice_created"

var oneHundred = decimal.NewFromInt(100)

// UserGate is the slice of the user service invoicing needs for reads.
type UserGate interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
}

// SlotReserver claims one unit of invoice quota. Create runs it on the
// same transaction as the insert, so a failed insert never consumes a
// slot.
type SlotReserver interface {
	ReserveInvoiceSlot(ctx context.Context, userID string) (int, error)
}

type Service struct {
	repo    Repository
	users   UserGate
	tracker billing.EventTracker

	now  func() time.Time
	inTx func(ctx context.Context, fn func(Repository, SlotReserver) error) error
}

func NewService(db *sqlx.DB, users UserGate, tracker billing.EventTracker) *Service {
	return &Service{
		repo:    NewRepository(db),
		users:   users,
		tracker: tracker,
		now:     time.Now,
		inTx: func(ctx context.Context, fn func(Repository, SlotReserver) error) error {
			return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
				return fn(NewRepository(tx), user.NewRepository(tx))
			})
		},
	}
}

// Create builds an invoice for the user, enforcing quota and stripping
// paid-only fields from free-plan requests. Free users always get USD,
// no tax and no recurrence regardless of what they submit.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateInvoiceRequest,
) (*Invoice, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf(
			"create invoice: amount must be positive: %w",
			core.ErrInvalidInput,
		)
	}
	if req.TaxRate.IsNegative() {
		return nil, fmt.Errorf(
			"create invoice: tax rate cannot be negative: %w",
			core.ErrInvalidInput,
		)
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	inv := s.buildInvoice(u, req)

	// The reservation and the insert commit together. If the insert
	// fails the rollback releases the slot, so quota is never burned
	// without an invoice to show for it.
	err = s.inTx(ctx, func(repo Repository, slots SlotReserver) error {
		if _, reserveErr := slots.ReserveInvoiceSlot(ctx, userID); reserveErr != nil {
			return reserveErr
		}
		return repo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, userID, EventInvoiceCreated, map[string]any{
		"plan":   string(u.Plan),
		"amount": inv.Amount.String(),
	})

	return inv, nil
}

func (s *Service) buildInvoice(u *user.User, req CreateInvoiceRequest) *Invoice {
	now := s.now()

	inv := &Invoice{
		ID:          uuid.New().String(),
		UserID:      u.ID,
		Number:      invoiceNumber(now),
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    "USD",
	}

	if u.Features.MultiCurrency && req.Currency != "" {
		inv.Currency = req.Currency
	}

	if u.Features.TaxCalculation && req.TaxRate.IsPositive() {
		inv.TaxRate = req.TaxRate
		inv.TaxAmount = req.Amount.Mul(req.TaxRate).Div(oneHundred).Round(2)
	}

	if u.Features.RecurringInvoices && req.Recurring {
		inv.Recurring = true
		inv.RecurringInterval = req.RecurringInterval
		if inv.RecurringInterval == "" {
			inv.RecurringInterval = IntervalMonthly
		}
	}

	inv.Total = inv.Amount.Add(inv.TaxAmount)

	return inv
}

func (s *Service) Get(ctx context.Context, userID, invoiceID string) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	// Cross-user reads look identical to missing invoices.
	if inv.UserID != userID {
		return nil, fmt.Errorf("get invoice: %w", core.ErrNotFound)
	}

	return inv, nil
}

func (s *Service) List(
	ctx context.Context,
	userID string,
	params ListInvoicesParams,
) ([]Invoice, int, error) {
	return s.repo.ListByUserID(ctx, userID, params)
}

// Quota reports current usage against the plan limit.
func (s *Service) Quota(ctx context.Context, userID string) (*QuotaResponse, error) {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &QuotaResponse{
		Used:      u.InvoiceCount,
		Limit:     u.Features.MaxInvoices,
		Unlimited: u.Plan == billing.PlanPro || u.Features.UnlimitedInvoices,
	}

	if !resp.Unlimited {
		resp.Remaining = max(0, resp.Limit-resp.Used)
	}

	return resp, nil
}

// invoiceNumber derives a short display number from the creation time.
func invoiceNumber(t time.Time) string {
	return fmt.Sprintf("INV-%06d", t.UnixMilli()%1_000_000)
}
