// AngelaMos | 2026
// service_test.go

package invoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/coinvoice/internal/billing"
	"github.com/carterperez-dev/coinvoice/internal/core"
	"github.com/carterperez-dev/coinvoice/internal/user"
)

type fakeUserGate struct {
	users map[string]*user.User
}

func (g *fakeUserGate) GetUser(_ context.Context, id string) (*user.User, error) {
	u, ok := g.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type fakeSlots struct {
	reserveErr error
	count      int
	calls      int
}

func (s *fakeSlots) ReserveInvoiceSlot(_ context.Context, _ string) (int, error) {
	s.calls++
	if s.reserveErr != nil {
		return 0, s.reserveErr
	}
	s.count++
	return s.count, nil
}

type fakeInvoiceRepo struct {
	invoices  []*Invoice
	createErr error
}

func (r *fakeInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	if r.createErr != nil {
		return r.createErr
	}
	cp := *inv
	r.invoices = append(r.invoices, &cp)
	return nil
}

func (r *fakeInvoiceRepo) GetByID(_ context.Context, id string) (*Invoice, error) {
	for _, inv := range r.invoices {
		if inv.ID == id {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeInvoiceRepo) ListByUserID(
	_ context.Context,
	userID string,
	_ ListInvoicesParams,
) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, *inv)
		}
	}
	return out, len(out), nil
}

type nopTracker struct {
	events []string
}

func (t *nopTracker) Track(_ context.Context, _, event string, _ map[string]any) {
	t.events = append(t.events, event)
}

func freeUser(id string) *user.User {
	return &user.User{
		ID:       id,
		Plan:     billing.PlanFree,
		Features: billing.DeriveFeatures(billing.PlanFree),
	}
}

func proUser(id string) *user.User {
	return &user.User{
		ID:       id,
		Plan:     billing.PlanPro,
		Features: billing.DeriveFeatures(billing.PlanPro),
	}
}

// newInvoiceService wires a service over fakes. The inTx stub rolls
// invoice and slot state back when the closure errors, matching what a
// real transaction does.
func newInvoiceService(
	repo *fakeInvoiceRepo,
	gate *fakeUserGate,
	slots *fakeSlots,
	tracker *nopTracker,
) *Service {
	return &Service{
		repo:    repo,
		users:   gate,
		tracker: tracker,
		now: func() time.Time {
			return time.Date(2026, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
		},
		inTx: func(_ context.Context, fn func(Repository, SlotReserver) error) error {
			keptInvoices := len(repo.invoices)
			keptCount := slots.count
			if err := fn(repo, slots); err != nil {
				repo.invoices = repo.invoices[:keptInvoices]
				slots.count = keptCount
				return err
			}
			return nil
		},
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("free user gets stripped invoice", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": freeUser("u1")}}
		repo := &fakeInvoiceRepo{}
		slots := &fakeSlots{}
		tracker := &nopTracker{}
		svc := newInvoiceService(repo, gate, slots, tracker)

		inv, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName:        "Acme Corp",
			Amount:            decimal.RequireFromString("250.00"),
			Currency:          "EUR",
			TaxRate:           decimal.RequireFromString("20"),
			Recurring:         true,
			RecurringInterval: IntervalWeekly,
		})
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}

		if inv.Currency != "USD" {
			t.Errorf("currency = %q, want USD for free plan", inv.Currency)
		}
		if !inv.TaxAmount.IsZero() || !inv.TaxRate.IsZero() {
			t.Errorf("tax = %s at %s%%, want none for free plan", inv.TaxAmount, inv.TaxRate)
		}
		if inv.Recurring {
			t.Error("recurring set for free plan")
		}
		if !inv.Total.Equal(inv.Amount) {
			t.Errorf("total = %s, want %s", inv.Total, inv.Amount)
		}
		if len(tracker.events) != 1 || tracker.events[0] != EventInvoiceCreated {
			t.Errorf("events = %v, want one %s", tracker.events, EventInvoiceCreated)
		}
		if slots.count != 1 {
			t.Errorf("reserved slots = %d, want 1", slots.count)
		}
	})

	t.Run("pro user keeps currency tax and recurrence", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": proUser("u1")}}
		repo := &fakeInvoiceRepo{}
		svc := newInvoiceService(repo, gate, &fakeSlots{}, &nopTracker{})

		inv, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName: "Acme Corp",
			Amount:     decimal.RequireFromString("100"),
			Currency:   "EUR",
			TaxRate:    decimal.RequireFromString("19"),
			Recurring:  true,
		})
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}

		if inv.Currency != "EUR" {
			t.Errorf("currency = %q, want EUR", inv.Currency)
		}
		if want := decimal.RequireFromString("19.00"); !inv.TaxAmount.Equal(want) {
			t.Errorf("tax amount = %s, want %s", inv.TaxAmount, want)
		}
		if want := decimal.RequireFromString("119.00"); !inv.Total.Equal(want) {
			t.Errorf("total = %s, want %s", inv.Total, want)
		}
		if !inv.Recurring || inv.RecurringInterval != IntervalMonthly {
			t.Errorf("recurrence = %v/%q, want monthly default", inv.Recurring, inv.RecurringInterval)
		}
	})

	t.Run("tax rounds to cents", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": proUser("u1")}}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, &fakeSlots{}, &nopTracker{})

		inv, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName: "Acme Corp",
			Amount:     decimal.RequireFromString("33.33"),
			TaxRate:    decimal.RequireFromString("7.7"),
		})
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}

		// 33.33 * 7.7% = 2.566... rounds to 2.57
		if want := decimal.RequireFromString("2.57"); !inv.TaxAmount.Equal(want) {
			t.Errorf("tax amount = %s, want %s", inv.TaxAmount, want)
		}
	})

	t.Run("quota exhaustion surfaces as ErrQuotaExceeded", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": freeUser("u1")}}
		repo := &fakeInvoiceRepo{}
		slots := &fakeSlots{reserveErr: core.ErrQuotaExceeded}
		tracker := &nopTracker{}
		svc := newInvoiceService(repo, gate, slots, tracker)

		_, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName: "Acme Corp",
			Amount:     decimal.RequireFromString("10"),
		})
		if !errors.Is(err, core.ErrQuotaExceeded) {
			t.Fatalf("Create() = %v, want ErrQuotaExceeded", err)
		}
		if len(repo.invoices) != 0 {
			t.Error("invoice stored despite exhausted quota")
		}
		if len(tracker.events) != 0 {
			t.Error("event tracked despite exhausted quota")
		}
	})

	t.Run("failed insert releases the quota slot", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": freeUser("u1")}}
		repo := &fakeInvoiceRepo{createErr: errors.New("connection reset")}
		slots := &fakeSlots{}
		tracker := &nopTracker{}
		svc := newInvoiceService(repo, gate, slots, tracker)

		_, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName: "Acme Corp",
			Amount:     decimal.RequireFromString("10"),
		})
		if err == nil {
			t.Fatal("Create() succeeded with a failing store")
		}
		if slots.calls != 1 {
			t.Errorf("reservation attempts = %d, want 1", slots.calls)
		}
		if slots.count != 0 {
			t.Errorf("reserved slots after rollback = %d, want 0", slots.count)
		}
		if len(repo.invoices) != 0 {
			t.Error("invoice stored despite failed insert")
		}
		if len(tracker.events) != 0 {
			t.Error("event tracked despite failed insert")
		}
	})

	t.Run("rejects non positive amounts", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": freeUser("u1")}}
		slots := &fakeSlots{}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, slots, &nopTracker{})

		for _, amount := range []string{"0", "-5"} {
			_, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
				ClientName: "Acme Corp",
				Amount:     decimal.RequireFromString(amount),
			})
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("Create(amount=%s) = %v, want ErrInvalidInput", amount, err)
			}
		}
		if slots.calls != 0 {
			t.Error("quota reserved for invalid request")
		}
	})

	t.Run("number comes from creation time", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": freeUser("u1")}}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, &fakeSlots{}, &nopTracker{})

		inv, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
			ClientName: "Acme Corp",
			Amount:     decimal.RequireFromString("10"),
		})
		if err != nil {
			t.Fatalf("Create() = %v", err)
		}

		want := invoiceNumber(svc.now())
		if inv.Number != want {
			t.Errorf("number = %q, want %q", inv.Number, want)
		}
		if len(inv.Number) != len("INV-000000") {
			t.Errorf("number %q has unexpected shape", inv.Number)
		}
	})
}

func TestServiceGet(t *testing.T) {
	ctx := context.Background()
	gate := &fakeUserGate{users: map[string]*user.User{
		"u1": freeUser("u1"),
		"u2": freeUser("u2"),
	}}
	repo := &fakeInvoiceRepo{}
	svc := newInvoiceService(repo, gate, &fakeSlots{}, &nopTracker{})

	inv, err := svc.Create(ctx, "u1", CreateInvoiceRequest{
		ClientName: "Acme Corp",
		Amount:     decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}

	if _, err := svc.Get(ctx, "u1", inv.ID); err != nil {
		t.Errorf("owner Get() = %v", err)
	}

	// another user's invoice must look like it does not exist
	if _, err := svc.Get(ctx, "u2", inv.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("cross-user Get() = %v, want ErrNotFound", err)
	}
}

func TestServiceQuota(t *testing.T) {
	ctx := context.Background()

	t.Run("free quota counts down", func(t *testing.T) {
		u := freeUser("u1")
		u.InvoiceCount = 3
		gate := &fakeUserGate{users: map[string]*user.User{"u1": u}}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, &fakeSlots{}, &nopTracker{})

		q, err := svc.Quota(ctx, "u1")
		if err != nil {
			t.Fatalf("Quota() = %v", err)
		}
		if q.Unlimited {
			t.Error("free plan reported unlimited")
		}
		if q.Used != 3 || q.Limit != billing.FreeMaxInvoices || q.Remaining != 2 {
			t.Errorf("quota = %+v, want used 3, limit 5, remaining 2", q)
		}
	})

	t.Run("remaining never goes negative", func(t *testing.T) {
		u := freeUser("u1")
		u.InvoiceCount = 9
		gate := &fakeUserGate{users: map[string]*user.User{"u1": u}}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, &fakeSlots{}, &nopTracker{})

		q, err := svc.Quota(ctx, "u1")
		if err != nil {
			t.Fatalf("Quota() = %v", err)
		}
		if q.Remaining != 0 {
			t.Errorf("remaining = %d, want 0", q.Remaining)
		}
	})

	t.Run("pro is unlimited", func(t *testing.T) {
		gate := &fakeUserGate{users: map[string]*user.User{"u1": proUser("u1")}}
		svc := newInvoiceService(&fakeInvoiceRepo{}, gate, &fakeSlots{}, &nopTracker{})

		q, err := svc.Quota(ctx, "u1")
		if err != nil {
			t.Fatalf("Quota() = %v", err)
		}
		if !q.Unlimited {
			t.Error("pro plan not reported unlimited")
		}
	})
}
