// AngelaMos | 2026
// service_test.go

package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

type fakeRepo struct {
	plans         map[string]Plan
	features      map[string]FeatureSet
	subscriptions []*Subscription
	txErr         error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		plans:    map[string]Plan{},
		features: map[string]FeatureSet{},
	}
}

func (r *fakeRepo) CreateSubscription(_ context.Context, sub *Subscription) error {
	if r.txErr != nil {
		return r.txErr
	}
	cp := *sub
	r.subscriptions = append(r.subscriptions, &cp)
	return nil
}

func (r *fakeRepo) GetActiveByUserID(_ context.Context, userID string) (*Subscription, error) {
	for i := len(r.subscriptions) - 1; i >= 0; i-- {
		s := r.subscriptions[i]
		if s.UserID == userID && s.Active() {
			cp := *s
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) GetLatestByUserID(_ context.Context, userID string) (*Subscription, error) {
	for i := len(r.subscriptions) - 1; i >= 0; i-- {
		if r.subscriptions[i].UserID == userID {
			cp := *r.subscriptions[i]
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (r *fakeRepo) MarkCancelled(_ context.Context, id string, at time.Time) error {
	if r.txErr != nil {
		return r.txErr
	}
	for _, s := range r.subscriptions {
		if s.ID == id {
			s.Status = SubscriptionStatusCancelled
			t := at
			s.CancelledAt = &t
			return nil
		}
	}
	return core.ErrNotFound
}

func (r *fakeRepo) SetUserPlan(_ context.Context, userID string, plan Plan, features FeatureSet) error {
	if r.txErr != nil {
		return r.txErr
	}
	r.plans[userID] = plan
	r.features[userID] = features
	return nil
}

func (r *fakeRepo) GetUserPlan(_ context.Context, userID string) (Plan, error) {
	plan, ok := r.plans[userID]
	if !ok {
		return "", core.ErrNotFound
	}
	return plan, nil
}

type fakeLocker struct {
	held     map[string]bool
	denyNext bool
	releases int
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	if l.denyNext {
		return false, nil
	}
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeLocker) Release(_ context.Context, key string) error {
	delete(l.held, key)
	l.releases++
	return nil
}

type fakeGateway struct {
	err     error
	charges int
}

func (g *fakeGateway) Charge(_ context.Context, card Card) error {
	g.charges++
	if err := card.Validate(); err != nil {
		return err
	}
	return g.err
}

type trackedEvent struct {
	userID string
	name   string
	props  map[string]any
}

type fakeTracker struct {
	events []trackedEvent
}

func (t *fakeTracker) Track(_ context.Context, userID, event string, props map[string]any) {
	t.events = append(t.events, trackedEvent{userID: userID, name: event, props: props})
}

type fakePlanCache struct {
	published []Plan
	err       error
}

func (c *fakePlanCache) Publish(_ context.Context, _ string, plan Plan) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, plan)
	return nil
}

func newTestService(repo *fakeRepo, gw *fakeGateway, lock *fakeLocker, tracker *fakeTracker) *Service {
	return &Service{
		repo:      repo,
		gateway:   gw,
		tracker:   tracker,
		lock:      lock,
		planCache: &fakePlanCache{},
		cfg: config.BillingConfig{
			ProPriceCents:  900,
			Currency:       "USD",
			BillingPeriod:  720 * time.Hour,
			UpgradeLockTTL: 30 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: func() time.Time {
			return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		},
		inTx: func(ctx context.Context, fn func(Repository) error) error {
			return fn(repo)
		},
	}
}

func TestServiceUpgrade(t *testing.T) {
	ctx := context.Background()

	t.Run("successful upgrade moves user to pro", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		gw := &fakeGateway{}
		lock := &fakeLocker{}
		tracker := &fakeTracker{}
		svc := newTestService(repo, gw, lock, tracker)
		planCache := &fakePlanCache{}
		svc.planCache = planCache

		sub, err := svc.Upgrade(ctx, "u1", validCard())
		if err != nil {
			t.Fatalf("Upgrade() = %v", err)
		}

		if repo.plans["u1"] != PlanPro {
			t.Errorf("plan = %q, want pro", repo.plans["u1"])
		}
		if !repo.features["u1"].UnlimitedInvoices {
			t.Error("pro features were not written with the plan")
		}
		if sub.Status != SubscriptionStatusActive {
			t.Errorf("status = %q, want active", sub.Status)
		}
		if sub.PriceCents != 900 || sub.Currency != "USD" {
			t.Errorf("price = %d %s, want 900 USD", sub.PriceCents, sub.Currency)
		}
		wantNext := svc.now().Add(720 * time.Hour)
		if !sub.NextBillingDate.Equal(wantNext) {
			t.Errorf("next billing = %v, want %v", sub.NextBillingDate, wantNext)
		}
		if len(repo.subscriptions) != 1 {
			t.Fatalf("stored %d subscriptions, want 1", len(repo.subscriptions))
		}
		if len(tracker.events) != 1 || tracker.events[0].name != EventSubscriptionStarted {
			t.Fatalf("tracked %v, want one %s", tracker.events, EventSubscriptionStarted)
		}
		if lock.releases != 1 {
			t.Errorf("lock released %d times, want 1", lock.releases)
		}
		if len(planCache.published) != 1 || planCache.published[0] != PlanPro {
			t.Errorf("published plans = %v, want one pro", planCache.published)
		}
	})

	t.Run("pro user cannot upgrade again", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanPro
		gw := &fakeGateway{}
		svc := newTestService(repo, gw, &fakeLocker{}, &fakeTracker{})

		_, err := svc.Upgrade(ctx, "u1", validCard())
		if !errors.Is(err, ErrAlreadySubscribed) {
			t.Fatalf("Upgrade() = %v, want ErrAlreadySubscribed", err)
		}
		if gw.charges != 0 {
			t.Error("card was charged for an already subscribed user")
		}
	})

	t.Run("concurrent upgrade is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		gw := &fakeGateway{}
		lock := &fakeLocker{denyNext: true}
		svc := newTestService(repo, gw, lock, &fakeTracker{})

		_, err := svc.Upgrade(ctx, "u1", validCard())
		if !errors.Is(err, ErrUpgradeInFlight) {
			t.Fatalf("Upgrade() = %v, want ErrUpgradeInFlight", err)
		}
		if gw.charges != 0 {
			t.Error("card was charged while another upgrade held the lock")
		}
	})

	t.Run("declined payment leaves user on free", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		gw := &fakeGateway{err: ErrPaymentDeclined}
		lock := &fakeLocker{}
		tracker := &fakeTracker{}
		svc := newTestService(repo, gw, lock, tracker)

		_, err := svc.Upgrade(ctx, "u1", validCard())
		if !errors.Is(err, ErrPaymentDeclined) {
			t.Fatalf("Upgrade() = %v, want ErrPaymentDeclined", err)
		}
		if repo.plans["u1"] != PlanFree {
			t.Errorf("plan = %q, want free after decline", repo.plans["u1"])
		}
		if len(repo.subscriptions) != 0 {
			t.Error("subscription stored despite declined payment")
		}
		if len(tracker.events) != 0 {
			t.Error("event tracked despite declined payment")
		}
		if lock.releases != 1 {
			t.Errorf("lock released %d times, want 1", lock.releases)
		}
		if got := svc.planCache.(*fakePlanCache).published; len(got) != 0 {
			t.Errorf("plan change published despite declined payment: %v", got)
		}
	})

	t.Run("transaction failure keeps user on free", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		repo.txErr = errors.New("connection reset")
		tracker := &fakeTracker{}
		svc := newTestService(repo, &fakeGateway{}, &fakeLocker{}, tracker)

		_, err := svc.Upgrade(ctx, "u1", validCard())
		if err == nil {
			t.Fatal("Upgrade() = nil, want error")
		}
		if len(tracker.events) != 0 {
			t.Error("event tracked despite failed transaction")
		}
	})
}

func TestServiceCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancel drops user to free immediately", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		gw := &fakeGateway{}
		tracker := &fakeTracker{}
		svc := newTestService(repo, gw, &fakeLocker{}, tracker)
		planCache := &fakePlanCache{}
		svc.planCache = planCache

		if _, err := svc.Upgrade(ctx, "u1", validCard()); err != nil {
			t.Fatalf("Upgrade() = %v", err)
		}

		sub, err := svc.Cancel(ctx, "u1")
		if err != nil {
			t.Fatalf("Cancel() = %v", err)
		}

		if sub.Status != SubscriptionStatusCancelled {
			t.Errorf("status = %q, want cancelled", sub.Status)
		}
		if sub.CancelledAt == nil {
			t.Error("CancelledAt not set")
		}
		if repo.plans["u1"] != PlanFree {
			t.Errorf("plan = %q, want free", repo.plans["u1"])
		}
		if repo.features["u1"].UnlimitedInvoices {
			t.Error("pro features survived cancellation")
		}

		last := tracker.events[len(tracker.events)-1]
		if last.name != EventSubscriptionCancelled {
			t.Errorf("last event = %q, want %s", last.name, EventSubscriptionCancelled)
		}

		want := []Plan{PlanPro, PlanFree}
		if len(planCache.published) != 2 ||
			planCache.published[0] != want[0] ||
			planCache.published[1] != want[1] {
			t.Errorf("published plans = %v, want %v", planCache.published, want)
		}

		// the row is kept for history
		if _, err := svc.GetSubscription(ctx, "u1"); err != nil {
			t.Errorf("GetSubscription after cancel = %v", err)
		}
	})

	t.Run("cancel without subscription fails", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		svc := newTestService(repo, &fakeGateway{}, &fakeLocker{}, &fakeTracker{})

		_, err := svc.Cancel(ctx, "u1")
		if !errors.Is(err, ErrNoActiveSubscription) {
			t.Fatalf("Cancel() = %v, want ErrNoActiveSubscription", err)
		}
	})

	t.Run("double cancel fails", func(t *testing.T) {
		repo := newFakeRepo()
		repo.plans["u1"] = PlanFree
		svc := newTestService(repo, &fakeGateway{}, &fakeLocker{}, &fakeTracker{})

		if _, err := svc.Upgrade(ctx, "u1", validCard()); err != nil {
			t.Fatalf("Upgrade() = %v", err)
		}
		if _, err := svc.Cancel(ctx, "u1"); err != nil {
			t.Fatalf("first Cancel() = %v", err)
		}

		_, err := svc.Cancel(ctx, "u1")
		if !errors.Is(err, ErrNoActiveSubscription) {
			t.Fatalf("second Cancel() = %v, want ErrNoActiveSubscription", err)
		}
	})
}
