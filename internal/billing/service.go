// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

var (
	// ErrAlreadySubscribed is returned when a pro user tries to upgrade again.
	ErrAlreadySubscribed = errors.New("already on the pro plan")

	// ErrUpgradeInFlight is returned when a second upgrade request arrives
	// while a payment for the same user is still processing.
	ErrUpgradeInFlight = errors.New("an upgrade is already in progress")

	// ErrNoActiveSubscription is returned when cancelling without an
	// active subscription.
	ErrNoActiveSubscription = errors.New("no active subscription")
)

const (
	EventSubscriptionStarted   = "pro_subscription_started"
	EventSubscriptionCancelled = "pro_subscription_cancelled"
)

// EventTracker records product analytics events. Tracking is best-effort
// and must never fail a billing operation.
type EventTracker interface {
	Track(ctx context.Context, userID, event string, properties map[string]any)
}

type locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type redisLocker struct {
	client *redis.Client
}

func (l *redisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquiring lock %s: %w", key, err)
	}
	return ok, nil
}

func (l *redisLocker) Release(ctx context.Context, key string) error {
	return l.client.Del(ctx, key).Err()
}

type planPublisher interface {
	Publish(ctx context.Context, userID string, plan Plan) error
}

type Service struct {
	repo      Repository
	gateway   Gateway
	tracker   EventTracker
	lock      locker
	planCache planPublisher
	cfg       config.BillingConfig
	logger    *slog.Logger

	now  func() time.Time
	inTx func(ctx context.Context, fn func(Repository) error) error
}

func NewService(
	db *sqlx.DB,
	redisClient *redis.Client,
	gateway Gateway,
	tracker EventTracker,
	planCache *PlanCache,
	cfg config.BillingConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:      NewRepository(db),
		gateway:   gateway,
		tracker:   tracker,
		lock:      &redisLocker{client: redisClient},
		planCache: planCache,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		inTx: func(ctx context.Context, fn func(Repository) error) error {
			return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
				return fn(NewRepository(tx))
			})
		},
	}
}

// Plans returns the public plan catalog.
func (s *Service) Plans() []PlanInfo {
	return Catalog(s.cfg)
}

// GetSubscription returns the user's most recent subscription, active or
// not. core.ErrNotFound means the user never upgraded.
func (s *Service) GetSubscription(ctx context.Context, userID string) (*Subscription, error) {
	return s.repo.GetLatestByUserID(ctx, userID)
}

// Upgrade charges the card and, on success, moves the user to the pro
// plan. The plan change and the subscription record are written in one
// transaction, and a per-user lock suppresses duplicate submissions while
// the charge is in flight.
func (s *Service) Upgrade(ctx context.Context, userID string, card Card) (*Subscription, error) {
	plan, err := s.repo.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if plan == PlanPro {
		return nil, ErrAlreadySubscribed
	}

	lockKey := "billing:upgrade:" + userID
	acquired, err := s.lock.Acquire(ctx, lockKey, s.cfg.UpgradeLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrUpgradeInFlight
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), lockKey); err != nil {
			s.logger.Warn("failed to release upgrade lock",
				slog.String("key", lockKey),
				slog.String("error", err.Error()),
			)
		}
	}()

	if err := s.gateway.Charge(ctx, card); err != nil {
		return nil, err
	}

	now := s.now()
	sub := &Subscription{
		ID:              uuid.New().String(),
		UserID:          userID,
		Plan:            PlanPro,
		PriceCents:      s.cfg.ProPriceCents,
		Currency:        s.cfg.Currency,
		Status:          SubscriptionStatusActive,
		StartDate:       now,
		NextBillingDate: now.Add(s.cfg.BillingPeriod),
	}

	err = s.inTx(ctx, func(r Repository) error {
		if err := r.SetUserPlan(ctx, userID, PlanPro, DeriveFeatures(PlanPro)); err != nil {
			return err
		}
		return r.CreateSubscription(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.publishPlanChange(ctx, userID, PlanPro)

	s.tracker.Track(ctx, userID, EventSubscriptionStarted, map[string]any{
		"plan":        string(PlanPro),
		"price_cents": s.cfg.ProPriceCents,
		"currency":    s.cfg.Currency,
	})

	return sub, nil
}

// Cancel ends the active subscription and drops the user back to the
// free plan immediately. There is no grace period; the cancelled row is
// kept for history.
func (s *Service) Cancel(ctx context.Context, userID string) (*Subscription, error) {
	sub, err := s.repo.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrNoActiveSubscription
		}
		return nil, err
	}

	now := s.now()
	err = s.inTx(ctx, func(r Repository) error {
		if err := r.MarkCancelled(ctx, sub.ID, now); err != nil {
			return err
		}
		return r.SetUserPlan(ctx, userID, PlanFree, DeriveFeatures(PlanFree))
	})
	if err != nil {
		return nil, err
	}

	sub.Status = SubscriptionStatusCancelled
	sub.CancelledAt = &now

	s.publishPlanChange(ctx, userID, PlanFree)

	s.tracker.Track(ctx, userID, EventSubscriptionCancelled, map[string]any{
		"plan": string(PlanPro),
	})

	return sub, nil
}

// publishPlanChange makes the new plan visible to access tokens minted
// before the change. A publish failure only costs freshness; the plan
// lands on the next token rotation anyway.
func (s *Service) publishPlanChange(ctx context.Context, userID string, plan Plan) {
	if err := s.planCache.Publish(ctx, userID, plan); err != nil {
		s.logger.Warn("failed to publish plan change",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}
