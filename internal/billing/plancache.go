// AngelaMos | 2026
// plancache.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const planOverridePrefix = "plan_override:"

// PlanCache publishes plan changes to Redis so authentication can apply
// the new plan to access tokens minted before the change. An entry lives
// as long as the longest outstanding access token; after that every
// token already carries the new plan.
type PlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewPlanCache(client *redis.Client, ttl time.Duration) *PlanCache {
	return &PlanCache{client: client, ttl: ttl}
}

// Publish records the user's new plan.
func (c *PlanCache) Publish(ctx context.Context, userID string, plan Plan) error {
	key := planOverridePrefix + userID
	if err := c.client.Set(ctx, key, string(plan), c.ttl).Err(); err != nil {
		return fmt.Errorf("publish plan change: %w", err)
	}
	return nil
}

// Lookup returns the user's published plan, or "" when no change is
// recorded.
func (c *PlanCache) Lookup(ctx context.Context, userID string) (string, error) {
	plan, err := c.client.Get(ctx, planOverridePrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("lookup plan change: %w", err)
	}
	return plan, nil
}
