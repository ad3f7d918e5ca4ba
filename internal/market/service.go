// AngelaMos | 2026
// service.go

package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

const quotesCacheKey = "market:quotes"

// Service serves quotes out of the Redis cache, refreshing from upstream
// and degrading to the static fallback set when both the API and the
// cache are unavailable.
type Service struct {
	fetcher QuoteFetcher
	cache   *redis.Client
	cfg     config.MarketConfig
	logger  *slog.Logger

	lastRefresh atomic.Int64
}

func NewService(
	fetcher QuoteFetcher,
	cache *redis.Client,
	cfg config.MarketConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   cache,
		cfg:     cfg,
		logger:  logger,
	}
}

// Refresh fetches fresh quotes and caches them. Called by the refresher
// loop and on cache misses.
func (s *Service) Refresh(ctx context.Context) error {
	quotes, err := s.fetcher.FetchTopQuotes(ctx)
	if err != nil {
		return fmt.Errorf("refresh market data: %w", err)
	}

	if err := s.store(ctx, quotes); err != nil {
		return err
	}

	s.lastRefresh.Store(time.Now().Unix())

	return nil
}

// Quotes returns the current quote set. Priority: cache, then upstream,
// then the static fallback. The fallback path never fails.
func (s *Service) Quotes(ctx context.Context) ([]Quote, error) {
	quotes, err := s.cached(ctx)
	if err == nil {
		return quotes, nil
	}
	if !errors.Is(err, redis.Nil) {
		s.logger.Warn("quote cache read failed",
			slog.String("error", err.Error()),
		)
	}

	if refreshErr := s.Refresh(ctx); refreshErr != nil {
		s.logger.Warn("market refresh failed, serving fallback quotes",
			slog.String("error", refreshErr.Error()),
		)
		return FallbackQuotes(), nil
	}

	quotes, err = s.cached(ctx)
	if err != nil {
		return FallbackQuotes(), nil
	}

	return quotes, nil
}

// Search filters quotes by a case-insensitive match on name or symbol.
// An empty query returns everything.
func (s *Service) Search(ctx context.Context, query string) ([]Quote, error) {
	quotes, err := s.Quotes(ctx)
	if err != nil {
		return nil, err
	}

	if query == "" {
		return quotes, nil
	}

	q := strings.ToLower(query)
	filtered := make([]Quote, 0, len(quotes))
	for _, quote := range quotes {
		if strings.Contains(strings.ToLower(quote.Name), q) ||
			strings.Contains(strings.ToLower(quote.Symbol), q) {
			filtered = append(filtered, quote)
		}
	}

	return filtered, nil
}

// CurrentPrice implements portfolio.PriceSource.
func (s *Service) CurrentPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	quotes, err := s.Quotes(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	for _, q := range quotes {
		if q.ID == assetID {
			return decimal.NewFromFloat(q.CurrentPrice), nil
		}
	}

	return decimal.Zero, fmt.Errorf("price for %q: %w", assetID, core.ErrNotFound)
}

// Ping reports feed staleness for the readiness probe. The feed counts
// as healthy until three refresh intervals pass without a success.
func (s *Service) Ping(ctx context.Context) error {
	last := s.lastRefresh.Load()
	if last == 0 {
		return errors.New("market data never refreshed")
	}

	age := time.Since(time.Unix(last, 0))
	if age > 3*s.cfg.RefreshInterval {
		return fmt.Errorf("market data stale for %s", age.Round(time.Second))
	}

	return nil
}

func (s *Service) cached(ctx context.Context) ([]Quote, error) {
	raw, err := s.cache.Get(ctx, quotesCacheKey).Bytes()
	if err != nil {
		return nil, err
	}

	var quotes []Quote
	if err := json.Unmarshal(raw, &quotes); err != nil {
		return nil, fmt.Errorf("decode cached quotes: %w", err)
	}

	return quotes, nil
}

func (s *Service) store(ctx context.Context, quotes []Quote) error {
	raw, err := json.Marshal(quotes)
	if err != nil {
		return fmt.Errorf("encode quotes: %w", err)
	}

	if err := s.cache.Set(ctx, quotesCacheKey, raw, s.cfg.CacheTTL).Err(); err != nil {
		return fmt.Errorf("cache quotes: %w", err)
	}

	return nil
}
