// AngelaMos | 2026
// refresher.go

package market

import (
	"context"
	"log/slog"
	"time"
)

// Refresher polls the upstream API on a fixed interval so the cache is
// warm before anyone asks. It runs until its context is cancelled.
type Refresher struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewRefresher(service *Service, interval time.Duration, logger *slog.Logger) *Refresher {
	return &Refresher{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("market refresher stopped")
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	start := time.Now()
	if err := r.service.Refresh(ctx); err != nil {
		r.logger.Warn("market refresh failed",
			slog.String("error", err.Error()),
		)
		return
	}

	r.logger.Debug("market data refreshed",
		slog.Duration("took", time.Since(start)),
	)
}
