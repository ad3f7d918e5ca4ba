// AngelaMos | 2026
// service.go

package analytics

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Track records an event. It is best-effort: a failed insert is logged
// and swallowed, never surfacing to the operation that emitted it.
func (s *Service) Track(
	ctx context.Context,
	userID, event string,
	properties map[string]any,
) {
	e := &Event{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       event,
		Properties: properties,
	}

	if err := s.repo.Insert(context.WithoutCancel(ctx), e); err != nil {
		s.logger.Warn("failed to track event",
			slog.String("event", event),
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *Service) ListEvents(
	ctx context.Context,
	params ListEventsParams,
) ([]Event, int, error) {
	return s.repo.List(ctx, params)
}
