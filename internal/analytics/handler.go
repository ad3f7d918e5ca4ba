// AngelaMos | 2026
// handler.go

package analytics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes exposes the event log to admins only.
func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/events", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/", h.ListEvents)
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := ListEventsParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 50),
		Name:     r.URL.Query().Get("name"),
		UserID:   r.URL.Query().Get("user_id"),
	}

	events, total, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.Paginated(
		w,
		ToEventResponseList(events),
		params.Page,
		params.PageSize,
		total,
	)
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
