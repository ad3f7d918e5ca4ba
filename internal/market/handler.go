// AngelaMos | 2026
// handler.go

package market

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/coinvoice/internal/billing"
	"github.com/carterperez-dev/coinvoice/internal/core"
	"github.com/carterperez-dev/coinvoice/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/market", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/quotes", h.ListQuotes)
	})
}

// ListQuotes returns current market quotes, optionally filtered by the
// search query. The 24h range only appears for pro users.
func (h *Handler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		core.InternalServerError(r.Context(), w, err)
		return
	}

	pro := middleware.GetUserPlan(r.Context()) == string(billing.PlanPro)

	core.OK(w, ToQuoteResponses(quotes, pro))
}
