// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/coinvoice/internal/core"
	"github.com/carterperez-dev/coinvoice/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/billing", func(r chi.Router) {
		r.Get("/plans", h.ListPlans)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Get("/subscription", h.GetSubscription)
			r.Post("/upgrade", h.Upgrade)
			r.Post("/cancel", h.Cancel)
		})
	})
}

// ListPlans is public so the pricing page works without a session.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	core.OK(w, ToPlanResponseList(h.service.Plans()))
}

func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sub, err := h.service.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "subscription")
			return
		}
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}

func (h *Handler) Upgrade(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req UpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.Upgrade(r.Context(), userID, req.Card())
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		case errors.Is(err, ErrPaymentDeclined):
			core.JSONError(w, core.NewAppError(
				http.StatusPaymentRequired,
				"payment_declined",
				"payment was declined, please try again",
			))
		case errors.Is(err, ErrAlreadySubscribed):
			core.Conflict(w, ErrAlreadySubscribed.Error())
		case errors.Is(err, ErrUpgradeInFlight):
			core.Conflict(w, ErrUpgradeInFlight.Error())
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(r.Context(), w, err)
		}
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "cancellation must be confirmed")
		return
	}

	sub, err := h.service.Cancel(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSubscription) {
			core.Conflict(w, ErrNoActiveSubscription.Error())
			return
		}
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.OK(w, ToSubscriptionResponse(sub))
}
