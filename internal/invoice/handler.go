// AngelaMos | 2026
// handler.go

package invoice

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

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
	r.Route("/invoices", func(r chi.Router) {
		r.Use(authenticator)

		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/quota", h.Quota)
		r.Get("/{invoiceID}", h.Get)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	inv, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrQuotaExceeded):
			core.JSONError(w, core.QuotaExceededError(
				"monthly invoice limit reached, upgrade to pro for unlimited invoices",
			))
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "user")
		default:
			core.InternalServerError(r.Context(), w, err)
		}
		return
	}

	core.Created(w, ToInvoiceResponse(inv))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	invoiceID := chi.URLParam(r, "invoiceID")

	inv, err := h.service.Get(r.Context(), userID, invoiceID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "invoice")
			return
		}
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.OK(w, ToInvoiceResponse(inv))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	params := ListInvoicesParams{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 20),
	}

	invoices, total, err := h.service.List(r.Context(), userID, params)
	if err != nil {
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.Paginated(
		w,
		ToInvoiceResponseList(invoices),
		params.Page,
		params.PageSize,
		total,
	)
}

func (h *Handler) Quota(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	quota, err := h.service.Quota(r.Context(), userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "user")
			return
		}
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.OK(w, quota)
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
