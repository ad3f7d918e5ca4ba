// AngelaMos | 2026
// handler.go

package portfolio

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
	r.Route("/portfolio", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.GetPortfolio)
		r.Post("/holdings", h.AddHolding)
		r.Delete("/holdings/{assetID}", h.RemoveHolding)
	})
}

func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	resp, err := h.service.Portfolio(r.Context(), userID)
	if err != nil {
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) AddHolding(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req AddHoldingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	holding, err := h.service.Add(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidInput):
			core.BadRequest(w, err.Error())
		case errors.Is(err, core.ErrNotFound):
			core.NotFound(w, "asset")
		default:
			core.InternalServerError(r.Context(), w, err)
		}
		return
	}

	core.Created(w, HoldingResponse{
		ID:            holding.ID,
		AssetID:       holding.AssetID,
		Name:          holding.Name,
		Symbol:        holding.Symbol,
		Amount:        holding.Amount,
		PurchasePrice: holding.PurchasePrice,
		CurrentPrice:  holding.PurchasePrice,
		Value:         holding.Amount.Mul(holding.PurchasePrice),
		AddedAt:       holding.CreatedAt,
	})
}

func (h *Handler) RemoveHolding(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	assetID := chi.URLParam(r, "assetID")

	if err := h.service.Remove(r.Context(), userID, assetID); err != nil {
		core.InternalServerError(r.Context(), w, err)
		return
	}

	core.NoContent(w)
}
