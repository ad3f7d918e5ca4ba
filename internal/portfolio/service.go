// AngelaMos | 2026
// service.go

package portfolio

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/coinvoice/internal/billing"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

const EventCryptoAdded = "crypto_added_to_portfolio"

// PriceSource resolves the current price of an asset. The market package
// implements it over its quote cache.
type PriceSource interface {
	CurrentPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

type Service struct {
	repo    Repository
	prices  PriceSource
	tracker billing.EventTracker
	logger  *slog.Logger
}

func NewService(
	repo Repository,
	prices PriceSource,
	tracker billing.EventTracker,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		prices:  prices,
		tracker: tracker,
		logger:  logger,
	}
}

// Add records a position, replacing any existing position for the same
// asset. The purchase price is the asset's price at add time, resolved
// server side.
func (s *Service) Add(
	ctx context.Context,
	userID string,
	req AddHoldingRequest,
) (*Holding, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf(
			"add holding: amount must be positive: %w",
			core.ErrInvalidInput,
		)
	}

	price, err := s.prices.CurrentPrice(ctx, req.AssetID)
	if err != nil {
		return nil, fmt.Errorf("add holding: unknown asset %q: %w", req.AssetID, core.ErrNotFound)
	}

	h := &Holding{
		ID:            uuid.New().String(),
		UserID:        userID,
		AssetID:       req.AssetID,
		Name:          req.Name,
		Symbol:        strings.ToLower(req.Symbol),
		Amount:        req.Amount,
		PurchasePrice: price,
	}

	if err := s.repo.Upsert(ctx, h); err != nil {
		return nil, err
	}

	s.tracker.Track(ctx, userID, EventCryptoAdded, map[string]any{
		"symbol": h.Symbol,
		"amount": h.Amount.String(),
		"price":  price.String(),
	})

	return h, nil
}

// Remove deletes a position. Removing an asset that is not held is a
// no-op.
func (s *Service) Remove(ctx context.Context, userID, assetID string) error {
	_, err := s.repo.Delete(ctx, userID, assetID)
	return err
}

// Portfolio values every holding at its current price and sums the
// result. When a price cannot be resolved the stored purchase price
// stands in, so a market outage never empties the portfolio.
func (s *Service) Portfolio(ctx context.Context, userID string) (*PortfolioResponse, error) {
	holdings, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &PortfolioResponse{
		Holdings:   make([]HoldingResponse, 0, len(holdings)),
		TotalValue: decimal.Zero,
	}

	for _, h := range holdings {
		price, err := s.prices.CurrentPrice(ctx, h.AssetID)
		if err != nil {
			s.logger.Warn("price lookup failed, using purchase price",
				slog.String("asset_id", h.AssetID),
				slog.String("error", err.Error()),
			)
			price = h.PurchasePrice
		}

		value := h.Amount.Mul(price)
		resp.TotalValue = resp.TotalValue.Add(value)

		resp.Holdings = append(resp.Holdings, HoldingResponse{
			ID:            h.ID,
			AssetID:       h.AssetID,
			Name:          h.Name,
			Symbol:        h.Symbol,
			Amount:        h.Amount,
			PurchasePrice: h.PurchasePrice,
			CurrentPrice:  price,
			Value:         value,
			AddedAt:       h.CreatedAt,
		})
	}

	resp.TotalValue = resp.TotalValue.Round(2)

	return resp, nil
}
