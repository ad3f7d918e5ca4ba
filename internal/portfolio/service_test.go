// AngelaMos | 2026
// service_test.go

package portfolio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/carterperez-dev/coinvoice/internal/core"
)

type fakeHoldingRepo struct {
	holdings []*Holding
}

func (r *fakeHoldingRepo) Upsert(_ context.Context, h *Holding) error {
	for _, existing := range r.holdings {
		if existing.UserID == h.UserID && existing.AssetID == h.AssetID {
			existing.Name = h.Name
			existing.Symbol = h.Symbol
			existing.Amount = h.Amount
			existing.PurchasePrice = h.PurchasePrice
			h.ID = existing.ID
			return nil
		}
	}
	cp := *h
	r.holdings = append(r.holdings, &cp)
	return nil
}

func (r *fakeHoldingRepo) Delete(_ context.Context, userID, assetID string) (bool, error) {
	for i, h := range r.holdings {
		if h.UserID == userID && h.AssetID == assetID {
			r.holdings = append(r.holdings[:i], r.holdings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeHoldingRepo) ListByUserID(_ context.Context, userID string) ([]Holding, error) {
	var out []Holding
	for _, h := range r.holdings {
		if h.UserID == userID {
			out = append(out, *h)
		}
	}
	return out, nil
}

type fakePriceSource struct {
	prices map[string]string
	fail   bool
}

func (p *fakePriceSource) CurrentPrice(_ context.Context, assetID string) (decimal.Decimal, error) {
	if p.fail {
		return decimal.Zero, errors.New("feed unavailable")
	}
	raw, ok := p.prices[assetID]
	if !ok {
		return decimal.Zero, core.ErrNotFound
	}
	return decimal.RequireFromString(raw), nil
}

type recordingTracker struct {
	events []string
}

func (t *recordingTracker) Track(_ context.Context, _, event string, _ map[string]any) {
	t.events = append(t.events, event)
}

func newPortfolioService(repo *fakeHoldingRepo, prices *fakePriceSource) (*Service, *recordingTracker) {
	tracker := &recordingTracker{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, prices, tracker, logger), tracker
}

func TestServiceAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("records position at current price", func(t *testing.T) {
		repo := &fakeHoldingRepo{}
		prices := &fakePriceSource{prices: map[string]string{"bitcoin": "45218.75"}}
		svc, tracker := newPortfolioService(repo, prices)

		h, err := svc.Add(ctx, "u1", AddHoldingRequest{
			AssetID: "bitcoin",
			Name:    "Bitcoin",
			Symbol:  "BTC",
			Amount:  decimal.RequireFromString("0.5"),
		})
		if err != nil {
			t.Fatalf("Add() = %v", err)
		}

		if h.Symbol != "btc" {
			t.Errorf("symbol = %q, want lowercase btc", h.Symbol)
		}
		if want := decimal.RequireFromString("45218.75"); !h.PurchasePrice.Equal(want) {
			t.Errorf("purchase price = %s, want %s", h.PurchasePrice, want)
		}
		if len(tracker.events) != 1 || tracker.events[0] != EventCryptoAdded {
			t.Errorf("events = %v, want one %s", tracker.events, EventCryptoAdded)
		}
	})

	t.Run("adding same asset replaces the position", func(t *testing.T) {
		repo := &fakeHoldingRepo{}
		prices := &fakePriceSource{prices: map[string]string{"bitcoin": "40000"}}
		svc, _ := newPortfolioService(repo, prices)

		if _, err := svc.Add(ctx, "u1", AddHoldingRequest{
			AssetID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
			Amount: decimal.RequireFromString("1"),
		}); err != nil {
			t.Fatalf("first Add() = %v", err)
		}

		prices.prices["bitcoin"] = "50000"

		if _, err := svc.Add(ctx, "u1", AddHoldingRequest{
			AssetID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
			Amount: decimal.RequireFromString("2"),
		}); err != nil {
			t.Fatalf("second Add() = %v", err)
		}

		holdings, _ := repo.ListByUserID(ctx, "u1")
		if len(holdings) != 1 {
			t.Fatalf("%d holdings, want 1 after replace", len(holdings))
		}
		if want := decimal.RequireFromString("2"); !holdings[0].Amount.Equal(want) {
			t.Errorf("amount = %s, want 2 (replaced, not accumulated)", holdings[0].Amount)
		}
		if want := decimal.RequireFromString("50000"); !holdings[0].PurchasePrice.Equal(want) {
			t.Errorf("purchase price = %s, want the newer 50000", holdings[0].PurchasePrice)
		}
	})

	t.Run("unknown asset is rejected", func(t *testing.T) {
		repo := &fakeHoldingRepo{}
		svc, tracker := newPortfolioService(repo, &fakePriceSource{prices: map[string]string{}})

		_, err := svc.Add(ctx, "u1", AddHoldingRequest{
			AssetID: "dogeelonmars", Name: "?", Symbol: "dem",
			Amount: decimal.RequireFromString("1"),
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Fatalf("Add() = %v, want ErrNotFound", err)
		}
		if len(repo.holdings) != 0 {
			t.Error("holding stored for unknown asset")
		}
		if len(tracker.events) != 0 {
			t.Error("event tracked for unknown asset")
		}
	})

	t.Run("rejects non positive amounts", func(t *testing.T) {
		svc, _ := newPortfolioService(&fakeHoldingRepo{}, &fakePriceSource{
			prices: map[string]string{"bitcoin": "40000"},
		})

		for _, amount := range []string{"0", "-1"} {
			_, err := svc.Add(ctx, "u1", AddHoldingRequest{
				AssetID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
				Amount: decimal.RequireFromString(amount),
			})
			if !errors.Is(err, core.ErrInvalidInput) {
				t.Errorf("Add(amount=%s) = %v, want ErrInvalidInput", amount, err)
			}
		}
	})
}

func TestServiceRemove(t *testing.T) {
	ctx := context.Background()
	repo := &fakeHoldingRepo{}
	prices := &fakePriceSource{prices: map[string]string{"bitcoin": "40000"}}
	svc, _ := newPortfolioService(repo, prices)

	if _, err := svc.Add(ctx, "u1", AddHoldingRequest{
		AssetID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
		Amount: decimal.RequireFromString("1"),
	}); err != nil {
		t.Fatalf("Add() = %v", err)
	}

	if err := svc.Remove(ctx, "u1", "bitcoin"); err != nil {
		t.Errorf("Remove() = %v", err)
	}
	if len(repo.holdings) != 0 {
		t.Error("holding survived removal")
	}

	// removing an asset that is not held succeeds silently
	if err := svc.Remove(ctx, "u1", "bitcoin"); err != nil {
		t.Errorf("Remove() absent = %v, want nil", err)
	}
	if err := svc.Remove(ctx, "u1", "never-held"); err != nil {
		t.Errorf("Remove() never held = %v, want nil", err)
	}
}

func TestServicePortfolio(t *testing.T) {
	ctx := context.Background()

	t.Run("empty portfolio totals zero", func(t *testing.T) {
		svc, _ := newPortfolioService(&fakeHoldingRepo{}, &fakePriceSource{})

		resp, err := svc.Portfolio(ctx, "u1")
		if err != nil {
			t.Fatalf("Portfolio() = %v", err)
		}
		if len(resp.Holdings) != 0 {
			t.Errorf("%d holdings, want 0", len(resp.Holdings))
		}
		if !resp.TotalValue.IsZero() {
			t.Errorf("total = %s, want 0", resp.TotalValue)
		}
	})

	t.Run("values holdings at current prices", func(t *testing.T) {
		repo := &fakeHoldingRepo{}
		prices := &fakePriceSource{prices: map[string]string{
			"bitcoin":  "40000",
			"ethereum": "2500",
		}}
		svc, _ := newPortfolioService(repo, prices)

		mustAdd := func(assetID, symbol, amount string) {
			t.Helper()
			if _, err := svc.Add(ctx, "u1", AddHoldingRequest{
				AssetID: assetID, Name: assetID, Symbol: symbol,
				Amount: decimal.RequireFromString(amount),
			}); err != nil {
				t.Fatalf("Add(%s) = %v", assetID, err)
			}
		}
		mustAdd("bitcoin", "btc", "0.5")
		mustAdd("ethereum", "eth", "4")

		resp, err := svc.Portfolio(ctx, "u1")
		if err != nil {
			t.Fatalf("Portfolio() = %v", err)
		}

		// 0.5*40000 + 4*2500 = 30000
		if want := decimal.RequireFromString("30000"); !resp.TotalValue.Equal(want) {
			t.Errorf("total = %s, want %s", resp.TotalValue, want)
		}
		if len(resp.Holdings) != 2 {
			t.Fatalf("%d holdings, want 2", len(resp.Holdings))
		}
		if want := decimal.RequireFromString("20000"); !resp.Holdings[0].Value.Equal(want) {
			t.Errorf("bitcoin value = %s, want %s", resp.Holdings[0].Value, want)
		}
	})

	t.Run("falls back to purchase price when feed is down", func(t *testing.T) {
		repo := &fakeHoldingRepo{}
		prices := &fakePriceSource{prices: map[string]string{"bitcoin": "40000"}}
		svc, _ := newPortfolioService(repo, prices)

		if _, err := svc.Add(ctx, "u1", AddHoldingRequest{
			AssetID: "bitcoin", Name: "Bitcoin", Symbol: "btc",
			Amount: decimal.RequireFromString("2"),
		}); err != nil {
			t.Fatalf("Add() = %v", err)
		}

		prices.fail = true

		resp, err := svc.Portfolio(ctx, "u1")
		if err != nil {
			t.Fatalf("Portfolio() = %v", err)
		}
		if want := decimal.RequireFromString("80000"); !resp.TotalValue.Equal(want) {
			t.Errorf("total = %s, want %s from purchase price", resp.TotalValue, want)
		}
		if want := decimal.RequireFromString("40000"); !resp.Holdings[0].CurrentPrice.Equal(want) {
			t.Errorf("current price = %s, want purchase price %s", resp.Holdings[0].CurrentPrice, want)
		}
	})
}
