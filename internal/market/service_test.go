// AngelaMos | 2026
// service_test.go

package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/coinvoice/internal/config"
	"github.com/carterperez-dev/coinvoice/internal/core"
)

// deadCache returns a client pointed at nothing, so every cache call
// fails fast and the service has to take its degraded paths.
func deadCache() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            "127.0.0.1:1",
		DialTimeout:     10 * time.Millisecond,
		ReadTimeout:     10 * time.Millisecond,
		WriteTimeout:    10 * time.Millisecond,
		MaxRetries:      -1,
		PoolTimeout:     10 * time.Millisecond,
		MinRetryBackoff: -1,
		MaxRetryBackoff: -1,
	})
}

type failingFetcher struct{}

func (failingFetcher) FetchTopQuotes(context.Context) ([]Quote, error) {
	return nil, errors.New("upstream unavailable")
}

func newDegradedService(t *testing.T) *Service {
	t.Helper()

	cache := deadCache()
	t.Cleanup(func() { _ = cache.Close() })

	return NewService(
		failingFetcher{},
		cache,
		config.MarketConfig{RefreshInterval: 5 * time.Minute, CacheTTL: 10 * time.Minute},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestQuotesFallsBackWhenEverythingIsDown(t *testing.T) {
	svc := newDegradedService(t)

	quotes, err := svc.Quotes(context.Background())
	if err != nil {
		t.Fatalf("Quotes() = %v, want nil even with cache and feed down", err)
	}

	if len(quotes) != 5 {
		t.Fatalf("%d fallback quotes, want 5", len(quotes))
	}

	wantIDs := []string{"bitcoin", "ethereum", "cardano", "solana", "binancecoin"}
	for i, id := range wantIDs {
		if quotes[i].ID != id {
			t.Errorf("quote[%d].ID = %q, want %q", i, quotes[i].ID, id)
		}
	}

	if quotes[0].CurrentPrice != 45218.75 {
		t.Errorf("bitcoin fallback price = %v, want 45218.75", quotes[0].CurrentPrice)
	}
	if quotes[2].PriceChangePct24h != -0.78 {
		t.Errorf("cardano fallback change = %v, want -0.78", quotes[2].PriceChangePct24h)
	}
}

func TestSearch(t *testing.T) {
	svc := newDegradedService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		query   string
		wantIDs []string
	}{
		{"empty query returns all", "", []string{"bitcoin", "ethereum", "cardano", "solana", "binancecoin"}},
		{"match by name prefix", "bit", []string{"bitcoin"}},
		{"match is case insensitive", "SOL", []string{"solana"}},
		{"match by symbol", "eth", []string{"ethereum"}},
		{"substring matches multiple", "an", []string{"cardano", "solana", "binancecoin"}},
		{"no match returns empty", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes, err := svc.Search(ctx, tt.query)
			if err != nil {
				t.Fatalf("Search(%q) = %v", tt.query, err)
			}

			if len(quotes) != len(tt.wantIDs) {
				t.Fatalf("Search(%q) returned %d quotes, want %d", tt.query, len(quotes), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if quotes[i].ID != id {
					t.Errorf("Search(%q)[%d] = %q, want %q", tt.query, i, quotes[i].ID, id)
				}
			}
		})
	}
}

func TestCurrentPrice(t *testing.T) {
	svc := newDegradedService(t)
	ctx := context.Background()

	price, err := svc.CurrentPrice(ctx, "ethereum")
	if err != nil {
		t.Fatalf("CurrentPrice() = %v", err)
	}
	if price.String() != "2415.67" {
		t.Errorf("price = %s, want 2415.67", price)
	}

	_, err = svc.CurrentPrice(ctx, "unknown-coin")
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("CurrentPrice(unknown) = %v, want ErrNotFound", err)
	}
}

func TestPing(t *testing.T) {
	svc := newDegradedService(t)
	ctx := context.Background()

	if err := svc.Ping(ctx); err == nil {
		t.Error("Ping() = nil before any refresh, want error")
	}

	svc.lastRefresh.Store(time.Now().Unix())
	if err := svc.Ping(ctx); err != nil {
		t.Errorf("Ping() fresh = %v, want nil", err)
	}

	svc.lastRefresh.Store(time.Now().Add(-time.Hour).Unix())
	if err := svc.Ping(ctx); err == nil {
		t.Error("Ping() stale = nil, want error after 3 missed intervals")
	}
}

func TestClientFetchTopQuotes(t *testing.T) {
	t.Run("parses upstream payload", func(t *testing.T) {
		var gotQuery string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":61234.5,
				 "price_change_percentage_24h":1.2,"high_24h":62000,"low_24h":60000,
				 "market_cap":1200000000000}
			]`))
		}))
		defer server.Close()

		client := NewClient(config.MarketConfig{
			BaseURL:      server.URL,
			VsCurrency:   "usd",
			PageSize:     20,
			FetchTimeout: time.Second,
		})

		quotes, err := client.FetchTopQuotes(context.Background())
		if err != nil {
			t.Fatalf("FetchTopQuotes() = %v", err)
		}
		if len(quotes) != 1 {
			t.Fatalf("%d quotes, want 1", len(quotes))
		}
		if quotes[0].ID != "bitcoin" || quotes[0].CurrentPrice != 61234.5 {
			t.Errorf("quote = %+v", quotes[0])
		}
		if quotes[0].High24h != 62000 || quotes[0].Low24h != 60000 {
			t.Errorf("range = %v/%v, want 62000/60000", quotes[0].High24h, quotes[0].Low24h)
		}

		params, err := url.ParseQuery(gotQuery)
		if err != nil {
			t.Fatalf("parse query: %v", err)
		}
		for key, want := range map[string]string{
			"vs_currency": "usd",
			"per_page":    "20",
			"order":       "market_cap_desc",
		} {
			if got := params.Get(key); got != want {
				t.Errorf("query param %s = %q, want %q", key, got, want)
			}
		}
	})

	t.Run("non-200 is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(config.MarketConfig{
			BaseURL:      server.URL,
			VsCurrency:   "usd",
			PageSize:     20,
			FetchTimeout: time.Second,
		})

		if _, err := client.FetchTopQuotes(context.Background()); err == nil {
			t.Error("FetchTopQuotes() = nil, want error on 429")
		}
	})
}

func TestToQuoteResponses(t *testing.T) {
	quotes := FallbackQuotes()[:2]

	free := ToQuoteResponses(quotes, false)
	if free[0].High24h != nil || free[0].Low24h != nil {
		t.Error("24h range exposed to free users")
	}

	pro := ToQuoteResponses(quotes, true)
	if pro[0].High24h == nil || *pro[0].High24h != 45500 {
		t.Errorf("pro high = %v, want 45500", pro[0].High24h)
	}
	if pro[1].Low24h == nil || *pro[1].Low24h != 2380 {
		t.Errorf("pro low = %v, want 2380", pro[1].Low24h)
	}
}
