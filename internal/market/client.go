// AngelaMos | 2026
// client.go

package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/carterperez-dev/coinvoice/internal/config"
)

// QuoteFetcher pulls fresh quotes from an upstream source.
type QuoteFetcher interface {
	FetchTopQuotes(ctx context.Context) ([]Quote, error)
}

// Client talks to a CoinGecko-compatible markets API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	vsCurrency string
	pageSize   int
}

func NewClient(cfg config.MarketConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		baseURL:    cfg.BaseURL,
		vsCurrency: cfg.VsCurrency,
		pageSize:   cfg.PageSize,
	}
}

// FetchTopQuotes returns the top markets by capitalization.
func (c *Client) FetchTopQuotes(ctx context.Context) ([]Quote, error) {
	endpoint, err := url.Parse(c.baseURL + "/coins/markets")
	if err != nil {
		return nil, fmt.Errorf("parse market url: %w", err)
	}

	params := url.Values{}
	params.Set("vs_currency", c.vsCurrency)
	params.Set("order", "market_cap_desc")
	params.Set("per_page", strconv.Itoa(c.pageSize))
	params.Set("page", "1")
	params.Set("sparkline", "false")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build market request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quotes: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch quotes: unexpected status %d", resp.StatusCode)
	}

	var quotes []Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}

	return quotes, nil
}

var _ QuoteFetcher = (*Client)(nil)
