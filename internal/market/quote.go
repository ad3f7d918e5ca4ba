// AngelaMos | 2026
// quote.go

package market

// Quote mirrors the upstream coins/markets payload for the fields the
// app uses. Prices stay float64 at this layer; portfolio valuation
// converts to decimal at the boundary.
type Quote struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	CurrentPrice      float64 `json:"current_price"`
	PriceChangePct24h float64 `json:"price_change_percentage_24h"`
	High24h           float64 `json:"high_24h"`
	Low24h            float64 `json:"low_24h"`
	MarketCap         float64 `json:"market_cap"`
}

// QuoteResponse is the plan-gated view of a quote. The 24h range is a
// paid feature and is omitted for free users.
type QuoteResponse struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Symbol            string   `json:"symbol"`
	CurrentPrice      float64  `json:"current_price"`
	PriceChangePct24h float64  `json:"price_change_percentage_24h"`
	High24h           *float64 `json:"high_24h,omitempty"`
	Low24h            *float64 `json:"low_24h,omitempty"`
}

// ToQuoteResponses maps quotes to the response shape, attaching the 24h
// range only when includeRange is set.
func ToQuoteResponses(quotes []Quote, includeRange bool) []QuoteResponse {
	out := make([]QuoteResponse, 0, len(quotes))
	for _, q := range quotes {
		resp := QuoteResponse{
			ID:                q.ID,
			Name:              q.Name,
			Symbol:            q.Symbol,
			CurrentPrice:      q.CurrentPrice,
			PriceChangePct24h: q.PriceChangePct24h,
		}
		if includeRange {
			high, low := q.High24h, q.Low24h
			resp.High24h = &high
			resp.Low24h = &low
		}
		out = append(out, resp)
	}
	return out
}
