// AngelaMos | 2026
// fallback.go

package market

// FallbackQuotes is the static quote set served when the upstream API is
// unreachable and the cache is empty. Stale numbers beat an empty market
// page.
func FallbackQuotes() []Quote {
	return []Quote{
		{
			ID:                "bitcoin",
			Name:              "Bitcoin",
			Symbol:            "btc",
			CurrentPrice:      45218.75,
			PriceChangePct24h: 2.34,
			High24h:           45500,
			Low24h:            44800,
		},
		{
			ID:                "ethereum",
			Name:              "Ethereum",
			Symbol:            "eth",
			CurrentPrice:      2415.67,
			PriceChangePct24h: 1.56,
			High24h:           2450,
			Low24h:            2380,
		},
		{
			ID:                "cardano",
			Name:              "Cardano",
			Symbol:            "ada",
			CurrentPrice:      0.5123,
			PriceChangePct24h: -0.78,
			High24h:           0.52,
			Low24h:            0.50,
		},
		{
			ID:                "solana",
			Name:              "Solana",
			Symbol:            "sol",
			CurrentPrice:      98.45,
			PriceChangePct24h: 5.23,
			High24h:           100,
			Low24h:            95,
		},
		{
			ID:                "binancecoin",
			Name:              "Binance Coin",
			Symbol:            "bnb",
			CurrentPrice:      312.89,
			PriceChangePct24h: 0.92,
			High24h:           315,
			Low24h:            310,
		},
	}
}
