package symbols

import "strings"

// Category classifies an instrument by asset class. It is informational
// only — the monitor itself treats every instrument uniformly — but
// downstream reporting and risk dashboards group positions by it.
type Category string

const (
	CategoryForexMajor  Category = "FOREX_MAJOR"
	CategoryForexMinor  Category = "FOREX_MINOR"
	CategoryForexExotic Category = "FOREX_EXOTIC"
	CategoryCrypto      Category = "CRYPTO"
	CategoryMetals      Category = "METALS"
	CategoryCommodities Category = "COMMODITIES"
	CategoryIndices     Category = "INDICES"
	CategoryUnknown     Category = "UNKNOWN"
)

var majorForexPairs = map[string]bool{
	"EURUSD": true, "GBPUSD": true, "USDJPY": true, "USDCHF": true,
	"AUDUSD": true, "NZDUSD": true, "USDCAD": true,
}

var exoticCurrencies = []string{"TRY", "ZAR", "MXN", "THB", "CNH", "PLN", "CZK", "HUF", "NOK", "SEK", "DKK", "HKD", "SGD"}

var cryptoAssets = []string{"BTC", "ETH", "BNB", "SOL", "XRP", "LTC", "DOGE", "ADA", "DOT", "AVAX", "ATOM"}

var metalPrefixes = []string{"XAU", "XAG", "XPT", "XPD", "XCU"}

var commodityPatterns = []string{"BCO", "WTICO", "NATGAS", "CORN", "WHEAT", "SUGAR", "SOYBN"}

var indexPatterns = []string{"US30", "NAS100", "SPX500", "JP225", "DE30", "UK100", "FR40", "EU50", "AU200"}

var majorCurrencies = []string{
	"USD", "EUR", "GBP", "JPY", "AUD", "NZD", "CAD", "CHF",
	"HKD", "SGD", "NOK", "SEK", "DKK", "PLN", "CZK", "HUF",
	"TRY", "ZAR", "MXN", "THB", "CNH",
}

// DetectCategory classifies an InstrumentSymbol by common naming patterns.
func DetectCategory(instrument InstrumentSymbol) Category {
	s := strings.ToUpper(string(instrument))

	for _, prefix := range metalPrefixes {
		if strings.HasPrefix(s, prefix) {
			return CategoryMetals
		}
	}

	for _, pattern := range cryptoAssets {
		if strings.Contains(s, pattern) {
			return CategoryCrypto
		}
	}

	for _, pattern := range indexPatterns {
		if strings.Contains(s, pattern) {
			return CategoryIndices
		}
	}

	for _, pattern := range commodityPatterns {
		if strings.Contains(s, pattern) {
			return CategoryCommodities
		}
	}

	currencyCount := 0
	for _, cur := range majorCurrencies {
		if strings.Contains(s, cur) {
			currencyCount++
		}
	}

	if currencyCount >= 2 && len(s) >= 6 && len(s) <= 7 {
		if majorForexPairs[s] {
			return CategoryForexMajor
		}
		for _, exotic := range exoticCurrencies {
			if strings.Contains(s, exotic) {
				return CategoryForexExotic
			}
		}
		return CategoryForexMinor
	}

	return CategoryUnknown
}
