package symbols

import "strings"

// Exchange suffixes carried by watch-list tickers. BSE is the primary
// market; NSE is the alternate used when the primary yields no usable data.
const (
	BSESuffix = ".BO"
	NSESuffix = ".NS"
)

// Base strips the exchange suffix from a ticker symbol.
// "RELIANCE.BO" and "RELIANCE.NS" both yield "RELIANCE".
func Base(ticker string) string {
	ticker = strings.TrimSpace(ticker)
	if i := strings.LastIndex(ticker, "."); i > 0 {
		return ticker[:i]
	}
	return ticker
}

// IsBSE reports whether the ticker carries the primary-market suffix
func IsBSE(ticker string) bool {
	return strings.HasSuffix(ticker, BSESuffix)
}

// ToNSE rewrites a primary-market ticker to its alternate-market form.
// Tickers without the BSE suffix are returned unchanged.
func ToNSE(ticker string) string {
	if IsBSE(ticker) {
		return strings.TrimSuffix(ticker, BSESuffix) + NSESuffix
	}
	return ticker
}

// Normalize trims and uppercases a raw watch-list symbol
func Normalize(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// IsValid checks that a symbol has a non-empty base of plausible characters
func IsValid(ticker string) bool {
	base := Base(ticker)
	if len(base) == 0 {
		return false
	}
	for _, c := range base {
		if !((c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '&') {
			return false
		}
	}
	return true
}
