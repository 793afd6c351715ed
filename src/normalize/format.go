package normalize

import (
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed-point scale of vote weights.
const TokenDecimals = 18

const (
	// TimestampLayout formats comment times.
	TimestampLayout = "2006-01-02 15:04:05 UTC"
	UnknownTime     = "Unknown"
	PreviewRunes    = 200
)

// FormatVotes converts base units to tokens with two decimals. Missing and
// negative weights format as "0.00".
func FormatVotes(v *big.Int) string {
	if v == nil || v.Sign() <= 0 {
		return "0.00"
	}
	return decimal.NewFromBigInt(v, -TokenDecimals).StringFixed(2)
}

// ParseVotes reads a formatted vote string back. Unparseable input is zero.
func ParseVotes(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatTimestamp renders Unix seconds in UTC. Zero is unknown.
func FormatTimestamp(sec int64) string {
	if sec <= 0 {
		return UnknownTime
	}
	return time.Unix(sec, 0).UTC().Format(TimestampLayout)
}

// Truncate shortens s to n runes, appending "..." when something was cut.
func Truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}
