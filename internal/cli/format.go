package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	maskPrefixLen = 12
	maskSuffixLen = 4
	maskMinLen    = maskPrefixLen + maskSuffixLen + 1
)

// MaskAPIKey hides the middle of a key for display: the first 12 and
// last 4 characters stay visible, the rest becomes '•'. Keys of 8
// characters or fewer are returned unchanged (they carry no secret
// worth masking, e.g. test fixtures).
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return key
	}
	if len(key) < maskMinLen {
		// Prefix and suffix would overlap; mask everything past the
		// first 8 characters instead of revealing the whole key.
		return key[:8] + strings.Repeat("•", len(key)-8)
	}
	masked := len(key) - maskPrefixLen - maskSuffixLen
	return key[:maskPrefixLen] + strings.Repeat("•", masked) + key[len(key)-maskSuffixLen:]
}

// FormatCents renders a cent amount as dollars, e.g. 1234 -> "$12.34".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// FormatTimestamp renders an RFC 3339 backend timestamp in the local
// timezone. Unparseable values are shown as-is rather than dropped.
func FormatTimestamp(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04")
}

// FormatKeyStatus renders an API key's active flag with color.
func FormatKeyStatus(active bool) string {
	if active {
		return text.FgGreen.Sprint("active")
	}
	return text.FgRed.Sprint("revoked")
}

// FormatTransactionAmount colors ledger amounts: deposits green,
// usage red.
func FormatTransactionAmount(txType string, cents int64) string {
	switch txType {
	case "deposit", "refund":
		return text.FgGreen.Sprint("+" + FormatCents(cents))
	default:
		return text.FgRed.Sprint("-" + FormatCents(cents))
	}
}

// ParseDollars converts a user-entered dollar amount to cents,
// rounding to the nearest cent: "19.99" parses to the float
// 19.989999..., and truncation would shave a cent off the deposit.
func ParseDollars(amount string) (int64, error) {
	dollars, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil || math.IsNaN(dollars) || math.IsInf(dollars, 0) {
		return 0, fmt.Errorf("invalid amount %q, expected a dollar value like 20 or 12.50", amount)
	}
	if dollars <= 0 {
		return 0, fmt.Errorf("invalid amount %q, expected a positive dollar value", amount)
	}
	return int64(math.Round(dollars * 100)), nil
}
