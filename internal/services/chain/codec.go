package chain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TinybarPerHbar is the contract's fixed price scale: 10^8 subunits per
// whole HBAR. The round trip is lossy beyond 8 decimal places.
const TinybarPerHbar = 100_000_000

var tinybarScale = decimal.NewFromInt(TinybarPerHbar)

// ToTinybar encodes an HBAR amount into tinybar, rounding half away from
// zero to match the contract's stored representation.
func ToTinybar(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(tinybarScale).Round(0).IntPart()
}

// FromTinybar decodes a tinybar amount back into HBAR.
func FromTinybar(tinybar int64) float64 {
	f, _ := decimal.NewFromInt(tinybar).Div(tinybarScale).Float64()
	return f
}

// SanitizeOptional maps the contract's empty-string convention for unset
// fields onto Go's zero value.
func SanitizeOptional(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	return value
}
