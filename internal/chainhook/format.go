package chainhook

import (
	"encoding/json"
	"strconv"
	"strings"
)

// MicroToSTX converts a microSTX amount in any of the shapes print payloads
// produce (uint64, int64, float64, json.Number, decimal string) to STX.
// Unrecognized shapes yield 0.
func MicroToSTX(amount interface{}) float64 {
	switch v := amount.(type) {
	case uint64:
		return float64(v) / MicroSTXFactor
	case int64:
		return float64(v) / MicroSTXFactor
	case int:
		return float64(v) / MicroSTXFactor
	case float64:
		return v / MicroSTXFactor
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f / MicroSTXFactor
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f / MicroSTXFactor
	default:
		return 0
	}
}

// FormatSTX renders a microSTX amount for display: thousands-grouped integer
// part, at least two and at most six fraction digits.
func FormatSTX(amount interface{}) string {
	stx := MicroToSTX(amount)

	frac := strconv.FormatFloat(stx, 'f', 6, 64)
	dot := strings.IndexByte(frac, '.')
	intPart, fracPart := frac[:dot], frac[dot+1:]
	fracPart = strings.TrimRight(fracPart, "0")
	for len(fracPart) < 2 {
		fracPart += "0"
	}

	return groupThousands(intPart) + "." + fracPart
}

func groupThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteByte(s[i])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// ShortAddress abbreviates an address for log and message text.
func ShortAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8] + "..."
}
