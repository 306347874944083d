package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatRupiah formats a price as a string like "Rp 15.000".
// Uses dot as thousands separator and comma before decimals (common in Indonesia).
// Fractions are rounded to two places and trailing zeros are dropped.
func FormatRupiah(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}

	neg := price < 0
	cents := int64(math.Round(math.Abs(price) * 100))
	whole := cents / 100
	frac := cents % 100

	var b strings.Builder
	b.WriteString("Rp ")
	if neg && cents != 0 {
		b.WriteString("-")
	}
	b.WriteString(groupThousands(whole))
	if frac != 0 {
		b.WriteString(",")
		b.WriteString(strings.TrimRight(fmt.Sprintf("%02d", frac), "0"))
	}
	return b.String()
}

// groupThousands inserts a dot every three digits from the right
func groupThousands(amount int64) string {
	s := strconv.FormatInt(amount, 10)
	if len(s) <= 3 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3)

	// Insert separators from the left.
	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte('.')
		b.WriteString(s[i : i+3])
	}

	return b.String()
}
