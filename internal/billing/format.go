package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount with two decimals and Indian digit grouping,
// e.g. 1234567.5 -> "12,34,567.50".
func FormatINR(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	raw := d.Abs().StringFixed(2)

	parts := strings.SplitN(raw, ".", 2)
	out := groupIndian(parts[0]) + "." + parts[1]
	if negative {
		out = "-" + out
	}
	return out
}

// groupIndian puts the last three digits in one group and every two before
// that in their own.
func groupIndian(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
