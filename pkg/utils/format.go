// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"

	"option-strategist/internal/models"
)

// FormatCurrency formats a dollar amount with thousands separators.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	str := fmt.Sprintf("%.2f", amount)
	parts := strings.Split(str, ".")
	result := "$" + groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	s = s[:n-3]
	for len(s) > 3 {
		result = s[len(s)-3:] + "," + result
		s = s[:len(s)-3]
	}
	return s + "," + result
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatProbability formats a 0..1 probability as a percentage.
func FormatProbability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// FormatBound formats a max profit or loss figure, rendering the
// unbounded sentinel as "unlimited".
func FormatBound(v float64) string {
	if models.IsUnbounded(v) {
		return "unlimited"
	}
	return FormatCurrency(v)
}

// FormatStrike formats a strike price, dropping trailing zeros.
func FormatStrike(strike float64) string {
	if strike == float64(int64(strike)) {
		return fmt.Sprintf("%d", int64(strike))
	}
	return fmt.Sprintf("%.2f", strike)
}

// FormatLeg renders one strategy leg as a compact one-liner.
func FormatLeg(l models.StrategyLeg) string {
	return fmt.Sprintf("%s %dx %s %s @ %s",
		l.Side, l.Quantity, FormatStrike(l.Strike), l.Type, FormatCurrency(l.Premium))
}

// Truncate shortens a string to max runes with an ellipsis.
func Truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
