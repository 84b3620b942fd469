// Package utils provides shared utility functions.
package utils

import (
	"math"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"option-strategist/internal/models"
)

func TestProperty_CurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	groupPattern := regexp.MustCompile(`^(\d{1,3})(,\d{3})*$`)

	properties.Property("FormatCurrency produces grouped dollar format", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}
			if math.Abs(amount) > 1e15 {
				return true
			}

			formatted := FormatCurrency(amount)

			if amount >= 0 {
				if !strings.HasPrefix(formatted, "$") {
					t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
					return false
				}
			} else if !strings.HasPrefix(formatted, "-$") {
				t.Logf("Expected -$ prefix for %f, got %s", amount, formatted)
				return false
			}

			parts := strings.Split(formatted, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}

			numPart := strings.TrimPrefix(parts[0], "-")
			numPart = strings.TrimPrefix(numPart, "$")
			if !groupPattern.MatchString(numPart) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatCurrency preserves value", prop.ForAll(
		func(amount float64) bool {
			if math.IsNaN(amount) || math.IsInf(amount, 0) {
				return true
			}

			formatted := FormatCurrency(amount)
			parsed := parseCurrency(formatted)

			rounded := math.Round(amount*100) / 100
			if math.Abs(parsed-rounded) > 0.01 {
				t.Logf("Value not preserved: original=%f, formatted=%s, parsed=%f", amount, formatted, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatProbability stays a one-decimal percentage", prop.ForAll(
		func(p float64) bool {
			formatted := FormatProbability(p)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			body := strings.TrimSuffix(formatted, "%")
			dot := strings.Index(body, ".")
			return dot >= 0 && len(body)-dot-1 == 1
		},
		gen.Float64Range(0, 1),
	))

	properties.TestingRun(t)
}

// parseCurrency parses a formatted dollar string back to float64.
func parseCurrency(s string) float64 {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	var parsed float64
	for i, c := range s {
		if c == '.' {
			decPart := s[i+1:]
			for j, d := range decPart {
				if d >= '0' && d <= '9' {
					parsed += float64(d-'0') / math.Pow(10, float64(j+1))
				}
			}
			break
		}
		if c >= '0' && c <= '9' {
			parsed = parsed*10 + float64(c-'0')
		}
	}

	if negative {
		parsed = -parsed
	}
	return parsed
}

func TestFormatCurrencyExamples(t *testing.T) {
	testCases := []struct {
		amount   float64
		expected string
	}{
		{0, "$0.00"},
		{1, "$1.00"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{12345.67, "$12,345.67"},
		{1000000, "$1,000,000.00"},
		{-1234.56, "-$1,234.56"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if result := FormatCurrency(tc.amount); result != tc.expected {
				t.Errorf("FormatCurrency(%f) = %s, want %s", tc.amount, result, tc.expected)
			}
		})
	}
}

func TestFormatPercentExamples(t *testing.T) {
	testCases := []struct {
		value    float64
		expected string
	}{
		{0, "0.00%"},
		{1.5, "+1.50%"},
		{-2.5, "-2.50%"},
		{100, "+100.00%"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			if result := FormatPercent(tc.value); result != tc.expected {
				t.Errorf("FormatPercent(%f) = %s, want %s", tc.value, result, tc.expected)
			}
		})
	}
}

func TestFormatBound(t *testing.T) {
	if got := FormatBound(models.UnboundedLoss); got != "unlimited" {
		t.Errorf("FormatBound(sentinel) = %q, want unlimited", got)
	}
	if got := FormatBound(1250); got != "$1,250.00" {
		t.Errorf("FormatBound(1250) = %q", got)
	}
}

func TestFormatStrike(t *testing.T) {
	testCases := []struct {
		strike   float64
		expected string
	}{
		{100, "100"},
		{1500, "1500"},
		{102.5, "102.50"},
		{99.75, "99.75"},
	}
	for _, tc := range testCases {
		if got := FormatStrike(tc.strike); got != tc.expected {
			t.Errorf("FormatStrike(%v) = %q, want %q", tc.strike, got, tc.expected)
		}
	}
}

func TestFormatLeg(t *testing.T) {
	l := models.StrategyLeg{
		Side: models.Short, Type: models.Put, Strike: 1500,
		Premium: 42.15, Quantity: 50,
		Expiry: time.Date(2026, 4, 1, 15, 30, 0, 0, time.UTC),
	}
	want := "SHORT 50x 1500 PUT @ $42.15"
	if got := FormatLeg(l); got != want {
		t.Errorf("FormatLeg = %q, want %q", got, want)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("Truncate(short, 10) = %q", got)
	}
	if got := Truncate("a long description that keeps going", 10); got != "a long ..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("abc", 3); got != "abc" {
		t.Errorf("Truncate(abc, 3) = %q", got)
	}
}
