package models

import (
	"sort"
	"time"
)

// OptionQuote is one row of an option chain snapshot: a single
// (strike, expiry, type) contract with quotes and greeks. Quotes are
// immutable once loaded; the engine never mutates a snapshot.
type OptionQuote struct {
	Strike       float64    `json:"strike"`
	Expiry       time.Time  `json:"expiry"`
	Type         OptionType `json:"option_type"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	LastPrice    float64    `json:"last_price"`
	OpenInterest int64      `json:"open_interest"`
	Volume       int64      `json:"volume"`
	Delta        float64    `json:"delta"`
	Gamma        float64    `json:"gamma"`
	Theta        float64    `json:"theta"`
	Vega         float64    `json:"vega"`
	IV           float64    `json:"implied_volatility"` // percent
}

// Mid returns the bid/ask midpoint, falling back to the last traded
// price when one side of the book is empty.
func (q OptionQuote) Mid() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return q.LastPrice
}

// HasGreeks reports whether the quote carries a usable greek snapshot.
func (q OptionQuote) HasGreeks() bool {
	return q.Delta != 0 || q.Gamma != 0 || q.Theta != 0 || q.Vega != 0
}

// OptionChain is the normalized per-symbol option chain snapshot handed
// to the engine once per analysis run.
type OptionChain struct {
	Symbol     string        `json:"symbol"`
	SpotPrice  float64       `json:"spot_price"`
	CapturedAt time.Time     `json:"captured_at"`
	Quotes     []OptionQuote `json:"quotes"`
}

// Expiries returns the distinct expiries present in the chain, ascending.
func (c *OptionChain) Expiries() []time.Time {
	seen := make(map[time.Time]bool)
	var out []time.Time
	for _, q := range c.Quotes {
		if !seen[q.Expiry] {
			seen[q.Expiry] = true
			out = append(out, q.Expiry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// QuotesFor returns the quotes of one type for one expiry, sorted by strike.
func (c *OptionChain) QuotesFor(expiry time.Time, typ OptionType) []OptionQuote {
	var out []OptionQuote
	for _, q := range c.Quotes {
		if q.Type == typ && q.Expiry.Equal(expiry) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// Quote looks up a single contract. The second return is false when the
// (strike, expiry, type) triple is not in the snapshot.
func (c *OptionChain) Quote(strike float64, expiry time.Time, typ OptionType) (OptionQuote, bool) {
	for _, q := range c.Quotes {
		if q.Type == typ && q.Strike == strike && q.Expiry.Equal(expiry) {
			return q, true
		}
	}
	return OptionQuote{}, false
}

// ATMStrike returns the listed strike closest to spot for the expiry.
// Returns 0 when the expiry has no quotes.
func (c *OptionChain) ATMStrike(expiry time.Time) float64 {
	best := 0.0
	bestDist := -1.0
	for _, q := range c.Quotes {
		if !q.Expiry.Equal(expiry) {
			continue
		}
		dist := q.Strike - c.SpotPrice
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist {
			best = q.Strike
			bestDist = dist
		}
	}
	return best
}
