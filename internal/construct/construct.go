// Package construct builds concrete multi-leg strategy instances from an
// option chain snapshot. One builder per archetype; builders are selected
// through a lookup table keyed by archetype name.
package construct

import (
	"fmt"
	"math"
	"time"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// Params carries the per-run inputs shared by every builder.
type Params struct {
	Spot   float64
	Market models.MarketContext
	IV     models.IVProfile
	Cfg    *config.ConstructionConfig
}

// Builder constructs one archetype from a chain snapshot. A failed
// precondition yields a typed *errors.ConstructionError, never a partial
// instance.
type Builder interface {
	Name() string
	Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error)
}

var builders = map[string]Builder{}

func register(b Builder) {
	builders[b.Name()] = b
}

func init() {
	// Single legs
	register(singleLeg{name: archetype.LongCall, typ: models.Call, side: models.Long})
	register(singleLeg{name: archetype.LongPut, typ: models.Put, side: models.Long})
	register(singleLeg{name: archetype.ShortPut, typ: models.Put, side: models.Short})
	register(singleLeg{name: archetype.ShortCall, typ: models.Call, side: models.Short})
	// Verticals
	register(vertical{name: archetype.BullCallSpread, typ: models.Call, credit: false, bullish: true})
	register(vertical{name: archetype.BearPutSpread, typ: models.Put, credit: false, bullish: false})
	register(vertical{name: archetype.BullPutSpread, typ: models.Put, credit: true, bullish: true})
	register(vertical{name: archetype.BearCallSpread, typ: models.Call, credit: true, bullish: false})
	// Straddles and strangles
	register(straddle{name: archetype.LongStraddle, side: models.Long})
	register(straddle{name: archetype.ShortStraddle, side: models.Short})
	register(strangle{name: archetype.LongStrangle, side: models.Long})
	register(strangle{name: archetype.ShortStrangle, side: models.Short})
	// Wings
	register(ironCondor{})
	register(ironButterfly{})
	register(butterfly{name: archetype.CallButterfly, typ: models.Call})
	register(butterfly{name: archetype.PutButterfly, typ: models.Put})
	// Multi-expiry
	register(calendar{name: archetype.CallCalendar, typ: models.Call, diagonal: false})
	register(calendar{name: archetype.PutCalendar, typ: models.Put, diagonal: false})
	register(calendar{name: archetype.CallDiagonal, typ: models.Call, diagonal: true})
	register(calendar{name: archetype.PutDiagonal, typ: models.Put, diagonal: true})
	// Ratios
	register(ratioSpread{name: archetype.CallRatioSpread, typ: models.Call})
	register(ratioSpread{name: archetype.PutRatioSpread, typ: models.Put})
}

// For returns the builder registered for an archetype name.
func For(name string) (Builder, bool) {
	b, ok := builders[name]
	return b, ok
}

// Build dispatches to the registered builder for name.
func Build(name string, chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	b, ok := builders[name]
	if !ok {
		return nil, errors.NewConstructionError(name, errors.ReasonUnknownArchetype, "")
	}
	return b.Construct(chain, p)
}

// liquid reports whether a quote is tradeable: both sides of the book
// present and open interest above the configured floor.
func liquid(q models.OptionQuote, cfg *config.ConstructionConfig) bool {
	return q.Bid > 0 && q.Ask > 0 && q.Mid() > 0 && q.OpenInterest >= cfg.MinOpenInterest
}

// nearSpot reports whether a strike sits within the configured distance
// of the spot price.
func nearSpot(strike, spot float64, cfg *config.ConstructionConfig) bool {
	return math.Abs(strike-spot)/spot <= cfg.MaxStrikeDistance
}

// usable returns the liquid, near-spot quotes of one type for one expiry,
// sorted by strike.
func usable(chain *models.OptionChain, expiry time.Time, typ models.OptionType, p Params) []models.OptionQuote {
	var out []models.OptionQuote
	for _, q := range chain.QuotesFor(expiry, typ) {
		if liquid(q, p.Cfg) && nearSpot(q.Strike, p.Spot, p.Cfg) {
			out = append(out, q)
		}
	}
	return out
}

// byDelta picks the quote whose absolute delta is closest to target.
func byDelta(quotes []models.OptionQuote, target float64) (models.OptionQuote, bool) {
	best := models.OptionQuote{}
	bestDist := -1.0
	for _, q := range quotes {
		dist := math.Abs(math.Abs(q.Delta) - target)
		if bestDist < 0 || dist < bestDist {
			best = q
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

// atm picks the quote whose strike is closest to spot.
func atm(quotes []models.OptionQuote, spot float64) (models.OptionQuote, bool) {
	best := models.OptionQuote{}
	bestDist := -1.0
	for _, q := range quotes {
		dist := math.Abs(q.Strike - spot)
		if bestDist < 0 || dist < bestDist {
			best = q
			bestDist = dist
		}
	}
	return best, bestDist >= 0
}

// offset walks steps liquid strikes away from fromStrike: positive steps
// up, negative down. Returns false when the chain runs out of strikes.
func offset(quotes []models.OptionQuote, fromStrike float64, steps int) (models.OptionQuote, bool) {
	idx := -1
	for i, q := range quotes {
		if q.Strike == fromStrike {
			idx = i
			break
		}
	}
	if idx < 0 {
		return models.OptionQuote{}, false
	}
	target := idx + steps
	if target < 0 || target >= len(quotes) {
		return models.OptionQuote{}, false
	}
	return quotes[target], true
}

// nearestStrikeAbove returns the first liquid strike at or above price.
func nearestStrikeAbove(quotes []models.OptionQuote, price float64) (models.OptionQuote, bool) {
	for _, q := range quotes {
		if q.Strike >= price {
			return q, true
		}
	}
	return models.OptionQuote{}, false
}

// nearestStrikeBelow returns the last liquid strike at or below price.
func nearestStrikeBelow(quotes []models.OptionQuote, price float64) (models.OptionQuote, bool) {
	for i := len(quotes) - 1; i >= 0; i-- {
		if quotes[i].Strike <= price {
			return quotes[i], true
		}
	}
	return models.OptionQuote{}, false
}

// frontExpiry returns the nearest expiry in the chain.
func frontExpiry(chain *models.OptionChain) (time.Time, bool) {
	exps := chain.Expiries()
	if len(exps) == 0 {
		return time.Time{}, false
	}
	return exps[0], true
}

// expiryPair returns the two nearest distinct expiries. Multi-expiry
// archetypes hard-fail when the chain holds fewer than two.
func expiryPair(chain *models.OptionChain) (near, far time.Time, ok bool) {
	exps := chain.Expiries()
	if len(exps) < 2 {
		return time.Time{}, time.Time{}, false
	}
	return exps[0], exps[1], true
}

// newLeg snapshots a quote into a strategy leg.
func newLeg(q models.OptionQuote, side models.PositionSide, qty int, rationale string) models.StrategyLeg {
	return models.StrategyLeg{
		Type:         q.Type,
		Side:         side,
		Strike:       q.Strike,
		Expiry:       q.Expiry,
		Premium:      q.Mid(),
		Quantity:     qty,
		Bid:          q.Bid,
		Ask:          q.Ask,
		OpenInterest: q.OpenInterest,
		Volume:       q.Volume,
		Greeks:       models.LegGreeks{Delta: q.Delta, Gamma: q.Gamma, Theta: q.Theta, Vega: q.Vega},
		Rationale:    rationale,
	}
}

// newInstance assembles the shell instance for an archetype; metrics are
// attached later by the metrics engine.
func newInstance(name string, legs []models.StrategyLeg, p Params) *models.StrategyInstance {
	meta, _ := archetype.Get(name)
	return &models.StrategyInstance{
		Archetype: name,
		Category:  string(meta.Category),
		Legs:      legs,
		LotSize:   p.Cfg.LotSize,
	}
}

func describeStrike(q models.OptionQuote, spot float64) string {
	pct := (q.Strike - spot) / spot * 100
	switch {
	case pct > 0.5:
		return fmt.Sprintf("%.1f%% above spot", pct)
	case pct < -0.5:
		return fmt.Sprintf("%.1f%% below spot", -pct)
	default:
		return "at the money"
	}
}
