package construct

import (
	"fmt"

	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// calendar builds the four multi-expiry archetypes: sell the near expiry,
// buy the far one. Calendars use the same strike on both expiries;
// diagonals shift the long leg one width in the trade's direction.
// The chain must hold at least two distinct expiries; fewer is a hard
// failure for this archetype only, not for the run.
type calendar struct {
	name     string
	typ      models.OptionType
	diagonal bool
}

func (b calendar) Name() string { return b.name }

func (b calendar) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	near, far, ok := expiryPair(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientExpiry,
			fmt.Sprintf("chain holds %d expiry(ies), need 2", len(chain.Expiries())))
	}

	nearQuotes := usable(chain, near, b.typ, p)
	farQuotes := usable(chain, far, b.typ, p)
	if len(nearQuotes) == 0 || len(farQuotes) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}

	short, ok := atm(nearQuotes, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}

	var long models.OptionQuote
	if b.diagonal {
		// Diagonal: long leg one width beyond, direction set by type.
		steps := p.Cfg.SpreadWidthSteps
		if b.typ == models.Put {
			steps = -steps
		}
		target := short.Strike + float64(steps)*strikeStep(farQuotes)
		var okFar bool
		if steps > 0 {
			long, okFar = nearestStrikeAbove(farQuotes, target)
		} else {
			long, okFar = nearestStrikeBelow(farQuotes, target)
		}
		if !okFar {
			return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
				"no diagonal strike on far expiry")
		}
	} else {
		var okFar bool
		long, okFar = sameStrike(farQuotes, short.Strike)
		if !okFar {
			return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote,
				fmt.Sprintf("far expiry lacks strike %.2f", short.Strike))
		}
	}

	legs := []models.StrategyLeg{
		newLeg(short, models.Short, p.Cfg.LotSize,
			fmt.Sprintf("near expiry %s, decays first", near.Format("2006-01-02"))),
		newLeg(long, models.Long, p.Cfg.LotSize,
			fmt.Sprintf("far expiry %s, retains value", far.Format("2006-01-02"))),
	}
	return newInstance(b.name, legs, p), nil
}

// sameStrike finds the quote at exactly the given strike.
func sameStrike(quotes []models.OptionQuote, strike float64) (models.OptionQuote, bool) {
	for _, q := range quotes {
		if q.Strike == strike {
			return q, true
		}
	}
	return models.OptionQuote{}, false
}

// strikeStep estimates the strike interval of a sorted quote list.
func strikeStep(quotes []models.OptionQuote) float64 {
	if len(quotes) < 2 {
		return 0
	}
	return quotes[1].Strike - quotes[0].Strike
}
