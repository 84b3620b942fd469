package construct

import (
	"fmt"

	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// straddle builds long and short straddles: a call and a put at the same
// ATM strike and expiry.
type straddle struct {
	name string
	side models.PositionSide
}

func (b straddle) Name() string { return b.name }

func (b straddle) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote, "chain has no expiries")
	}

	calls := usable(chain, expiry, models.Call, p)
	puts := usable(chain, expiry, models.Put, p)
	if len(calls) == 0 || len(puts) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}

	call, ok := atm(calls, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}
	put, ok := chainPut(puts, call.Strike)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote,
			fmt.Sprintf("no put at straddle strike %.2f", call.Strike))
	}

	rationale := describeStrike(call, p.Spot)
	legs := []models.StrategyLeg{
		newLeg(call, b.side, p.Cfg.LotSize, rationale),
		newLeg(put, b.side, p.Cfg.LotSize, rationale),
	}
	return newInstance(b.name, legs, p), nil
}

// chainPut finds the put at exactly the given strike.
func chainPut(puts []models.OptionQuote, strike float64) (models.OptionQuote, bool) {
	for _, q := range puts {
		if q.Strike == strike {
			return q, true
		}
	}
	return models.OptionQuote{}, false
}

// strangle builds long and short strangles: an OTM call above spot and
// an OTM put below it, both picked by the strangle delta target.
type strangle struct {
	name string
	side models.PositionSide
}

func (b strangle) Name() string { return b.name }

func (b strangle) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote, "chain has no expiries")
	}

	calls := usable(chain, expiry, models.Call, p)
	puts := usable(chain, expiry, models.Put, p)
	if len(calls) == 0 || len(puts) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}

	call, okC := byDelta(otmCalls(calls, p.Spot), p.Cfg.StrangleDelta)
	put, okP := byDelta(otmPuts(puts, p.Spot), p.Cfg.StrangleDelta)
	if !okC || !okP {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes,
			"no OTM wing near strangle delta")
	}
	if put.Strike >= call.Strike {
		return nil, errors.NewConstructionError(b.name, errors.ReasonBadStrikeOrder,
			fmt.Sprintf("put %.2f not below call %.2f", put.Strike, call.Strike))
	}

	legs := []models.StrategyLeg{
		newLeg(call, b.side, p.Cfg.LotSize,
			fmt.Sprintf("call delta %.2f near target %.2f", call.Delta, p.Cfg.StrangleDelta)),
		newLeg(put, b.side, p.Cfg.LotSize,
			fmt.Sprintf("put delta %.2f near target %.2f", put.Delta, p.Cfg.StrangleDelta)),
	}
	return newInstance(b.name, legs, p), nil
}

func otmCalls(quotes []models.OptionQuote, spot float64) []models.OptionQuote {
	var out []models.OptionQuote
	for _, q := range quotes {
		if q.Strike > spot {
			out = append(out, q)
		}
	}
	return out
}

func otmPuts(quotes []models.OptionQuote, spot float64) []models.OptionQuote {
	var out []models.OptionQuote
	for _, q := range quotes {
		if q.Strike < spot {
			out = append(out, q)
		}
	}
	return out
}
