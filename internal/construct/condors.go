package construct

import (
	"fmt"

	"option-strategist/internal/archetype"
	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// ironCondor sells an OTM call spread and an OTM put spread: short
// strikes at the short-delta target, long wings a configured width
// further out.
type ironCondor struct{}

func (ironCondor) Name() string { return archetype.IronCondor }

func (b ironCondor) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonMissingQuote, "chain has no expiries")
	}

	calls := usable(chain, expiry, models.Call, p)
	puts := usable(chain, expiry, models.Put, p)
	if len(calls) == 0 || len(puts) == 0 {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonNoStrikesNearSpot, "")
	}

	shortCall, okSC := byDelta(otmCalls(calls, p.Spot), p.Cfg.DeltaTargetShort)
	shortPut, okSP := byDelta(otmPuts(puts, p.Spot), p.Cfg.DeltaTargetShort)
	if !okSC || !okSP {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonNoLiquidStrikes,
			"no OTM short strikes near target delta")
	}

	longCall, okLC := offset(calls, shortCall.Strike, p.Cfg.SpreadWidthSteps)
	longPut, okLP := offset(puts, shortPut.Strike, -p.Cfg.SpreadWidthSteps)
	if !okLC || !okLP {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonInsufficientSpread,
			"no wings at configured width")
	}
	if shortPut.Strike >= shortCall.Strike {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonBadStrikeOrder,
			fmt.Sprintf("short put %.2f not below short call %.2f", shortPut.Strike, shortCall.Strike))
	}

	legs := []models.StrategyLeg{
		newLeg(shortCall, models.Short, p.Cfg.LotSize,
			fmt.Sprintf("short call delta %.2f", shortCall.Delta)),
		newLeg(longCall, models.Long, p.Cfg.LotSize, "call wing"),
		newLeg(shortPut, models.Short, p.Cfg.LotSize,
			fmt.Sprintf("short put delta %.2f", shortPut.Delta)),
		newLeg(longPut, models.Long, p.Cfg.LotSize, "put wing"),
	}
	return newInstance(b.Name(), legs, p), nil
}

// ironButterfly sells the ATM straddle and buys wings either side.
type ironButterfly struct{}

func (ironButterfly) Name() string { return archetype.IronButterfly }

func (b ironButterfly) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonMissingQuote, "chain has no expiries")
	}

	calls := usable(chain, expiry, models.Call, p)
	puts := usable(chain, expiry, models.Put, p)
	if len(calls) == 0 || len(puts) == 0 {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonNoStrikesNearSpot, "")
	}

	body, ok := atm(calls, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonNoLiquidStrikes, "")
	}
	bodyPut, ok := chainPut(puts, body.Strike)
	if !ok {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonMissingQuote,
			fmt.Sprintf("no put at body strike %.2f", body.Strike))
	}

	wingWidth := p.Spot * p.Cfg.WingWidthPercent
	callWing, okC := nearestStrikeAbove(calls, body.Strike+wingWidth)
	putWing, okP := nearestStrikeBelow(puts, body.Strike-wingWidth)
	if !okC || !okP {
		return nil, errors.NewConstructionError(b.Name(), errors.ReasonInsufficientSpread,
			"no wings at configured width")
	}

	legs := []models.StrategyLeg{
		newLeg(body, models.Short, p.Cfg.LotSize, "short ATM call"),
		newLeg(bodyPut, models.Short, p.Cfg.LotSize, "short ATM put"),
		newLeg(callWing, models.Long, p.Cfg.LotSize, "call wing"),
		newLeg(putWing, models.Long, p.Cfg.LotSize, "put wing"),
	}
	return newInstance(b.Name(), legs, p), nil
}

// butterfly builds the 1-2-1 single-type butterfly around ATM.
type butterfly struct {
	name string
	typ  models.OptionType
}

func (b butterfly) Name() string { return b.name }

func (b butterfly) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote, "chain has no expiries")
	}

	quotes := usable(chain, expiry, b.typ, p)
	if len(quotes) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}
	if len(quotes) < 3 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			fmt.Sprintf("need 3 liquid strikes, have %d", len(quotes)))
	}

	body, ok := atm(quotes, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}
	lower, okL := offset(quotes, body.Strike, -p.Cfg.SpreadWidthSteps)
	upper, okU := offset(quotes, body.Strike, p.Cfg.SpreadWidthSteps)
	if !okL || !okU {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			"no symmetric wings at configured width")
	}

	legs := []models.StrategyLeg{
		newLeg(lower, models.Long, p.Cfg.LotSize, "lower wing"),
		newLeg(body, models.Short, 2*p.Cfg.LotSize, "short body, 2x"),
		newLeg(upper, models.Long, p.Cfg.LotSize, "upper wing"),
	}
	return newInstance(b.name, legs, p), nil
}
