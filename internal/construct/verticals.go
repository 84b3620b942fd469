package construct

import (
	"fmt"

	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// vertical builds the four two-leg same-expiry spreads. Debit spreads
// anchor the long leg near ATM and sell a strike further out; credit
// spreads anchor the short leg at the short-delta target and buy the
// protective wing beyond it.
type vertical struct {
	name    string
	typ     models.OptionType
	credit  bool
	bullish bool
}

func (b vertical) Name() string { return b.name }

func (b vertical) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote, "chain has no expiries")
	}

	quotes := usable(chain, expiry, b.typ, p)
	if len(quotes) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}
	if len(quotes) < 2 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			fmt.Sprintf("only %d liquid strike(s)", len(quotes)))
	}

	if b.credit {
		return b.constructCredit(quotes, p)
	}
	return b.constructDebit(quotes, p)
}

// constructDebit: long near ATM, short further in the favorable direction.
func (b vertical) constructDebit(quotes []models.OptionQuote, p Params) (*models.StrategyInstance, error) {
	anchor, ok := atm(quotes, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}

	steps := p.Cfg.SpreadWidthSteps
	if !b.bullish {
		steps = -steps // bear put spread sells the lower strike
	}
	wing, ok := offset(quotes, anchor.Strike, steps)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			"no strike at configured width")
	}

	legs := []models.StrategyLeg{
		newLeg(anchor, models.Long, p.Cfg.LotSize, fmt.Sprintf("anchor %s", describeStrike(anchor, p.Spot))),
		newLeg(wing, models.Short, p.Cfg.LotSize, fmt.Sprintf("caps cost, %d strikes out", p.Cfg.SpreadWidthSteps)),
	}
	return newInstance(b.name, legs, p), nil
}

// constructCredit: short at the short-delta target, long wing beyond it.
// When delta matching resolves the strikes into an invalid ordering the
// assignment is swapped rather than failed.
func (b vertical) constructCredit(quotes []models.OptionQuote, p Params) (*models.StrategyInstance, error) {
	short, ok := byDelta(quotes, p.Cfg.DeltaTargetShort)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}

	steps := -p.Cfg.SpreadWidthSteps // bull put: wing below the short put
	if !b.bullish {
		steps = p.Cfg.SpreadWidthSteps // bear call: wing above the short call
	}
	long, ok := offset(quotes, short.Strike, steps)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			"no protective wing at configured width")
	}

	// A credit spread needs the short strike on the expensive side:
	// above the long for puts, below it for calls. Swap instead of fail.
	if b.typ == models.Put && short.Strike < long.Strike {
		short, long = long, short
	}
	if b.typ == models.Call && short.Strike > long.Strike {
		short, long = long, short
	}
	if short.Strike == long.Strike {
		return nil, errors.NewConstructionError(b.name, errors.ReasonBadStrikeOrder, "legs resolve to one strike")
	}

	legs := []models.StrategyLeg{
		newLeg(short, models.Short, p.Cfg.LotSize,
			fmt.Sprintf("short delta %.2f near target %.2f", short.Delta, p.Cfg.DeltaTargetShort)),
		newLeg(long, models.Long, p.Cfg.LotSize, "protective wing"),
	}
	return newInstance(b.name, legs, p), nil
}
