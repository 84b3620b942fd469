package construct

import (
	"fmt"

	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// singleLeg builds the four one-leg archetypes. Long legs target the
// configured single-leg delta (near ATM); short premium legs target the
// lower short delta so the strike sits out of the money.
type singleLeg struct {
	name string
	typ  models.OptionType
	side models.PositionSide
}

func (b singleLeg) Name() string { return b.name }

func (b singleLeg) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
	expiry, ok := frontExpiry(chain)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonMissingQuote, "chain has no expiries")
	}

	quotes := usable(chain, expiry, b.typ, p)
	if len(quotes) == 0 {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoStrikesNearSpot, "")
	}

	target := p.Cfg.DeltaTargetSingle
	if b.side == models.Short {
		target = p.Cfg.DeltaTargetShort
	}

	q, ok := byDelta(quotes, target)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}

	rationale := fmt.Sprintf("delta %.2f near target %.2f, %s", q.Delta, target, describeStrike(q, p.Spot))
	leg := newLeg(q, b.side, p.Cfg.LotSize, rationale)

	return newInstance(b.name, []models.StrategyLeg{leg}, p), nil
}
