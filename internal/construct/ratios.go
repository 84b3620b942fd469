package construct

import (
	"fmt"

	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// ratioSpread builds the 1x2 front ratios: buy one near ATM, sell two
// further out. The extra short leg leaves the shape undefined-risk.
type ratioSpread struct {
	name string
	typ  models.OptionType
}

func (b ratioSpread) Name() string { return b.name }

func (b ratioSpread) Construct(chain *models.OptionChain, p Params) (*models.StrategyInstance, error) {
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

	long, ok := atm(quotes, p.Spot)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonNoLiquidStrikes, "")
	}

	steps := p.Cfg.SpreadWidthSteps
	if b.typ == models.Put {
		steps = -steps // put ratio sells the lower strikes
	}
	short, ok := offset(quotes, long.Strike, steps)
	if !ok {
		return nil, errors.NewConstructionError(b.name, errors.ReasonInsufficientSpread,
			"no short strike at configured width")
	}

	legs := []models.StrategyLeg{
		newLeg(long, models.Long, p.Cfg.LotSize, "long body near ATM"),
		newLeg(short, models.Short, 2*p.Cfg.LotSize, "short 2x, finances the body"),
	}
	return newInstance(b.name, legs, p), nil
}
