// Package exits derives the exit rulebook for a scored strategy
// instance: profit target tiers, stop loss, time exits, greek triggers,
// adjustment plays, and a monitoring plan.
package exits

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/models"
)

// thetaTargetShift is how many percentage points the primary profit
// target moves when theta works against or for the position.
const thetaTargetShift = 10.0

// Generator builds ExitConditionSets from category templates.
type Generator struct {
	cfg config.ExitConfig
	log zerolog.Logger
}

func New(cfg config.ExitConfig, log zerolog.Logger) *Generator {
	return &Generator{cfg: cfg, log: log}
}

// Generate produces the exit rulebook for one instance. The set is
// derived from the instance's category template, then adjusted for its
// theta character and leg structure.
func (g *Generator) Generate(inst *models.StrategyInstance) models.ExitConditionSet {
	cat := archetype.Category(inst.Category)
	tpl := g.templateFor(cat)

	set := models.ExitConditionSet{
		ProfitTargets:   profitTargets(inst, tpl),
		StopLossPercent: tpl.StopLossPercent,
		TimeExits:       timeExits(inst, tpl),
		GreekTriggers:   greekTriggers(cat, tpl),
		Adjustments:     adjustments(inst),
		Monitoring:      monitoring(inst, cat, tpl),
	}

	g.log.Debug().
		Str("archetype", inst.Archetype).
		Float64("primary_target", set.PrimaryTarget().Percent).
		Int("exit_dte", set.TimeExits.ExitDTE).
		Msg("Exit conditions generated")
	return set
}

func (g *Generator) templateFor(cat archetype.Category) config.ExitTemplate {
	switch cat {
	case archetype.Directional:
		return g.cfg.Directional
	case archetype.NeutralCat:
		return g.cfg.Neutral
	case archetype.Volatility:
		return g.cfg.Volatility
	case archetype.Income:
		return g.cfg.Income
	default:
		return g.cfg.Advanced
	}
}

// profitTargets builds the tier ladder. Defined-risk multi-leg shapes
// scale out in three tiers; single legs and undefined-risk shapes close
// in full at the primary target, since partial closes there leave the
// open-ended tail in place.
func profitTargets(inst *models.StrategyInstance, tpl config.ExitTemplate) []models.ProfitTarget {
	base, reason := adjustedTarget(inst, tpl)

	if len(inst.Legs) < 2 || !inst.DefinedRisk() {
		return []models.ProfitTarget{
			{Percent: base, ClosePercent: 100, Reasoning: reason},
		}
	}

	return []models.ProfitTarget{
		{Percent: base, ClosePercent: 50, Reasoning: reason},
		{
			Percent:      math.Min(base+25, 90),
			ClosePercent: 25,
			Reasoning:    "scale out as the position approaches max value",
		},
		{
			Percent:      math.Min(base+40, 95),
			ClosePercent: 25,
			Reasoning:    "close the remainder before pin risk dominates the last few points",
		},
	}
}

// adjustedTarget shifts the template target by the position's theta
// character. Decay-negative positions must earn more to cover their
// carrying cost; decay-positive positions bank steady gains and lock in
// earlier.
func adjustedTarget(inst *models.StrategyInstance, tpl config.ExitTemplate) (float64, string) {
	base := tpl.ProfitTargetPercent
	switch inst.ThetaCharacter {
	case models.ThetaNegative:
		return math.Min(base+thetaTargetShift, 95),
			fmt.Sprintf("target raised to %.0f%%: time decay costs %.1f%% of premium over the holding period, the move must pay for it", math.Min(base+thetaTargetShift, 95), inst.DecayPercent)
	case models.ThetaPositive:
		return math.Max(base-thetaTargetShift, 25),
			fmt.Sprintf("target lowered to %.0f%%: decay accrues in your favor, lock gains before gamma risk grows", math.Max(base-thetaTargetShift, 25))
	default:
		return base, fmt.Sprintf("standard %.0f%% target for %s strategies", base, inst.Category)
	}
}

func timeExits(inst *models.StrategyInstance, tpl config.ExitTemplate) models.TimeExits {
	short := hasShortLegs(inst)
	guard := 0
	if short {
		guard = 5
	}
	accel := tpl.ExitDTE
	if accel < 21 {
		accel = 21
	}
	return models.TimeExits{
		ExitDTE:            tpl.ExitDTE,
		ThetaAccelDTE:      accel,
		AssignmentGuardDTE: guard,
		HasShortLegs:       short,
	}
}

func greekTriggers(cat archetype.Category, tpl config.ExitTemplate) []models.GreekTrigger {
	triggers := []models.GreekTrigger{
		{
			Greek:     "delta",
			Threshold: tpl.DeltaThreshold,
			Action:    deltaAction(cat),
		},
	}

	switch cat {
	case archetype.NeutralCat, archetype.Income:
		triggers = append(triggers, models.GreekTrigger{
			Greek:     "gamma",
			Threshold: 0.05,
			Action:    "gamma risk rising into expiry, tighten monitoring or close early",
		})
	case archetype.Volatility:
		triggers = append(triggers, models.GreekTrigger{
			Greek:     "vega",
			Threshold: 0.10,
			Action:    "iv contraction is eroding the position, reassess the volatility thesis",
		})
	}
	return triggers
}

func deltaAction(cat archetype.Category) string {
	switch cat {
	case archetype.Directional:
		return "the move has largely played out, take profits or tighten the stop"
	case archetype.NeutralCat, archetype.Income:
		return "position picked up directional exposure, recenter or close"
	case archetype.Volatility:
		return "one side dominates, consider closing the losing leg"
	default:
		return "net delta breached the band, rebalance the structure"
	}
}

func monitoring(inst *models.StrategyInstance, cat archetype.Category, tpl config.ExitTemplate) models.MonitoringPlan {
	freq := "weekly"
	if inst.DTE <= 10 {
		freq = "daily"
	} else if inst.DTE <= 30 {
		freq = "every other day"
	}

	metrics := []string{"underlying price", "net delta", "position P&L"}
	switch cat {
	case archetype.Volatility:
		metrics = append(metrics, "atm implied volatility")
	case archetype.Income, archetype.NeutralCat:
		metrics = append(metrics, "short strike distance", "days to expiry")
	}

	return models.MonitoringPlan{
		Frequency:  freq,
		KeyMetrics: metrics,
		AlertThresholds: map[string]float64{
			"delta":          tpl.DeltaThreshold,
			"loss_percent":   tpl.StopLossPercent,
			"profit_percent": tpl.ProfitTargetPercent,
		},
	}
}

func hasShortLegs(inst *models.StrategyInstance) bool {
	for _, l := range inst.Legs {
		if l.Side == models.Short {
			return true
		}
	}
	return false
}
