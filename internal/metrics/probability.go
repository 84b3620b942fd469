package metrics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"option-strategist/internal/archetype"
	"option-strategist/internal/models"
)

var stdNormal = distuv.Normal{Mu: 0, Sigma: 1}

// probability estimates the chance the underlying expires inside the
// strategy's profitable zone, via a lognormal move sized by ATM implied
// volatility and DTE and drifting at the configured risk-free rate.
// Archetype shapes then apply their documented floors and ceilings. The
// formulas are deliberately the heuristic ones the ranking depends on,
// not a full pricing model.
func (e *Engine) probability(inst *models.StrategyInstance, meta archetype.Metadata, spot float64, iv models.IVProfile) float64 {
	sigmaT := sigmaForHorizon(iv.ATMIV, inst.DTE)
	if sigmaT <= 0 || spot <= 0 {
		return e.cfg.ProbabilityFloor
	}
	drift := driftForHorizon(e.cfg.RiskFreeRate, iv.ATMIV, inst.DTE)

	var pop float64
	if meta.MultiExpiry {
		pop = bandProbability(inst, spot, sigmaT, drift)
	} else {
		pop = zoneProbability(inst, spot, sigmaT, drift)
	}

	// Short-premium shapes lean on the short strike delta, which embeds
	// the market's own odds of the strike being reached.
	if short, ok := shortStrikeDelta(inst); ok && inst.NetPremium > 0 {
		pop = (pop + (1 - short)) / 2
	}

	switch {
	case meta.Category == archetype.Volatility:
		// Long premium needs a move; cap the estimate.
		pop = math.Min(pop, e.cfg.StraddleCap)
	case !meta.DefinedRisk:
		pop = math.Min(pop, e.cfg.NakedShortCap)
	}

	return clamp(pop, e.cfg.ProbabilityFloor, e.cfg.ProbabilityCeiling)
}

// sigmaForHorizon converts an annualized IV percentage into the standard
// deviation of the log move over dte days.
func sigmaForHorizon(atmIVPercent float64, dte int) float64 {
	if atmIVPercent <= 0 || dte <= 0 {
		return 0
	}
	return atmIVPercent / 100 * math.Sqrt(float64(dte)/365)
}

// driftForHorizon is the mean log move over dte days: risk-free carry
// less the lognormal variance correction.
func driftForHorizon(rate, atmIVPercent float64, dte int) float64 {
	sigma := atmIVPercent / 100
	return (rate - sigma*sigma/2) * float64(dte) / 365
}

// zoneProbability integrates the lognormal density over every interval
// where the expiry payoff is positive.
func zoneProbability(inst *models.StrategyInstance, spot, sigmaT, drift float64) float64 {
	bounds := append([]float64{}, inst.Breakevens...)
	sort.Float64s(bounds)

	// Interval edges: 0, breakevens..., +inf.
	edges := make([]float64, 0, len(bounds)+2)
	edges = append(edges, 0)
	edges = append(edges, bounds...)
	edges = append(edges, math.Inf(1))

	total := 0.0
	for i := 0; i < len(edges)-1; i++ {
		lo, hi := edges[i], edges[i+1]
		if !profitableBetween(inst, lo, hi) {
			continue
		}
		total += cdfLognormal(hi, spot, sigmaT, drift) - cdfLognormal(lo, spot, sigmaT, drift)
	}
	return total
}

// bandProbability is the lognormal mass between the outer breakevens.
// Multi-expiry payoffs are not a function of one terminal price, so the
// profitable zone comes straight from the calendar breakevens rather
// than from payoff sampling, which would net the same-strike legs to a
// constant.
func bandProbability(inst *models.StrategyInstance, spot, sigmaT, drift float64) float64 {
	if len(inst.Breakevens) < 2 {
		return 0
	}
	bounds := append([]float64{}, inst.Breakevens...)
	sort.Float64s(bounds)
	lo, hi := bounds[0], bounds[len(bounds)-1]
	return cdfLognormal(hi, spot, sigmaT, drift) - cdfLognormal(lo, spot, sigmaT, drift)
}

// profitableBetween checks the payoff sign at a representative point of
// the interval.
func profitableBetween(inst *models.StrategyInstance, lo, hi float64) bool {
	var probe float64
	switch {
	case math.IsInf(hi, 1):
		top := 0.0
		for _, l := range inst.Legs {
			if l.Strike > top {
				top = l.Strike
			}
		}
		probe = math.Max(lo, top) * 1.5
		if probe == 0 {
			probe = 1
		}
	case lo == 0:
		probe = hi / 2
	default:
		probe = (lo + hi) / 2
	}
	return payoffPerShare(inst, probe) > 0
}

// cdfLognormal is P(S_T <= x) under a lognormal move with the given
// log-space drift.
func cdfLognormal(x, spot, sigmaT, drift float64) float64 {
	if x <= 0 {
		return 0
	}
	if math.IsInf(x, 1) {
		return 1
	}
	return stdNormal.CDF((math.Log(x/spot) - drift) / sigmaT)
}

// shortStrikeDelta returns the largest absolute delta among short legs.
func shortStrikeDelta(inst *models.StrategyInstance) (float64, bool) {
	best := 0.0
	found := false
	for _, l := range inst.Legs {
		if l.Side != models.Short {
			continue
		}
		d := math.Abs(l.Greeks.Delta)
		if d > best {
			best = d
		}
		found = true
	}
	return best, found
}
