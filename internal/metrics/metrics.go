// Package metrics enriches constructed strategy instances with max
// profit/loss, breakevens, probability of profit, net greeks, and the
// theta-decay estimate over the expected holding horizon.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/errors"
	"option-strategist/internal/models"
)

// Engine computes strategy-level metrics.
type Engine struct {
	cfg *config.MetricsConfig
	log zerolog.Logger
}

// New creates a metrics Engine.
func New(cfg *config.MetricsConfig, log zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

const thetaEps = 0.005

// Compute attaches metrics to the instance in place. A missing premium or
// greek aborts with a *errors.MetricsError; the caller discards the
// instance rather than persisting partial data.
func (e *Engine) Compute(inst *models.StrategyInstance, spot float64, iv models.IVProfile, asOf time.Time) error {
	if len(inst.Legs) == 0 {
		return errors.NewMetricsError(inst.Archetype, "legs")
	}
	for _, l := range inst.Legs {
		if l.Premium <= 0 {
			return errors.NewMetricsError(inst.Archetype, "premium")
		}
		if l.Greeks.Delta == 0 && l.Greeks.Gamma == 0 && l.Greeks.Theta == 0 && l.Greeks.Vega == 0 {
			return errors.NewMetricsError(inst.Archetype, "greeks")
		}
	}

	meta, ok := archetype.Get(inst.Archetype)
	if !ok {
		return errors.NewMetricsError(inst.Archetype, "archetype metadata")
	}

	inst.NetPremium = netPremium(inst)
	inst.Greeks = netGreeks(inst)
	inst.DTE = daysToExpiry(inst.NearestExpiry(), asOf)

	if meta.MultiExpiry {
		e.computeCalendar(inst)
	} else {
		e.computePayoff(inst, meta)
	}

	inst.Probability = e.probability(inst, meta, spot, iv)
	e.computeDecay(inst)

	return nil
}

// netPremium returns the per-share cash flow weighted by leg ratio:
// positive for a net credit.
func netPremium(inst *models.StrategyInstance) float64 {
	total := 0.0
	for _, l := range inst.Legs {
		total += l.Signed() * ratio(l, inst)
	}
	return total
}

func netGreeks(inst *models.StrategyInstance) models.NetGreeks {
	var g models.NetGreeks
	for _, l := range inst.Legs {
		sign := 1.0
		if l.Side == models.Short {
			sign = -1
		}
		r := ratio(l, inst)
		g.Delta += sign * r * l.Greeks.Delta
		g.Gamma += sign * r * l.Greeks.Gamma
		g.Theta += sign * r * l.Greeks.Theta
		g.Vega += sign * r * l.Greeks.Vega
	}
	return g
}

// ratio is the leg's contract multiple relative to one lot (2 for the
// doubled legs of butterflies and ratio spreads).
func ratio(l models.StrategyLeg, inst *models.StrategyInstance) float64 {
	if inst.LotSize <= 0 {
		return 1
	}
	return float64(l.Quantity) / float64(inst.LotSize)
}

// computePayoff derives max profit/loss and breakevens from the
// piecewise-linear expiry payoff. Everything follows from leg premiums
// and strikes alone; no external price is needed.
func (e *Engine) computePayoff(inst *models.StrategyInstance, meta archetype.Metadata) {
	samples := samplePoints(inst)
	lot := float64(inst.LotSize)

	maxPS := math.Inf(-1)
	minPS := math.Inf(1)
	for _, s := range samples {
		v := payoffPerShare(inst, s)
		maxPS = math.Max(maxPS, v)
		minPS = math.Min(minPS, v)
	}

	if upSlope(inst) > 1e-9 {
		inst.MaxProfit = models.UnboundedProfit
	} else {
		inst.MaxProfit = maxPS * lot
	}

	if !meta.DefinedRisk {
		inst.MaxLoss = models.UnboundedLoss
	} else {
		inst.MaxLoss = -minPS * lot
		if inst.MaxLoss < 0 {
			inst.MaxLoss = 0
		}
	}

	inst.Breakevens = breakevens(inst, samples)
}

// computeCalendar handles the multi-expiry shapes, whose expiry payoff is
// not a function of one terminal price. The debit bounds the loss; the
// profit potential is approximated by the near leg's full decay.
func (e *Engine) computeCalendar(inst *models.StrategyInstance) {
	lot := float64(inst.LotSize)
	debit := -inst.NetPremium // calendars are net debit
	if debit < 0 {
		debit = 0
	}

	var shortPremium, strike float64
	for _, l := range inst.Legs {
		if l.Side == models.Short {
			shortPremium = l.Premium
			strike = l.Strike
		}
	}

	inst.MaxLoss = debit * lot
	inst.MaxProfit = shortPremium * lot
	inst.Breakevens = []float64{strike - shortPremium, strike + shortPremium}
}

// samplePoints covers every kink of the payoff plus the far tails.
func samplePoints(inst *models.StrategyInstance) []float64 {
	maxStrike := 0.0
	set := map[float64]bool{0: true}
	for _, l := range inst.Legs {
		set[l.Strike] = true
		if l.Strike > maxStrike {
			maxStrike = l.Strike
		}
	}
	set[2*maxStrike] = true

	out := make([]float64, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Float64s(out)
	return out
}

// payoffPerShare evaluates the expiry payoff at underlying price s.
func payoffPerShare(inst *models.StrategyInstance, s float64) float64 {
	total := 0.0
	for _, l := range inst.Legs {
		intrinsic := 0.0
		if l.Type == models.Call && s > l.Strike {
			intrinsic = s - l.Strike
		}
		if l.Type == models.Put && s < l.Strike {
			intrinsic = l.Strike - s
		}
		sign := 1.0
		if l.Side == models.Short {
			sign = -1
		}
		total += sign * (intrinsic - l.Premium) * ratio(l, inst)
	}
	return total
}

// upSlope is the payoff slope above the highest strike.
func upSlope(inst *models.StrategyInstance) float64 {
	slope := 0.0
	for _, l := range inst.Legs {
		if l.Type != models.Call {
			continue
		}
		sign := 1.0
		if l.Side == models.Short {
			sign = -1
		}
		slope += sign * ratio(l, inst)
	}
	return slope
}

// breakevens finds the zero crossings of the piecewise-linear payoff.
func breakevens(inst *models.StrategyInstance, samples []float64) []float64 {
	var out []float64
	for i := 0; i < len(samples)-1; i++ {
		a, b := samples[i], samples[i+1]
		fa, fb := payoffPerShare(inst, a), payoffPerShare(inst, b)
		if fa == 0 {
			out = append(out, a)
			continue
		}
		if fa*fb < 0 {
			// Linear between kinks.
			out = append(out, a+(b-a)*fa/(fa-fb))
		}
	}
	// The payoff is linear beyond the last strike, so an outer crossing
	// can sit past the sampled tail; extend along the slope if needed.
	last := samples[len(samples)-1]
	fLast := payoffPerShare(inst, last)
	slope := upSlope(inst)
	if fLast != 0 && slope != 0 && fLast*slope < 0 {
		out = append(out, last-fLast/slope)
	}
	sort.Float64s(out)
	return dedupe(out)
}

func dedupe(xs []float64) []float64 {
	var out []float64
	for _, x := range xs {
		if len(out) == 0 || math.Abs(x-out[len(out)-1]) > 1e-9 {
			out = append(out, x)
		}
	}
	return out
}

func daysToExpiry(expiry time.Time, asOf time.Time) int {
	d := int(math.Ceil(expiry.Sub(asOf).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

// computeDecay estimates cumulative time-value erosion over the holding
// horizon. The decay rate accelerates as the remaining-time ratio shrinks
// (square-root curve), so a horizon that eats most of the DTE costs more
// per day than the calendar average.
func (e *Engine) computeDecay(inst *models.StrategyInstance) {
	if inst.DTE <= 0 {
		inst.DecayPercent = 0
		inst.ThetaCharacter = models.ThetaNeutral
		return
	}

	holding := e.cfg.HoldingDays
	if holding > inst.DTE {
		holding = inst.DTE
	}

	remaining := float64(inst.DTE-holding) / float64(inst.DTE)
	accel := 2 - math.Sqrt(remaining)

	decayCost := math.Abs(inst.Greeks.Theta) * float64(holding) * accel

	basis := math.Abs(inst.NetPremium)
	if basis == 0 && !models.IsUnbounded(inst.MaxProfit) && inst.MaxProfit > 0 {
		basis = inst.MaxProfit / float64(inst.LotSize)
	}
	if basis > 0 {
		inst.DecayPercent = clamp(decayCost/basis*100, 0, 100)
	}

	switch {
	case inst.Greeks.Theta > thetaEps:
		inst.ThetaCharacter = models.ThetaPositive
	case inst.Greeks.Theta < -thetaEps:
		inst.ThetaCharacter = models.ThetaNegative
	default:
		inst.ThetaCharacter = models.ThetaNeutral
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
