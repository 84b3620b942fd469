// Package rank orders scored strategy instances by a weighted
// multi-factor total and applies the hard quality filters.
package rank

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/models"
)

// Ranker assigns component scores and a weighted total to each instance.
type Ranker struct {
	weights config.RankWeights
	log     zerolog.Logger
}

// New creates a Ranker.
func New(weights config.RankWeights, log zerolog.Logger) *Ranker {
	return &Ranker{weights: weights, log: log}
}

// Result is the ranked, filtered output. FilteredOut makes silently
// dropped instances visible to callers.
type Result struct {
	Ranked      []*models.StrategyInstance
	FilteredOut int
}

// Rank scores every instance, sorts, then applies the hard filters.
// Filters run after scoring so a filtered instance still carries its full
// component breakdown for observability.
func (r *Ranker) Rank(instances []*models.StrategyInstance, mc models.MarketContext, iv models.IVProfile, q config.QualityThresholds) Result {
	for _, inst := range instances {
		r.score(inst, mc, iv)
	}

	sort.SliceStable(instances, func(i, j int) bool {
		if instances[i].TotalScore != instances[j].TotalScore {
			return instances[i].TotalScore > instances[j].TotalScore
		}
		if instances[i].Probability != instances[j].Probability {
			return instances[i].Probability > instances[j].Probability
		}
		return priorityOf(instances[i]) > priorityOf(instances[j])
	})

	var survivors []*models.StrategyInstance
	for _, inst := range instances {
		if r.passes(inst, q) {
			survivors = append(survivors, inst)
		} else {
			r.log.Debug().
				Str("archetype", inst.Archetype).
				Float64("score", inst.TotalScore).
				Float64("probability", inst.Probability).
				Msg("Instance filtered out")
		}
	}

	return Result{Ranked: survivors, FilteredOut: len(instances) - len(survivors)}
}

func (r *Ranker) score(inst *models.StrategyInstance, mc models.MarketContext, iv models.IVProfile) {
	inst.Scores = models.ComponentScores{
		Probability: inst.Probability,
		RiskReward:  riskRewardScore(inst),
		Direction:   directionScore(inst, mc),
		IVFit:       ivFitScore(inst, iv),
		Liquidity:   liquidityScore(inst),
	}

	w := r.weights
	totalWeight := w.Probability + w.RiskReward + w.Direction + w.IVFit + w.Liquidity
	if totalWeight == 0 {
		inst.TotalScore = 0
		return
	}
	inst.TotalScore = (inst.Scores.Probability*w.Probability +
		inst.Scores.RiskReward*w.RiskReward +
		inst.Scores.Direction*w.Direction +
		inst.Scores.IVFit*w.IVFit +
		inst.Scores.Liquidity*w.Liquidity) / totalWeight
}

func (r *Ranker) passes(inst *models.StrategyInstance, q config.QualityThresholds) bool {
	if inst.Probability < q.MinProbability {
		return false
	}
	if inst.TotalScore < q.MinScore {
		return false
	}
	if rrForFilter(inst) < q.MinRiskReward {
		return false
	}
	return true
}

// riskRewardScore maps max profit over max loss into [0,1]. Unbounded
// sentinels get fixed scores: open-ended profit is attractive, open-ended
// loss is not.
func riskRewardScore(inst *models.StrategyInstance) float64 {
	if models.IsUnbounded(inst.MaxProfit) {
		return 0.85
	}
	if models.IsUnbounded(inst.MaxLoss) {
		return 0.25
	}
	rr := inst.RiskReward()
	return rr / (rr + 1)
}

// rrForFilter is the risk/reward value the hard filter compares against.
// Unbounded shapes use the same fixed stand-ins as the score so the
// filter treats them consistently.
func rrForFilter(inst *models.StrategyInstance) float64 {
	if models.IsUnbounded(inst.MaxProfit) {
		return math.Inf(1)
	}
	if models.IsUnbounded(inst.MaxLoss) {
		return 0.25
	}
	return inst.RiskReward()
}

// directionScore is confidence times bias match.
func directionScore(inst *models.StrategyInstance, mc models.MarketContext) float64 {
	meta, ok := archetype.Get(inst.Archetype)
	if !ok {
		return 0
	}
	match := 0.2
	if meta.MatchesBias(mc.Direction) {
		match = 1.0
	} else if meta.MatchesBias(models.Neutral) {
		match = 0.5
	}
	return clamp(mc.Confidence*match, 0, 1)
}

func ivFitScore(inst *models.StrategyInstance, iv models.IVProfile) float64 {
	meta, ok := archetype.Get(inst.Archetype)
	if !ok {
		return 0
	}
	if iv.Prefers(inst.Archetype) {
		return 1.0
	}
	if meta.MatchesIV(iv.Environment) {
		return 0.9
	}
	if adjacentBand(meta, iv.Environment) {
		return 0.5
	}
	return 0.25
}

// adjacentBand treats NORMAL as the neighbor of every band.
func adjacentBand(meta archetype.Metadata, env models.IVEnvironment) bool {
	if env == models.IVNormal {
		return true
	}
	return meta.MatchesIV(models.IVNormal)
}

// liquidityScore blends spread tightness, open interest, and volume
// across legs; the worst leg dominates because it is the one that must
// fill.
func liquidityScore(inst *models.StrategyInstance) float64 {
	worst := 1.0
	for _, l := range inst.Legs {
		worst = math.Min(worst, legLiquidity(l))
	}
	return worst
}

func legLiquidity(l models.StrategyLeg) float64 {
	mid := (l.Bid + l.Ask) / 2
	if mid <= 0 {
		return 0
	}

	spreadRatio := (l.Ask - l.Bid) / mid
	spreadScore := clamp(1-spreadRatio*5, 0, 1)
	oiScore := math.Min(float64(l.OpenInterest)/1000, 1)
	volScore := math.Min(float64(l.Volume)/500, 1)

	return clamp(0.4*spreadScore+0.4*oiScore+0.2*volScore, 0, 1)
}

func priorityOf(inst *models.StrategyInstance) float64 {
	meta, ok := archetype.Get(inst.Archetype)
	if !ok {
		return 0
	}
	return meta.Priority
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
