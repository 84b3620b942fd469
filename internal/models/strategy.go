package models

import (
	"math"
	"time"
)

// UnboundedLoss is the sentinel max-loss value for naked short archetypes.
// Defined-risk archetypes always carry a finite MaxLoss.
var UnboundedLoss = math.Inf(1)

// UnboundedProfit is the sentinel max-profit value for long single-leg
// archetypes whose upside is open-ended.
var UnboundedProfit = math.Inf(1)

// IsUnbounded reports whether v is one of the unbounded sentinels.
func IsUnbounded(v float64) bool {
	return math.IsInf(v, 1)
}

// LegGreeks is the greek snapshot captured for a leg at construction time.
type LegGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// StrategyLeg is one option position within a strategy. Legs are owned by
// the StrategyInstance that created them and are never mutated afterwards.
type StrategyLeg struct {
	Type         OptionType   `json:"option_type"`
	Side         PositionSide `json:"position"`
	Strike       float64      `json:"strike"`
	Expiry       time.Time    `json:"expiry"`
	Premium      float64      `json:"premium"` // per share, entry midpoint
	Quantity     int          `json:"quantity"`
	Bid          float64      `json:"bid"`
	Ask          float64      `json:"ask"`
	OpenInterest int64        `json:"open_interest"`
	Volume       int64        `json:"volume"`
	Greeks       LegGreeks    `json:"greeks"`
	Rationale    string       `json:"rationale"`
}

// Signed returns the premium cash flow per share: positive for credit
// (short legs), negative for debit (long legs).
func (l StrategyLeg) Signed() float64 {
	if l.Side == Short {
		return l.Premium
	}
	return -l.Premium
}

// NetGreeks is the position-level greek aggregate across legs.
type NetGreeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}

// ComponentScores holds the sub-scores that feed the ranking total.
// All components are normalized to [0,1].
type ComponentScores struct {
	Probability float64 `json:"probability"`
	RiskReward  float64 `json:"risk_reward"`
	Direction   float64 `json:"direction"`
	IVFit       float64 `json:"iv_fit"`
	Liquidity   float64 `json:"liquidity"`
}

// StrategyInstance is a concrete multi-leg strategy built from the chain.
// Lifecycle: created by a constructor, enriched by the metrics engine,
// scored by the ranker, exit conditions attached last. An instance that
// fails any stage is discarded, never persisted with partial data.
type StrategyInstance struct {
	Archetype string        `json:"archetype"`
	Category  string        `json:"category"`
	Legs      []StrategyLeg `json:"legs"`
	LotSize   int           `json:"lot_size"`

	// Metrics, attached by the metrics engine. Per lot unless noted.
	NetPremium     float64             `json:"net_premium"` // positive = credit
	MaxProfit      float64             `json:"max_profit"`
	MaxLoss        float64             `json:"max_loss"` // UnboundedLoss for naked shorts
	Breakevens     []float64           `json:"breakevens"`
	Probability    float64             `json:"probability_of_profit"` // 0..1
	Greeks         NetGreeks           `json:"net_greeks"`
	DTE            int                 `json:"dte"`
	DecayPercent   float64             `json:"decay_percentage"`
	ThetaCharacter ThetaCharacteristic `json:"theta_characteristic"`

	// Ranking, attached by the ranker.
	Scores     ComponentScores `json:"component_scores"`
	TotalScore float64         `json:"total_score"`

	// Exit rules, attached last.
	ExitConditions *ExitConditionSet `json:"exit_conditions,omitempty"`
}

// DefinedRisk reports whether the instance carries a finite max loss.
func (s *StrategyInstance) DefinedRisk() bool {
	return !IsUnbounded(s.MaxLoss)
}

// RiskReward returns max profit over max loss. Unbounded values yield 0;
// callers score those shapes separately.
func (s *StrategyInstance) RiskReward() float64 {
	if IsUnbounded(s.MaxProfit) || IsUnbounded(s.MaxLoss) || s.MaxLoss <= 0 {
		return 0
	}
	return s.MaxProfit / s.MaxLoss
}

// NearestExpiry returns the earliest leg expiry. Zero time for no legs.
func (s *StrategyInstance) NearestExpiry() time.Time {
	var nearest time.Time
	for _, l := range s.Legs {
		if nearest.IsZero() || l.Expiry.Before(nearest) {
			nearest = l.Expiry
		}
	}
	return nearest
}
