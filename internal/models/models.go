// Package models provides domain models for the options strategy engine.
package models

// OptionType represents the type of an option contract.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// PositionSide represents the direction of a strategy leg.
type PositionSide string

const (
	Long  PositionSide = "LONG"
	Short PositionSide = "SHORT"
)

// Direction represents the market-direction classification for a symbol.
type Direction string

const (
	Bullish Direction = "BULLISH"
	Bearish Direction = "BEARISH"
	Neutral Direction = "NEUTRAL"
)

// IVEnvironment buckets current implied volatility against its history.
type IVEnvironment string

const (
	IVLow      IVEnvironment = "LOW"
	IVNormal   IVEnvironment = "NORMAL"
	IVHigh     IVEnvironment = "HIGH"
	IVElevated IVEnvironment = "ELEVATED"
)

// RiskTolerance selects the quality thresholds applied during ranking.
type RiskTolerance string

const (
	Conservative RiskTolerance = "conservative"
	Moderate     RiskTolerance = "moderate"
	Aggressive   RiskTolerance = "aggressive"
)

// ThetaCharacteristic classifies how time decay works for the holder.
type ThetaCharacteristic string

const (
	ThetaPositive ThetaCharacteristic = "POSITIVE"
	ThetaNegative ThetaCharacteristic = "NEGATIVE"
	ThetaNeutral  ThetaCharacteristic = "NEUTRAL"
)

// MarketContext is the per-symbol direction estimate produced upstream.
type MarketContext struct {
	Direction   Direction `json:"direction"`
	SubCategory string    `json:"sub_category"` // e.g. "strong_trending", "weak_rangebound"
	Confidence  float64   `json:"confidence"`   // 0..1
	Timeframe   string    `json:"timeframe"`    // descriptive, e.g. "2-4 weeks"
}

// IVProfile is the per-symbol implied-volatility classification produced upstream.
type IVProfile struct {
	ATMIV       float64       `json:"atm_iv"` // percent, e.g. 28.5
	Environment IVEnvironment `json:"iv_environment"`
	SkewType    string        `json:"skew_type"`
	Preferred   []string      `json:"preferred_strategies"`
	Avoid       []string      `json:"avoid_strategies"`
}

// Avoids reports whether the archetype is on the avoid list.
func (p IVProfile) Avoids(archetype string) bool {
	for _, name := range p.Avoid {
		if name == archetype {
			return true
		}
	}
	return false
}

// Prefers reports whether the archetype is on the preferred list.
func (p IVProfile) Prefers(archetype string) bool {
	for _, name := range p.Preferred {
		if name == archetype {
			return true
		}
	}
	return false
}

// VolatilityProfile carries the realized-volatility figures for a symbol.
type VolatilityProfile struct {
	Realized30d float64 `json:"realized_30d"` // percent
	Realized90d float64 `json:"realized_90d"` // percent
}
