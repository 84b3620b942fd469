// Package config provides configuration management for the strategy engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"option-strategist/internal/models"
)

// Config holds all application configuration. Loaded once at startup and
// passed by reference; nothing re-reads config files per call.
type Config struct {
	Selection    SelectionConfig    `mapstructure:"selection"`
	Construction ConstructionConfig `mapstructure:"construction"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Ranking      RankingConfig      `mapstructure:"ranking"`
	Exits        ExitConfig         `mapstructure:"exits"`
	Engine       EngineConfig       `mapstructure:"engine"`
	Store        StoreConfig        `mapstructure:"store"`
}

// SelectionConfig tunes the compatibility filter and candidate scorer.
type SelectionConfig struct {
	MaxCandidates  int     `mapstructure:"max_candidates"`   // shortlist bound, default 10
	HistorySize    int     `mapstructure:"history_size"`     // rotation ring capacity
	RepeatPenalty  float64 `mapstructure:"repeat_penalty"`   // multiplier for recently used archetypes
	PreferredBonus float64 `mapstructure:"preferred_bonus"`  // multiplier for IV-profile preferred names
	IVMatchBoost   float64 `mapstructure:"iv_match_boost"`   // multiplier when IV band matches
	IVMismatchDamp float64 `mapstructure:"iv_mismatch_damp"` // multiplier when it does not
}

// ConstructionConfig tunes strike selection and liquidity validation.
type ConstructionConfig struct {
	LotSize           int     `mapstructure:"lot_size"`
	MinOpenInterest   int64   `mapstructure:"min_open_interest"`
	DeltaTargetSingle float64 `mapstructure:"delta_target_single"` // long singles, abs delta
	DeltaTargetShort  float64 `mapstructure:"delta_target_short"`  // short premium legs, abs delta
	StrangleDelta     float64 `mapstructure:"strangle_delta"`      // OTM wings for strangles
	WingWidthPercent  float64 `mapstructure:"wing_width_percent"`  // condor/butterfly wing span vs spot
	SpreadWidthSteps  int     `mapstructure:"spread_width_steps"`  // strikes between vertical legs
	MaxStrikeDistance float64 `mapstructure:"max_strike_distance"` // fraction of spot a strike may sit from it
}

// MetricsConfig tunes the probability and theta-decay heuristics.
type MetricsConfig struct {
	ProbabilityFloor   float64 `mapstructure:"probability_floor"`
	ProbabilityCeiling float64 `mapstructure:"probability_ceiling"`
	StraddleCap        float64 `mapstructure:"straddle_cap"`        // long straddle/strangle PoP ceiling
	NakedShortCap      float64 `mapstructure:"naked_short_cap"`     // undefined-risk short PoP ceiling
	RiskFreeRate       float64 `mapstructure:"risk_free_rate"`      // annualized, drifts the terminal distribution
	HoldingDays        int     `mapstructure:"holding_days"`        // expected holding horizon
}

// RankWeights are the five sub-score weights. They are normalized at use,
// so they need not sum to one.
type RankWeights struct {
	Probability float64 `mapstructure:"probability"`
	RiskReward  float64 `mapstructure:"risk_reward"`
	Direction   float64 `mapstructure:"direction"`
	IVFit       float64 `mapstructure:"iv_fit"`
	Liquidity   float64 `mapstructure:"liquidity"`
}

// QualityThresholds are the hard filters applied after scoring.
type QualityThresholds struct {
	MinProbability float64 `mapstructure:"min_probability"`
	MinScore       float64 `mapstructure:"min_score"`
	MinRiskReward  float64 `mapstructure:"min_risk_reward"`
}

// RankingConfig holds weights plus per-risk-tolerance thresholds.
type RankingConfig struct {
	Weights      RankWeights       `mapstructure:"weights"`
	Conservative QualityThresholds `mapstructure:"conservative"`
	Moderate     QualityThresholds `mapstructure:"moderate"`
	Aggressive   QualityThresholds `mapstructure:"aggressive"`
}

// ThresholdsFor maps a risk tolerance onto its quality thresholds.
func (r RankingConfig) ThresholdsFor(t models.RiskTolerance) QualityThresholds {
	switch t {
	case models.Conservative:
		return r.Conservative
	case models.Aggressive:
		return r.Aggressive
	default:
		return r.Moderate
	}
}

// ExitConfig holds the per-category exit templates.
type ExitConfig struct {
	Directional ExitTemplate `mapstructure:"directional"`
	Neutral     ExitTemplate `mapstructure:"neutral"`
	Volatility  ExitTemplate `mapstructure:"volatility"`
	Income      ExitTemplate `mapstructure:"income"`
	Advanced    ExitTemplate `mapstructure:"advanced"`
}

// ExitTemplate is one category's default exit parameters.
type ExitTemplate struct {
	ProfitTargetPercent float64 `mapstructure:"profit_target_percent"`
	StopLossPercent     float64 `mapstructure:"stop_loss_percent"`
	ExitDTE             int     `mapstructure:"exit_dte"`
	DeltaThreshold      float64 `mapstructure:"delta_threshold"`
}

// EngineConfig controls batch execution.
type EngineConfig struct {
	Workers int `mapstructure:"workers"` // bounded worker pool size
}

// StoreConfig controls result persistence.
type StoreConfig struct {
	Path string `mapstructure:"path"` // SQLite file path
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/option-strategist"
	}
	return filepath.Join(home, ".config", "option-strategist")
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Selection: SelectionConfig{
			MaxCandidates:  10,
			HistorySize:    8,
			RepeatPenalty:  0.70,
			PreferredBonus: 1.25,
			IVMatchBoost:   1.20,
			IVMismatchDamp: 0.60,
		},
		Construction: ConstructionConfig{
			LotSize:           100,
			MinOpenInterest:   50,
			DeltaTargetSingle: 0.50,
			DeltaTargetShort:  0.30,
			StrangleDelta:     0.16,
			WingWidthPercent:  0.05,
			SpreadWidthSteps:  2,
			MaxStrikeDistance: 0.10,
		},
		Metrics: MetricsConfig{
			ProbabilityFloor:   0.05,
			ProbabilityCeiling: 0.95,
			StraddleCap:        0.45,
			NakedShortCap:      0.90,
			RiskFreeRate:       0.05,
			HoldingDays:        14,
		},
		Ranking: RankingConfig{
			Weights: RankWeights{
				Probability: 0.35,
				RiskReward:  0.25,
				Direction:   0.20,
				IVFit:       0.10,
				Liquidity:   0.10,
			},
			Conservative: QualityThresholds{MinProbability: 0.60, MinScore: 0.55, MinRiskReward: 0.25},
			Moderate:     QualityThresholds{MinProbability: 0.50, MinScore: 0.45, MinRiskReward: 0.20},
			Aggressive:   QualityThresholds{MinProbability: 0.40, MinScore: 0.35, MinRiskReward: 0.15},
		},
		Exits: ExitConfig{
			Directional: ExitTemplate{ProfitTargetPercent: 50, StopLossPercent: 50, ExitDTE: 7, DeltaThreshold: 0.75},
			Neutral:     ExitTemplate{ProfitTargetPercent: 50, StopLossPercent: 100, ExitDTE: 10, DeltaThreshold: 0.30},
			Volatility:  ExitTemplate{ProfitTargetPercent: 75, StopLossPercent: 40, ExitDTE: 14, DeltaThreshold: 0.60},
			Income:      ExitTemplate{ProfitTargetPercent: 50, StopLossPercent: 200, ExitDTE: 21, DeltaThreshold: 0.35},
			Advanced:    ExitTemplate{ProfitTargetPercent: 40, StopLossPercent: 75, ExitDTE: 10, DeltaThreshold: 0.40},
		},
		Engine: EngineConfig{Workers: 6},
		Store:  StoreConfig{Path: filepath.Join(DefaultConfigDir(), "strategist.db")},
	}
}

// Load loads configuration from the specified directory, falling back to
// defaults when no config file exists. If configDir is empty, uses the
// default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// No config file; defaults apply.
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRATEGIST_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	if v := os.Getenv("STRATEGIST_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Engine.Workers = n
		}
	}
	if v := os.Getenv("STRATEGIST_HOLDING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Metrics.HoldingDays = n
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Selection.MaxCandidates <= 0 {
		return fmt.Errorf("selection.max_candidates must be positive")
	}
	if c.Selection.HistorySize <= 0 {
		return fmt.Errorf("selection.history_size must be positive")
	}
	if c.Construction.LotSize <= 0 {
		return fmt.Errorf("construction.lot_size must be positive")
	}
	if c.Construction.DeltaTargetSingle <= 0 || c.Construction.DeltaTargetSingle >= 1 {
		return fmt.Errorf("construction.delta_target_single must be in (0, 1)")
	}
	if c.Construction.MaxStrikeDistance <= 0 || c.Construction.MaxStrikeDistance > 1 {
		return fmt.Errorf("construction.max_strike_distance must be in (0, 1]")
	}
	if c.Metrics.ProbabilityFloor < 0 || c.Metrics.ProbabilityCeiling > 1 ||
		c.Metrics.ProbabilityFloor >= c.Metrics.ProbabilityCeiling {
		return fmt.Errorf("metrics probability floor/ceiling must satisfy 0 <= floor < ceiling <= 1")
	}
	if c.Metrics.HoldingDays <= 0 {
		return fmt.Errorf("metrics.holding_days must be positive")
	}
	w := c.Ranking.Weights
	if w.Probability < 0 || w.RiskReward < 0 || w.Direction < 0 || w.IVFit < 0 || w.Liquidity < 0 {
		return fmt.Errorf("ranking weights must be non-negative")
	}
	if w.Probability+w.RiskReward+w.Direction+w.IVFit+w.Liquidity == 0 {
		return fmt.Errorf("at least one ranking weight must be positive")
	}
	for _, q := range []QualityThresholds{c.Ranking.Conservative, c.Ranking.Moderate, c.Ranking.Aggressive} {
		if q.MinProbability < 0 || q.MinProbability > 1 {
			return fmt.Errorf("min_probability must be between 0 and 1")
		}
	}
	if c.Engine.Workers <= 0 {
		return fmt.Errorf("engine.workers must be positive")
	}
	return nil
}
