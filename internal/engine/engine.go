// Package engine runs the full analysis pipeline for one symbol or a
// batch: select candidates, construct legs, compute metrics, rank, and
// attach exit conditions.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"option-strategist/internal/config"
	"option-strategist/internal/construct"
	strategisterrors "option-strategist/internal/errors"
	"option-strategist/internal/exits"
	"option-strategist/internal/logging"
	"option-strategist/internal/metrics"
	"option-strategist/internal/models"
	"option-strategist/internal/rank"
	"option-strategist/internal/selector"
)

// SymbolInput bundles everything one symbol's run needs. The chain
// snapshot and context objects are read-only for the duration of the
// run.
type SymbolInput struct {
	Symbol     string
	Chain      *models.OptionChain
	Market     models.MarketContext
	IV         models.IVProfile
	Volatility models.VolatilityProfile
	Tolerance  models.RiskTolerance
}

// Engine wires the pipeline stages together. One Engine serves many
// runs; per-symbol rotation history lives in the histories map so
// repeated runs against the same symbol rotate archetypes.
type Engine struct {
	cfg *config.Config
	sel *selector.Selector
	met *metrics.Engine
	rnk *rank.Ranker
	gen *exits.Generator
	log zerolog.Logger

	mu        sync.Mutex
	histories map[string]*selector.RotationHistory
}

// New creates an Engine from config.
func New(cfg *config.Config, log zerolog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		sel:       selector.New(&cfg.Selection, log),
		met:       metrics.New(&cfg.Metrics, log),
		rnk:       rank.New(cfg.Ranking.Weights, log),
		gen:       exits.New(cfg.Exits, log),
		log:       log,
		histories: make(map[string]*selector.RotationHistory),
	}
}

// historyFor returns the symbol's rotation history, creating it on
// first use.
func (e *Engine) historyFor(symbol string) *selector.RotationHistory {
	e.mu.Lock()
	defer e.mu.Unlock()
	h, ok := e.histories[symbol]
	if !ok {
		h = selector.NewRotationHistory(e.cfg.Selection.HistorySize)
		e.histories[symbol] = h
	}
	return h
}

// AnalyzeSymbol runs the pipeline for one symbol. It always returns an
// outcome; pipeline-stage failures become outcome statuses, never
// panics or nil results.
func (e *Engine) AnalyzeSymbol(ctx context.Context, in SymbolInput) models.SymbolOutcome {
	log := logging.WithSymbol(e.log, in.Symbol)
	out := models.SymbolOutcome{
		Symbol:     in.Symbol,
		AnalyzedAt: time.Now(),
		Skips:      make(map[string]string),
	}

	if err := ctx.Err(); err != nil {
		out.Status = models.OutcomeFailed
		out.Reason = err.Error()
		return out
	}

	if in.Chain == nil || len(in.Chain.Quotes) == 0 || in.Chain.SpotPrice <= 0 {
		out.Status = models.OutcomeNoChain
		out.Reason = strategisterrors.ErrInputUnavailable.Error()
		logging.LogOutcome(log, in.Symbol, string(out.Status), 0, 0)
		return out
	}

	candidates := e.sel.SelectCandidates(in.Market, in.IV, in.Volatility, e.historyFor(in.Symbol))
	logging.LogCandidates(log, in.Symbol, candidates)

	params := construct.Params{
		Spot:   in.Chain.SpotPrice,
		Market: in.Market,
		IV:     in.IV,
		Cfg:    &e.cfg.Construction,
	}

	var built []*models.StrategyInstance
	for _, name := range candidates {
		inst, err := construct.Build(name, in.Chain, params)
		if err != nil {
			out.Skips[name] = skipReason(err)
			logging.LogSkip(log, in.Symbol, name, out.Skips[name])
			continue
		}
		if err := e.met.Compute(inst, in.Chain.SpotPrice, in.IV, in.Chain.CapturedAt); err != nil {
			out.Skips[name] = skipReason(err)
			logging.LogSkip(log, in.Symbol, name, out.Skips[name])
			continue
		}
		built = append(built, inst)
	}

	if len(built) == 0 {
		out.Status = models.OutcomeNoConstructed
		out.Reason = "no candidate archetype could be constructed from the chain"
		logging.LogOutcome(log, in.Symbol, string(out.Status), 0, 0)
		return out
	}

	thresholds := e.cfg.Ranking.ThresholdsFor(in.Tolerance)
	result := e.rnk.Rank(built, in.Market, in.IV, thresholds)
	out.FilteredOut = result.FilteredOut

	if len(result.Ranked) == 0 {
		out.Status = models.OutcomeAllFiltered
		out.Reason = strategisterrors.ErrNoSurvivors.Error()
		logging.LogOutcome(log, in.Symbol, string(out.Status), 0, out.FilteredOut)
		return out
	}

	for _, inst := range result.Ranked {
		set := e.gen.Generate(inst)
		inst.ExitConditions = &set
		logging.LogRanked(log, in.Symbol, inst.Archetype, inst.TotalScore, inst.Probability)
	}

	out.Status = models.OutcomeOK
	out.Strategies = result.Ranked
	logging.LogOutcome(log, in.Symbol, string(out.Status), len(out.Strategies), out.FilteredOut)
	return out
}

// AnalyzeBatch runs symbols concurrently on a bounded worker pool.
// Outcomes come back in input order. A panic inside one symbol's run is
// recovered into a FAILED outcome and does not disturb the rest of the
// batch.
func (e *Engine) AnalyzeBatch(ctx context.Context, inputs []SymbolInput) []models.SymbolOutcome {
	outcomes := make([]models.SymbolOutcome, len(inputs))
	if len(inputs) == 0 {
		return outcomes
	}

	workers := e.cfg.Engine.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = e.analyzeSafely(ctx, inputs[idx])
			}
		}()
	}

	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			outcomes[i] = models.SymbolOutcome{
				Symbol:     inputs[i].Symbol,
				Status:     models.OutcomeFailed,
				Reason:     ctx.Err().Error(),
				AnalyzedAt: time.Now(),
			}
		}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

func (e *Engine) analyzeSafely(ctx context.Context, in SymbolInput) (out models.SymbolOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error().
				Str("symbol", in.Symbol).
				Interface("panic", r).
				Msg("Symbol analysis panicked")
			out = models.SymbolOutcome{
				Symbol:     in.Symbol,
				Status:     models.OutcomeFailed,
				Reason:     fmt.Sprintf("internal error: %v", r),
				AnalyzedAt: time.Now(),
			}
		}
	}()
	return e.AnalyzeSymbol(ctx, in)
}

// skipReason extracts the compact reason string recorded per archetype.
func skipReason(err error) string {
	var ce *strategisterrors.ConstructionError
	if strategisterrors.As(err, &ce) {
		return string(ce.Reason)
	}
	var me *strategisterrors.MetricsError
	if strategisterrors.As(err, &me) {
		return "missing " + me.Missing
	}
	return err.Error()
}
