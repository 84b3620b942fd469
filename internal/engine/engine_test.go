package engine

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"option-strategist/internal/config"
	"option-strategist/internal/models"
)

var (
	engineNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	engExpiry = engineNow.AddDate(0, 0, 30)
)

func newTestEngine() *Engine {
	cfg := config.Default()
	// The synthetic chain uses 5-point strikes; widen the band so the
	// spread builders have wings to reach for.
	cfg.Construction.MaxStrikeDistance = 0.25
	return New(cfg, zerolog.Nop())
}

// richChain builds a liquid two-expiry synthetic chain around spot 100.
func richChain(symbol string) *models.OptionChain {
	curve := map[float64][2]float64{
		70: {30.5, 0.95}, 75: {25.8, 0.90}, 80: {21.2, 0.85},
		85: {16.9, 0.78}, 90: {12.8, 0.68}, 95: {9.2, 0.58},
		100: {6.0, 0.50}, 105: {3.6, 0.40}, 110: {2.0, 0.30},
		115: {1.0, 0.22}, 120: {0.5, 0.15}, 125: {0.25, 0.08},
		130: {0.12, 0.05},
	}
	var quotes []models.OptionQuote
	for _, expiry := range []time.Time{engExpiry, engineNow.AddDate(0, 0, 58)} {
		bump := 0.0
		if !expiry.Equal(engExpiry) {
			bump = 1.2
		}
		for strike, pd := range curve {
			callPrem, delta := pd[0]+bump, pd[1]
			putPrem := callPrem - (100 - strike)
			quotes = append(quotes,
				models.OptionQuote{
					Strike: strike, Expiry: expiry, Type: models.Call,
					Bid: callPrem - 0.1, Ask: callPrem + 0.1,
					OpenInterest: 500, Volume: 200,
					Delta: delta, Gamma: 0.02, Theta: -0.05, Vega: 0.10,
					IV: 30,
				},
				models.OptionQuote{
					Strike: strike, Expiry: expiry, Type: models.Put,
					Bid: putPrem - 0.1, Ask: putPrem + 0.1,
					OpenInterest: 500, Volume: 200,
					Delta: delta - 1, Gamma: 0.02, Theta: -0.05, Vega: 0.10,
					IV: 30,
				},
			)
		}
	}
	return &models.OptionChain{
		Symbol:     symbol,
		SpotPrice:  100,
		CapturedAt: engineNow,
		Quotes:     quotes,
	}
}

func richInput(symbol string) SymbolInput {
	return SymbolInput{
		Symbol:    symbol,
		Chain:     richChain(symbol),
		Market:    models.MarketContext{Direction: models.Bullish, Confidence: 0.8},
		IV:        models.IVProfile{ATMIV: 30, Environment: models.IVHigh},
		Tolerance: models.Aggressive,
	}
}

func TestAnalyzeSymbolNilChain(t *testing.T) {
	e := newTestEngine()
	out := e.AnalyzeSymbol(context.Background(), SymbolInput{Symbol: "EMPTY"})

	if out.Status != models.OutcomeNoChain {
		t.Errorf("status = %s, want %s", out.Status, models.OutcomeNoChain)
	}
	if out.Symbol != "EMPTY" {
		t.Errorf("symbol = %q, want EMPTY", out.Symbol)
	}
	if out.Reason == "" {
		t.Error("a non-OK outcome must carry a reason")
	}
}

func TestAnalyzeSymbolEmptyQuotes(t *testing.T) {
	e := newTestEngine()
	in := richInput("THIN")
	in.Chain.Quotes = nil

	if out := e.AnalyzeSymbol(context.Background(), in); out.Status != models.OutcomeNoChain {
		t.Errorf("status = %s, want %s", out.Status, models.OutcomeNoChain)
	}
}

func TestAnalyzeSymbolFullPipeline(t *testing.T) {
	e := newTestEngine()
	out := e.AnalyzeSymbol(context.Background(), richInput("ACME"))

	if out.Status != models.OutcomeOK {
		t.Fatalf("status = %s (reason %q, skips %v), want OK", out.Status, out.Reason, out.Skips)
	}
	if len(out.Strategies) == 0 {
		t.Fatal("OK outcome with no strategies")
	}

	for i, inst := range out.Strategies {
		if inst.ExitConditions == nil {
			t.Errorf("strategy %d (%s) missing exit conditions", i, inst.Archetype)
		}
		if inst.TotalScore <= 0 {
			t.Errorf("strategy %d (%s) was never scored", i, inst.Archetype)
		}
		if i > 0 && inst.TotalScore > out.Strategies[i-1].TotalScore {
			t.Error("strategies must come back best first")
		}
	}
	if !out.Succeeded() {
		t.Error("OK outcome with strategies should report success")
	}
}

func TestAnalyzeSymbolCancelledContext(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := e.AnalyzeSymbol(ctx, richInput("ACME"))
	if out.Status != models.OutcomeFailed {
		t.Errorf("status = %s, want FAILED on a dead context", out.Status)
	}
}

func TestAnalyzeBatchPreservesOrder(t *testing.T) {
	e := newTestEngine()

	inputs := make([]SymbolInput, 5)
	for i := range inputs {
		inputs[i] = richInput(fmt.Sprintf("SYM%d", i))
	}
	// One bad apple in the middle.
	inputs[2].Chain = nil

	outs := e.AnalyzeBatch(context.Background(), inputs)
	if len(outs) != len(inputs) {
		t.Fatalf("outcomes = %d, want %d", len(outs), len(inputs))
	}
	for i, out := range outs {
		if out.Symbol != inputs[i].Symbol {
			t.Errorf("slot %d holds %q, want %q", i, out.Symbol, inputs[i].Symbol)
		}
	}
	if outs[2].Status != models.OutcomeNoChain {
		t.Errorf("bad input status = %s, want %s", outs[2].Status, models.OutcomeNoChain)
	}
	if outs[1].Status != models.OutcomeOK || outs[3].Status != models.OutcomeOK {
		t.Error("one symbol's failure must not disturb its neighbors")
	}
}

func TestAnalyzeBatchEmpty(t *testing.T) {
	e := newTestEngine()
	if outs := e.AnalyzeBatch(context.Background(), nil); len(outs) != 0 {
		t.Errorf("empty batch produced %d outcomes", len(outs))
	}
}

func TestAnalyzeBatchCancelledContext(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inputs := []SymbolInput{richInput("A"), richInput("B")}
	outs := e.AnalyzeBatch(ctx, inputs)
	for i, out := range outs {
		if out.Status != models.OutcomeFailed {
			t.Errorf("slot %d status = %s, want FAILED", i, out.Status)
		}
		if out.Symbol != inputs[i].Symbol {
			t.Errorf("slot %d symbol = %q, want %q", i, out.Symbol, inputs[i].Symbol)
		}
	}
}

func TestRotationHistoryPersistsAcrossRuns(t *testing.T) {
	e := newTestEngine()
	in := richInput("ROT")

	first := e.AnalyzeSymbol(context.Background(), in)
	if first.Status != models.OutcomeOK {
		t.Fatalf("first run status = %s", first.Status)
	}

	h := e.historyFor("ROT")
	if len(h.Recent()) == 0 {
		t.Error("a completed run must record its candidates in the rotation history")
	}

	// A different symbol starts clean.
	if fresh := e.historyFor("OTHER"); len(fresh.Recent()) != 0 {
		t.Error("histories must be per symbol")
	}
}

func TestSkipsRecordedPerArchetype(t *testing.T) {
	e := newTestEngine()
	in := richInput("SKIPPY")

	// Strip the far expiry so the calendar shapes cannot build.
	var near []models.OptionQuote
	for _, q := range in.Chain.Quotes {
		if q.Expiry.Equal(engExpiry) {
			near = append(near, q)
		}
	}
	in.Chain.Quotes = near
	// Force every calendar into the candidate list's path via a neutral
	// read; skips should name the missing expiry rather than fail the run.
	in.Market = models.MarketContext{Direction: models.Neutral, Confidence: 0.6}
	in.IV = models.IVProfile{ATMIV: 30, Environment: models.IVNormal}

	out := e.AnalyzeSymbol(context.Background(), in)
	if out.Status == models.OutcomeFailed {
		t.Fatalf("run failed: %s", out.Reason)
	}
	for name, reason := range out.Skips {
		if reason == "" {
			t.Errorf("skip for %s has no reason", name)
		}
	}
}
