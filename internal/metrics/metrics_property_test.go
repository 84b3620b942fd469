package metrics

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/rs/zerolog"

	"option-strategist/internal/archetype"
	"option-strategist/internal/config"
	"option-strategist/internal/models"
)

type spreadParams struct {
	LongStrike float64
	Width      float64
	LongPrem   float64
	ShortPrem  float64
	Spot       float64
	IV         float64
	DTE        int
}

// spreadGen generates valid bull call spread inputs. The short premium is
// kept below the long premium so the spread is a debit, matching how the
// constructor would ever build it.
func spreadGen() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(50, 500),
		gen.Float64Range(5, 50),
		gen.Float64Range(1, 40),
		gen.Float64Range(0.1, 35),
		gen.Float64Range(40, 600),
		gen.Float64Range(8, 120),
		gen.IntRange(3, 90),
	).Map(func(vs []interface{}) spreadParams {
		p := spreadParams{
			LongStrike: vs[0].(float64),
			Width:      vs[1].(float64),
			LongPrem:   vs[2].(float64),
			ShortPrem:  vs[3].(float64),
			Spot:       vs[4].(float64),
			IV:         vs[5].(float64),
			DTE:        vs[6].(int),
		}
		if p.ShortPrem >= p.LongPrem {
			p.ShortPrem = p.LongPrem * 0.5
		}
		// Keep the debit inside the width, as a sane fill always is.
		if p.LongPrem-p.ShortPrem >= p.Width {
			p.LongPrem = p.ShortPrem + p.Width*0.6
		}
		return p
	})
}

func spreadFromParams(p spreadParams) *models.StrategyInstance {
	expiry := metricsNow.AddDate(0, 0, p.DTE)
	return &models.StrategyInstance{
		Archetype: archetype.BullCallSpread,
		Category:  string(archetype.Directional),
		LotSize:   100,
		Legs: []models.StrategyLeg{
			leg(models.Call, models.Long, p.LongStrike, p.LongPrem, 0.45, -0.05, 100, expiry),
			leg(models.Call, models.Short, p.LongStrike+p.Width, p.ShortPrem, 0.25, -0.03, 100, expiry),
		},
	}
}

func TestProperty_ProbabilityStaysWithinConfiguredBand(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	cfg := config.Default()
	e := New(&cfg.Metrics, zerolog.Nop())

	properties.Property("probability respects the floor and ceiling", prop.ForAll(
		func(p spreadParams) bool {
			inst := spreadFromParams(p)
			iv := models.IVProfile{ATMIV: p.IV, Environment: models.IVNormal}
			if err := e.Compute(inst, p.Spot, iv, metricsNow); err != nil {
				return true
			}
			return inst.Probability >= cfg.Metrics.ProbabilityFloor &&
				inst.Probability <= cfg.Metrics.ProbabilityCeiling
		},
		spreadGen(),
	))

	properties.TestingRun(t)
}

func TestProperty_DefinedRiskSpreadsHaveFiniteBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0

	properties := gopter.NewProperties(parameters)

	cfg := config.Default()
	e := New(&cfg.Metrics, zerolog.Nop())

	properties.Property("debit spread loss is the debit, profit is the width minus it", prop.ForAll(
		func(p spreadParams) bool {
			inst := spreadFromParams(p)
			iv := models.IVProfile{ATMIV: p.IV, Environment: models.IVNormal}
			if err := e.Compute(inst, p.Spot, iv, metricsNow); err != nil {
				return true
			}
			if models.IsUnbounded(inst.MaxProfit) || models.IsUnbounded(inst.MaxLoss) {
				return false
			}
			if inst.MaxLoss < 0 || inst.MaxProfit < 0 {
				return false
			}
			// Breakevens must sit between the two strikes, sorted.
			for i := 1; i < len(inst.Breakevens); i++ {
				if inst.Breakevens[i] < inst.Breakevens[i-1] {
					return false
				}
			}
			return true
		},
		spreadGen(),
	))

	properties.TestingRun(t)
}
