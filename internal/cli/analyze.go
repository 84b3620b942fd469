package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"option-strategist/internal/chain"
	"option-strategist/internal/engine"
	"option-strategist/internal/models"
	"option-strategist/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	var tolerance string
	var top int
	var save bool

	cmd := &cobra.Command{
		Use:   "analyze <snapshot.json | directory>",
		Short: "Analyze option chain snapshots and rank strategies",
		Long: `Analyze one snapshot file or every snapshot in a directory.

Each snapshot carries the option chain plus the market direction and IV
classification for one symbol. A directory is analyzed as a batch on the
configured worker pool.`,
		Example: `  strategist analyze snapshots/SPY.json
  strategist analyze snapshots/ --risk aggressive --top 3
  strategist analyze snapshots/SPY.json --save --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			tol := models.RiskTolerance(strings.ToLower(tolerance))
			switch tol {
			case models.Conservative, models.Moderate, models.Aggressive:
			default:
				return fmt.Errorf("unknown risk tolerance %q, want conservative, moderate, or aggressive", tolerance)
			}

			loader := chain.NewLoader(app.Config.Construction.MinOpenInterest, app.Logger)
			snaps, err := loadSnapshots(loader, args[0])
			if err != nil {
				return err
			}

			inputs := make([]engine.SymbolInput, len(snaps))
			for i, snap := range snaps {
				inputs[i] = engine.SymbolInput{
					Symbol:     snap.Symbol,
					Chain:      snap.Chain(),
					Market:     snap.Market,
					IV:         snap.IV,
					Volatility: snap.Volatility,
					Tolerance:  tol,
				}
			}

			outcomes := app.Engine.AnalyzeBatch(cmd.Context(), inputs)

			if save && app.Store != nil {
				for i := range outcomes {
					if err := app.Store.SaveOutcome(cmd.Context(), &outcomes[i]); err != nil {
						output.Warning("Failed to save outcome for %s: %v", outcomes[i].Symbol, err)
					}
				}
			}

			if output.IsJSON() {
				return output.JSON(outcomes)
			}
			for i := range outcomes {
				renderOutcome(output, &outcomes[i], top)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&tolerance, "tolerance", "t", "moderate", "risk tolerance: conservative, moderate, aggressive")
	cmd.Flags().IntVarP(&top, "top", "n", 3, "number of ranked strategies to display per symbol")
	cmd.Flags().BoolVar(&save, "save", false, "persist outcomes to the result store")

	return cmd
}

func loadSnapshots(loader *chain.Loader, path string) ([]*chain.Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return loader.LoadDir(path)
	}
	snap, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return []*chain.Snapshot{snap}, nil
}

func renderOutcome(o *Output, outcome *models.SymbolOutcome, top int) {
	o.Bold("\n%s", outcome.Symbol)

	if !outcome.Succeeded() {
		o.colored(o.StatusColor(string(outcome.Status)), "  %s: %s", outcome.Status, outcome.Reason)
		renderSkips(o, outcome)
		return
	}

	o.Success("  %d strategies ranked (%d filtered out)", len(outcome.Strategies), outcome.FilteredOut)

	shown := outcome.Strategies
	if top > 0 && len(shown) > top {
		shown = shown[:top]
	}
	for i, inst := range shown {
		renderStrategy(o, i+1, inst)
	}
	renderSkips(o, outcome)
}

func renderStrategy(o *Output, rank int, inst *models.StrategyInstance) {
	o.Printf("\n  %d. %s  score %.3f  PoP %s\n",
		rank, inst.Archetype, inst.TotalScore, utils.FormatProbability(inst.Probability))
	o.Printf("     premium %s  max profit %s  max loss %s  DTE %d\n",
		utils.FormatCurrency(inst.NetPremium), utils.FormatBound(inst.MaxProfit),
		utils.FormatBound(inst.MaxLoss), inst.DTE)

	for _, leg := range inst.Legs {
		o.Printf("     %s\n", o.DimText(utils.FormatLeg(leg)))
	}

	if len(inst.Breakevens) > 0 {
		parts := make([]string, len(inst.Breakevens))
		for i, be := range inst.Breakevens {
			parts[i] = utils.FormatStrike(be)
		}
		o.Printf("     breakevens: %s\n", strings.Join(parts, ", "))
	}

	if inst.ExitConditions != nil {
		target := inst.ExitConditions.PrimaryTarget()
		o.Printf("     exit: %.0f%% profit target, stop at %.0f%%, out by %d DTE\n",
			target.Percent, inst.ExitConditions.StopLossPercent, inst.ExitConditions.TimeExits.ExitDTE)
	}
}

func renderSkips(o *Output, outcome *models.SymbolOutcome) {
	if len(outcome.Skips) == 0 {
		return
	}
	o.Dim("  skipped:")
	for name, reason := range outcome.Skips {
		o.Dim("    %s: %s", name, reason)
	}
}
