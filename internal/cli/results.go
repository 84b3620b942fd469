package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"option-strategist/internal/models"
	"option-strategist/internal/store"
)

func newResultsCmd(app *App) *cobra.Command {
	var symbol string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show persisted analysis outcomes",
		Example: `  strategist results --symbol SPY
  strategist results --status OK --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if app.Store == nil {
				return fmt.Errorf("result store is not available")
			}

			outcomes, err := app.Store.GetOutcomes(cmd.Context(), store.OutcomeFilter{
				Symbol: symbol,
				Status: models.OutcomeStatus(status),
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(outcomes)
			}
			if len(outcomes) == 0 {
				output.Dim("No stored outcomes match.")
				return nil
			}
			for i := range outcomes {
				oc := &outcomes[i]
				output.Printf("%s  %s  %s  %d strategies  %d filtered\n",
					oc.AnalyzedAt.Format("2006-01-02 15:04"),
					oc.Symbol,
					output.ColoredString(output.StatusColor(string(oc.Status)), string(oc.Status)),
					len(oc.Strategies), oc.FilteredOut)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&symbol, "symbol", "s", "", "filter by symbol")
	cmd.Flags().StringVar(&status, "status", "", "filter by outcome status")
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum outcomes to show")
	return cmd
}
