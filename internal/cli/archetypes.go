package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"option-strategist/internal/archetype"
)

func newArchetypesCmd(app *App) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "archetypes",
		Short: "List the strategy archetypes the engine can construct",
		Example: `  strategist archetypes
  strategist archetypes --category income`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			var metas []archetype.Metadata
			for _, m := range archetype.All() {
				if category != "" && !strings.EqualFold(string(m.Category), category) {
					continue
				}
				metas = append(metas, m)
			}

			if output.IsJSON() {
				return output.JSON(metas)
			}

			byCategory := make(map[archetype.Category][]archetype.Metadata)
			for _, m := range metas {
				byCategory[m.Category] = append(byCategory[m.Category], m)
			}
			for _, cat := range []archetype.Category{
				archetype.Directional, archetype.NeutralCat, archetype.Volatility,
				archetype.Income, archetype.Advanced,
			} {
				group := byCategory[cat]
				if len(group) == 0 {
					continue
				}
				output.Bold("\n%s", strings.ToUpper(string(cat)))
				for _, m := range group {
					risk := "defined risk"
					if !m.DefinedRisk {
						risk = output.Red("undefined risk")
					}
					output.Printf("  %-24s %d leg(s), %s\n", m.Name, m.LegCount, risk)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category: directional, neutral, volatility, income, advanced")
	return cmd
}
