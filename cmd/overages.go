package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var flagOveragesDetails bool

var overagesCmd = &cobra.Command{
	Use:   "overages",
	Short: "Projects whose usage exceeds their budget",
	RunE:  runOverages,
}

func init() {
	overagesCmd.Flags().BoolVar(&flagOveragesDetails, "details", false, "Show the per-user usage of each over-budget project")
	rootCmd.AddCommand(overagesCmd)
}

func runOverages(cmd *cobra.Command, _ []string) error {
	budgets, err := budgetFile().Load()
	if err != nil {
		log.WithError(err).Warn("budget file unreadable")
	}
	if len(budgets) == 0 {
		fmt.Println("\n  No budgets set. Add one with: orgburn budget set <project-id> <amount>")
		return nil
	}

	result, err := loadData()
	if err != nil {
		return err
	}
	usage := pipeline.CalculateProjectUsage(result.Records)
	overages := pipeline.FindOverages(usage, budgets, loadProjects(cmd.Context()))

	if len(overages) == 0 {
		fmt.Println("\n  All projects are within budget.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET OVERAGES"))
	fmt.Println()

	rows := make([][]string, 0, len(overages))
	for _, o := range overages {
		rows = append(rows, []string{
			o.ProjectName,
			cli.FormatCost(o.Budget),
			cli.FormatCost(o.ActualUsage),
			cli.Warn(cli.FormatCost(o.OverageAmount)),
			cli.FormatPercent(o.OveragePercentage),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Budget", "Actual", "Over", "Over %"},
		Rows:    rows,
	}))

	if flagOveragesDetails {
		dir := loadDirectory(cmd.Context())
		for _, o := range overages {
			if o.UsageDetails == nil {
				continue
			}
			fmt.Println()
			fmt.Print(renderProjectUsers(o.ProjectName, *o.UsageDetails, dir))
		}
	}

	printFileWarnings(result)
	return nil
}
