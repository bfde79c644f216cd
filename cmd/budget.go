package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage per-project budgets",
	RunE:  runBudgetList,
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show budgets with spend and status",
	RunE:  runBudgetList,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <project-id> <amount>",
	Short: "Set the budget of a project (USD)",
	Args:  cobra.ExactArgs(2),
	RunE:  runBudgetSet,
}

var budgetRemoveCmd = &cobra.Command{
	Use:   "remove <project-id>",
	Short: "Remove the budget of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetRemove,
}

var budgetResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all budgets",
	RunE:  runBudgetReset,
}

func init() {
	budgetCmd.AddCommand(budgetListCmd, budgetSetCmd, budgetRemoveCmd, budgetResetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetList(cmd *cobra.Command, _ []string) error {
	bf := budgetFile()
	budgets, err := bf.Load()
	if err != nil {
		log.WithError(err).Warn("budget file unreadable")
	}
	if len(budgets) == 0 {
		fmt.Printf("\n  No budgets set in %s.\n", bf.Path())
		fmt.Println("  Add one with: orgburn budget set <project-id> <amount>")
		return nil
	}

	result, err := loadData()
	if err != nil {
		return err
	}
	usage := pipeline.CalculateProjectUsage(result.Records)
	statuses := pipeline.BudgetStatuses(usage, budgets, loadProjects(cmd.Context()), thresholds())

	fmt.Println()
	fmt.Println(cli.RenderTitle("PROJECT BUDGETS"))
	fmt.Println()

	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		rows = append(rows, []string{
			st.ProjectName,
			cli.FormatCost(st.Spent),
			cli.FormatCost(st.Limit),
			cli.FormatPercent(st.UsageRate),
			cli.RenderHorizontalBar(st.Spent, st.Limit, 20),
			cli.FormatBudgetState(st.State),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Spent", "Budget", "Used", "", "Status"},
		Rows:    rows,
	}))

	printFileWarnings(result)
	return nil
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", args[1], err)
	}
	bf := budgetFile()
	if err := bf.Set(args[0], amount); err != nil {
		return err
	}
	fmt.Printf("  Budget for %s set to %s\n", args[0], cli.FormatCost(amount))
	return nil
}

func runBudgetRemove(_ *cobra.Command, args []string) error {
	removed, err := budgetFile().Remove(args[0])
	if err != nil {
		return err
	}
	if !removed {
		fmt.Printf("  No budget set for %s\n", args[0])
		return nil
	}
	fmt.Printf("  Removed budget for %s\n", args[0])
	return nil
}

func runBudgetReset(_ *cobra.Command, _ []string) error {
	bf := budgetFile()
	if err := bf.Reset(); err != nil {
		return err
	}
	fmt.Printf("  Cleared all budgets (%s)\n", bf.Path())
	return nil
}
