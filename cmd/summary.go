package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Usage summary with total cost and per-user breakdown",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}

	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		fmt.Println("  Export usage from the organization dashboard and pass it with --file.")
		return nil
	}

	records := result.Records
	total := pipeline.TotalCost(records)
	usage := pipeline.CalculateProjectUsage(records)
	models := pipeline.ModelTotals(records)
	dir := loadDirectory(cmd.Context())

	fmt.Println()
	fmt.Println(cli.RenderTitle("ORGANIZATION USAGE"))
	fmt.Println()

	rows := [][]string{
		{"Exports", cli.FormatNumber(int64(result.TotalFiles))},
		{"Records", cli.FormatNumber(int64(len(records)))},
		{"Users", cli.FormatNumber(int64(len(pipeline.DistinctUserIDs(records))))},
		{"Projects", cli.FormatNumber(int64(usage.Len()))},
		{"Models", cli.FormatNumber(int64(len(models)))},
		cli.SeparatorRow,
		{"Total cost", cli.FormatCost(total.Total)},
		{"By day", cli.RenderSparkline(total.ByDay.Series())},
	}
	if len(models) > 0 {
		rows = append(rows, []string{"Top model", fmt.Sprintf("%s (%s)",
			cli.ModelLabel(models[0].Model), cli.FormatPercent(models[0].SharePercent))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))
	fmt.Println()

	fmt.Print(renderUserTable(pipeline.UserTotals(records, dir), 10))

	printFileWarnings(result)
	return nil
}
