package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model usage breakdown",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	models := pipeline.ModelTotals(result.Records)

	fmt.Println()
	fmt.Println(cli.RenderTitle("MODEL USAGE"))
	fmt.Println()

	maxCost := models[0].Cost
	rows := make([][]string, 0, len(models))
	for _, mt := range models {
		rows = append(rows, []string{
			cli.ModelLabel(mt.Model),
			cli.FormatNumber(int64(mt.Requests)),
			cli.FormatCost(mt.Cost),
			cli.FormatPercent(mt.SharePercent),
			cli.RenderHorizontalBar(mt.Cost, maxCost, 20),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Model", "Requests", "Cost", "Share", ""},
		Rows:    rows,
	}))

	printFileWarnings(result)
	return nil
}
