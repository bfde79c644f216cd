package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/directory"
	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

const maxChartModels = 6

var flagDailyUser string

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Daily cost chart and per-model split",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().StringVarP(&flagDailyUser, "user", "u", "", "User id or name (default: everyone)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	records := result.Records
	label := "everyone"
	if flagDailyUser != "" {
		dir := loadDirectory(cmd.Context())
		userID := resolveUser(dir, flagDailyUser)
		records = pipeline.ForUser(records, userID)
		label = dir.DisplayName(userID)
		if len(records) == 0 {
			fmt.Printf("\n  No usage records for %s.\n", label)
			return nil
		}
	}

	total := pipeline.TotalCost(records)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY COST  %s", label)))
	fmt.Println()
	fmt.Println(cli.RenderDayChart(total.ByDay.Series(), pipeline.ChartCeiling(total.Total), 62, 12,
		fmt.Sprintf("cost per day of month (USD), total %s", cli.FormatCost(total.Total))))
	fmt.Println()

	models := pipeline.ModelTotals(records)
	if len(models) > maxChartModels {
		models = models[:maxChartModels]
	}
	series := make([][]float64, 0, len(models))
	legend := make([]string, 0, len(models))
	for i, mt := range models {
		name := mt.Model
		recs := pipeline.Filter(records, func(r model.UsageRecord) bool { return r.Model() == name })
		series = append(series, pipeline.TotalCost(recs).ByDay.Series())
		legend = append(legend, cli.SeriesSwatch(i)+" "+cli.ModelLabel(name))
	}
	if len(series) > 1 {
		fmt.Println(cli.RenderMultiChart(series, 62, 12, "cost per day by model (USD)"))
		fmt.Println("  " + strings.Join(legend, "  "))
		fmt.Println()
	}

	days := pipeline.DailyModelCosts(records)
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		var dayTotal float64
		parts := make([]string, 0, len(d.Models))
		for _, m := range d.Models {
			dayTotal += m.TotalCost
			parts = append(parts, fmt.Sprintf("%s %s", cli.ModelLabel(m.Key), cli.FormatCost(m.TotalCost)))
		}
		date := d.Date
		if date == pipeline.UndatedKey {
			date = "(undated)"
		}
		rows = append(rows, []string{date, cli.FormatCost(dayTotal), strings.Join(parts, ", ")})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Cost", "Models"},
		Rows:    rows,
	}))

	printFileWarnings(result)
	return nil
}

// resolveUser accepts a user id or a directory display name.
func resolveUser(dir *directory.Directory, ref string) string {
	if id, ok := dir.IDForName(ref); ok {
		return id
	}
	return ref
}
