package cmd

import (
	"fmt"
	"sort"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagUsersLimit int

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Cost per user",
	RunE:  runUsers,
}

func init() {
	usersCmd.Flags().IntVar(&flagUsersLimit, "limit", 0, "Show at most this many users (0 = all)")
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	totals := pipeline.UserTotals(result.Records, loadDirectory(cmd.Context()))

	fmt.Println()
	fmt.Println(cli.RenderTitle("USAGE BY USER"))
	fmt.Println()
	fmt.Print(renderUserTable(totals, flagUsersLimit))

	printFileWarnings(result)
	return nil
}

// renderUserTable renders user totals ranked by cost. limit <= 0 shows all.
func renderUserTable(totals []model.UserTotal, limit int) string {
	ranked := make([]model.UserTotal, len(totals))
	copy(ranked, totals)
	sortUserTotals(ranked)

	shown := ranked
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var grand float64
	for _, u := range ranked {
		grand += u.TotalCost
	}

	rows := make([][]string, 0, len(shown)+2)
	for _, u := range shown {
		share := 0.0
		if grand > 0 {
			share = u.TotalCost / grand * 100
		}
		rows = append(rows, []string{
			u.Name,
			cli.FormatNumber(int64(u.Requests)),
			cli.FormatCost(u.TotalCost),
			cli.FormatPercent(share),
			cli.RenderSparkline(u.ByDay.Series()),
		})
	}
	if hidden := len(ranked) - len(shown); hidden > 0 {
		rows = append(rows, cli.SeparatorRow, []string{
			fmt.Sprintf("(%d more)", hidden), "", "", "", "",
		})
	}

	return cli.RenderTable(cli.Table{
		Headers: []string{"User", "Requests", "Cost", "Share", "Days 1-31"},
		Rows:    rows,
	})
}

func sortUserTotals(totals []model.UserTotal) {
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].TotalCost > totals[j].TotalCost
	})
}
