package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/directory"
	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagProjectsUsers bool

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Cost and requests per project",
	RunE:  runProjects,
}

func init() {
	projectsCmd.Flags().BoolVar(&flagProjectsUsers, "users", false, "Show the per-user breakdown of each project")
	rootCmd.AddCommand(projectsCmd)
}

func runProjects(cmd *cobra.Command, _ []string) error {
	result, err := loadData()
	if err != nil {
		return err
	}
	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	usage := pipeline.CalculateProjectUsage(result.Records)
	projects := loadProjects(cmd.Context())

	fmt.Println()
	fmt.Println(cli.RenderTitle("USAGE BY PROJECT"))
	fmt.Println()

	rows := make([][]string, 0, usage.Len())
	for _, p := range usage.Projects() {
		rows = append(rows, []string{
			pipeline.ProjectName(projects, p.ProjectID),
			cli.FormatNumber(int64(p.TotalRequests)),
			cli.FormatNumber(int64(len(p.Users))),
			cli.FormatCost(p.TotalCost),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Project", "Requests", "Users", "Cost"},
		Rows:    rows,
	}))

	if flagProjectsUsers {
		dir := loadDirectory(cmd.Context())
		for _, p := range usage.Projects() {
			fmt.Println()
			fmt.Print(renderProjectUsers(pipeline.ProjectName(projects, p.ProjectID), p, dir))
		}
	}

	printFileWarnings(result)
	return nil
}

func renderProjectUsers(title string, p model.ProjectUsage, dir *directory.Directory) string {
	rows := make([][]string, 0, len(p.Users))
	for _, u := range p.Users {
		rows = append(rows, []string{
			dir.DisplayName(u.UserID),
			u.Email,
			cli.FormatNumber(int64(u.Requests)),
			cli.FormatCost(u.Cost),
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"User", "Email", "Requests", "Cost"},
		Rows:    rows,
	})
}
