package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagOrgAll bool

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Organization directory (requires an admin API key)",
}

var orgProjectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List organization projects",
	RunE:  runOrgProjects,
}

var orgUsersCmd = &cobra.Command{
	Use:   "users",
	Short: "List organization users",
	RunE:  runOrgUsers,
}

func init() {
	orgProjectsCmd.Flags().BoolVar(&flagOrgAll, "all", false, "Include archived projects")
	orgCmd.AddCommand(orgProjectsCmd, orgUsersCmd)
	rootCmd.AddCommand(orgCmd)
}

func runOrgProjects(cmd *cobra.Command, _ []string) error {
	client, err := newOrgClient()
	if err != nil {
		return err
	}
	projects, err := client.ListProjects(cmd.Context(), flagOrgAll)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}
	if !flagOrgAll {
		projects = pipeline.ActiveProjects(projects)
	}

	loc, err := location()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		status := p.Status
		if !p.Active() {
			status = cli.Muted(status)
		}
		rows = append(rows, []string{p.Name, p.ID, status, cli.FormatUnixDate(p.CreatedAt, loc)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Projects (%d)", len(projects)),
		Headers: []string{"Name", "ID", "Status", "Created"},
		Rows:    rows,
	}))
	return nil
}

func runOrgUsers(cmd *cobra.Command, _ []string) error {
	client, err := newOrgClient()
	if err != nil {
		return err
	}
	users, err := client.ListUsers(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	loc, err := location()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.Name, u.Email, u.Role, u.ID, cli.FormatUnixDate(u.AddedAt, loc)})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Users (%d)", len(users)),
		Headers: []string{"Name", "Email", "Role", "ID", "Added"},
		Rows:    rows,
	}))
	return nil
}

var userinfoCmd = &cobra.Command{
	Use:   "userinfo",
	Short: "Manage the user directory snapshot",
}

var userinfoBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Fetch organization users and write the directory snapshot",
	RunE:  runUserinfoBuild,
}

func init() {
	userinfoCmd.AddCommand(userinfoBuildCmd)
	rootCmd.AddCommand(userinfoCmd)
}

func runUserinfoBuild(cmd *cobra.Command, _ []string) error {
	client, err := newOrgClient()
	if err != nil {
		return err
	}
	path := userInfoPath()
	dir, err := newDirectoryCache(client, path).Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("building user directory: %w", err)
	}
	fmt.Printf("  Wrote %d users to %s\n", dir.Len(), path)
	return nil
}
