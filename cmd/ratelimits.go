package cmd

import (
	"fmt"
	"strconv"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/config"
	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/orgapi"
	"github.com/theirongolddev/orgburn/internal/store"

	"github.com/spf13/cobra"
)

var flagRateLimitsProject string

var ratelimitsCmd = &cobra.Command{
	Use:     "ratelimits",
	Aliases: []string{"rl"},
	Short:   "Per-project rate limits and templates (requires an admin API key)",
}

var ratelimitsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show rate limits of one project or of every project",
	RunE:  runRateLimitsList,
}

var ratelimitsUpdateCmd = &cobra.Command{
	Use:   "update <project-id> <rate-limit-id> <max-requests-per-minute>",
	Short: "Change the request limit of one rate limit",
	Args:  cobra.ExactArgs(3),
	RunE:  runRateLimitsUpdate,
}

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Save, inspect and apply rate-limit templates",
}

var templateSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current limits of --project as a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateSave,
}

var templateShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateShow,
}

var templateApplyCmd = &cobra.Command{
	Use:   "apply <name>",
	Short: "Apply a saved template to --project",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateApply,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved templates",
	RunE:  runTemplateList,
}

func init() {
	ratelimitsListCmd.Flags().StringVarP(&flagRateLimitsProject, "project", "p", "", "Only show this project")
	for _, c := range []*cobra.Command{templateSaveCmd, templateApplyCmd} {
		c.Flags().StringVarP(&flagRateLimitsProject, "project", "p", "", "Project id")
		_ = c.MarkFlagRequired("project")
	}

	templateCmd.AddCommand(templateSaveCmd, templateShowCmd, templateApplyCmd, templateListCmd)
	ratelimitsCmd.AddCommand(ratelimitsListCmd, ratelimitsUpdateCmd, templateCmd)
	rootCmd.AddCommand(ratelimitsCmd)
}

func templateStore() *store.TemplateStore {
	return store.NewTemplateStore(config.TemplatesDir(appCfg))
}

func runRateLimitsList(cmd *cobra.Command, _ []string) error {
	client, err := newOrgClient()
	if err != nil {
		return err
	}

	var all []orgapi.ProjectRateLimits
	if flagRateLimitsProject != "" {
		limits, err := client.ListRateLimits(cmd.Context(), flagRateLimitsProject)
		if err != nil {
			return fmt.Errorf("listing rate limits: %w", err)
		}
		all = []orgapi.ProjectRateLimits{{
			Project: model.Project{ID: flagRateLimitsProject, Name: flagRateLimitsProject},
			Limits:  limits,
		}}
	} else {
		all, err = client.AllRateLimits(cmd.Context())
		if err != nil {
			return fmt.Errorf("listing rate limits: %w", err)
		}
	}

	for _, prl := range all {
		fmt.Println()
		fmt.Print(renderRateLimits(prl.Project.Name, prl.Limits))
	}
	return nil
}

func renderRateLimits(title string, limits []model.RateLimit) string {
	rows := make([][]string, 0, len(limits))
	for _, rl := range limits {
		rows = append(rows, []string{
			rl.Model,
			cli.FormatNumber(int64(rl.MaxRequestsPer1Minute)),
			cli.FormatNumber(int64(rl.MaxTokensPer1Minute)),
			cli.FormatNumber(int64(rl.MaxRequestsPer1Day)),
			rl.ID,
		})
	}
	return cli.RenderTable(cli.Table{
		Title:   title,
		Headers: []string{"Model", "Req/min", "Tokens/min", "Req/day", "ID"},
		Rows:    rows,
	})
}

func runRateLimitsUpdate(cmd *cobra.Command, args []string) error {
	rpm, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid request limit %q: %w", args[2], err)
	}
	client, err := newOrgClient()
	if err != nil {
		return err
	}
	updated, err := client.UpdateRateLimit(cmd.Context(), args[0], args[1], rpm)
	if err != nil {
		return fmt.Errorf("updating rate limit: %w", err)
	}
	fmt.Printf("  %s: %s requests/min\n", updated.Model, cli.FormatNumber(int64(updated.MaxRequestsPer1Minute)))
	return nil
}

func runTemplateSave(cmd *cobra.Command, args []string) error {
	client, err := newOrgClient()
	if err != nil {
		return err
	}
	limits, err := client.ListRateLimits(cmd.Context(), flagRateLimitsProject)
	if err != nil {
		return fmt.Errorf("listing rate limits: %w", err)
	}

	ts := templateStore()
	tmpl := model.TemplateFromLimits(args[0], limits)
	if err := ts.Save(tmpl); err != nil {
		return err
	}
	fmt.Printf("  Saved %d limits to %s\n", len(tmpl.Limits), ts.Path(tmpl.Name))
	return nil
}

func runTemplateShow(_ *cobra.Command, args []string) error {
	tmpl, err := templateStore().Load(args[0])
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(tmpl.Limits))
	for _, l := range tmpl.Limits {
		rows = append(rows, []string{l.Model, cli.FormatNumber(int64(l.MaxRequestsPer1Minute))})
	}
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   tmpl.Name,
		Headers: []string{"Model", "Req/min"},
		Rows:    rows,
	}))
	return nil
}

func runTemplateApply(cmd *cobra.Command, args []string) error {
	tmpl, err := templateStore().Load(args[0])
	if err != nil {
		return err
	}
	client, err := newOrgClient()
	if err != nil {
		return err
	}

	res, err := client.ApplyTemplate(cmd.Context(), flagRateLimitsProject, tmpl)
	for _, rl := range res.Updated {
		fmt.Printf("  Updated %s: %s requests/min\n", rl.Model, cli.FormatNumber(int64(rl.MaxRequestsPer1Minute)))
	}
	if err != nil {
		return fmt.Errorf("applying template %s: %w", tmpl.Name, err)
	}
	if len(res.Unchanged) > 0 {
		fmt.Printf("  Unchanged: %d models\n", len(res.Unchanged))
	}
	for _, m := range res.Missing {
		fmt.Println(cli.Warn("  No rate limit for " + m + " in this project"))
	}
	return nil
}

func runTemplateList(_ *cobra.Command, _ []string) error {
	ts := templateStore()
	names, err := ts.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("  No templates saved.")
		return nil
	}
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}
