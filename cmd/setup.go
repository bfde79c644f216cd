package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	keyHint := "Leave blank to keep using " + config.EnvAPIKey
	if existing := config.GetAdminAPIKey(cfg); existing != "" {
		keyHint = "Current: " + cli.MaskKey(existing) + " (leave blank to keep)"
	}

	var (
		apiKey     string
		orgID      = cfg.AdminAPI.OrgID
		exportPath = strings.Join(cfg.General.ExportPaths, ",")
		timezone   = cfg.General.Timezone
		themeName  = cfg.Appearance.Theme
	)

	themeOptions := make([]huh.Option[string], 0, len(cli.Themes))
	for _, t := range cli.Themes {
		themeOptions = append(themeOptions, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Admin API key").
				Description(keyHint).
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewInput().
				Title("Organization ID").
				Description("Optional; sent as the OpenAI-Organization header").
				Value(&orgID),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Usage export paths").
				Description("Files or directories, comma separated").
				Value(&exportPath),
			huh.NewInput().
				Title("Time zone").
				Description("IANA name such as Europe/Berlin; blank for local").
				Value(&timezone).
				Validate(func(s string) error {
					_, err := config.Location(strings.TrimSpace(s))
					return err
				}),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&themeName),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled.")
			return nil
		}
		return err
	}

	if key := strings.TrimSpace(apiKey); key != "" {
		cfg.AdminAPI.APIKey = key
	}
	cfg.AdminAPI.OrgID = strings.TrimSpace(orgID)
	cfg.General.ExportPaths = splitPaths(exportPath)
	cfg.General.Timezone = strings.TrimSpace(timezone)
	cfg.Appearance.Theme = themeName

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `orgburn setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

func splitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
