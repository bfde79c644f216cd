// Package cmd implements the orgburn CLI commands.
package cmd

import (
	"fmt"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	if len(cfg.General.ExportPaths) > 0 {
		for _, p := range cfg.General.ExportPaths {
			fmt.Printf("    Export path:   %s\n", p)
		}
	} else {
		fmt.Println("    Export path:   not set (use --file)")
	}
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "Local"
	}
	fmt.Printf("    Time zone:     %s\n", tz)
	fmt.Printf("    Parse cache:   %v\n", cfg.General.UseCache)
	fmt.Printf("    Templates:     %s\n", config.TemplatesDir(cfg))
	fmt.Println()

	fmt.Println("  [Admin API]")
	if apiKey := config.GetAdminAPIKey(cfg); apiKey != "" {
		fmt.Printf("    API key: %s\n", cli.MaskKey(apiKey))
	} else {
		fmt.Printf("    API key: not configured (set %s)\n", config.EnvAPIKey)
	}
	if orgID := config.GetOrgID(cfg); orgID != "" {
		fmt.Printf("    Org ID:  %s\n", orgID)
	}
	if cfg.AdminAPI.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.AdminAPI.BaseURL)
	}
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    File:     %s\n", budgetFile().Path())
	th := thresholds()
	fmt.Printf("    Warning:  %.0f%%\n", th.Warning)
	fmt.Printf("    Critical: %.0f%%\n", th.Critical)
	fmt.Println()

	fmt.Println("  [Directory]")
	fmt.Printf("    User info: %s\n", userInfoPath())
	fmt.Printf("    Cache TTL: %s\n", config.CacheTTL(cfg))
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval: %ds\n", cfg.Daemon.IntervalSeconds)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `orgburn setup` to reconfigure.")
	return nil
}
