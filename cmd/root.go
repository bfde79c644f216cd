package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/theirongolddev/orgburn/internal/cli"
	"github.com/theirongolddev/orgburn/internal/config"
	"github.com/theirongolddev/orgburn/internal/directory"
	"github.com/theirongolddev/orgburn/internal/model"
	"github.com/theirongolddev/orgburn/internal/orgapi"
	"github.com/theirongolddev/orgburn/internal/pipeline"
	"github.com/theirongolddev/orgburn/internal/store"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagFiles    []string
	flagBudgets  string
	flagUserInfo string
	flagNoCache  bool
	flagQuiet    bool
	flagVerbose  bool
	flagTZ       string
)

// appCfg is the configuration loaded before any command runs.
var appCfg = config.DefaultConfig()

var errNoExports = errors.New("no usage exports given: pass --file or set general.export_paths in the config")

var rootCmd = &cobra.Command{
	Use:               "orgburn",
	Short:             "Organization API usage and budget CLI",
	Long:              "Analyze organization API usage exports: cost by user, date, model and project, budgets and overages.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&flagFiles, "file", "f", nil, "Usage export file or directory (repeatable)")
	rootCmd.PersistentFlags().StringVar(&flagBudgets, "budgets", "", "Project budget file (default from config or project_budgets.json)")
	rootCmd.PersistentFlags().StringVar(&flagUserInfo, "userinfo", "", "User directory snapshot (default from config or userinfo.json)")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagTZ, "tz", "", "Time zone for calendar dates (default from config or local)")
}

func setup(_ *cobra.Command, _ []string) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	switch {
	case flagVerbose:
		log.SetLevel(log.DebugLevel)
	case flagQuiet:
		log.SetLevel(log.WarnLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	if envFile := config.LoadEnv(); envFile != "" {
		log.WithField("file", envFile).Debug("loaded environment file")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Warn("config unreadable, using defaults")
		cfg = config.DefaultConfig()
	}
	appCfg = cfg
	cli.SetTheme(cfg.Appearance.Theme)
	return nil
}

func exportPaths() ([]string, error) {
	if len(flagFiles) > 0 {
		return flagFiles, nil
	}
	if len(appCfg.General.ExportPaths) > 0 {
		return appCfg.General.ExportPaths, nil
	}
	return nil, errNoExports
}

func location() (*time.Location, error) {
	if flagTZ != "" {
		return config.Location(flagTZ)
	}
	return config.Location(appCfg.General.Timezone)
}

func useCache() bool {
	return !flagNoCache && appCfg.General.UseCache
}

// loadData is the shared data loading path used by all usage commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	paths, err := exportPaths()
	if err != nil {
		return nil, err
	}
	loc, err := location()
	if err != nil {
		return nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning exports...\n")
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%10 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	var result *pipeline.LoadResult
	if useCache() {
		result = loadCached(paths, loc, progressFn)
	}
	if result == nil {
		result, err = pipeline.Load(paths, loc, progressFn)
		if err != nil {
			return nil, err
		}
		if !flagQuiet && result.TotalFiles > 0 {
			fmt.Fprintf(os.Stderr, "\r  Parsed %s records from %d files    \n",
				cli.FormatNumber(int64(len(result.Records))),
				result.ParsedFiles,
			)
		}
	}

	for _, fe := range result.Errors {
		log.WithError(fe).Warn("skipping unreadable export")
	}
	return result, nil
}

// loadCached returns nil when the cache cannot serve the load.
func loadCached(paths []string, loc *time.Location, progressFn pipeline.ProgressFunc) *pipeline.LoadResult {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		log.WithError(err).Debug("cache unavailable, doing full parse")
		return nil
	}
	defer func() { _ = cache.Close() }()

	cr, err := pipeline.LoadWithCache(paths, loc, cache, progressFn)
	if err != nil {
		log.WithError(err).Debug("cache error, falling back to full parse")
		return nil
	}

	if !flagQuiet && cr.TotalFiles > 0 {
		if cr.Reparsed == 0 {
			fmt.Fprintf(os.Stderr, "\r  Loaded %s records from cache    \n",
				cli.FormatNumber(int64(len(cr.Records))))
		} else {
			fmt.Fprintf(os.Stderr, "\r  %d cached + %d reparsed files    \n", cr.CacheHits, cr.Reparsed)
		}
	}
	return &cr.LoadResult
}

func budgetFile() *store.BudgetFile {
	if flagBudgets != "" {
		return store.NewBudgetFile(flagBudgets)
	}
	return store.NewBudgetFile(config.BudgetsPath(appCfg))
}

func thresholds() pipeline.Thresholds {
	th := pipeline.Thresholds{
		Warning:  appCfg.Budget.WarningPercent,
		Critical: appCfg.Budget.CriticalPercent,
	}
	if th.Warning <= 0 || th.Critical <= 0 {
		return pipeline.DefaultThresholds()
	}
	return th
}

func userInfoPath() string {
	if flagUserInfo != "" {
		return flagUserInfo
	}
	return config.UserInfoPath(appCfg)
}

// newOrgClient builds an organization API client from config and environment.
func newOrgClient() (*orgapi.Client, error) {
	return orgapi.NewClient(orgapi.Config{
		APIKey:            config.GetAdminAPIKey(appCfg),
		OrgID:             config.GetOrgID(appCfg),
		BaseURL:           appCfg.AdminAPI.BaseURL,
		RequestsPerSecond: appCfg.AdminAPI.RequestsPerSecond,
	})
}

// loadDirectory resolves user names. With an admin key the directory comes
// from the org API through the snapshot cache; without one only the snapshot
// file is read. It never fails: unknown users fall back to the Unknown label.
func loadDirectory(ctx context.Context) *directory.Directory {
	path := userInfoPath()

	client, err := newOrgClient()
	if err != nil {
		dir, snapErr := directory.LoadSnapshot(path)
		if snapErr != nil {
			log.WithError(snapErr).Debug("no user directory snapshot")
			return directory.New(nil)
		}
		return dir
	}

	dir, err := newDirectoryCache(client, path).Get(ctx)
	if err != nil {
		log.WithError(err).Warn("user directory unavailable, showing raw ids")
	}
	return dir
}

func newDirectoryCache(client *orgapi.Client, path string) *directory.Cache {
	return directory.NewCache(client, path, config.CacheTTL(appCfg))
}

// loadProjects fetches the project directory when an admin key is configured.
// Without one, project ids are shown as-is.
func loadProjects(ctx context.Context) []model.Project {
	client, err := newOrgClient()
	if err != nil {
		return nil
	}
	projects, err := client.ListProjects(ctx, true)
	if err != nil {
		log.WithError(err).Warn("project directory unavailable, showing raw ids")
		return nil
	}
	return projects
}

func printFileWarnings(result *pipeline.LoadResult) {
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d files could not be parsed\n", result.FileErrors)
	}
}
