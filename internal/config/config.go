// Package config loads orgburn settings from config.toml, .env files and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvOrgID       = "OPENAI_ORG_KEY"
	EnvUserInfo    = "USERINFO_PATH"
	EnvBudgetsPath = "ORGBURN_BUDGETS_PATH"
)

const (
	defaultUserInfoPath = "userinfo.json"
	defaultBudgetsFile  = "project_budgets.json"
	defaultCacheTTL     = 24 * time.Hour
)

// Config holds all orgburn configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	AdminAPI   AdminAPIConfig   `toml:"admin_api"`
	Budget     BudgetConfig     `toml:"budget"`
	Directory  DirectoryConfig  `toml:"directory"`
	Daemon     DaemonConfig     `toml:"daemon"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	ExportPaths  []string `toml:"export_paths,omitempty"`
	Timezone     string   `toml:"timezone,omitempty"`
	UseCache     bool     `toml:"use_cache"`
	TemplatesDir string   `toml:"templates_dir,omitempty"`
}

// AdminAPIConfig holds organization API settings.
type AdminAPIConfig struct {
	APIKey            string  `toml:"api_key,omitempty"`
	OrgID             string  `toml:"org_id,omitempty"`
	BaseURL           string  `toml:"base_url,omitempty"`
	RequestsPerSecond float64 `toml:"requests_per_second,omitempty"`
}

// BudgetConfig holds budget tracking settings.
type BudgetConfig struct {
	File            string  `toml:"file,omitempty"`
	WarningPercent  float64 `toml:"warning_percent"`
	CriticalPercent float64 `toml:"critical_percent"`
}

// DirectoryConfig holds user directory settings.
type DirectoryConfig struct {
	UserInfoPath string `toml:"userinfo_path,omitempty"`
	CacheTTL     string `toml:"cache_ttl,omitempty"`
}

// DaemonConfig holds background service settings.
type DaemonConfig struct {
	Addr            string `toml:"addr,omitempty"`
	IntervalSeconds int    `toml:"interval_seconds,omitempty"`
	LogFile         string `toml:"log_file,omitempty"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			UseCache: true,
		},
		Budget: BudgetConfig{
			WarningPercent:  70,
			CriticalPercent: 90,
		},
		Daemon: DaemonConfig{
			Addr:            "127.0.0.1:8787",
			IntervalSeconds: 60,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orgburn")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "orgburn")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config file at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(ConfigPath(), cfg)
}

// SaveTo writes the config to path with owner-only permissions.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// LoadEnv loads the first .env file found in the working directory or the
// config directory. Variables already set in the environment win. It returns
// the file that was loaded, if any.
func LoadEnv() string {
	for _, path := range envPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

func envPaths() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}
	return append(paths, filepath.Join(ConfigDir(), ".env"))
}

// GetAdminAPIKey returns the API key from env var or config, in that order.
func GetAdminAPIKey(cfg Config) string {
	if key := os.Getenv(EnvAPIKey); key != "" {
		return key
	}
	return cfg.AdminAPI.APIKey
}

// GetOrgID returns the organization id from env var or config, in that order.
func GetOrgID(cfg Config) string {
	if id := os.Getenv(EnvOrgID); id != "" {
		return id
	}
	return cfg.AdminAPI.OrgID
}

// UserInfoPath returns the user directory snapshot location.
func UserInfoPath(cfg Config) string {
	if p := os.Getenv(EnvUserInfo); p != "" {
		return p
	}
	if cfg.Directory.UserInfoPath != "" {
		return cfg.Directory.UserInfoPath
	}
	return defaultUserInfoPath
}

// BudgetsPath returns the project budget file location.
func BudgetsPath(cfg Config) string {
	if p := os.Getenv(EnvBudgetsPath); p != "" {
		return p
	}
	if cfg.Budget.File != "" {
		return cfg.Budget.File
	}
	return defaultBudgetsFile
}

// TemplatesDir returns where rate-limit templates are stored.
func TemplatesDir(cfg Config) string {
	if cfg.General.TemplatesDir != "" {
		return cfg.General.TemplatesDir
	}
	return filepath.Join(ConfigDir(), "templates")
}

// CacheTTL returns how long a fetched user directory stays fresh.
func CacheTTL(cfg Config) time.Duration {
	if cfg.Directory.CacheTTL == "" {
		return defaultCacheTTL
	}
	d, err := time.ParseDuration(cfg.Directory.CacheTTL)
	if err != nil || d <= 0 {
		return defaultCacheTTL
	}
	return d
}

// Location resolves a time zone name. Empty or "Local" is the system zone.
func Location(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}
