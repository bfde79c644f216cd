package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFrom_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Budget.WarningPercent != 70 || cfg.Budget.CriticalPercent != 90 {
		t.Errorf("thresholds = %v/%v, want 70/90", cfg.Budget.WarningPercent, cfg.Budget.CriticalPercent)
	}
	if !cfg.General.UseCache {
		t.Error("UseCache = false, want true")
	}
}

func TestSaveToLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgburn", "config.toml")
	cfg := DefaultConfig()
	cfg.General.ExportPaths = []string{"/data/exports"}
	cfg.General.Timezone = "Asia/Seoul"
	cfg.AdminAPI.APIKey = "sk-admin-123"
	cfg.AdminAPI.OrgID = "org-abc"
	cfg.AdminAPI.RequestsPerSecond = 2.5
	cfg.Directory.CacheTTL = "6h"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if len(got.General.ExportPaths) != 1 || got.General.ExportPaths[0] != "/data/exports" {
		t.Errorf("ExportPaths = %v", got.General.ExportPaths)
	}
	if got.AdminAPI.OrgID != "org-abc" || got.AdminAPI.RequestsPerSecond != 2.5 {
		t.Errorf("AdminAPI = %+v", got.AdminAPI)
	}
	if CacheTTL(got) != 6*time.Hour {
		t.Errorf("CacheTTL = %v, want 6h", CacheTTL(got))
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AdminAPI.APIKey = "from-config"
	cfg.AdminAPI.OrgID = "org-config"
	cfg.Directory.UserInfoPath = "/config/userinfo.json"
	cfg.Budget.File = "/config/budgets.json"

	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvOrgID, "")
	t.Setenv(EnvUserInfo, "")
	t.Setenv(EnvBudgetsPath, "")
	if GetAdminAPIKey(cfg) != "from-config" || GetOrgID(cfg) != "org-config" {
		t.Error("config values should apply when env is empty")
	}
	if UserInfoPath(cfg) != "/config/userinfo.json" || BudgetsPath(cfg) != "/config/budgets.json" {
		t.Error("config paths should apply when env is empty")
	}

	t.Setenv(EnvAPIKey, "from-env")
	t.Setenv(EnvOrgID, "org-env")
	t.Setenv(EnvUserInfo, "/env/userinfo.json")
	t.Setenv(EnvBudgetsPath, "/env/budgets.json")
	if GetAdminAPIKey(cfg) != "from-env" || GetOrgID(cfg) != "org-env" {
		t.Error("env should override config")
	}
	if UserInfoPath(cfg) != "/env/userinfo.json" || BudgetsPath(cfg) != "/env/budgets.json" {
		t.Error("env paths should override config")
	}
}

func TestPathDefaults(t *testing.T) {
	t.Setenv(EnvUserInfo, "")
	t.Setenv(EnvBudgetsPath, "")
	cfg := DefaultConfig()
	if UserInfoPath(cfg) != "userinfo.json" {
		t.Errorf("UserInfoPath = %q, want userinfo.json", UserInfoPath(cfg))
	}
	if BudgetsPath(cfg) != "project_budgets.json" {
		t.Errorf("BudgetsPath = %q, want project_budgets.json", BudgetsPath(cfg))
	}
	if CacheTTL(cfg) != 24*time.Hour {
		t.Errorf("CacheTTL = %v, want 24h", CacheTTL(cfg))
	}
	cfg.Directory.CacheTTL = "soon"
	if CacheTTL(cfg) != 24*time.Hour {
		t.Errorf("CacheTTL with bad value = %v, want 24h", CacheTTL(cfg))
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Chdir(t.TempDir())

	envDir := filepath.Join(dir, "orgburn")
	if err := os.MkdirAll(envDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(envDir, ".env"), []byte("ORGBURN_TEST_VALUE=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ORGBURN_TEST_VALUE", "")
	_ = os.Unsetenv("ORGBURN_TEST_VALUE")

	if got := LoadEnv(); got != filepath.Join(envDir, ".env") {
		t.Errorf("LoadEnv() = %q, want config-dir .env", got)
	}
	if v := os.Getenv("ORGBURN_TEST_VALUE"); v != "from-dotenv" {
		t.Errorf("ORGBURN_TEST_VALUE = %q, want from-dotenv", v)
	}
}

func TestLocation(t *testing.T) {
	if loc, err := Location(""); err != nil || loc != time.Local {
		t.Errorf("Location(\"\") = %v, %v; want Local", loc, err)
	}
	if loc, err := Location("UTC"); err != nil || loc.String() != "UTC" {
		t.Errorf("Location(UTC) = %v, %v", loc, err)
	}
	if _, err := Location("Mars/Olympus"); err == nil {
		t.Error("expected error for unknown zone")
	}
}
