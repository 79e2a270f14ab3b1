package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chtmp(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
}

func TestLoadDefaults(t *testing.T) {
	chtmp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "american_air_experts", cfg.Business)
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "leads.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 70, cfg.Scoring.HotThreshold)
	assert.Equal(t, 40, cfg.Scoring.WarmThreshold)
	assert.False(t, cfg.Scoring.AutoScore)
	assert.Equal(t, 199, cfg.Pricing.Single)
	assert.Equal(t, 349, cfg.Pricing.Dual)
	assert.Equal(t, 125, cfg.Pricing.Dryer)
	assert.Equal(t, "Charlotte", cfg.Pricing.Area)
	assert.Contains(t, cfg.Sources.Reddit.Subreddits, "Charlotte")
	assert.Contains(t, cfg.Sources.Reddit.Keywords, "air duct")
	assert.Equal(t, 50, cfg.Sources.Reddit.PostLimit)
	assert.Equal(t, []string{"charlotte", "raleigh", "greensboro"}, cfg.Sources.Classifieds.Cities)
	assert.NotEmpty(t, cfg.Sources.Search.Queries)
	assert.Empty(t, cfg.Sources.Facebook.Groups)
	assert.Equal(t, 5, cfg.Sources.Facebook.ScrollPasses)
	assert.Equal(t, 60, cfg.Sources.Facebook.LoginWaitSecs)
}

func TestLoadFromYAML(t *testing.T) {
	chtmp(t)

	yaml := `
business: forgeborn
store:
  driver: postgres
  database_url: postgres://localhost/leads
log:
  level: debug
  format: console
sources:
  reddit:
    subreddits: [jewelry, DIY]
    keywords: [casting, silver]
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "forgeborn", cfg.Business)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, []string{"jewelry", "DIY"}, cfg.Sources.Reddit.Subreddits)
	assert.Equal(t, []string{"casting", "silver"}, cfg.Sources.Reddit.Keywords)
	// Defaults still apply for unset values
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 199, cfg.Pricing.Single)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	chtmp(t)

	yaml := `
store:
  driver: sqlite
`
	dir, _ := os.Getwd()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("LEADGEN_STORE_DRIVER", "postgres")
	t.Setenv("LEADGEN_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadTargets(t *testing.T) {
	chtmp(t)
	dir, _ := os.Getwd()

	targets := `
facebook:
  groups:
    - https://www.facebook.com/groups/charlottehomeowners
    - https://www.facebook.com/groups/lakenormancommunity
search:
  queries: [only this one]
`
	path := filepath.Join(dir, "targets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(targets), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	require.NoError(t, LoadTargets(path, &cfg.Sources))
	assert.Len(t, cfg.Sources.Facebook.Groups, 2)
	assert.Equal(t, []string{"only this one"}, cfg.Sources.Search.Queries)
	// Untouched lists keep their defaults.
	assert.Contains(t, cfg.Sources.Reddit.Subreddits, "Charlotte")
	assert.NotEmpty(t, cfg.Sources.Facebook.Keywords)
}

func TestLoadTargetsMissingFile(t *testing.T) {
	var src SourcesConfig
	assert.Error(t, LoadTargets("/nonexistent/targets.yaml", &src))
}

func TestValidate(t *testing.T) {
	chtmp(t)
	cfg, err := Load()
	require.NoError(t, err)

	assert.NoError(t, cfg.Validate("scrape"))
	assert.NoError(t, cfg.Validate("serve"))
	assert.NoError(t, cfg.Validate("score"))

	cfg.Server.Port = 0
	err = cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")

	cfg.Store.Driver = "mysql"
	err = cfg.Validate("score")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")

	assert.Error(t, cfg.Validate("unknown"))
}

func TestValidateScrapeNoTargets(t *testing.T) {
	chtmp(t)
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Sources.Reddit.Subreddits = nil
	cfg.Sources.Classifieds.Cities = nil
	cfg.Sources.Search.Queries = nil
	cfg.Sources.Facebook.Groups = nil

	err = cfg.Validate("scrape")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "at least one source")
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	assert.NotNil(t, zap.L())

	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))

	assert.Error(t, InitLogger(LogConfig{Level: "bogus", Format: "json"}))
}
