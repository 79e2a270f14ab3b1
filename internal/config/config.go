package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration. Loaded once at startup and
// passed explicitly; nothing reads viper after Load returns.
type Config struct {
	Business string        `yaml:"business" mapstructure:"business"`
	Store    StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch    FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Sources  SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Scoring  ScoringConfig `yaml:"scoring" mapstructure:"scoring"`
	Pricing  PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Server   ServerConfig  `yaml:"server" mapstructure:"server"`
	Log      LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetchConfig configures the HTTP fetch client.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
}

// SourcesConfig holds the per-source target lists. These are static inputs:
// the pipeline never discovers new targets on its own.
type SourcesConfig struct {
	Reddit      RedditConfig      `yaml:"reddit" mapstructure:"reddit"`
	Classifieds ClassifiedsConfig `yaml:"classifieds" mapstructure:"classifieds"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Facebook    FacebookConfig    `yaml:"facebook" mapstructure:"facebook"`
}

// RedditConfig configures the Reddit JSON adapter.
type RedditConfig struct {
	Subreddits []string `yaml:"subreddits" mapstructure:"subreddits"`
	Keywords   []string `yaml:"keywords" mapstructure:"keywords"`
	PostLimit  int      `yaml:"post_limit" mapstructure:"post_limit"`
}

// ClassifiedsConfig configures the craigslist HTML adapter.
type ClassifiedsConfig struct {
	Cities  []string `yaml:"cities" mapstructure:"cities"`
	Queries []string `yaml:"queries" mapstructure:"queries"`
}

// SearchConfig configures the web-search HTML adapter.
type SearchConfig struct {
	Queries []string `yaml:"queries" mapstructure:"queries"`
}

// FacebookConfig configures the browser-automation group scraper.
// Credentials are never stored in config; they arrive per run.
type FacebookConfig struct {
	Groups        []string `yaml:"groups" mapstructure:"groups"`
	Keywords      []string `yaml:"keywords" mapstructure:"keywords"`
	ScrollPasses  int      `yaml:"scroll_passes" mapstructure:"scroll_passes"`
	LoginWaitSecs int      `yaml:"login_wait_secs" mapstructure:"login_wait_secs"`
	Headless      bool     `yaml:"headless" mapstructure:"headless"`
}

// ScoringConfig holds caller-level scoring policy. The rule tables themselves
// live in the scorer package; these are the thresholds around them.
type ScoringConfig struct {
	HotThreshold  int  `yaml:"hot_threshold" mapstructure:"hot_threshold"`
	WarmThreshold int  `yaml:"warm_threshold" mapstructure:"warm_threshold"`
	AutoScore     bool `yaml:"auto_score" mapstructure:"auto_score"`
}

// PricingConfig holds the fixed pricing and contact constants interpolated
// into DM templates.
type PricingConfig struct {
	Single   int    `yaml:"single" mapstructure:"single"`
	Dual     int    `yaml:"dual" mapstructure:"dual"`
	Dryer    int    `yaml:"dryer" mapstructure:"dryer"`
	Phone    string `yaml:"phone" mapstructure:"phone"`
	Website  string `yaml:"website" mapstructure:"website"`
	Company  string `yaml:"company" mapstructure:"company"`
	Area     string `yaml:"area" mapstructure:"area"`
}

// ServerConfig configures the trigger API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("business", "american_air_experts")
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("fetch.timeout_secs", 15)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scoring.hot_threshold", 70)
	v.SetDefault("scoring.warm_threshold", 40)
	v.SetDefault("scoring.auto_score", false)

	v.SetDefault("pricing.single", 199)
	v.SetDefault("pricing.dual", 349)
	v.SetDefault("pricing.dryer", 125)
	v.SetDefault("pricing.phone", "(980) 635-8288")
	v.SetDefault("pricing.website", "queencityductcleaning.com")
	v.SetDefault("pricing.company", "American Air Experts")
	v.SetDefault("pricing.area", "Charlotte")

	v.SetDefault("sources.reddit.subreddits", []string{
		"Charlotte", "hvacadvice", "HVAC", "Huntersville", "LakeNorman",
		"Matthews", "Gastonia", "Cornelius", "homeowners", "HomeImprovement",
		"FirstTimeHomeBuyer", "NorthCarolina",
	})
	v.SetDefault("sources.reddit.keywords", []string{
		"air duct", "duct clean", "furnace", "dryer vent", "hvac",
		"vent clean", "air quality", "dusty", "musty", "allergies",
		"just moved", "new home",
	})
	v.SetDefault("sources.reddit.post_limit", 50)

	v.SetDefault("sources.classifieds.cities", []string{"charlotte", "raleigh", "greensboro"})
	v.SetDefault("sources.classifieds.queries", []string{
		"air duct cleaning", "furnace cleaning", "dryer vent cleaning",
	})

	v.SetDefault("sources.search.queries", []string{
		"air duct cleaning needed Charlotte NC",
		"furnace cleaning recommendation Charlotte",
		"dryer vent cleaning Charlotte NC",
		"duct cleaning service near Charlotte",
	})

	v.SetDefault("sources.facebook.groups", []string{})
	v.SetDefault("sources.facebook.keywords", []string{
		"furnace", "air duct", "duct clean", "dryer vent", "hvac", "vent clean",
		"air quality", "dusty", "musty", "dirty ducts", "heat pump", "heating",
		"just moved", "new home", "just bought", "first home", "moving in",
		"new house", "just closed", "allergies", "asthma", "sneezing",
		"breathing", "mold", "mildew", "odor", "smell", "renovation", "remodel",
		"contractor", "recommend", "who do you use", "good company",
		"local company", "reliable", "need someone",
	})
	v.SetDefault("sources.facebook.scroll_passes", 5)
	v.SetDefault("sources.facebook.login_wait_secs", 60)
	v.SetDefault("sources.facebook.headless", false)
}

// Validate checks the configuration required for the given run mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Business != "", "business is required")
	check(c.Store.Driver == "sqlite" || c.Store.Driver == "postgres",
		"store.driver must be sqlite or postgres")
	check(c.Store.DatabaseURL != "", "store.database_url is required")

	switch mode {
	case "scrape":
		check(len(c.Sources.Reddit.Subreddits) > 0 ||
			len(c.Sources.Classifieds.Cities) > 0 ||
			len(c.Sources.Search.Queries) > 0 ||
			len(c.Sources.Facebook.Groups) > 0,
			"at least one source must have targets configured")
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
	case "score", "dm", "stats", "migrate":
		// store checks above are enough
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
