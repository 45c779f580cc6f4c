package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/farrandale/plscrape/internal/browser"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration. Endpoint URLs come from the
// environment (or a .env file), never from the config file.
type Config struct {
	Scrape  ScrapeConfig  `mapstructure:"scrape"`
	Pacing  PacingConfig  `mapstructure:"pacing"`
	Extract ExtractConfig `mapstructure:"extract"`
	Logging LoggingConfig `mapstructure:"logging"`
	Output  OutputConfig  `mapstructure:"output"`
}

// ScrapeConfig controls the browser session and navigation waits.
type ScrapeConfig struct {
	TableURL            string   `mapstructure:"table_url"`
	StatsURL            string   `mapstructure:"stats_url"`
	Headless            bool     `mapstructure:"headless"`
	NavTimeout          int      `mapstructure:"nav_timeout"`          // seconds
	ReadyTimeout        int      `mapstructure:"ready_timeout"`        // seconds
	PollInterval        int      `mapstructure:"poll_interval"`        // milliseconds
	InterstitialTimeout int      `mapstructure:"interstitial_timeout"` // seconds
	PaginateRetries     int      `mapstructure:"paginate_retries"`
	Resume              bool     `mapstructure:"resume"`
	Seasons             []string `mapstructure:"seasons"` // empty means all
}

// PacingConfig bounds the random pre-action delay.
type PacingConfig struct {
	MinSeconds int `mapstructure:"min_seconds"`
	MaxSeconds int `mapstructure:"max_seconds"`
}

// ExtractConfig controls parallel snapshot parsing.
type ExtractConfig struct {
	Workers int `mapstructure:"workers"`
}

// LoggingConfig mirrors utils.LogConfig.
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig controls log file rotation.
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// OutputConfig places snapshots, datasets, reports and the export.
type OutputConfig struct {
	BaseDir    string `mapstructure:"base_dir"`
	ExportFile string `mapstructure:"export_file"`
}

// LoadConfig reads .env, the optional config file and the environment.
func LoadConfig(configPath string) (*Config, error) {
	// Endpoint URLs live in .env, matching how they are provisioned.
	// A missing .env is fine; the variables may be exported directly.
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".plscrape"))
		}
	}

	setDefaults(v)

	if err := v.BindEnv("scrape.table_url", "TABLE_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("scrape.stats_url", "STATS_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No config file, defaults apply.
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scrape.headless", true)
	v.SetDefault("scrape.nav_timeout", 60)
	v.SetDefault("scrape.ready_timeout", 30)
	v.SetDefault("scrape.poll_interval", 500)
	v.SetDefault("scrape.interstitial_timeout", 5)
	v.SetDefault("scrape.paginate_retries", 3)
	v.SetDefault("scrape.resume", true)

	v.SetDefault("pacing.min_seconds", 5)
	v.SetDefault("pacing.max_seconds", 10)

	v.SetDefault("extract.workers", 8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)

	v.SetDefault("output.base_dir", "output")
	v.SetDefault("output.export_file", "pl_data.csv")
}

// ValidateForScrape checks the parts only the scrape phase needs.
func (c *Config) ValidateForScrape() error {
	if c.Scrape.TableURL == "" {
		return fmt.Errorf("TABLE_URL is not set")
	}
	if c.Scrape.StatsURL == "" {
		return fmt.Errorf("STATS_URL is not set")
	}
	if c.Pacing.MinSeconds < 0 || c.Pacing.MaxSeconds < c.Pacing.MinSeconds {
		return fmt.Errorf("invalid pacing bounds: min=%d max=%d",
			c.Pacing.MinSeconds, c.Pacing.MaxSeconds)
	}
	return nil
}

// NavigatorConfig maps the scrape settings onto the navigator.
func (c *Config) NavigatorConfig() browser.NavigatorConfig {
	return browser.NavigatorConfig{
		NavTimeout:          time.Duration(c.Scrape.NavTimeout) * time.Second,
		ReadyTimeout:        time.Duration(c.Scrape.ReadyTimeout) * time.Second,
		PollInterval:        time.Duration(c.Scrape.PollInterval) * time.Millisecond,
		InterstitialTimeout: time.Duration(c.Scrape.InterstitialTimeout) * time.Second,
		PaginateRetries:     c.Scrape.PaginateRetries,
	}
}

// Pacer builds the configured pacing strategy.
func (c *Config) Pacer() browser.Pacer {
	return browser.NewRandomPacer(
		time.Duration(c.Pacing.MinSeconds)*time.Second,
		time.Duration(c.Pacing.MaxSeconds)*time.Second,
	)
}

// SeasonList resolves the configured season filter against the known
// seasons; empty means all of them.
func (c *Config) SeasonList() ([]models.Season, error) {
	if len(c.Scrape.Seasons) == 0 {
		return models.Seasons, nil
	}
	out := make([]models.Season, 0, len(c.Scrape.Seasons))
	for _, year := range c.Scrape.Seasons {
		season, ok := models.SeasonByYear(year)
		if !ok {
			return nil, fmt.Errorf("unknown season %q", year)
		}
		out = append(out, season)
	}
	return out, nil
}

// SnapshotDir is where rendered pages are persisted.
func (c *Config) SnapshotDir() string {
	return filepath.Join(c.Output.BaseDir, "snapshots")
}

// DatasetDir is where intermediate extracted tables are persisted.
func (c *Config) DatasetDir() string {
	return filepath.Join(c.Output.BaseDir, "datasets")
}

// ExportPath is the final delimited export.
func (c *Config) ExportPath() string {
	return filepath.Join(c.Output.BaseDir, c.Output.ExportFile)
}
