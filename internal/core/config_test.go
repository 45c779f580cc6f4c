package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, "scrape: {}\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if !cfg.Scrape.Headless {
		t.Error("headless default not applied")
	}
	if cfg.Scrape.NavTimeout != 60 || cfg.Scrape.ReadyTimeout != 30 {
		t.Errorf("timeout defaults = %d/%d", cfg.Scrape.NavTimeout, cfg.Scrape.ReadyTimeout)
	}
	if cfg.Pacing.MinSeconds != 5 || cfg.Pacing.MaxSeconds != 10 {
		t.Errorf("pacing defaults = %d/%d", cfg.Pacing.MinSeconds, cfg.Pacing.MaxSeconds)
	}
	if cfg.Extract.Workers != 8 {
		t.Errorf("workers default = %d", cfg.Extract.Workers)
	}
	if cfg.Output.BaseDir != "output" || cfg.Output.ExportFile != "pl_data.csv" {
		t.Errorf("output defaults = %q/%q", cfg.Output.BaseDir, cfg.Output.ExportFile)
	}
}

func TestLoadConfigFileOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, `
scrape:
  headless: false
  seasons: ["2021_22", "2022_23"]
pacing:
  min_seconds: 1
  max_seconds: 2
`))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Scrape.Headless {
		t.Error("headless override not applied")
	}
	if cfg.Pacing.MinSeconds != 1 || cfg.Pacing.MaxSeconds != 2 {
		t.Errorf("pacing override = %d/%d", cfg.Pacing.MinSeconds, cfg.Pacing.MaxSeconds)
	}

	seasons, err := cfg.SeasonList()
	if err != nil {
		t.Fatalf("SeasonList() error = %v", err)
	}
	if len(seasons) != 2 || seasons[0].Year != "2021_22" {
		t.Errorf("SeasonList() = %v", seasons)
	}
}

func TestLoadConfigURLsFromEnv(t *testing.T) {
	t.Setenv("TABLE_URL", "https://example.com/tables")
	t.Setenv("STATS_URL", "https://example.com/stats")

	cfg, err := LoadConfig(writeConfigFile(t, "scrape: {}\n"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Scrape.TableURL != "https://example.com/tables" {
		t.Errorf("TableURL = %q", cfg.Scrape.TableURL)
	}
	if cfg.Scrape.StatsURL != "https://example.com/stats" {
		t.Errorf("StatsURL = %q", cfg.Scrape.StatsURL)
	}
	if err := cfg.ValidateForScrape(); err != nil {
		t.Errorf("ValidateForScrape() error = %v", err)
	}
}

func TestValidateForScrape(t *testing.T) {
	cfg := &Config{}
	cfg.Pacing.MinSeconds = 5
	cfg.Pacing.MaxSeconds = 10
	if err := cfg.ValidateForScrape(); err == nil {
		t.Error("missing URLs accepted")
	}

	cfg.Scrape.TableURL = "https://example.com/tables"
	cfg.Scrape.StatsURL = "https://example.com/stats"
	if err := cfg.ValidateForScrape(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}

	cfg.Pacing.MaxSeconds = 1
	if err := cfg.ValidateForScrape(); err == nil {
		t.Error("inverted pacing bounds accepted")
	}
}

func TestSeasonListUnknownSeason(t *testing.T) {
	cfg := &Config{}
	cfg.Scrape.Seasons = []string{"1999_00"}
	if _, err := cfg.SeasonList(); err == nil {
		t.Error("unknown season accepted")
	}
}

func TestOutputPaths(t *testing.T) {
	cfg := &Config{}
	cfg.Output.BaseDir = "out"
	cfg.Output.ExportFile = "data.csv"

	if got := cfg.SnapshotDir(); got != filepath.Join("out", "snapshots") {
		t.Errorf("SnapshotDir() = %q", got)
	}
	if got := cfg.DatasetDir(); got != filepath.Join("out", "datasets") {
		t.Errorf("DatasetDir() = %q", got)
	}
	if got := cfg.ExportPath(); got != filepath.Join("out", "data.csv") {
		t.Errorf("ExportPath() = %q", got)
	}
}
