package core

import (
	"fmt"

	"github.com/farrandale/plscrape/internal/consolidate"
	"github.com/farrandale/plscrape/internal/dataset"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/utils"
	"github.com/google/uuid"
)

// Merger loads the per-season datasets, consolidates them and writes
// the final export. A key mismatch anywhere fails the whole merge: it
// means extraction broke systemically, not that one page glitched.
type Merger struct {
	cfg *Config
}

// NewMerger wires the merge stage.
func NewMerger(cfg *Config) *Merger {
	return &Merger{cfg: cfg}
}

// Run merges every season's standings and statistics into the export.
func (m *Merger) Run(seasons []models.Season) (*models.RunManifest, error) {
	manifest := models.NewRunManifest(uuid.New().String(), "merge")
	defer manifest.Finish()

	var allRows []models.TableRow
	var allStats []models.StatRecord

	for _, season := range seasons {
		rows, err := dataset.ReadTableRows(dataset.TablePath(m.cfg.DatasetDir(), season.Year))
		if err != nil {
			manifest.Record(models.TargetOutcome{
				Key:    season.Year + "/table",
				Status: models.StatusFailed,
				Error:  err.Error(),
			})
			return manifest, fmt.Errorf("season %s standings dataset: %w", season.Year, err)
		}
		stats, err := dataset.ReadStatRecords(dataset.StatsPath(m.cfg.DatasetDir(), season.Year))
		if err != nil {
			manifest.Record(models.TargetOutcome{
				Key:    season.Year + "/stats",
				Status: models.StatusFailed,
				Error:  err.Error(),
			})
			return manifest, fmt.Errorf("season %s statistics dataset: %w", season.Year, err)
		}

		allRows = append(allRows, rows...)
		allStats = append(allStats, stats...)
		manifest.Record(models.TargetOutcome{Key: season.Year, Status: models.StatusSucceeded})
	}

	records, err := consolidate.Build(allRows, allStats)
	if err != nil {
		return manifest, fmt.Errorf("consolidate: %w", err)
	}

	path := m.cfg.ExportPath()
	if err := consolidate.ExportCSV(path, records); err != nil {
		return manifest, err
	}

	utils.Infof("merge run %s: %d consolidated rows", manifest.RunID, len(records))
	return manifest, nil
}
