// Package dataset persists the extractors' intermediate tables, one
// file per season per category, in a compressed binary form consumed
// only by the consolidator.
package dataset

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andybalholm/brotli"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/utils"
)

const (
	tablesDir = "tables_ds"
	statsDir  = "stats_ds"
	fileExt   = ".dsb"
)

// TablePath returns the standings dataset path for one season.
func TablePath(baseDir, season string) string {
	return filepath.Join(baseDir, tablesDir, season+fileExt)
}

// StatsPath returns the statistics dataset path for one season.
func StatsPath(baseDir, season string) string {
	return filepath.Join(baseDir, statsDir, season+fileExt)
}

// WriteTableRows persists one season's standings.
func WriteTableRows(path string, rows []models.TableRow) error {
	return write(path, rows)
}

// ReadTableRows loads one season's standings.
func ReadTableRows(path string) ([]models.TableRow, error) {
	var rows []models.TableRow
	if err := read(path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// statRecordWire flattens StatRecord for gob. Gob drops zero-valued
// fields, so a pointer to 0 would decode as nil; an explicit Null flag
// keeps observed zeros and absent values apart.
type statRecordWire struct {
	Team   string
	Season string
	Metric string
	Value  float64
	Null   bool
}

// WriteStatRecords persists one season's statistics observations.
func WriteStatRecords(path string, records []models.StatRecord) error {
	wire := make([]statRecordWire, len(records))
	for i, r := range records {
		wire[i] = statRecordWire{Team: r.Team, Season: r.Season, Metric: r.Metric}
		if r.Value == nil {
			wire[i].Null = true
		} else {
			wire[i].Value = *r.Value
		}
	}
	return write(path, wire)
}

// ReadStatRecords loads one season's statistics observations.
func ReadStatRecords(path string) ([]models.StatRecord, error) {
	var wire []statRecordWire
	if err := read(path, &wire); err != nil {
		return nil, err
	}
	records := make([]models.StatRecord, len(wire))
	for i, w := range wire {
		records[i] = models.StatRecord{Team: w.Team, Season: w.Season, Metric: w.Metric}
		if !w.Null {
			v := w.Value
			records[i].Value = &v
		}
	}
	return records, nil
}

func write(path string, v interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset %s: %w", path, err)
	}
	defer f.Close()

	bw := brotli.NewWriter(f)
	if err := gob.NewEncoder(bw).Encode(v); err != nil {
		return fmt.Errorf("encode dataset %s: %w", path, err)
	}
	if err := bw.Close(); err != nil {
		return fmt.Errorf("flush dataset %s: %w", path, err)
	}

	utils.Debugf("dataset written: %s", path)
	return nil
}

func read(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewDecoder(brotli.NewReader(f)).Decode(v); err != nil {
		return fmt.Errorf("decode dataset %s: %w", path, err)
	}
	return nil
}
