// Package consolidate joins the two extracted tables into the final
// export. It is the last stop before downstream analysis: strict about
// keys, explicit about nulls.
package consolidate

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/utils"
)

// droppedMetrics are statistics the standings table already carries;
// keeping both sides would duplicate columns in the export.
var droppedMetrics = map[string]bool{
	"wins":           true,
	"losses":         true,
	"goals":          true,
	"goals_conceded": true,
}

// Build joins standings and statistics on (team, season), derives the
// position tier and normalizes count metrics to per-game values. An
// unmatched key on either side indicates a systemic extraction failure
// and fails the whole run; partial output here would silently understate
// the dataset.
func Build(rows []models.TableRow, stats []models.StatRecord) ([]models.ConsolidatedRecord, error) {
	tableByKey := make(map[string]models.TableRow, len(rows))
	for _, r := range rows {
		tableByKey[r.Team+"|"+r.Season] = r
	}

	statsByKey := make(map[string]map[string]*float64)
	for _, s := range stats {
		key := s.Key()
		// Key membership is checked before the dropped-metric skip: a
		// phantom team is an extraction failure whatever metric it
		// arrived under.
		if _, ok := tableByKey[key]; !ok {
			return nil, fmt.Errorf("statistics for %s/%s have no standings row", s.Team, s.Season)
		}
		if droppedMetrics[s.Metric] {
			continue
		}
		if statsByKey[key] == nil {
			statsByKey[key] = make(map[string]*float64)
		}
		if _, dup := statsByKey[key][s.Metric]; dup {
			return nil, fmt.Errorf("duplicate metric %s for %s/%s", s.Metric, s.Team, s.Season)
		}
		statsByKey[key][s.Metric] = s.Value
	}

	records := make([]models.ConsolidatedRecord, 0, len(rows))
	for _, r := range rows {
		key := r.Team + "|" + r.Season
		metricValues, ok := statsByKey[key]
		if !ok {
			return nil, fmt.Errorf("standings row %s/%s has no statistics", r.Team, r.Season)
		}
		if r.Played <= 0 {
			return nil, fmt.Errorf("standings row %s/%s has no games played", r.Team, r.Season)
		}

		perGame := make(map[string]*float64, len(metricValues))
		for slug, v := range metricValues {
			if v == nil {
				perGame[slug] = nil
				continue
			}
			n := *v / float64(r.Played)
			perGame[slug] = &n
		}

		records = append(records, models.ConsolidatedRecord{
			Team:   r.Team,
			Season: r.Season,
			Tier:   models.Tier(r.Position),
			Table:  r,
			Stats:  perGame,
		})
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Season != records[j].Season {
			return records[i].Season < records[j].Season
		}
		return records[i].Table.Position < records[j].Table.Position
	})

	return records, nil
}

// metricColumns is the export's statistics column order: the closed
// metric set in site order, minus unavailable and table-duplicated
// metrics.
func metricColumns() []models.Metric {
	cols := make([]models.Metric, 0, len(models.Metrics))
	for _, m := range models.Metrics {
		if m.Unavailable || droppedMetrics[m.Slug] {
			continue
		}
		cols = append(cols, m)
	}
	return cols
}

// ExportCSV writes the final delimited table, `;` separated, one row
// per (team, season). Count columns from the standings side (won, lost,
// goals for, goals against) are normalized per game like the statistics;
// position, played, drawn, goal difference and points stay absolute.
// Null metric values export as empty cells, never as zero.
func ExportCSV(path string, records []models.ConsolidatedRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	metrics := metricColumns()
	header := []string{
		"season", "team", "short_name", "position", "tier",
		"played", "won", "drawn", "lost",
		"goals_for", "goals_against", "goal_difference", "points",
	}
	for _, m := range metrics {
		header = append(header, m.Slug)
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}

	for _, rec := range records {
		t := rec.Table
		if t.Played <= 0 {
			return fmt.Errorf("export row %s/%s has no games played", rec.Team, rec.Season)
		}
		played := float64(t.Played)
		row := []string{
			rec.Season,
			rec.Team,
			t.ShortName,
			strconv.Itoa(t.Position),
			rec.Tier,
			strconv.Itoa(t.Played),
			formatFloat(float64(t.Won) / played),
			strconv.Itoa(t.Drawn),
			formatFloat(float64(t.Lost) / played),
			formatFloat(float64(t.GoalsFor) / played),
			formatFloat(float64(t.GoalsAgainst) / played),
			strconv.Itoa(t.GoalDifference),
			strconv.Itoa(t.Points),
		}
		for _, m := range metrics {
			v, ok := rec.Stats[m.Slug]
			if !ok || v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, formatFloat(*v))
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write export row %s/%s: %w", rec.Team, rec.Season, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}

	utils.Infof("export written: %s (%d rows)", path, len(records))
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
