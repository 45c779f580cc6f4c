package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/farrandale/plscrape/internal/dataset"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/snapshot"
)

func tablePageHTML() []byte {
	var rows []string
	for i := 0; i < models.TeamsPerSeason; i++ {
		won := 25 - i
		drawn := 8
		lost := 38 - won - drawn
		gf := 70 - i
		ga := 35
		rows = append(rows, fmt.Sprintf(`<tr><td class="league-table__pos">x</td>`+
			`<td class="league-table__team"><a href="/club">`+
			`<span class="league-table__team-name league-table__team-name--long long">Team %02d FC</span>`+
			`<span class="league-table__team-name league-table__team-name--short short">T%02d</span>`+
			`</a></td> <td>38</td> <td>%d</td> <td>%d</td> <td>%d</td> `+
			`<td class="hideSmall">%d</td> <td class="hideSmall">%d</td> <td>%d</td> `+
			`<td class="league-table__points points">%d</td></tr>`,
			i+1, i+1, won, drawn, lost, gf, ga, gf-ga, 3*won+drawn))
	}
	return []byte(`<html><body><tbody class="league-table__tbody">` +
		strings.Join(rows, "\n") + `</tbody></body></html>`)
}

func statsPageHTML(rows map[string]string) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><table class="statsTable"><tbody class="statsTableContainer">`)
	for team, value := range rows {
		fmt.Fprintf(&b, `<tr class="table__row">`+
			`<td class="stats-table__name"><a href="/club" class="stats-table__cell-icon-align">`+
			`<span class="badge"></span>%s</a></td>`+
			`<td class="stats-table__main-stat">%s</td></tr>`, team, value)
	}
	b.WriteString(`</tbody></table></body></html>`)
	return []byte(b.String())
}

func TestExtractorRun(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{}
	cfg.Extract.Workers = 4
	cfg.Output.BaseDir = tmp

	store := snapshot.NewStore(cfg.SnapshotDir())
	season, _ := models.SeasonByYear("2021_22")

	saves := []struct {
		target models.FetchTarget
		html   []byte
	}{
		{models.NewTableTarget(season.Year), tablePageHTML()},
		{models.NewStatsTarget(season.Year, "shots", 1),
			statsPageHTML(map[string]string{"Alturas": "100", "Bridgewater": "200"})},
		{models.NewStatsTarget(season.Year, "shots", 2),
			statsPageHTML(map[string]string{"Bridgewater": "200", "Carnforth": "300"})},
		{models.NewStatsTarget(season.Year, "passes", 1),
			statsPageHTML(map[string]string{"Alturas": "10"})},
		{models.NewStatsTarget(season.Year, "passes", 2),
			statsPageHTML(map[string]string{"Alturas": "11", "Bridgewater": "20"})},
		{models.NewStatsTarget(season.Year, "weird_metric", 1),
			statsPageHTML(map[string]string{"Alturas": "1"})},
	}
	for _, s := range saves {
		if err := store.Save(s.target, s.html); err != nil {
			t.Fatalf("Save(%s) error = %v", s.target.Key(), err)
		}
	}

	manifest, err := NewExtractor(cfg, store).Run([]models.Season{season})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// table + shots + passes succeed, the unknown slug is skipped, the
	// conflicting team is recorded as a failed outcome.
	if manifest.Succeeded != 3 || manifest.Skipped != 1 || manifest.Failed != 1 {
		t.Errorf("manifest counters = %d/%d/%d, want 3/1/1",
			manifest.Succeeded, manifest.Skipped, manifest.Failed)
	}

	var conflictRecorded bool
	for _, outcome := range manifest.Targets {
		if outcome.Status == models.StatusFailed && strings.Contains(outcome.Key, "#Alturas") {
			conflictRecorded = true
		}
	}
	if !conflictRecorded {
		t.Error("conflicting team not recorded in manifest")
	}

	rows, err := dataset.ReadTableRows(dataset.TablePath(cfg.DatasetDir(), season.Year))
	if err != nil {
		t.Fatalf("read table dataset: %v", err)
	}
	if len(rows) != models.TeamsPerSeason {
		t.Errorf("table dataset has %d rows, want %d", len(rows), models.TeamsPerSeason)
	}

	records, err := dataset.ReadStatRecords(dataset.StatsPath(cfg.DatasetDir(), season.Year))
	if err != nil {
		t.Fatalf("read stats dataset: %v", err)
	}

	// The conflicting team is withheld across every metric for the
	// season; the boundary-overlap duplicate is deduplicated.
	want := map[string]float64{
		"passes|Bridgewater": 20,
		"shots|Bridgewater":  200,
		"shots|Carnforth":    300,
	}
	if len(records) != len(want) {
		t.Fatalf("stats dataset has %d records, want %d: %+v", len(records), len(want), records)
	}
	for _, rec := range records {
		key := rec.Metric + "|" + rec.Team
		wantValue, ok := want[key]
		if !ok {
			t.Errorf("unexpected record %s", key)
			continue
		}
		if rec.Value == nil || *rec.Value != wantValue {
			t.Errorf("record %s value = %v, want %v", key, rec.Value, wantValue)
		}
	}

	// Re-running over unchanged snapshots yields the same dataset.
	if _, err := NewExtractor(cfg, store).Run([]models.Season{season}); err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	again, err := dataset.ReadStatRecords(dataset.StatsPath(cfg.DatasetDir(), season.Year))
	if err != nil {
		t.Fatalf("re-read stats dataset: %v", err)
	}
	if len(again) != len(records) {
		t.Errorf("second run produced %d records, want %d", len(again), len(records))
	}
	for i := range again {
		if again[i].Team != records[i].Team || again[i].Metric != records[i].Metric {
			t.Errorf("second run record %d differs: %+v vs %+v", i, again[i], records[i])
		}
	}
}
