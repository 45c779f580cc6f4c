package extract

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/farrandale/plscrape/internal/models"
)

// StatsResult is the extraction outcome for one metric across its
// paginated snapshots. Conflicts carry the teams whose records were
// withheld because pages disagreed about their value.
type StatsResult struct {
	Records   []models.StatRecord
	Warnings  []Warning
	Conflicts []*InconsistentExtractionError
}

// statsObservation is one row before cross-page merging.
type statsObservation struct {
	value *float64
	page  int
}

// ExtractMetricPages recovers StatRecords for one (season, metric) from
// its paginated snapshots. Pages overlap when the site repeats rows
// across the boundary; an exact duplicate is deduplicated, a conflicting
// duplicate poisons that team's record and is reported as a conflict.
// Records are emitted in team order so re-running on unchanged
// snapshots yields identical output.
func ExtractMetricPages(metric models.Metric, pages []*models.Snapshot) (*StatsResult, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no snapshots for metric %s", metric.Slug)
	}
	season := pages[0].Target.Season
	for _, p := range pages {
		if p.Target.Category != models.CategoryStats {
			return nil, fmt.Errorf("snapshot %s is not a statistics page", p.Target.Key())
		}
		if p.Target.Entity != metric.Slug || p.Target.Season != season {
			return nil, fmt.Errorf("snapshot %s does not belong to %s/%s",
				p.Target.Key(), season, metric.Slug)
		}
	}

	result := &StatsResult{}
	seen := make(map[string]statsObservation, models.TeamsPerSeason)
	conflicted := make(map[string]bool)

	for _, snap := range pages {
		if err := extractStatsPage(snap, metric, seen, conflicted, result); err != nil {
			return nil, err
		}
	}

	teams := make([]string, 0, len(seen))
	for team := range seen {
		if !conflicted[team] {
			teams = append(teams, team)
		}
	}
	sort.Strings(teams)

	for _, team := range teams {
		result.Records = append(result.Records, models.StatRecord{
			Team:   team,
			Season: season,
			Metric: metric.Slug,
			Value:  seen[team].value,
		})
	}

	return result, nil
}

// extractStatsPage walks one snapshot's statistics table and merges its
// rows into the running per-team observations.
func extractStatsPage(snap *models.Snapshot, metric models.Metric,
	seen map[string]statsObservation, conflicted map[string]bool,
	result *StatsResult) error {

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(snap.HTML))
	if err != nil {
		return fmt.Errorf("parse snapshot %s: %w", snap.Target.Key(), err)
	}

	tbody := doc.Find("tbody.statsTableContainer")
	if tbody.Length() == 0 {
		return fmt.Errorf("statistics table container not found in %s", snap.Target.Key())
	}

	tbody.Find("tr.table__row").Each(func(i int, row *goquery.Selection) {
		nameCell := row.Find("td.stats-table__name a.stats-table__cell-icon-align")
		if nameCell.Length() == 0 {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d: no team name cell, skipped", i+1),
			})
			return
		}

		// The anchor wraps a badge icon in nested spans; the team name
		// is the anchor's own text node.
		team := models.NormalizeTeamName(anchorText(nameCell))
		if team == "" {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d: empty team name, skipped", i+1),
			})
			return
		}

		valueCell := row.Find("td.stats-table__main-stat")
		if valueCell.Length() == 0 {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d (%s): no value cell, skipped", i+1, team),
			})
			return
		}

		value, err := parseNumeric(valueCell.Text())
		if err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d (%s): %v, skipped", i+1, team, err),
			})
			return
		}

		prev, dup := seen[team]
		if !dup {
			seen[team] = statsObservation{value: value, page: snap.Target.Page}
			return
		}
		if valuesEqual(prev.value, value) {
			// The site repeats boundary rows across pages.
			return
		}
		if !conflicted[team] {
			conflicted[team] = true
			result.Conflicts = append(result.Conflicts, &InconsistentExtractionError{
				Team:       team,
				Season:     snap.Target.Season,
				Metric:     metric.Slug,
				First:      prev.value,
				FirstPage:  prev.page,
				Second:     value,
				SecondPage: snap.Target.Page,
			})
		}
	})

	return nil
}

// anchorText returns the direct text content of a selection, excluding
// text inside child elements.
func anchorText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		if goquery.NodeName(node) == "#text" {
			b.WriteString(node.Text())
		}
	})
	return b.String()
}
