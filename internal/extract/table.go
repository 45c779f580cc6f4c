package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/farrandale/plscrape/internal/models"
)

// The standings page row structure. Column ordering is fixed: team name
// cell, then played, won, drawn, lost, goals for, goals against, goal
// difference and points in table order.
var (
	tableBodyRe = regexp.MustCompile(`(?s)<tbody class="league-table__tbody[^"]*">(.*?)</tbody>`)
	tableRowRe  = regexp.MustCompile(`(?s)<tr[^>]*>(.*?)</tr>`)
	longNameRe  = regexp.MustCompile(`<span class="league-table__team-name league-table__team-name--long long">(.*?)</span>`)
	shortNameRe = regexp.MustCompile(`<span class="league-table__team-name league-table__team-name--short short">(.*?)</span>`)
	rowStatsRe  = regexp.MustCompile(`(?s)</a>\s*</td>\s*<td>(.*?)</td>\s*<td>(.*?)</td>\s*<td>(.*?)</td>\s*<td>(.*?)</td>\s*<td class="hideSmall">(.*?)</td>\s*<td class="hideSmall">(.*?)</td>\s*<td>(.*?)</td>\s*<td class="league-table__points points">(.*?)</td>`)
)

// TableResult is one season's extracted standings plus any soft
// warnings raised while matching.
type TableResult struct {
	Rows     []models.TableRow
	Warnings []Warning
}

// ExtractTable recovers standings rows from a saved league-table page.
// A row that does not match the expected column structure is skipped
// with a warning; one malformed row must not abort the other nineteen.
// The caller asserts the season is complete (see ValidateSeasonRows).
func ExtractTable(snap *models.Snapshot) (*TableResult, error) {
	if snap.Target.Category != models.CategoryTable {
		return nil, fmt.Errorf("snapshot %s is not a table page", snap.Target.Key())
	}

	body := tableBodyRe.FindSubmatch(snap.HTML)
	if body == nil {
		return nil, fmt.Errorf("league table body not found in %s", snap.Target.Key())
	}

	result := &TableResult{}
	position := 0
	for _, rowMatch := range tableRowRe.FindAllSubmatch(body[1], -1) {
		row := rowMatch[1]

		longName := longNameRe.FindSubmatch(row)
		if longName == nil {
			// Not a standings row; the table interleaves expandable
			// form rows that carry no team name cell.
			continue
		}
		position++

		team := models.NormalizeTeamName(string(longName[1]))

		shortName := team
		if m := shortNameRe.FindSubmatch(row); m != nil {
			shortName = models.NormalizeTeamName(string(m[1]))
		}

		stats := rowStatsRe.FindSubmatch(row)
		if stats == nil {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d (%s): unexpected column layout, skipped", position, team),
			})
			continue
		}

		values := make([]int, 0, 8)
		ok := true
		for _, cell := range stats[1:] {
			v, err := strconv.Atoi(strings.TrimSpace(string(cell)))
			if err != nil {
				result.Warnings = append(result.Warnings, Warning{
					Target: snap.Target,
					Reason: fmt.Sprintf("row %d (%s): bad numeric cell %q, skipped", position, team, cell),
				})
				ok = false
				break
			}
			values = append(values, v)
		}
		if !ok {
			continue
		}

		tr := models.TableRow{
			Team:           team,
			ShortName:      shortName,
			Season:         snap.Target.Season,
			Position:       position,
			Played:         values[0],
			Won:            values[1],
			Drawn:          values[2],
			Lost:           values[3],
			GoalsFor:       values[4],
			GoalsAgainst:   values[5],
			GoalDifference: values[6],
			Points:         values[7],
		}
		if err := tr.Validate(); err != nil {
			result.Warnings = append(result.Warnings, Warning{
				Target: snap.Target,
				Reason: fmt.Sprintf("row %d: invariant violation: %v", position, err),
			})
		}
		result.Rows = append(result.Rows, tr)
	}

	return result, nil
}

// ValidateSeasonRows asserts a season's extraction is complete: exactly
// the competition's fixed member count, all teams distinct. A mismatch
// is a data-quality error to propagate, not to silently fix.
func ValidateSeasonRows(season string, rows []models.TableRow) error {
	if len(rows) != models.TeamsPerSeason {
		return fmt.Errorf("season %s: got %d standings rows, want %d",
			season, len(rows), models.TeamsPerSeason)
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		if seen[r.Team] {
			return fmt.Errorf("season %s: duplicate team %q in standings", season, r.Team)
		}
		seen[r.Team] = true
	}
	return nil
}
