package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/farrandale/plscrape/internal/models"
)

// fixtureRow mirrors the standings page row markup.
func fixtureRow(team, short string, cells [8]int) string {
	return fmt.Sprintf(`<tr data-compact="false"><td class="league-table__pos">x</td>`+
		`<td class="league-table__team"><a href="/club">`+
		`<span class="league-table__team-name league-table__team-name--long long">%s</span>`+
		`<span class="league-table__team-name league-table__team-name--short short">%s</span>`+
		`</a>   </td> <td>%d</td> <td>%d</td> <td>%d</td> <td>%d</td> `+
		`<td class="hideSmall">%d</td> <td class="hideSmall">%d</td> <td>%d</td> `+
		`<td class="league-table__points points">%d</td></tr>`,
		team, short,
		cells[0], cells[1], cells[2], cells[3], cells[4], cells[5], cells[6], cells[7])
}

func fixturePage(rows ...string) []byte {
	return []byte(`<html><body><div class="tableContainer"><table>` +
		`<tbody class="league-table__tbody isPL">` + strings.Join(rows, "\n") +
		`</tbody></table></div></body></html>`)
}

// seasonRows builds a consistent 20-team season.
func seasonRows() []string {
	rows := make([]string, 0, models.TeamsPerSeason)
	for i := 0; i < models.TeamsPerSeason; i++ {
		won := 28 - i
		drawn := 5
		lost := 38 - won - drawn
		gf := 80 - 2*i
		ga := 30 + i
		rows = append(rows, fixtureRow(
			fmt.Sprintf("Team %02d FC", i+1),
			fmt.Sprintf("T%02d", i+1),
			[8]int{38, won, drawn, lost, gf, ga, gf - ga, 3*won + drawn},
		))
	}
	return rows
}

func tableSnapshot(html []byte) *models.Snapshot {
	return &models.Snapshot{
		Target: models.NewTableTarget("2021_22"),
		HTML:   html,
	}
}

func TestExtractTableFullSeason(t *testing.T) {
	result, err := ExtractTable(tableSnapshot(fixturePage(seasonRows()...)))
	if err != nil {
		t.Fatalf("ExtractTable() error = %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", result.Warnings)
	}
	if err := ValidateSeasonRows("2021_22", result.Rows); err != nil {
		t.Fatalf("season validation failed: %v", err)
	}

	first := result.Rows[0]
	if first.Team != "Team 01 FC" || first.ShortName != "T01" {
		t.Errorf("first row names = %q/%q", first.Team, first.ShortName)
	}
	if first.Position != 1 || first.Played != 38 || first.Won != 28 ||
		first.GoalsFor != 80 || first.Points != 89 {
		t.Errorf("first row decoded wrong: %+v", first)
	}
	if first.Season != "2021_22" {
		t.Errorf("season not propagated, got %q", first.Season)
	}

	for _, row := range result.Rows {
		if err := row.Validate(); err != nil {
			t.Errorf("row invariant: %v", err)
		}
	}
}

func TestExtractTableMalformedRowSkipped(t *testing.T) {
	rows := seasonRows()
	// Drop one numeric cell from a middle row: wrong column count.
	rows[7] = strings.Replace(rows[7], " <td>38</td>", "", 1)

	result, err := ExtractTable(tableSnapshot(fixturePage(rows...)))
	if err != nil {
		t.Fatalf("ExtractTable() error = %v", err)
	}

	if len(result.Rows) != models.TeamsPerSeason-1 {
		t.Errorf("got %d rows, want %d", len(result.Rows), models.TeamsPerSeason-1)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1: %v", len(result.Warnings), result.Warnings)
	}
	if !strings.Contains(result.Warnings[0].Reason, "Team 08 FC") {
		t.Errorf("warning does not name the skipped row: %s", result.Warnings[0])
	}

	// An incomplete season must fail the caller's completeness check.
	if err := ValidateSeasonRows("2021_22", result.Rows); err == nil {
		t.Error("ValidateSeasonRows accepted 19 rows")
	}
}

func TestExtractTablePositionsSurviveSkips(t *testing.T) {
	rows := seasonRows()
	rows[0] = strings.Replace(rows[0], " <td>38</td>", "", 1)

	result, err := ExtractTable(tableSnapshot(fixturePage(rows...)))
	if err != nil {
		t.Fatalf("ExtractTable() error = %v", err)
	}
	// The malformed first row still occupies position 1.
	if result.Rows[0].Position != 2 {
		t.Errorf("first parsed row position = %d, want 2", result.Rows[0].Position)
	}
}

func TestExtractTableAmpersandTeam(t *testing.T) {
	// Rendered pages carry the literal ampersand in the name span.
	row := fixtureRow("Brighton & Hove Albion", "BHA", [8]int{38, 12, 15, 11, 42, 44, -2, 51})

	result, err := ExtractTable(tableSnapshot(fixturePage(row)))
	if err != nil {
		t.Fatalf("ExtractTable() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(result.Rows))
	}
	if result.Rows[0].Team != "Brighton and Hove Albion" {
		t.Errorf("ampersand not normalized: %q", result.Rows[0].Team)
	}
}

func TestExtractTableMissingBody(t *testing.T) {
	snap := tableSnapshot([]byte("<html><body><p>redesigned page</p></body></html>"))
	if _, err := ExtractTable(snap); err == nil {
		t.Error("ExtractTable accepted a page without the table body")
	}
}

func TestExtractTableWrongCategory(t *testing.T) {
	snap := &models.Snapshot{
		Target: models.NewStatsTarget("2021_22", "shots", 1),
		HTML:   fixturePage(seasonRows()...),
	}
	if _, err := ExtractTable(snap); err == nil {
		t.Error("ExtractTable accepted a statistics snapshot")
	}
}

func TestValidateSeasonRowsDuplicateTeam(t *testing.T) {
	rows := make([]models.TableRow, models.TeamsPerSeason)
	for i := range rows {
		rows[i] = models.TableRow{Team: fmt.Sprintf("Team %d", i)}
	}
	rows[19].Team = rows[0].Team

	if err := ValidateSeasonRows("2021_22", rows); err == nil {
		t.Error("duplicate team accepted")
	}
}
