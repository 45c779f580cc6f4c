package models

import (
	"fmt"
	"strings"
)

// TableRow is one team's league-table standing for one season.
type TableRow struct {
	Team           string `json:"team"`
	ShortName      string `json:"short_name"`
	Season         string `json:"season"`
	Position       int    `json:"position"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// Validate checks the arithmetic invariants of a standings row.
func (r TableRow) Validate() error {
	if r.Team == "" {
		return fmt.Errorf("table row missing team name")
	}
	if r.Won+r.Drawn+r.Lost != r.Played {
		return fmt.Errorf("%s: won+drawn+lost = %d, played = %d",
			r.Team, r.Won+r.Drawn+r.Lost, r.Played)
	}
	if r.GoalsFor-r.GoalsAgainst != r.GoalDifference {
		return fmt.Errorf("%s: goals_for-goals_against = %d, goal_difference = %d",
			r.Team, r.GoalsFor-r.GoalsAgainst, r.GoalDifference)
	}
	return nil
}

// StatRecord is one (team, season, metric) observation. Value is nil
// when the source shows the metric with a blank value; it is never nil
// for an explicit zero.
type StatRecord struct {
	Team   string   `json:"team"`
	Season string   `json:"season"`
	Metric string   `json:"metric"` // metric slug, see Metrics
	Value  *float64 `json:"value"`
}

// Key returns the (team, season) join key shared with TableRow.
func (s StatRecord) Key() string { return s.Team + "|" + s.Season }

// ConsolidatedRecord is the joined, per-game-normalized row for one
// (team, season), produced by the consolidator.
type ConsolidatedRecord struct {
	Team   string              `json:"team"`
	Season string              `json:"season"`
	Tier   string              `json:"tier"`
	Table  TableRow            `json:"table"`
	Stats  map[string]*float64 `json:"stats"` // metric slug -> per-game value
}

// Tier buckets a league position into one of four tiers of five.
func Tier(position int) string {
	switch {
	case position <= 5:
		return "top"
	case position <= 10:
		return "upper_mid"
	case position <= 15:
		return "lower_mid"
	default:
		return "bottom"
	}
}

// NormalizeTeamName canonicalizes a team name as it appears on either
// page kind. The standings and statistics pages disagree on ampersands
// (e.g. "Brighton & Hove Albion" vs "Brighton and Hove Albion"), so both
// sides are normalized before joining.
func NormalizeTeamName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "&", "and")
	return strings.Join(strings.Fields(name), " ")
}
