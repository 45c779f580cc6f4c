package models

// Season is one league season and the dropdown offsets needed to select
// it on the site. The dropdown lists seasons newest first, so each
// season carries its own child index rather than deriving it.
type Season struct {
	Year          string `json:"year"`           // e.g. "2017_18"
	DropdownIndex int    `json:"dropdown_index"` // table page season dropdown
	DropdownChild int    `json:"dropdown_child"` // statistics page season dropdown
}

// Seasons lists every season the pipeline covers.
var Seasons = []Season{
	{Year: "2017_18", DropdownIndex: 7, DropdownChild: 8},
	{Year: "2018_19", DropdownIndex: 6, DropdownChild: 7},
	{Year: "2019_20", DropdownIndex: 5, DropdownChild: 6},
	{Year: "2020_21", DropdownIndex: 4, DropdownChild: 5},
	{Year: "2021_22", DropdownIndex: 3, DropdownChild: 4},
	{Year: "2022_23", DropdownIndex: 2, DropdownChild: 3},
	{Year: "2023_24", DropdownIndex: 1, DropdownChild: 2},
}

// SeasonByYear looks up a season by its year identifier.
func SeasonByYear(year string) (Season, bool) {
	for _, s := range Seasons {
		if s.Year == year {
			return s, true
		}
	}
	return Season{}, false
}

// SeasonYears returns the year identifiers of all covered seasons.
func SeasonYears() []string {
	years := make([]string, 0, len(Seasons))
	for _, s := range Seasons {
		years = append(years, s.Year)
	}
	return years
}

// Metric is one entry of the closed statistics vocabulary. Label is the
// link text on the statistics hub; Slug is the canonical identifier used
// everywhere downstream. Unavailable metrics are listed on the hub but
// the site publishes no data for them, so they are never scraped.
type Metric struct {
	Label       string `json:"label"`
	Slug        string `json:"slug"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

// Metrics is the closed metric set, in site order. An extracted label
// outside this set indicates layout drift or an irrelevant row and must
// be skipped, never added.
var Metrics = []Metric{
	{Label: "Wins", Slug: "wins"},
	{Label: "Losses", Slug: "losses"},
	{Label: "Goals", Slug: "goals"},
	{Label: "Yellow Cards", Slug: "yellow_cards"},
	{Label: "Red Cards", Slug: "red_cards"},
	{Label: "Substitutions On", Slug: "substitutions_on", Unavailable: true},
	{Label: "Shots", Slug: "shots"},
	{Label: "Shots On Target", Slug: "shots_on_target"},
	{Label: "Hit Woodwork", Slug: "hit_woodwork"},
	{Label: "Goals From Header", Slug: "goals_from_header"},
	{Label: "Goals From Penalty", Slug: "goals_from_penalty"},
	{Label: "Goals From Freekick", Slug: "goals_from_freekick"},
	{Label: "Goals From Inside Box", Slug: "goals_from_inside_box"},
	{Label: "Goals From Outside Box", Slug: "goals_from_outside_box"},
	{Label: "Goals From Counter Attack", Slug: "goals_from_counter_attack"},
	{Label: "Offsides", Slug: "offsides"},
	{Label: "Clean Sheets", Slug: "clean_sheets"},
	{Label: "Goals Conceded", Slug: "goals_conceded"},
	{Label: "Saves", Slug: "saves"},
	{Label: "Blocks", Slug: "blocks"},
	{Label: "Interceptions", Slug: "interceptions"},
	{Label: "Tackles", Slug: "tackles"},
	{Label: "Last Man Tackles", Slug: "last_man_tackles"},
	{Label: "Clearances", Slug: "clearances"},
	{Label: "Headed Clearances", Slug: "headed_clearances"},
	{Label: "Caught Opponent Offside", Slug: "caught_opponent_offside", Unavailable: true},
	{Label: "Own Goals", Slug: "own_goals"},
	{Label: "Penalties Conceded", Slug: "penalties_conceded"},
	{Label: "Goals Conceded From Penalty", Slug: "goals_conceded_from_penalty"},
	{Label: "Fouls", Slug: "fouls", Unavailable: true},
	{Label: "Passes", Slug: "passes"},
	{Label: "Through Balls", Slug: "through_balls"},
	{Label: "Long Passes", Slug: "long_passes"},
	{Label: "Backwards Passes", Slug: "backwards_passes"},
	{Label: "Crosses", Slug: "crosses"},
	{Label: "Corners Taken", Slug: "corners_taken"},
}

// AvailableMetrics returns the metrics the site actually publishes.
func AvailableMetrics() []Metric {
	out := make([]Metric, 0, len(Metrics))
	for _, m := range Metrics {
		if !m.Unavailable {
			out = append(out, m)
		}
	}
	return out
}

// MetricBySlug resolves a slug against the closed metric set.
func MetricBySlug(slug string) (Metric, bool) {
	for _, m := range Metrics {
		if m.Slug == slug {
			return m, true
		}
	}
	return Metric{}, false
}

// NormalizeMetricLabel resolves a raw site label (whitespace and casing
// vary, semantics do not) to its metric. The second return is false for
// labels outside the closed set.
func NormalizeMetricLabel(label string) (Metric, bool) {
	return MetricBySlug(SlugifyLabel(label))
}

// DOM markers the navigator keys page readiness on. These are the
// hand-picked selectors the pipeline's page-loaded policy is defined by;
// if the site renames them every target degrades to a content-not-found
// failure.
const (
	SelectorCookieAccept      = "#onetrust-accept-btn-handler"
	SelectorAdvertClose       = "#advertClose"
	SelectorTableBody         = "tbody.league-table__tbody"
	SelectorTableSeasonDrop   = ".dropDown:nth-child(3) > .current"
	SelectorTableSeasonOption = ".open li:nth-child(%d)"
	SelectorStatsTableBody    = "tbody.statsTableContainer"
	SelectorStatsSeasonDrop   = ".mobile > .current"
	SelectorStatsSeasonOption = ".mobile li:nth-child(%d)"
	SelectorPaginationNext    = ".paginationNextContainer svg"
)

// StatsPageBudget is how many pages one metric's listing can span. The
// table lists 20 teams across at most two pages.
const StatsPageBudget = 2

// TeamsPerSeason is the competition's fixed member count. A season's
// table extraction must yield exactly this many rows.
const TeamsPerSeason = 20
