package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Category identifies the kind of page a FetchTarget points at.
type Category string

const (
	// CategoryTable is the league standings page.
	CategoryTable Category = "table"
	// CategoryStats is a per-metric statistics page.
	CategoryStats Category = "stats"
)

// EntityLeague is the entity identifier for league-wide table pages.
// Statistics pages use the metric slug as their entity.
const EntityLeague = "league"

// FetchTarget identifies one page to retrieve. It is the snapshot key:
// the same target always maps to the same on-disk path. Immutable once
// constructed.
type FetchTarget struct {
	Season   string   `json:"season"`
	Entity   string   `json:"entity"`
	Category Category `json:"category"`
	Page     int      `json:"page"` // 1-based, statistics pages only go to 2
}

// NewTableTarget builds the target for one season's standings page.
func NewTableTarget(season string) FetchTarget {
	return FetchTarget{
		Season:   season,
		Entity:   EntityLeague,
		Category: CategoryTable,
		Page:     1,
	}
}

// NewStatsTarget builds the target for one page of a per-metric
// statistics listing.
func NewStatsTarget(season string, metricSlug string, page int) FetchTarget {
	return FetchTarget{
		Season:   season,
		Entity:   metricSlug,
		Category: CategoryStats,
		Page:     page,
	}
}

// Validate checks the target is well formed.
func (t FetchTarget) Validate() error {
	if t.Season == "" {
		return fmt.Errorf("target missing season")
	}
	if t.Entity == "" {
		return fmt.Errorf("target missing entity")
	}
	if t.Category != CategoryTable && t.Category != CategoryStats {
		return fmt.Errorf("unknown target category: %q", t.Category)
	}
	if t.Page < 1 {
		return fmt.Errorf("target page must be >= 1, got %d", t.Page)
	}
	if t.Category == CategoryTable && t.Page != 1 {
		return fmt.Errorf("table pages are not paginated, got page %d", t.Page)
	}
	return nil
}

// Key returns the stable identifier used in logs and the run manifest.
func (t FetchTarget) Key() string {
	return fmt.Sprintf("%s/%s/%s/%d", t.Season, t.Category, t.Entity, t.Page)
}

// Path returns the snapshot path relative to the store root. Table pages
// live one file per season, statistics pages one file per metric page
// under a season directory, mirroring how extraction consumes them.
func (t FetchTarget) Path() string {
	if t.Category == CategoryTable {
		return filepath.Join("tables_html", t.Season+".html")
	}
	return filepath.Join("stats_html", t.Season, fmt.Sprintf("%s_%d.html", t.Entity, t.Page))
}

// String implements fmt.Stringer.
func (t FetchTarget) String() string { return t.Key() }

// Snapshot is one persisted rendered page. The raw HTML is stored
// untransformed; CapturedAt is taken from the file's modification time
// on load.
type Snapshot struct {
	Target     FetchTarget `json:"target"`
	HTML       []byte      `json:"-"`
	CapturedAt time.Time   `json:"captured_at"`
}

// SlugifyLabel converts a site display label to its stable slug form,
// e.g. "Shots On Target" -> "shots_on_target". Whitespace and casing
// vary on the site; the slug does not.
func SlugifyLabel(label string) string {
	fields := strings.Fields(strings.ToLower(label))
	return strings.Join(fields, "_")
}
