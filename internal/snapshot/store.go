// Package snapshot persists rendered pages so extraction can run
// offline and be re-run without re-scraping. This decoupling is the
// pipeline's key resilience property: extraction logic can change and
// rerun against captured pages without re-incurring navigation cost or
// re-risking detection.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/utils"
)

// NotFoundError reports a missing snapshot at load time.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no snapshot for %s", e.Key)
}

// Store keeps one file per FetchTarget under a root directory, path
// derived deterministically from the target. Content is the raw rendered
// HTML, no transformation. Re-saving a target overwrites; there is no
// versioning.
type Store struct {
	root string
}

// NewStore opens a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// path maps a target to its absolute file path.
func (s *Store) path(target models.FetchTarget) string {
	return filepath.Join(s.root, target.Path())
}

// Save writes the rendered document for a target, replacing any prior
// snapshot.
func (s *Store) Save(target models.FetchTarget, html []byte) error {
	if err := target.Validate(); err != nil {
		return err
	}

	path := s.path(target)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(path, html, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", target.Key(), err)
	}

	utils.Debugf("snapshot saved: %s (%d bytes)", target.Key(), len(html))
	return nil
}

// Load returns the previously saved document, byte-identical to what was
// saved, or NotFoundError.
func (s *Store) Load(target models.FetchTarget) (*models.Snapshot, error) {
	path := s.path(target)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Key: target.Key()}
	}
	if err != nil {
		return nil, fmt.Errorf("stat snapshot %s: %w", target.Key(), err)
	}

	html, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", target.Key(), err)
	}

	return &models.Snapshot{
		Target:     target,
		HTML:       html,
		CapturedAt: info.ModTime(),
	}, nil
}

// Exists reports whether a snapshot is already on disk. The scrape loop
// uses this as its checkpoint: a rerun resumes by skipping saved
// targets.
func (s *Store) Exists(target models.FetchTarget) bool {
	_, err := os.Stat(s.path(target))
	return err == nil
}

// StatsPages scans a season's statistics snapshots and returns the
// highest page number present per metric slug. A season with no
// statistics directory yields an empty map.
func (s *Store) StatsPages(season string) (map[string]int, error) {
	dir := filepath.Join(s.root, "stats_html", season)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan stats snapshots for %s: %w", season, err)
	}

	pages := make(map[string]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		if name == entry.Name() {
			continue
		}
		sep := strings.LastIndex(name, "_")
		if sep <= 0 {
			continue
		}
		slug := name[:sep]
		page, err := strconv.Atoi(name[sep+1:])
		if err != nil || page < 1 {
			continue
		}
		if page > pages[slug] {
			pages[slug] = page
		}
	}
	return pages, nil
}
