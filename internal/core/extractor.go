package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/farrandale/plscrape/internal/dataset"
	"github.com/farrandale/plscrape/internal/extract"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/snapshot"
	"github.com/farrandale/plscrape/internal/utils"
	"github.com/google/uuid"
)

// Extractor parses saved snapshots into the intermediate datasets.
// Unlike navigation, extraction is stateless over read-only inputs, so
// statistics units run on a worker pool.
type Extractor struct {
	cfg   *Config
	store *snapshot.Store
}

// NewExtractor wires the extraction stage.
func NewExtractor(cfg *Config, store *snapshot.Store) *Extractor {
	return &Extractor{cfg: cfg, store: store}
}

// Run extracts standings and statistics for the given seasons and
// writes one dataset file per season per category. Per-unit failures
// are recorded and the batch continues.
func (e *Extractor) Run(seasons []models.Season) (*models.RunManifest, error) {
	manifest := models.NewRunManifest(uuid.New().String(), "extract")
	defer manifest.Finish()

	utils.Infof("extract run %s: %d seasons, %d workers",
		manifest.RunID, len(seasons), e.cfg.Extract.Workers)

	e.extractTables(seasons, manifest)
	e.extractStats(seasons, manifest)

	return manifest, nil
}

// extractTables runs the positional strategy over each season's
// standings snapshot. Seven small files; sequential is fine here.
func (e *Extractor) extractTables(seasons []models.Season, manifest *models.RunManifest) {
	for _, season := range seasons {
		target := models.NewTableTarget(season.Year)
		outcome := models.TargetOutcome{Key: target.Key(), Status: models.StatusSucceeded}

		snap, err := e.store.Load(target)
		if err != nil {
			utils.Errorf("target %s: %v", target.Key(), err)
			manifest.Record(failedOutcome(target, err))
			continue
		}

		result, err := extract.ExtractTable(snap)
		if err != nil {
			utils.Errorf("target %s: %v", target.Key(), err)
			manifest.Record(failedOutcome(target, err))
			continue
		}
		for _, w := range result.Warnings {
			utils.Warnf("extraction warning: %s", w)
			outcome.Warnings = append(outcome.Warnings, w.Reason)
		}

		// An incomplete table is a data-quality error, not something
		// to paper over with the rows that did parse.
		if err := extract.ValidateSeasonRows(season.Year, result.Rows); err != nil {
			utils.Errorf("target %s: %v", target.Key(), err)
			outcome.Status = models.StatusFailed
			outcome.Error = err.Error()
			manifest.Record(outcome)
			continue
		}

		path := dataset.TablePath(e.cfg.DatasetDir(), season.Year)
		if err := dataset.WriteTableRows(path, result.Rows); err != nil {
			manifest.Record(failedOutcome(target, err))
			continue
		}
		manifest.Record(outcome)
	}
}

// statsJob is one (season, metric) extraction unit.
type statsJob struct {
	season string
	slug   string
	pages  int
}

// statsOutcome carries one unit's result back to the aggregator.
type statsOutcome struct {
	job     statsJob
	records []models.StatRecord
	result  *extract.StatsResult
	err     error
}

// extractStats fans (season, metric) units out over a worker pool and
// aggregates per-season datasets. Conflicting duplicate metrics poison
// the affected team/season; everything else proceeds.
func (e *Extractor) extractStats(seasons []models.Season, manifest *models.RunManifest) {
	jobs := make([]statsJob, 0, len(seasons)*len(models.Metrics))
	for _, season := range seasons {
		pages, err := e.store.StatsPages(season.Year)
		if err != nil {
			utils.Errorf("season %s: %v", season.Year, err)
			manifest.Record(models.TargetOutcome{
				Key:    season.Year + "/stats",
				Status: models.StatusFailed,
				Error:  err.Error(),
			})
			continue
		}
		if len(pages) == 0 {
			utils.Warnf("season %s: no statistics snapshots", season.Year)
			continue
		}

		slugs := make([]string, 0, len(pages))
		for slug := range pages {
			slugs = append(slugs, slug)
		}
		sort.Strings(slugs)

		for _, slug := range slugs {
			// The metric set is closed: a snapshot whose slug is not in
			// it indicates drift or an irrelevant capture and must not
			// invent a new column.
			if _, ok := models.MetricBySlug(slug); !ok {
				warning := fmt.Sprintf("unknown metric label %q, skipped", slug)
				utils.Warnf("season %s: %s", season.Year, warning)
				manifest.Record(models.TargetOutcome{
					Key:      models.NewStatsTarget(season.Year, slug, 1).Key(),
					Status:   models.StatusSkipped,
					Warnings: []string{warning},
				})
				continue
			}
			jobs = append(jobs, statsJob{season: season.Year, slug: slug, pages: pages[slug]})
		}
	}

	outcomes := e.runStatsPool(jobs)

	perSeason := make(map[string][]models.StatRecord)
	poisoned := make(map[string]bool) // team|season

	for _, out := range outcomes {
		target := models.NewStatsTarget(out.job.season, out.job.slug, 1)
		if out.err != nil {
			utils.Errorf("target %s: %v", target.Key(), out.err)
			manifest.Record(failedOutcome(target, out.err))
			continue
		}

		outcome := models.TargetOutcome{Key: target.Key(), Status: models.StatusSucceeded}
		for _, w := range out.result.Warnings {
			utils.Warnf("extraction warning: %s", w)
			outcome.Warnings = append(outcome.Warnings, w.Reason)
		}
		manifest.Record(outcome)

		for _, conflict := range out.result.Conflicts {
			utils.Errorf("extraction conflict: %v", conflict)
			poisoned[conflict.Team+"|"+conflict.Season] = true
			manifest.Record(models.TargetOutcome{
				Key:    fmt.Sprintf("%s#%s", target.Key(), conflict.Team),
				Status: models.StatusFailed,
				Error:  conflict.Error(),
			})
		}

		perSeason[out.job.season] = append(perSeason[out.job.season], out.records...)
	}

	for season, records := range perSeason {
		kept := records[:0]
		for _, rec := range records {
			if poisoned[rec.Key()] {
				continue
			}
			kept = append(kept, rec)
		}
		sort.Slice(kept, func(i, j int) bool {
			if kept[i].Metric != kept[j].Metric {
				return kept[i].Metric < kept[j].Metric
			}
			return kept[i].Team < kept[j].Team
		})

		path := dataset.StatsPath(e.cfg.DatasetDir(), season)
		if err := dataset.WriteStatRecords(path, kept); err != nil {
			utils.Errorf("season %s: %v", season, err)
			manifest.Record(models.TargetOutcome{
				Key:    season + "/stats",
				Status: models.StatusFailed,
				Error:  err.Error(),
			})
			continue
		}
		utils.Infof("season %s: %d statistics records", season, len(kept))
	}
}

// runStatsPool executes the units on cfg.Extract.Workers goroutines.
func (e *Extractor) runStatsPool(jobs []statsJob) []statsOutcome {
	workers := e.cfg.Extract.Workers
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan statsJob)
	outCh := make(chan statsOutcome, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				outCh <- e.extractUnit(job)
			}
		}()
	}

	go func() {
		for _, job := range jobs {
			jobCh <- job
		}
		close(jobCh)
		wg.Wait()
		close(outCh)
	}()

	outcomes := make([]statsOutcome, 0, len(jobs))
	for out := range outCh {
		outcomes = append(outcomes, out)
	}
	// Channel order is scheduling-dependent; restore unit order.
	sort.Slice(outcomes, func(i, j int) bool {
		if outcomes[i].job.season != outcomes[j].job.season {
			return outcomes[i].job.season < outcomes[j].job.season
		}
		return outcomes[i].job.slug < outcomes[j].job.slug
	})
	return outcomes
}

// extractUnit loads one unit's pages and runs the tree strategy.
func (e *Extractor) extractUnit(job statsJob) statsOutcome {
	metric, _ := models.MetricBySlug(job.slug)

	snaps := make([]*models.Snapshot, 0, job.pages)
	for page := 1; page <= job.pages; page++ {
		snap, err := e.store.Load(models.NewStatsTarget(job.season, job.slug, page))
		if err != nil {
			return statsOutcome{job: job, err: err}
		}
		snaps = append(snaps, snap)
	}

	result, err := extract.ExtractMetricPages(metric, snaps)
	if err != nil {
		return statsOutcome{job: job, err: err}
	}
	return statsOutcome{job: job, records: result.Records, result: result}
}
