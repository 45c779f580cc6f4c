package core

import (
	"context"
	"fmt"

	"github.com/farrandale/plscrape/internal/browser"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/snapshot"
	"github.com/farrandale/plscrape/internal/utils"
	"github.com/google/uuid"
)

// Scraper walks every FetchTarget through the navigator and into the
// snapshot store. Navigation is strictly sequential: one browser
// session, one target at a time. Per-target failures are logged,
// recorded in the manifest and do not stop the run; the loop is
// interruptible between targets via the context.
type Scraper struct {
	cfg     *Config
	nav     *browser.Navigator
	store   *snapshot.Store
	monitor *browser.HealthMonitor
}

// NewScraper wires the scrape loop.
func NewScraper(cfg *Config, nav *browser.Navigator, store *snapshot.Store) *Scraper {
	return &Scraper{
		cfg:     cfg,
		nav:     nav,
		store:   store,
		monitor: browser.NewHealthMonitor(),
	}
}

// Run captures the table page per season and every available metric's
// statistics pages per season. Returns the manifest of which targets
// succeeded, were skipped (already snapshotted) or failed.
func (s *Scraper) Run(ctx context.Context, seasons []models.Season) (*models.RunManifest, error) {
	manifest := models.NewRunManifest(uuid.New().String(), "scrape")
	defer manifest.Finish()

	metrics := models.AvailableMetrics()
	total := len(seasons) + len(seasons)*len(metrics)
	bar := utils.NewProgressBar(total, "scraping")

	utils.Infof("scrape run %s: %d seasons, %d metrics, %d units",
		manifest.RunID, len(seasons), len(metrics), total)

	s.scrapeTables(ctx, seasons, manifest, bar)
	s.scrapeStats(ctx, seasons, metrics, manifest, bar)

	if ctx.Err() != nil {
		utils.Warnf("scrape run interrupted: %v", ctx.Err())
	}
	return manifest, nil
}

// scrapeTables captures the standings page for each season. The page
// hosts all seasons behind one dropdown, so it is opened once.
func (s *Scraper) scrapeTables(ctx context.Context, seasons []models.Season,
	manifest *models.RunManifest, bar progressAdder) {

	pending := make([]models.Season, 0, len(seasons))
	for _, season := range seasons {
		target := models.NewTableTarget(season.Year)
		if s.cfg.Scrape.Resume && s.store.Exists(target) {
			utils.Debugf("snapshot present, skipping %s", target.Key())
			manifest.Record(models.TargetOutcome{Key: target.Key(), Status: models.StatusSkipped})
			_ = bar.Add(1)
			continue
		}
		pending = append(pending, season)
	}
	if len(pending) == 0 {
		return
	}

	if err := s.openHub(s.cfg.Scrape.TableURL, models.SelectorTableSeasonDrop); err != nil {
		utils.Error(err, "standings page unavailable")
		for _, season := range pending {
			manifest.Record(failedOutcome(models.NewTableTarget(season.Year), err))
			_ = bar.Add(1)
		}
		return
	}

	for _, season := range pending {
		if ctx.Err() != nil {
			return
		}
		s.monitor.Check()

		target := models.NewTableTarget(season.Year)
		if err := s.captureTable(season, target); err != nil {
			utils.Errorf("target %s failed: %v", target.Key(), err)
			manifest.Record(failedOutcome(target, err))
		} else {
			manifest.Record(models.TargetOutcome{Key: target.Key(), Status: models.StatusSucceeded})
		}
		_ = bar.Add(1)
	}
}

// captureTable selects one season in the standings dropdown and saves
// the rendered page.
func (s *Scraper) captureTable(season models.Season, target models.FetchTarget) (err error) {
	defer recoverToError(&err)

	utils.Infof("capturing standings for %s", season.Year)

	if err := s.nav.Click(models.SelectorTableSeasonDrop); err != nil {
		return err
	}
	// The rendered option list is offset by one from the season index.
	option := fmt.Sprintf(models.SelectorTableSeasonOption, season.DropdownIndex+1)
	if err := s.nav.Click(option); err != nil {
		return err
	}
	if err := s.nav.ReadyCheck(models.SelectorTableBody); err != nil {
		return err
	}

	html, err := s.nav.HTML()
	if err != nil {
		return err
	}
	return s.store.Save(target, []byte(html))
}

// scrapeStats captures every available metric's listing for each
// season. The statistics hub links metrics by label; each listing can
// span two pages.
func (s *Scraper) scrapeStats(ctx context.Context, seasons []models.Season,
	metrics []models.Metric, manifest *models.RunManifest, bar progressAdder) {

	type unit struct {
		season models.Season
		metric models.Metric
	}
	pending := make([]unit, 0, len(seasons)*len(metrics))
	for _, season := range seasons {
		for _, metric := range metrics {
			first := models.NewStatsTarget(season.Year, metric.Slug, 1)
			if s.cfg.Scrape.Resume && s.store.Exists(first) {
				utils.Debugf("snapshot present, skipping %s", first.Key())
				manifest.Record(models.TargetOutcome{Key: first.Key(), Status: models.StatusSkipped})
				_ = bar.Add(1)
				continue
			}
			pending = append(pending, unit{season: season, metric: metric})
		}
	}
	if len(pending) == 0 {
		return
	}

	if err := s.openHub(s.cfg.Scrape.StatsURL, models.SelectorStatsSeasonDrop); err != nil {
		utils.Error(err, "statistics hub unavailable")
		for _, u := range pending {
			manifest.Record(failedOutcome(models.NewStatsTarget(u.season.Year, u.metric.Slug, 1), err))
			_ = bar.Add(1)
		}
		return
	}

	for _, u := range pending {
		if ctx.Err() != nil {
			return
		}
		s.monitor.Check()

		target := models.NewStatsTarget(u.season.Year, u.metric.Slug, 1)
		outcome, err := s.captureMetric(u.season, u.metric)
		if err != nil {
			utils.Errorf("target %s failed: %v", target.Key(), err)
			manifest.Record(failedOutcome(target, err))
		} else {
			manifest.Record(outcome)
		}
		_ = bar.Add(1)
	}
}

// captureMetric navigates one metric's listing for one season and saves
// its page or pages.
func (s *Scraper) captureMetric(season models.Season, metric models.Metric) (outcome models.TargetOutcome, err error) {
	defer recoverToError(&err)

	first := models.NewStatsTarget(season.Year, metric.Slug, 1)
	outcome = models.TargetOutcome{Key: first.Key(), Status: models.StatusSucceeded}

	utils.Infof("capturing %s for %s", metric.Label, season.Year)

	if err := s.nav.ClickLinkText(metric.Label); err != nil {
		return outcome, err
	}
	// Metric navigation can re-trigger the promotional overlay.
	s.nav.DismissInterstitials()

	if err := s.nav.ReadyCheck(models.SelectorStatsSeasonDrop); err != nil {
		return outcome, err
	}
	if err := s.nav.Click(models.SelectorStatsSeasonDrop); err != nil {
		return outcome, err
	}
	option := fmt.Sprintf(models.SelectorStatsSeasonOption, season.DropdownChild)
	if err := s.nav.Click(option); err != nil {
		return outcome, err
	}
	if err := s.nav.ReadyCheck(models.SelectorStatsTableBody); err != nil {
		return outcome, err
	}

	html, err := s.nav.HTML()
	if err != nil {
		return outcome, err
	}
	if err := s.store.Save(first, []byte(html)); err != nil {
		return outcome, err
	}

	if !s.nav.HasPagination() {
		utils.Debugf("%s/%s: single page of statistics", season.Year, metric.Slug)
		return outcome, nil
	}

	second := models.NewStatsTarget(season.Year, metric.Slug, 2)
	if err := s.nav.Paginate(2); err != nil {
		// Page one is already snapshotted; losing page two is a soft
		// gap the extractor will surface if the data was truncated.
		utils.Warnf("target %s: %v", second.Key(), err)
		outcome.Warnings = append(outcome.Warnings,
			fmt.Sprintf("page 2 not captured: %v", err))
		return outcome, nil
	}

	html, err = s.nav.HTML()
	if err != nil {
		return outcome, err
	}
	if err := s.store.Save(second, []byte(html)); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// openHub loads a hub URL, clears interstitials and waits for its
// season dropdown.
func (s *Scraper) openHub(url string, readyMarker string) error {
	if err := s.nav.Open(url); err != nil {
		return err
	}
	s.nav.DismissInterstitials()
	return s.nav.ReadyCheck(readyMarker)
}

// progressAdder is the slice of progressbar the scraper needs.
type progressAdder interface {
	Add(int) error
}

func failedOutcome(target models.FetchTarget, err error) models.TargetOutcome {
	return models.TargetOutcome{
		Key:    target.Key(),
		Status: models.StatusFailed,
		Error:  err.Error(),
	}
}

// recoverToError converts a panic from the browser layer into an error
// so one crashed target cannot take down the run.
func recoverToError(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("browser panic: %v", r)
	}
}
