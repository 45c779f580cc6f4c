package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/farrandale/plscrape/internal/models"
	"github.com/schollz/progressbar/v3"
)

// WriteManifest persists a run manifest under <outputDir>/reports, one
// file per run kind (scrape, extract, merge). Re-running overwrites the
// previous report for that kind.
func WriteManifest(outputDir string, manifest *models.RunManifest) error {
	reportsDir := filepath.Join(outputDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	data, err := manifest.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize manifest: %w", err)
	}

	path := filepath.Join(reportsDir, fmt.Sprintf("%s_manifest.json", manifest.Kind))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	Infof("manifest written: %s (ok=%d skipped=%d failed=%d)",
		path, manifest.Succeeded, manifest.Skipped, manifest.Failed)
	return nil
}

// NewProgressBar builds the shared progress bar style.
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
