package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/farrandale/plscrape/internal/browser"
	"github.com/farrandale/plscrape/internal/core"
	"github.com/farrandale/plscrape/internal/models"
	"github.com/farrandale/plscrape/internal/snapshot"
	"github.com/farrandale/plscrape/internal/utils"
	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	configFile string
	logLevel   string
	verbose    bool

	seasonsFlag  []string
	headlessFlag bool
	resumeFlag   bool
	outputDir    string
	workersFlag  int

	appConfig *core.Config
)

var rootCmd = &cobra.Command{
	Use:   "plscrape",
	Short: "League standings and statistics scraping pipeline",
	Long: `plscrape captures rendered league pages from a JavaScript-only
statistics site with a controlled browser, snapshots them to disk,
extracts standings and per-team statistics into typed records, and
consolidates both into one delimited export.

The stages are decoupled through the snapshot store:

  plscrape scrape    capture rendered pages (browser required)
  plscrape extract   parse saved snapshots into datasets (offline)
  plscrape merge     join datasets and write the final export

Endpoint URLs are read from TABLE_URL and STATS_URL (environment or a
.env file).

Version: ` + Version + `
Build time: ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		mergeFlags(cmd, config)

		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}
		if logLevel != "" {
			logConfig.Level = logLevel
		}
		if verbose {
			logConfig.Level = "debug"
		}
		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}

		appConfig = config
		return nil
	},
}

// mergeFlags folds explicitly set CLI flags into the loaded config;
// flags win over the config file.
func mergeFlags(cmd *cobra.Command, config *core.Config) {
	if cmd.Flags().Changed("seasons") {
		config.Scrape.Seasons = seasonsFlag
	}
	if cmd.Flags().Changed("headless") {
		config.Scrape.Headless = headlessFlag
	}
	if cmd.Flags().Changed("resume") {
		config.Scrape.Resume = resumeFlag
	}
	if cmd.Flags().Changed("output") {
		config.Output.BaseDir = outputDir
	}
	if cmd.Flags().Changed("workers") {
		config.Extract.Workers = workersFlag
	}
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Capture rendered pages into the snapshot store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appConfig.ValidateForScrape(); err != nil {
			return err
		}
		seasons, err := appConfig.SeasonList()
		if err != nil {
			return err
		}

		// Interruption takes effect between fetch targets; the store
		// checkpoints progress so a rerun resumes where this stopped.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		session, err := browser.NewSession(appConfig.Scrape.Headless)
		if err != nil {
			return err
		}
		defer session.Close()

		nav, err := browser.NewNavigator(session, appConfig.Pacer(), appConfig.NavigatorConfig())
		if err != nil {
			return err
		}

		store := snapshot.NewStore(appConfig.SnapshotDir())
		scraper := core.NewScraper(appConfig, nav, store)

		manifest, err := scraper.Run(ctx, seasons)
		if err != nil {
			return err
		}
		if err := utils.WriteManifest(appConfig.Output.BaseDir, manifest); err != nil {
			return err
		}

		printSummary(manifest)
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Parse saved snapshots into intermediate datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		seasons, err := appConfig.SeasonList()
		if err != nil {
			return err
		}

		store := snapshot.NewStore(appConfig.SnapshotDir())
		extractor := core.NewExtractor(appConfig, store)

		manifest, err := extractor.Run(seasons)
		if err != nil {
			return err
		}
		if err := utils.WriteManifest(appConfig.Output.BaseDir, manifest); err != nil {
			return err
		}

		printSummary(manifest)
		return nil
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Consolidate datasets and write the final export",
	RunE: func(cmd *cobra.Command, args []string) error {
		seasons, err := appConfig.SeasonList()
		if err != nil {
			return err
		}

		merger := core.NewMerger(appConfig)
		manifest, runErr := merger.Run(seasons)
		if err := utils.WriteManifest(appConfig.Output.BaseDir, manifest); err != nil {
			return err
		}
		if runErr != nil {
			return runErr
		}

		fmt.Printf("export written: %s\n", appConfig.ExportPath())
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("plscrape %s\n", Version)
		fmt.Printf("build time: %s\n", BuildTime)
	},
}

func printSummary(manifest *models.RunManifest) {
	fmt.Println("\n==================================================")
	fmt.Printf("run %s (%s)\n", manifest.RunID, manifest.Kind)
	fmt.Println("==================================================")
	fmt.Printf("succeeded: %d\n", manifest.Succeeded)
	fmt.Printf("skipped:   %d\n", manifest.Skipped)
	fmt.Printf("failed:    %d\n", manifest.Failed)
	fmt.Printf("duration:  %.1fs\n", manifest.FinishedAt.Sub(manifest.StartedAt).Seconds())
	fmt.Println("==================================================")

	if manifest.Failed > 0 {
		fmt.Println("\nfailed targets:")
		for _, t := range manifest.Targets {
			if t.Status == models.StatusFailed {
				fmt.Printf("  - %s: %s\n", t.Key, t.Error)
			}
		}
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (trace|debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&seasonsFlag, "seasons", nil, "seasons to process (default all), e.g. 2021_22")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "output", "output directory")

	scrapeCmd.Flags().BoolVar(&headlessFlag, "headless", true, "headless browser mode")
	scrapeCmd.Flags().BoolVar(&resumeFlag, "resume", true, "skip targets that already have snapshots")
	extractCmd.Flags().IntVar(&workersFlag, "workers", 8, "parallel extraction workers")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
