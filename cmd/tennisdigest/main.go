package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/TennisDigest/internal/collect"
	"github.com/TobiSchelling/TennisDigest/internal/config"
	"github.com/TobiSchelling/TennisDigest/internal/curate"
	"github.com/TobiSchelling/TennisDigest/internal/database"
	"github.com/TobiSchelling/TennisDigest/internal/pipeline"
	"github.com/TobiSchelling/TennisDigest/internal/server"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "tennisdigest",
	Short:   "Daily tennis news digest",
	Long:    "tennisdigest searches GDELT and Google News for tennis coverage and writes a curated markdown report.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging("INFO")

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		if err := config.LoadEnv(); err != nil {
			return fmt.Errorf("loading .env: %w", err)
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		setupLogging(cfg.Logging.Level)
		if path != "" {
			log.Debugf("Using config %s", path)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(serveCmd)
}

func setupLogging(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
		log.SetReportCaller(true)
	}
	log.SetLevel(lvl)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tennisdigest", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/tennisdigest/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to change queries, keyword lists, and the source allow-list.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show report history and settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		fmt.Printf("Region: %s\n", cfg.GetRegion())
		fmt.Printf("Reports directory: %s\n\n", cfg.Output.ReportsDir)
		fmt.Println("History:")
		fmt.Printf("  Reports: %d\n", stats.Reports)
		fmt.Printf("  Items listed: %d\n", stats.Items)
		fmt.Printf("  Distinct links: %d\n", stats.DistinctURLs)
		fmt.Printf("  Regions: %d\n", stats.Regions)

		last, err := db.GetLastReport()
		if err != nil {
			return fmt.Errorf("getting last report: %w", err)
		}
		if last == nil {
			fmt.Println("\nNo report yet. Run 'tennisdigest run' to create one.")
			return nil
		}
		fmt.Printf("\nLast report: %s (%s)\n", humanize.Time(last.GeneratedAt), last.Path)
		if len(last.Entities.Players) > 0 {
			fmt.Printf("  Players: %s\n", strings.Join(last.Entities.Players, ", "))
		}
		if len(last.Entities.Tournaments) > 0 {
			fmt.Printf("  Tournaments: %s\n", strings.Join(last.Entities.Tournaments, ", "))
		}
		return nil
	},
}

// --- search command ---

var (
	searchHours int
	searchMax   int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run a single news query and print the curated results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		searcher := collect.NewSearcher(cfg)
		results := searcher.Search(ctx, curate.Query{
			Expression: args[0],
			MaxRecords: searchMax,
			Hours:      searchHours,
		})
		results = curate.Chain{curate.HasTitleAndURL}.Apply(results)
		results = curate.Dedupe(results, searchMax)

		if len(results) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for i, a := range results {
			fmt.Printf("%2d. %s\n    %s\n", i+1, a.Title, a.Identity())
			if a.Source != "" {
				fmt.Printf("    %s\n", a.Source)
			}
		}

		entities := curate.ExtractEntities(curate.Titles(results), cfg.Keywords())
		if !entities.Empty() {
			fmt.Println()
			printList("Players", entities.Players)
			printList("Tournaments", entities.Tournaments)
			printList("Tags", entities.Tags)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchHours, "hours", 48, "Lookback window in hours")
	searchCmd.Flags().IntVar(&searchMax, "max", 10, "Maximum number of results")
}

func printList(label string, values []string) {
	if len(values) > 0 {
		fmt.Printf("%s: %s\n", label, strings.Join(values, ", "))
	}
}

// --- run command ---

var (
	dryRun    bool
	outputDir string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build today's report: stars -> gear -> improvement -> write -> record",
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openHistory()
		if db != nil {
			defer db.Close()
		}

		pipe := pipeline.New(cfg, db)
		pipe.SetOutputDir(outputDir)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun()
		} else {
			start := time.Now()
			result = pipe.Run(ctx)
			log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("Pipeline finished")
		}

		var failed error
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/5: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
				failed = step.Err
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}
		if failed != nil {
			return failed
		}

		if !dryRun {
			fmt.Printf("\nReport saved: %s\n", result.Path)
			fmt.Println("Run 'tennisdigest serve' to browse past reports.")
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Override the reports directory")
}

// --- reports command ---

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List recorded reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		reports, err := db.GetAllReports()
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No reports recorded yet.")
			return nil
		}

		for i, r := range reports {
			if reportsLimit > 0 && i >= reportsLimit {
				fmt.Printf("... and %d more\n", len(reports)-reportsLimit)
				break
			}
			fmt.Printf("%s  %-4s %3d items  %s\n",
				r.GeneratedAt.UTC().Format("2006-01-02 15:04"), r.Region, r.ItemCount, r.Path)
		}
		return nil
	},
}

func init() {
	reportsCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum number of reports to list")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

// openHistory opens the run history for `run`. The markdown file does not
// depend on it, so a failure only disables recording.
func openHistory() *database.DB {
	db, err := openDB()
	if err != nil {
		log.Warnf("Run history unavailable, report will not be recorded: %v", err)
		return nil
	}
	return db
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "tennisdigest.db")
	return database.Open(dbPath)
}
