package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	appconfig "github.com/rcm-tools/revenue-atlas/pkg/config"
	"github.com/rcm-tools/revenue-atlas/pkg/server"
	"github.com/rcm-tools/revenue-atlas/pkg/services/config"
	"github.com/rcm-tools/revenue-atlas/pkg/services/definition"
	"github.com/rcm-tools/revenue-atlas/pkg/services/ingest"
	"github.com/rcm-tools/revenue-atlas/pkg/services/report"
	"github.com/rcm-tools/revenue-atlas/pkg/services/schedule"
	syncservice "github.com/rcm-tools/revenue-atlas/pkg/services/sync"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/definitions"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/metrics"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/runs"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/schedules"
	"github.com/rcm-tools/revenue-atlas/pkg/store/duckdb/syncstate"
	"github.com/rcm-tools/revenue-atlas/pkg/store/filedrop"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Revenue Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (default is .revenue-atlas.yaml in the working directory or $HOME)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := appconfig.Load(cfgPath)
	if err != nil {
		return err
	}

	registry, err := config.NewRegistry(cfg.Warehouses.ProfilesPath)
	if err != nil {
		return fmt.Errorf("failed to create profile registry: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.Storage.DbPath})
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}

	metricStore, err := metrics.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create metric store: %w", err)
	}
	definitionStore, err := definitions.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create definition store: %w", err)
	}
	scheduleStore, err := schedules.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create schedule store: %w", err)
	}
	runStore, err := runs.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}
	syncStore, err := syncstate.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create sync state store: %w", err)
	}

	generator, err := report.NewGenerator(metricStore)
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}
	reportService, err := report.NewService(generator, runStore)
	if err != nil {
		return fmt.Errorf("failed to create report service: %w", err)
	}
	definitionService, err := definition.NewService(definitionStore)
	if err != nil {
		return fmt.Errorf("failed to create definition service: %w", err)
	}
	if err := definition.Seed(ctx, definitionStore, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to seed system definitions: %w", err)
	}

	scheduleCtrl := schedule.NewController(
		schedule.Settings{PollInterval: cfg.Schedules.PollInterval},
		scheduleStore,
		definitionStore,
		reportService,
	)
	scheduleCtrl.Start(ctx)
	defer scheduleCtrl.Stop()

	syncCtrl := syncservice.NewController(db, registry, syncStore, metricStore)
	if err := syncCtrl.Resume(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to resume pending syncs")
	}

	profiles, _ := registry.GetProfiles(ctx)
	logger.Info().Msgf("Found %d warehouse profiles in `%s`.", len(profiles), cfg.Warehouses.ProfilesPath)
	for _, profile := range profiles {
		logger.Info().Msgf("Name: `%s`, Platform: `%s`", profile.Name, profile.Platform)
	}

	if cfg.FileDrop.Bucket != "" {
		go importRemittances(ctx, cfg.FileDrop, db, metricStore)
	}

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Reports:     reportService,
			Definitions: definitionService,
			Schedules:   scheduleCtrl,
			Syncs:       syncCtrl,
		},
	})

	return webAPI.Start()
}

// importRemittances drains the configured S3 drop once at boot. Import
// failures are logged, never fatal; the next boot retries the same files.
func importRemittances(ctx context.Context, settings appconfig.FileDrop, db *sql.DB, metricStore metrics.Store) {
	logger := zerolog.Ctx(ctx)

	client, err := filedrop.NewClient(ctx, settings.Profile)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build file drop client")
		return
	}
	dropStore, err := filedrop.NewStore(client, filedrop.Settings{
		Bucket: settings.Bucket,
		Prefix: settings.Prefix,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build file drop store")
		return
	}
	importer, err := ingest.NewService(dropStore, db, metricStore)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to build remittance importer")
		return
	}

	summary, err := importer.Import(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("remittance import failed")
		return
	}
	logger.Info().
		Int("files", summary.Files).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Msg("remittance import finished")
}
