package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Amadeus750/spend-streamlet/pkg/models/domain"
	"github.com/Amadeus750/spend-streamlet/pkg/server"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"
	duckdbsnapshot "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/snapshot"
	duckdbspend "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/spend"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the spend analytics web server",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a config file (defaults plus SPEND_* environment variables when omitted)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid logging.level %q: %w", cfg.Logging.Level, err)
	}
	var out io.Writer = os.Stdout
	if cfg.Logging.Pretty {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: cfg.Storage.Path,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer db.Close()

	spendStore, err := duckdbspend.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create spend store: %w", err)
	}
	snapshotStore, err := duckdbsnapshot.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create snapshot store: %w", err)
	}
	datasets := dataset.NewManager(db, spendStore, snapshotStore)
	registry := spend.NewRegistry(db, datasets)

	refs, err := datasetRefs(ctx, cfg)
	if err != nil {
		return err
	}

	if cfgPath != "" {
		logger.Info().Msgf("Configuration found at `%s` successfully loaded.", cfgPath)
	}
	logger.Info().Msgf("Loading the following datasets:")
	for _, ref := range refs {
		ds, err := datasets.Ensure(ctx, ref)
		if err != nil {
			return fmt.Errorf("failed to load dataset %s: %w", ref.Name, err)
		}
		logger.Info().Msgf("Name: `%s`, Rows: %d, Source: `%s`", ds.Name, ds.RowCount, ds.SourcePath)
	}

	webAPI := server.NewWebAPI(server.Config{
		Addr:            cfg.Server.Addr(),
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Dependencies: server.Dependencies{
			Datasets: datasets,
			Spend:    registry,
			Logger:   logger,
		},
	})

	return webAPI.Start()
}

// datasetRefs collects every dataset the server should ingest at startup:
// all profiles from the registry file plus the inline dataset, if configured.
func datasetRefs(ctx context.Context, cfg *config.Config) ([]domain.DatasetRef, error) {
	var refs []domain.DatasetRef

	if cfg.Profiles.Path != "" {
		profiles, err := config.NewProfileRegistry(cfg.Profiles.Path, cfg.Dataset)
		if err != nil {
			return nil, fmt.Errorf("failed to load profile registry: %w", err)
		}
		refs, err = profiles.GetProfiles(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list profiles: %w", err)
		}
	}

	if cfg.Dataset.Path != "" {
		refs = append(refs, domain.DatasetRef{
			Name:                 cfg.Dataset.Name,
			Path:                 cfg.Dataset.Path,
			FiscalYearStartMonth: cfg.Dataset.FiscalYearStartMonth,
			Currency:             cfg.Dataset.Currency,
		})
	}

	if len(refs) == 0 {
		return nil, fmt.Errorf("no datasets configured; set dataset.path or profiles.path")
	}

	seen := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		if _, ok := seen[ref.Name]; ok {
			return nil, fmt.Errorf("duplicate dataset name %q", ref.Name)
		}
		seen[ref.Name] = struct{}{}
	}
	return refs, nil
}
