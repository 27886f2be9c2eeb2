package main

import (
	"fmt"
	"os"

	"github.com/Amadeus750/spend-streamlet/pkg/runtime/terminal"
	"github.com/Amadeus750/spend-streamlet/pkg/services/config"
	"github.com/Amadeus750/spend-streamlet/pkg/services/dataset"
	"github.com/Amadeus750/spend-streamlet/pkg/services/spend"
	"github.com/Amadeus750/spend-streamlet/pkg/store/duckdb"
	duckdbsnapshot "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/snapshot"
	duckdbspend "github.com/Amadeus750/spend-streamlet/pkg/store/duckdb/spend"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("SPEND_CONFIG"))
	if err != nil {
		return err
	}

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

	var profiles config.ProfileRegistry
	if cfg.Profiles.Path != "" {
		profiles, err = config.NewProfileRegistry(cfg.Profiles.Path, cfg.Dataset)
		if err != nil {
			return fmt.Errorf("failed to load profile registry: %w", err)
		}
	}

	cli := terminal.NewCLI(terminal.Options{
		Registry: spend.NewRegistry(db, datasets),
		Profiles: profiles,
		Output:   os.Stdout,
	})

	return cli.Execute()
}
