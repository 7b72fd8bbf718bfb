package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reliefmap/shelter-cli/internal/cache"
	"github.com/reliefmap/shelter-cli/internal/config"
	"github.com/reliefmap/shelter-cli/internal/overpass"
	"github.com/reliefmap/shelter-cli/internal/shelter"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "shelter-cli",
	Short: "Emergency facility data pipeline",
	Long:  "Fetches nearby emergency facilities from Overpass mirrors with a cache-first freshness policy, and serves them to the map client.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// openStore opens the configured cache backend and runs migrations.
func openStore(ctx context.Context) (cache.Store, error) {
	var (
		store cache.Store
		err   error
	)
	switch cfg.Store.Driver {
	case "postgres":
		store, err = cache.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		store, err = cache.NewSQLite(cfg.Store.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// newOrchestrator wires the pipeline from configuration.
func newOrchestrator(store cache.Store) *shelter.Orchestrator {
	client := overpass.NewClient(cfg.Overpass)
	return shelter.New(store, client, cfg.Cache.FreshnessWindow())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
