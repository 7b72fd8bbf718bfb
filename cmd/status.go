package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show cache state and freshness",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		snap, ok, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("cache: empty")
			return nil
		}

		age := snap.Age(time.Now())
		fmt.Printf("cache: %d facilities\n", len(snap.Facilities))
		fmt.Printf("fetched: %s (%s ago)\n", time.UnixMilli(snap.FetchedAt).Format(time.RFC3339), age.Round(time.Second))
		fmt.Printf("stale: %v (freshness window %s)\n", age > cfg.Cache.FreshnessWindow(), cfg.Cache.FreshnessWindow())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
