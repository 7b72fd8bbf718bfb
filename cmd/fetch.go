package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/reliefmap/shelter-cli/internal/model"
)

var (
	fetchJSON bool
	fetchNear []float64
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch facilities, cache-first with live refresh",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		result := newOrchestrator(store).Get(ctx)

		if len(fetchNear) == 2 {
			model.SortByDistance(result.Shelters, fetchNear[0], fetchNear[1])
		}

		return printResult(result)
	},
}

func printResult(result model.Result) error {
	if fetchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("source: %s\n", result.Source)
	if result.Error != "" {
		fmt.Printf("note:   %s\n", result.Error)
	}
	if result.Source == model.SourceCache {
		fmt.Printf("age:    %s (stale: %v)\n", result.CacheAge.Round(time.Second), result.Stale)
	}
	fmt.Printf("facilities: %d\n\n", len(result.Shelters))
	for _, f := range result.Shelters {
		fmt.Printf("  %-14s %-40s %9.5f %9.5f  %s\n", f.Category, f.Name, f.Lat, f.Lon, f.ID)
	}
	return nil
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the raw result as JSON")
	fetchCmd.Flags().Float64SliceVar(&fetchNear, "near", nil, "sort by distance from lat,lon")
	rootCmd.AddCommand(fetchCmd)
}
