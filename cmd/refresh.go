package main

import (
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a live fetch, bypassing the cache-first policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		result := newOrchestrator(store).Refresh(ctx)
		return printResult(result)
	},
}

func init() {
	refreshCmd.Flags().BoolVar(&fetchJSON, "json", false, "print the raw result as JSON")
	rootCmd.AddCommand(refreshCmd)
}
