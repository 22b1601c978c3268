package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saihaj/DOGE-AI-sub000/internal/store"
)

// statsCmd prints knowledge store statistics.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := store.NewKnowledgeStore(cfg.Store.DatabasePath, nil)
		if err != nil {
			return fmt.Errorf("failed to open knowledge store: %w", err)
		}
		defer ks.Close()

		stats, err := ks.GetStats()
		if err != nil {
			return fmt.Errorf("failed to collect stats: %w", err)
		}

		out, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
