package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Check the reference feeds",
	Long: `Fetch the rider roster and today's race cards and report what
loaded. The feeds are fetched fresh on every run of the interactive UI
and the server; this command just makes the outcome visible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cache, status := loadRefdata(cmd.Context(), cfg.Logger("[refresh] "))

		if status.RidersOK {
			fmt.Printf("riders: ok (%d riders)\n", len(cache.Riders))
		} else {
			fmt.Println("riders: FAILED (autocomplete and rider enrichment degrade)")
		}
		if status.RacesOK {
			races := 0
			for _, card := range cache.DayCards {
				races += len(card.Races)
			}
			fmt.Printf("races:  ok (%d venues, %d races today)\n", len(cache.DayCards), races)
		} else {
			fmt.Println("races:  FAILED (no race completion or result links today)")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}
