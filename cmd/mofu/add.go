package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <text>...",
	Short: "Add a note",
	Long: `Add a note from the command line. The text goes through the same
derivation as the interactive UI, so race, rider, tactic and tag markup
is picked up:

  mofu add "- 平塚5R @中野（神奈川／88期） #三分戦 +注目"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cfg.Logger("[add] ")

		// The roster and day card are needed to enrich riders and attach
		// race links; a feed failure just means a leaner note.
		cache, _ := loadRefdata(cmd.Context(), logger)
		s, err := openStore(cache, logger)
		if err != nil {
			return err
		}

		entry, err := s.Add(strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("Added %s  %s\n", entry.ID, entry.HeaderLabel())
		if len(entry.Riders) > 0 {
			names := make([]string, 0, len(entry.Riders))
			for _, r := range entry.Riders {
				names = append(names, r.Name)
			}
			fmt.Printf("  riders: %s\n", strings.Join(names, ", "))
		}
		if len(entry.Tactics) > 0 {
			fmt.Printf("  tactics: %s\n", strings.Join(entry.Tactics, ", "))
		}
		if len(entry.Tags) > 0 {
			fmt.Printf("  tags: %s\n", strings.Join(entry.Tags, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
