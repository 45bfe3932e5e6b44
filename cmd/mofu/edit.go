package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id> <text>...",
	Short: "Replace a note's text",
	Long: `Replace a note's text and re-derive its structure. The note keeps
its id and original timestamp, so an edited note does not jump the sync
ordering.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cfg.Logger("[edit] ")

		cache, _ := loadRefdata(cmd.Context(), logger)
		s, err := openStore(cache, logger)
		if err != nil {
			return err
		}

		entry, err := s.Update(args[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s  %s\n", entry.ID, entry.HeaderLabel())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
