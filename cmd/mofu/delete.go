package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/keirinjingle/mofu/internal/store"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		id := args[0]

		s, err := openStore(nil, cfg.Logger("[delete] "))
		if err != nil {
			return err
		}

		entry, err := s.Get(id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no note with id %s", id)
		}
		if err != nil {
			return err
		}

		if !yes {
			confirmed := false
			prompt := huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", entry.HeaderLabel())).
				Description(entry.Raw).
				Affirmative("Delete").
				Negative("Keep").
				Value(&confirmed)
			if err := prompt.Run(); err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("kept")
				return nil
			}
		}

		if err := s.Remove(id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "delete without confirmation")
	rootCmd.AddCommand(deleteCmd)
}
