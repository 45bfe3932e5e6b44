package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/keirinjingle/mofu/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive capture UI",
	Long: `Open the interactive capture UI: a single input line with slash
autocomplete, the recent notes underneath, and a full-text search screen
on ctrl+f. The same UI opens when mofu runs without a subcommand.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(ctx context.Context) error {
	logger := cfg.Logger("[tui] ")

	cache, status := loadRefdata(ctx, logger)
	s, err := openStore(cache, logger)
	if err != nil {
		return err
	}

	model := tui.New(s, newResolver(cache), status)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
