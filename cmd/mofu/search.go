package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/keirinjingle/mofu/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Full-text search over notes",
	Long: `Search all notes. Bare words AND together; double-quoted phrases
match exactly:

  mofu search 三分戦 中野
  mofu search '"先行一車" 平塚'

Matches print newest first with the hit context highlighted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(nil, cfg.Logger("[search] "))
		if err != nil {
			return err
		}
		entries, err := s.List()
		if err != nil {
			return err
		}

		engine := search.NewEngine()
		engine.Escape = func(s string) string { return s }
		engine.HighlightOpen, engine.HighlightClose = "", ""
		if term.IsTerminal(int(os.Stdout.Fd())) {
			engine.HighlightOpen, engine.HighlightClose = "\x1b[1;33m", "\x1b[0m"
		}

		hits := engine.Search(entries, strings.Join(args, " "))
		if len(hits) == 0 {
			fmt.Println("no matches")
			return nil
		}

		fmt.Printf("%d matches\n\n", len(hits))
		for _, h := range hits {
			fmt.Printf("%s  %s\n", h.Header, h.ID)
			fmt.Printf("  %s\n", h.Snippet)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
