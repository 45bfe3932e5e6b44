package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	listHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	listIDStyle     = lipgloss.NewStyle().Faint(true)
	listLinkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		showLinks, _ := cmd.Flags().GetBool("links")

		s, err := openStore(nil, cfg.Logger("[list] "))
		if err != nil {
			return err
		}
		entries, err := s.List()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("no notes yet")
			return nil
		}
		if limit > 0 && len(entries) > limit {
			entries = entries[:limit]
		}

		width := 80
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
			width = w
		}

		for _, e := range entries {
			fmt.Printf("%s  %s\n", listHeaderStyle.Render(e.HeaderLabel()), listIDStyle.Render(e.ID))
			fmt.Printf("  %s\n", clamp(e.Raw, width-2))
			if showLinks && e.Race != nil && e.Race.Links != nil {
				fmt.Printf("  %s\n", listLinkStyle.Render(e.Race.Links.Result))
			}
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntP("limit", "n", 0, "show at most N notes (0 = all)")
	listCmd.Flags().Bool("links", false, "show result links where available")
	rootCmd.AddCommand(listCmd)
}

// clamp trims a single display line to the terminal width.
func clamp(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if width < 4 || len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
