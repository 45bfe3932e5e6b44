package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	msync "github.com/keirinjingle/mofu/internal/sync"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all notes to an NDJSON file",
	Long: `Export the whole collection, one JSON object per line, in storage
order. The default file name carries the date (mofu_20260830.ndjson) so
repeated exports do not clobber each other. The format is the same one
Drive sync uses, so an export can be imported on another machine.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := fmt.Sprintf("mofu_%s.ndjson", time.Now().Format("20060102"))
		if len(args) > 0 {
			out = args[0]
		}

		s, err := openStore(nil, cfg.Logger("[export] "))
		if err != nil {
			return err
		}
		entries, err := s.Entries()
		if err != nil {
			return err
		}

		nd, err := msync.Export(entries)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, []byte(nd), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}

		fmt.Printf("Exported %d notes to %s\n", len(entries), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import notes from an NDJSON export",
	Long: `Merge an NDJSON export into the local collection using the sync
rule: unknown ids are appended, known ids are replaced only when the
imported note is newer. Importing the same file twice is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := cfg.Logger("[import] ")

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		s, err := openStore(nil, logger)
		if err != nil {
			return err
		}
		local, err := s.Entries()
		if err != nil {
			return err
		}

		res := msync.Merge(local, string(raw))
		if res.Changed {
			if err := s.ReplaceAll(res.Entries); err != nil {
				return err
			}
		}

		fmt.Printf("Imported from %s: added=%d replaced=%d skipped=%d\n",
			args[0], res.Added, res.Replaced, res.Skipped)
		if !res.Changed {
			fmt.Println("collection unchanged")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
