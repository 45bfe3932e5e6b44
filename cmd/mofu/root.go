package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/keirinjingle/mofu/internal/complete"
	"github.com/keirinjingle/mofu/internal/config"
	"github.com/keirinjingle/mofu/internal/extract"
	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/store"
)

var (
	configFile  string
	dataDirFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mofu",
	Short: "Keirin note-taking widget",
	Long: `mofu captures free-form keirin race notes and derives structure from
them: the race (venue + race number with result links), the riders
mentioned, tactics and tags. Typing / in the interactive UI opens
autocomplete over the rider roster and the day's race cards.

Notes live in a local JSON file. With a Google OAuth client configured,
'mofu sync' reconciles them against a single NDJSON file in your Drive
application data, newest-write-wins per note.

Run without a subcommand to open the interactive capture UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: <user config dir>/mofu/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "override the data directory")
}

// openStore opens the local collection with derivation backed by the
// given reference cache. A nil cache still extracts; rider and race
// enrichment just comes up empty.
func openStore(cache *refdata.Cache, logger *log.Logger) (*store.Store, error) {
	return store.Open(cfg.DataDir, newExtractor(cache), logger)
}

func newExtractor(cache *refdata.Cache) *extract.Extractor {
	if cache == nil {
		cache = &refdata.Cache{}
	}
	return extract.New(cache)
}

// loadRefdata fetches the rider roster and today's race cards. Feed
// failures degrade rather than abort; the status says which side loaded.
func loadRefdata(ctx context.Context, logger *log.Logger) (*refdata.Cache, refdata.Status) {
	loader := refdata.NewLoader(logger)
	loader.RidersURL = cfg.RidersURL
	loader.RacesURLTmpl = cfg.RacesURLTemplate
	return loader.Load(ctx)
}

// newResolver builds the autocomplete resolver, honoring any tactic
// vocabulary override from the config.
func newResolver(cache *refdata.Cache) *complete.Resolver {
	r := complete.NewResolver(cache)
	if len(cfg.Tactics) > 0 {
		r.Tactics = cfg.Tactics
	}
	return r
}
