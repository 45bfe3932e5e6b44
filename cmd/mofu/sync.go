package main

import (
	"fmt"

	"github.com/spf13/cobra"

	msync "github.com/keirinjingle/mofu/internal/sync"
	"github.com/keirinjingle/mofu/internal/sync/drive"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync notes with Google Drive",
	Long: `Reconcile the local collection against the sync file in your Drive
application data. The remote file is pulled and merged in (unknown notes
appended, known notes replaced when the remote copy is newer), then the
merged collection overwrites the remote file. The first run creates it.

Requires a Google OAuth client in the config (google.client_id and
google.client_secret, or MOFU_GOOGLE_CLIENT_ID / _SECRET). The first
sync opens a browser consent flow; the credential is cached locally
afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logout, _ := cmd.Flags().GetBool("logout")
		logger := cfg.Logger("[sync] ")

		s, err := openStore(nil, logger)
		if err != nil {
			return err
		}

		if logout {
			if err := s.ClearCredential(); err != nil {
				return err
			}
			fmt.Println("Credential cleared; the next sync will re-authorize.")
			return nil
		}

		if !cfg.SyncConfigured() {
			return drive.ErrDisabled
		}

		remote, err := drive.Connect(cmd.Context(), drive.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
		}, s, msync.RemoteFileName, logger)
		if err != nil {
			return err
		}

		sum, err := msync.NewRunner(s, remote, logger).Sync(cmd.Context())
		if err != nil {
			return err
		}

		if sum.CreatedRemote {
			fmt.Println("Created the remote sync file from the local collection.")
			return nil
		}
		fmt.Printf("Sync complete: added=%d replaced=%d skipped=%d\n",
			sum.Added, sum.Replaced, sum.Skipped)
		if !sum.MergedChanges {
			fmt.Println("local collection unchanged")
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("logout", false, "forget the cached Drive credential")
	rootCmd.AddCommand(syncCmd)
}
