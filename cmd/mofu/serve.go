package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keirinjingle/mofu/internal/search"
	"github.com/keirinjingle/mofu/internal/server"
	"github.com/keirinjingle/mofu/internal/store"
	msync "github.com/keirinjingle/mofu/internal/sync"
	"github.com/keirinjingle/mofu/internal/sync/drive"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the widget HTTP API",
	Long: `Serve the local HTTP API the browser widget talks to: entries CRUD,
autocomplete, search, sync and a WebSocket channel that announces every
collection change, including rewrites made by other mofu processes.

The server binds to 127.0.0.1 only. Browser origins are unrestricted by
default; set serve.allowed_origins in the config to pin them down.

Example usage:
  mofu serve               # default port 8791
  mofu serve --port 9000

WebSocket endpoint: ws://localhost:<port>/ws`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Serve.Port
		}
		logger := cfg.Logger("[serve] ")

		cache, status := loadRefdata(cmd.Context(), logger)
		s, err := openStore(cache, logger)
		if err != nil {
			return err
		}

		api := &server.API{
			Store:    s,
			Resolver: newResolver(cache),
			Engine:   search.NewEngine(),
			Status:   status,
			Logger:   logger,
		}
		if cfg.SyncConfigured() {
			api.Sync = func(ctx context.Context) (msync.Summary, error) {
				remote, err := drive.Connect(ctx, drive.Config{
					ClientID:     cfg.Google.ClientID,
					ClientSecret: cfg.Google.ClientSecret,
				}, s, msync.RemoteFileName, logger)
				if err != nil {
					return msync.Summary{}, err
				}
				return msync.NewRunner(s, remote, logger).Sync(ctx)
			}
		}

		srv := server.NewServer(&server.Config{
			Port:           port,
			AllowedOrigins: cfg.OriginAllowed,
			Logger:         logger,
		}, api)

		if err := srv.Start(); err != nil {
			return err
		}

		// Announce entry rewrites made outside this process (another mofu
		// command, a sync run from the CLI).
		watcher, err := store.NewWatcher(s)
		if err != nil {
			logger.Printf("store watcher unavailable: %v", err)
		} else if err := watcher.Start(); err != nil {
			logger.Printf("store watcher failed to start: %v", err)
			watcher = nil
		} else {
			go func() {
				for range watcher.Events() {
					srv.BroadcastEntriesChanged("external", "")
				}
			}()
			go func() {
				for err := range watcher.Errors() {
					logger.Printf("store watcher: %v", err)
				}
			}()
		}

		fmt.Printf("Widget server started on http://%s\n", srv.Addr())
		fmt.Printf("WebSocket endpoint: ws://%s/ws\n", srv.Addr())
		fmt.Println("\nPress Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		<-ctx.Done()

		fmt.Println("\nShutting down...")
		if watcher != nil {
			if err := watcher.Stop(); err != nil {
				logger.Printf("stop watcher: %v", err)
			}
		}
		if err := srv.Stop(); err != nil {
			return err
		}
		fmt.Println("Widget server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "port to listen on (default: serve.port from config)")
	rootCmd.AddCommand(serveCmd)
}
