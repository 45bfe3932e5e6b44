package sync

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/keirinjingle/mofu/internal/store"
)

// Remote is the file-store boundary the sync protocol talks to. The only
// implementation that ships is Google Drive's appDataFolder, but tests (and
// import) run against fakes.
type Remote interface {
	// Find returns the id of the sync file, or "" when none exists yet.
	Find(ctx context.Context) (string, error)
	// Download returns the sync file's full content.
	Download(ctx context.Context, fileID string) (string, error)
	// Create uploads a new sync file and returns its id.
	Create(ctx context.Context, name, body string) (string, error)
	// Overwrite replaces the sync file's content in full.
	Overwrite(ctx context.Context, fileID, body string) error
}

// Summary describes one completed sync run.
type Summary struct {
	CreatedRemote bool // no remote file existed; one was created
	MergedChanges bool // the pull changed the local collection
	Added         int
	Replaced      int
	Skipped       int
}

// Runner executes the full bidirectional sync: pull remote, LWW-merge into
// the local store, then push the merged snapshot back as a single
// overwrite. Concurrent writers racing on the remote file are not detected;
// the push is a blind last-writer-wins overwrite by design.
type Runner struct {
	store  *store.Store
	remote Remote
	logger *log.Logger
}

// NewRunner wires a sync runner over the local store and a remote.
func NewRunner(s *store.Store, remote Remote, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{store: s, remote: remote, logger: logger}
}

// Sync runs the pull-merge-overwrite protocol once. Any network failure
// aborts the whole run with local state untouched.
func (r *Runner) Sync(ctx context.Context) (Summary, error) {
	var sum Summary

	local, err := r.store.Entries()
	if err != nil {
		return sum, fmt.Errorf("load local entries: %w", err)
	}

	fileID, err := r.remote.Find(ctx)
	if err != nil {
		return sum, fmt.Errorf("locate remote file: %w", err)
	}

	if fileID == "" {
		nd, err := Export(local)
		if err != nil {
			return sum, fmt.Errorf("export local entries: %w", err)
		}
		if _, err := r.remote.Create(ctx, RemoteFileName, nd); err != nil {
			return sum, fmt.Errorf("create remote file: %w", err)
		}
		sum.CreatedRemote = true
		r.logger.Printf("created remote %s with %d entries", RemoteFileName, len(local))
		return sum, nil
	}

	body, err := r.remote.Download(ctx, fileID)
	if err != nil {
		return sum, fmt.Errorf("download remote file: %w", err)
	}

	res := Merge(local, body)
	if res.Skipped > 0 {
		r.logger.Printf("skipped %d malformed remote lines", res.Skipped)
	}
	if res.Changed {
		if err := r.store.ReplaceAll(res.Entries); err != nil {
			return sum, fmt.Errorf("persist merged entries: %w", err)
		}
	}

	nd, err := Export(res.Entries)
	if err != nil {
		return sum, fmt.Errorf("export merged entries: %w", err)
	}
	if err := r.remote.Overwrite(ctx, fileID, nd); err != nil {
		return sum, fmt.Errorf("push merged entries: %w", err)
	}

	sum.MergedChanges = res.Changed
	sum.Added = res.Added
	sum.Replaced = res.Replaced
	sum.Skipped = res.Skipped
	r.logger.Printf("sync complete: added=%d replaced=%d skipped=%d", res.Added, res.Replaced, res.Skipped)
	return sum, nil
}
