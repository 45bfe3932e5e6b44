// Package drive implements the sync Remote over the Google Drive
// application-data area (appDataFolder). Each user owns a single NDJSON
// file there; this package only ever lists, downloads, creates or
// overwrites that one file.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrDisabled is returned when the OAuth client is not configured. Sync
// fails closed in that case; it is never silently attempted.
var ErrDisabled = errors.New("drive sync is disabled: google oauth client not configured")

// Remote talks to the appDataFolder. It satisfies the sync.Remote
// interface.
type Remote struct {
	svc    *drive.Service
	name   string
	logger *log.Logger
}

// Connect authorizes against Google and returns a Remote scoped to the
// given sync file name. The flow fails closed with ErrDisabled when the
// client configuration is absent.
func Connect(ctx context.Context, cfg Config, cache TokenCache, name string, logger *log.Logger) (*Remote, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	ts, err := tokenSource(ctx, cfg, cache, logger)
	if err != nil {
		return nil, err
	}

	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}
	return &Remote{svc: svc, name: name, logger: logger}, nil
}

// Find returns the sync file's id, or "" when the user has no sync file
// yet.
func (r *Remote) Find(ctx context.Context) (string, error) {
	q := fmt.Sprintf("name='%s' and 'appDataFolder' in parents", r.name)
	list, err := r.svc.Files.List().
		Q(q).
		Spaces("appDataFolder").
		Fields("files(id,name,modifiedTime)").
		PageSize(1).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list appdata files: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

// Download returns the sync file's content.
func (r *Remote) Download(ctx context.Context, fileID string) (string, error) {
	resp, err := r.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return "", fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", fileID, err)
	}
	return string(body), nil
}

// Create uploads a new sync file into the appDataFolder.
func (r *Remote) Create(ctx context.Context, name, body string) (string, error) {
	f := &drive.File{
		Name:    name,
		Parents: []string{"appDataFolder"},
	}
	created, err := r.svc.Files.Create(f).
		Media(strings.NewReader(body), googleapi.ContentType("application/x-ndjson")).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create file %s: %w", name, err)
	}
	r.logger.Printf("created %s (%s)", name, created.Id)
	return created.Id, nil
}

// Overwrite replaces the sync file's content in full. There is no
// version/ETag check; the last writer wins, mirroring the merge rule.
func (r *Remote) Overwrite(ctx context.Context, fileID, body string) error {
	_, err := r.svc.Files.Update(fileID, &drive.File{}).
		Media(strings.NewReader(body), googleapi.ContentType("application/x-ndjson")).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("overwrite file %s: %w", fileID, err)
	}
	return nil
}
