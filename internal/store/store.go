// Package store persists the local note collection and the two auxiliary
// slots (draft, sync credential) as JSON files under the data directory.
//
// Every mutating call rewrites the affected slot in full; there is no
// transaction log. That is deliberate: the expected scale is hundreds to low
// thousands of entries, and the whole-file rewrite keeps the on-disk shape
// identical to the sync wire shape. Mutations are serialized by the caller;
// the store assumes a single active session.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/keirinjingle/mofu/internal/extract"
	"github.com/keirinjingle/mofu/internal/types"
)

const (
	entriesFile    = "entries.json"
	draftFile      = "draft.json"
	credentialFile = "credential.json"
)

// ErrEmptyText is returned by Add and Update when the raw text trims to
// nothing.
var ErrEmptyText = errors.New("entry text is empty")

// ErrNotFound is returned by Update when the id is unknown.
var ErrNotFound = errors.New("entry not found")

// Store owns the persisted entry collection. All derived entry fields are
// recomputed through the extractor on every mutation, never edited in
// place.
type Store struct {
	dir       string
	extractor *extract.Extractor
	logger    *log.Logger
	now       func() time.Time
}

// Open prepares a store rooted at dir, creating the directory if needed.
func Open(dir string, extractor *extract.Extractor, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		dir:       dir,
		extractor: extractor,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Dir returns the data directory the store persists into.
func (s *Store) Dir() string { return s.dir }

// EntriesPath returns the path of the entries slot, for file watchers.
func (s *Store) EntriesPath() string { return filepath.Join(s.dir, entriesFile) }

// Entries returns the collection in insertion (storage) order.
func (s *Store) Entries() ([]types.Entry, error) {
	var entries []types.Entry
	if err := s.readSlot(entriesFile, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	return entries, nil
}

// List returns the collection newest-first, the display order contract.
func (s *Store) List() ([]types.Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Get returns the entry with the given id, or ErrNotFound.
func (s *Store) Get(id string) (*types.Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// Add derives, timestamps and appends a new entry, then clears any pending
// draft. Empty (whitespace-only) text is rejected with no state change.
func (s *Store) Add(raw string) (*types.Entry, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyText
	}

	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}

	entry := types.Entry{
		ID:  types.NewID(),
		At:  types.Timestamp(s.now()),
		Raw: raw,
	}
	applyDerived(&entry, s.extractor.Extract(raw))

	entries = append(entries, entry)
	if err := s.writeSlot(entriesFile, entries); err != nil {
		return nil, err
	}
	if err := s.ClearDraft(); err != nil {
		s.logger.Printf("clear draft after add: %v", err)
	}
	return &entry, nil
}

// Update replaces an entry's raw text and re-derives every structured
// field. The id and the original creation timestamp are preserved; bumping
// At on edit would corrupt LWW merge ordering.
func (s *Store) Update(id, newRaw string) (*types.Entry, error) {
	if strings.TrimSpace(newRaw) == "" {
		return nil, ErrEmptyText
	}

	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		entries[i].Raw = newRaw
		applyDerived(&entries[i], s.extractor.Extract(newRaw))
		if err := s.writeSlot(entriesFile, entries); err != nil {
			return nil, err
		}
		return &entries[i], nil
	}
	return nil, ErrNotFound
}

// Remove deletes the entry with the given id. Removing an unknown id is a
// no-op: the collection is not rewritten.
func (s *Store) Remove(id string) error {
	entries, err := s.Entries()
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}
	return s.writeSlot(entriesFile, kept)
}

// ReplaceAll overwrites the whole collection. Used by the sync reconciler,
// which owns the merge rule but never the collection.
func (s *Store) ReplaceAll(entries []types.Entry) error {
	if entries == nil {
		entries = []types.Entry{}
	}
	return s.writeSlot(entriesFile, entries)
}

// SaveDraft overwrites the single draft slot.
func (s *Store) SaveDraft(d types.Draft) error {
	return s.writeSlot(draftFile, d)
}

// LoadDraft returns the pending draft, or nil when none exists.
func (s *Store) LoadDraft() (*types.Draft, error) {
	var d types.Draft
	ok, err := s.readOptionalSlot(draftFile, &d)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

// ClearDraft removes the draft slot. Idempotent.
func (s *Store) ClearDraft() error {
	return s.removeSlot(draftFile)
}

// SaveCredential overwrites the sync credential slot.
func (s *Store) SaveCredential(c types.Credential) error {
	return s.writeSlot(credentialFile, c)
}

// LoadCredential returns the stored credential, or nil when none exists.
func (s *Store) LoadCredential() (*types.Credential, error) {
	var c types.Credential
	ok, err := s.readOptionalSlot(credentialFile, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

// ClearCredential removes the credential slot. Idempotent.
func (s *Store) ClearCredential() error {
	return s.removeSlot(credentialFile)
}

func applyDerived(e *types.Entry, r extract.Result) {
	e.Race = r.Race
	e.Riders = r.Riders
	e.Tactics = r.Tactics
	e.Tags = r.Tags
}

func (s *Store) readSlot(name string, out any) error {
	_, err := s.readOptionalSlot(name, out)
	return err
}

// readOptionalSlot reads a slot into out. Returns false with no error when
// the slot does not exist.
func (s *Store) readOptionalSlot(name string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// writeSlot rewrites a slot atomically via temp file and rename, so a
// crashed write never leaves a half-written collection behind.
func (s *Store) writeSlot(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) removeSlot(name string) error {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}
