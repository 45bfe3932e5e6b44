// Package tui implements the interactive capture UI: a single input line
// with slash-triggered completion, the recent-note list underneath, and a
// full-text search screen.
//
// Layout follows the usual Bubbletea shape: screen constants, one Model
// struct holding all state, Update with a type switch, per-screen key
// handlers.
package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/keirinjingle/mofu/internal/complete"
	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/search"
	"github.com/keirinjingle/mofu/internal/store"
	"github.com/keirinjingle/mofu/internal/types"
)

// ─── Screens ─────────────────────────────────────────────────────────────────

type Screen int

const (
	ScreenCapture Screen = iota
	ScreenSearch
)

// ─── Custom Messages ─────────────────────────────────────────────────────────

type entriesLoadedMsg struct {
	entries []types.Entry
	err     error
}

type entryAddedMsg struct {
	entry *types.Entry
	err   error
}

// ─── Model ───────────────────────────────────────────────────────────────────

type Model struct {
	store    *store.Store
	resolver *complete.Resolver
	engine   *search.Engine
	status   refdata.Status

	Screen Screen
	Width  int
	Height int

	// Capture
	Input      textinput.Model
	Candidates []complete.Candidate
	Token      *complete.Token
	Selected   int
	Entries    []types.Entry // newest-first

	// Search
	SearchInput   textinput.Model
	SearchResults []search.Result

	// Status line
	ErrorMsg string
	Notice   string
}

// New builds the TUI model, restoring any pending draft into the input.
func New(s *store.Store, resolver *complete.Resolver, status refdata.Status) Model {
	ti := textinput.New()
	ti.Placeholder = "メモを入力（/ で補完）"
	ti.CharLimit = 0
	ti.Focus()

	si := textinput.New()
	si.Placeholder = `検索（"フレーズ" と 語 のAND）`
	si.CharLimit = 256

	if draft, err := s.LoadDraft(); err == nil && draft != nil {
		ti.SetValue(draft.Text)
		ti.SetCursor(draft.Caret)
	}

	engine := search.NewEngine()
	engine.Escape = func(s string) string { return s }
	engine.HighlightOpen = hlOpen
	engine.HighlightClose = hlClose

	return Model{
		store:       s,
		resolver:    resolver,
		engine:      engine,
		status:      status,
		Screen:      ScreenCapture,
		Input:       ti,
		SearchInput: si,
	}
}

// Init loads the entry list.
func (m Model) Init() tea.Cmd {
	return tea.Batch(loadEntries(m.store), textinput.Blink)
}

// ─── Commands ────────────────────────────────────────────────────────────────

func loadEntries(s *store.Store) tea.Cmd {
	return func() tea.Msg {
		entries, err := s.List()
		return entriesLoadedMsg{entries: entries, err: err}
	}
}

func addEntry(s *store.Store, raw string) tea.Cmd {
	return func() tea.Msg {
		entry, err := s.Add(raw)
		return entryAddedMsg{entry: entry, err: err}
	}
}
