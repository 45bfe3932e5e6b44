package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/keirinjingle/mofu/internal/complete"
	"github.com/keirinjingle/mofu/internal/types"
)

// Update dispatches messages to the active screen.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Input.Width = max(20, msg.Width-4)
		m.SearchInput.Width = max(20, msg.Width-4)
		return m, nil

	case entriesLoadedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.Entries = msg.entries
		return m, nil

	case entryAddedMsg:
		if msg.err != nil {
			m.ErrorMsg = msg.err.Error()
			return m, nil
		}
		m.ErrorMsg = ""
		m.Notice = "追加しました"
		m.Input.SetValue("")
		m.closeDropdown()
		return m, loadEntries(m.store)

	case tea.KeyMsg:
		switch m.Screen {
		case ScreenCapture:
			return m.updateCapture(msg)
		case ScreenSearch:
			return m.updateSearch(msg)
		}
	}

	return m.updateInputs(msg)
}

func (m *Model) closeDropdown() {
	m.Candidates = nil
	m.Token = nil
	m.Selected = 0
}

func (m Model) updateCapture(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.Token != nil {
			m.closeDropdown()
			return m, nil
		}
		return m, tea.Quit

	case "ctrl+f":
		m.Screen = ScreenSearch
		m.SearchInput.Focus()
		m.Input.Blur()
		return m, nil

	case "up", "ctrl+p":
		if len(m.Candidates) > 0 {
			m.Selected = (m.Selected - 1 + len(m.Candidates)) % len(m.Candidates)
			return m, nil
		}

	case "down", "ctrl+n", "tab":
		if len(m.Candidates) > 0 {
			m.Selected = (m.Selected + 1) % len(m.Candidates)
			return m, nil
		}

	case "enter":
		if len(m.Candidates) > 0 && m.Token != nil {
			// Commit without explicit selection always takes index 0.
			m.commitCandidate(m.Candidates[m.Selected])
			return m, m.saveDraft()
		}
		raw := m.Input.Value()
		if raw == "" {
			return m, nil
		}
		return m, addEntry(m.store, raw)
	}

	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	m.refreshCandidates()
	return m, tea.Batch(cmd, m.saveDraft())
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		m.Screen = ScreenCapture
		m.SearchInput.Blur()
		m.Input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	m.SearchResults = m.engine.Search(m.Entries, m.SearchInput.Value())
	return m, cmd
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// refreshCandidates re-resolves the completion token at the current caret.
func (m *Model) refreshCandidates() {
	cands, tok := m.resolver.Resolve(m.Input.Value(), m.Input.Position())
	m.Candidates = cands
	m.Token = tok
	if m.Selected >= len(cands) {
		m.Selected = 0
	}
}

// commitCandidate replaces the token span with the candidate's surface text
// and moves the caret to the end of the insertion.
func (m *Model) commitCandidate(c complete.Candidate) {
	text, caret := complete.Commit(m.Input.Value(), m.Token, c)
	m.Input.SetValue(text)
	m.Input.SetCursor(caret)
	m.closeDropdown()
}

// saveDraft persists the in-progress text so a crash or restart can pick it
// back up. Submission clears the slot via the store.
func (m Model) saveDraft() tea.Cmd {
	text := m.Input.Value()
	caret := m.Input.Position()
	s := m.store
	return func() tea.Msg {
		_ = s.SaveDraft(types.Draft{Text: text, Caret: caret, TS: time.Now().UnixMilli()})
		return nil
	}
}
