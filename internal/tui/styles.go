package tui

import "github.com/charmbracelet/lipgloss"

// ─── Colors ──────────────────────────────────────────────────────────────────

var (
	colorText    = lipgloss.Color("#e6e6f0")
	colorSubtext = lipgloss.Color("#8a8fa3")
	colorBorder  = lipgloss.Color("#5a5f73")
	colorAccent  = lipgloss.Color("#7dc4e4") // rider/race links
	colorTag     = lipgloss.Color("#a6da95")
	colorWarn    = lipgloss.Color("#eed49f")
	colorError   = lipgloss.Color("#ed8796")
)

// hlOpen/hlClose are the raw ANSI markers the search engine wraps hits
// with on the search screen. Raw sequences because the engine inserts them
// mid-string, where a lipgloss Render would re-reset styling.
const (
	hlOpen  = "\x1b[1;38;5;215m"
	hlClose = "\x1b[0m"
)

// ─── Styles ──────────────────────────────────────────────────────────────────

var (
	appStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(colorBorder).
			MarginBottom(1)

	inputBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	dropdownStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)

	candidateStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	candidateSelectedStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true).
				PaddingLeft(1)

	candidateKindStyle = lipgloss.NewStyle().
				Foreground(colorWarn).
				Bold(true)

	entryHeaderStyle = lipgloss.NewStyle().
				Foreground(colorSubtext).
				Bold(true)

	entryRawStyle = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	tagStyle = lipgloss.NewStyle().
			Foreground(colorTag)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorTag)

	noResultsStyle = lipgloss.NewStyle().
			Foreground(colorSubtext).
			Italic(true).
			PaddingLeft(2)
)
