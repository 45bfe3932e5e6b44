package tui

import (
	"fmt"
	"strings"
)

// View renders the active screen.
func (m Model) View() string {
	switch m.Screen {
	case ScreenSearch:
		return appStyle.Render(m.viewSearch())
	default:
		return appStyle.Render(m.viewCapture())
	}
}

func (m Model) viewCapture() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("mofu — keirin notes") + "\n")
	b.WriteString(inputBoxStyle.Render(m.Input.View()) + "\n")

	if len(m.Candidates) > 0 {
		var rows []string
		for i, c := range m.Candidates {
			line := candidateKindStyle.Render(c.Kind.String()) + " " + c.CommitText()
			if i == m.Selected {
				rows = append(rows, candidateSelectedStyle.Render("▸ "+line))
			} else {
				rows = append(rows, candidateStyle.Render(line))
			}
		}
		b.WriteString(dropdownStyle.Render(strings.Join(rows, "\n")) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.viewEntries())
	b.WriteString(m.viewStatusLine())
	return b.String()
}

func (m Model) viewEntries() string {
	if len(m.Entries) == 0 {
		return noResultsStyle.Render("（まだメモがありません）") + "\n"
	}

	visible := m.Entries
	if maxRows := m.entryRows(); len(visible) > maxRows {
		visible = visible[:maxRows]
	}

	var b strings.Builder
	for _, e := range visible {
		header := entryHeaderStyle.Render(e.HeaderLabel())
		if e.Race != nil && e.Race.Links != nil {
			header += " " + tagStyle.Render("[結果あり]")
		}
		b.WriteString(header + "\n")
		b.WriteString(entryRawStyle.Render(firstLine(e.Raw)) + "\n")
	}
	if len(visible) < len(m.Entries) {
		b.WriteString(noResultsStyle.Render(fmt.Sprintf("…ほか %d 件", len(m.Entries)-len(visible))) + "\n")
	}
	return b.String()
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("mofu — 全文検索") + "\n")
	b.WriteString(inputBoxStyle.Render(m.SearchInput.View()) + "\n\n")

	query := strings.TrimSpace(m.SearchInput.Value())
	switch {
	case query == "":
		b.WriteString(noResultsStyle.Render("キーワードを入力してください。") + "\n")
	case len(m.SearchResults) == 0:
		b.WriteString(noResultsStyle.Render("該当メモがありません。") + "\n")
	default:
		b.WriteString(entryHeaderStyle.Render(fmt.Sprintf("%d 件", len(m.SearchResults))) + "\n")
		for _, hit := range m.SearchResults {
			b.WriteString(entryHeaderStyle.Render(hit.Header) + "\n")
			b.WriteString(entryRawStyle.Render(hit.Snippet) + "\n")
		}
	}

	b.WriteString(helpStyle.Render("esc 戻る • ctrl+c 終了"))
	return b.String()
}

func (m Model) viewStatusLine() string {
	feeds := fmt.Sprintf("選手DB %s  当日レース %s  メモ %d件",
		okMark(m.status.RidersOK), okMark(m.status.RacesOK), len(m.Entries))

	line := helpStyle.Render(feeds + "  •  enter 登録 • / 補完 • ctrl+f 検索 • esc 終了")
	if m.ErrorMsg != "" {
		line = errorStyle.Render(m.ErrorMsg) + "\n" + line
	} else if m.Notice != "" {
		line = noticeStyle.Render(m.Notice) + "\n" + line
	}
	return line
}

// entryRows bounds how many recent entries fit under the input area.
func (m Model) entryRows() int {
	rows := (m.Height - 12) / 2
	if rows < 3 {
		rows = 3
	}
	return rows
}

func okMark(ok bool) string {
	if ok {
		return noticeStyle.Render("✅")
	}
	return errorStyle.Render("✖")
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + "…"
	}
	return s
}
