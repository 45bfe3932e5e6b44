// Package search implements the note full-text search: AND-containment of
// quoted phrases (case-sensitive) and bare words (case-insensitive) over
// raw text, with windowed, highlighted snippets.
//
// The matcher is a deliberate linear scan; at the hundreds-of-entries scale
// the store targets, an index would only add moving parts.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/keirinjingle/mofu/internal/types"
)

// Result is one search hit.
type Result struct {
	ID      string `json:"id"`
	Header  string `json:"header"`
	Snippet string `json:"snippet"`
}

// Query is a tokenized search query: phrases must match verbatim, words
// case-insensitively. Both sets are AND-combined.
type Query struct {
	Phrases []string
	Words   []string
}

// Empty reports whether the query has no terms at all. An empty query
// matches nothing, not everything.
func (q Query) Empty() bool {
	return len(q.Phrases) == 0 && len(q.Words) == 0
}

// Terms returns phrases followed by words, the order used for snippet
// anchoring.
func (q Query) Terms() []string {
	return append(append([]string{}, q.Phrases...), q.Words...)
}

var phraseRe = regexp.MustCompile(`"([^"]+)"`)

// Tokenize splits a raw query into quoted phrases and remaining
// whitespace-delimited words.
func Tokenize(raw string) Query {
	var q Query
	rest := phraseRe.ReplaceAllStringFunc(raw, func(m string) string {
		q.Phrases = append(q.Phrases, strings.TrimSpace(m[1:len(m)-1]))
		return " "
	})
	for _, w := range strings.Fields(rest) {
		q.Words = append(q.Words, w)
	}
	return q
}

// Engine renders search hits. The highlight markers and escape function are
// pluggable so the same engine serves HTML (widget API) and ANSI (CLI)
// output.
type Engine struct {
	SnippetWidth   int                 // rune width of the snippet window
	Limit          int                 // result cap
	HighlightOpen  string              // inserted before each term occurrence
	HighlightClose string              // inserted after each term occurrence
	Escape         func(string) string // applied to snippet text before markers
}

// NewEngine returns an engine producing HTML-safe snippets with
// <span class="hl"> highlighting, 120-rune windows, capped at 100 hits.
func NewEngine() *Engine {
	return &Engine{
		SnippetWidth:   120,
		Limit:          100,
		HighlightOpen:  `<span class="hl">`,
		HighlightClose: `</span>`,
		Escape:         EscapeHTML,
	}
}

// Search scans entries (expected newest-first) and returns highlighted hits
// up to the engine's limit. An empty query yields no hits.
func (e *Engine) Search(entries []types.Entry, raw string) []Result {
	q := Tokenize(raw)
	if q.Empty() {
		return []Result{}
	}
	terms := q.Terms()

	hits := []Result{}
	for i := range entries {
		if !Matches(&entries[i], q) {
			continue
		}
		hits = append(hits, Result{
			ID:      entries[i].ID,
			Header:  entries[i].HeaderLabel(),
			Snippet: e.Snippet(entries[i].Raw, terms),
		})
		if len(hits) >= e.Limit {
			break
		}
	}
	return hits
}

// Matches reports whether the entry's raw text contains every phrase
// verbatim and every word case-insensitively.
func Matches(entry *types.Entry, q Query) bool {
	txt := entry.Raw
	for _, p := range q.Phrases {
		if !strings.Contains(txt, p) {
			return false
		}
	}
	lower := strings.ToLower(txt)
	for _, w := range q.Words {
		if !strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	return true
}

// Snippet cuts a window of the engine's width around the first
// case-insensitive occurrence of any term, escapes it, and wraps every term
// occurrence in the highlight markers, longest terms first so shorter terms
// cannot corrupt a longer match already wrapped.
func (e *Engine) Snippet(text string, terms []string) string {
	esc := e.Escape
	if esc == nil {
		esc = EscapeHTML
	}
	if len(terms) == 0 {
		return esc(text)
	}

	runes := []rune(text)
	hit := firstHit(text, terms)
	start := hit - (e.SnippetWidth-len([]rune(terms[0])))/2
	if start < 0 {
		start = 0
	}
	end := start + e.SnippetWidth
	if end > len(runes) {
		end = len(runes)
	}

	out := esc(string(runes[start:end]))
	sorted := append([]string{}, terms...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})
	for _, t := range sorted {
		out = highlightAll(out, t, e.HighlightOpen, e.HighlightClose)
	}

	if start > 0 {
		out = "…" + out
	}
	if end < len(runes) {
		out += "…"
	}
	return out
}

// firstHit returns the rune index of the earliest case-insensitive
// occurrence of any term, or 0 when nothing matches inside the text.
func firstHit(text string, terms []string) int {
	lower := strings.ToLower(text)
	best := -1
	for _, t := range terms {
		if t == "" {
			continue
		}
		if i := strings.Index(lower, strings.ToLower(t)); i >= 0 && (best == -1 || i < best) {
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	// Byte offset to rune offset.
	return len([]rune(text[:best]))
}

// highlightAll wraps every case-insensitive occurrence of term in s with
// the open/close markers, preserving the original casing of each match.
func highlightAll(s, term, open, close string) string {
	if term == "" {
		return s
	}
	lower := strings.ToLower(s)
	lterm := strings.ToLower(term)

	var b strings.Builder
	i := 0
	for {
		j := strings.Index(lower[i:], lterm)
		if j < 0 {
			b.WriteString(s[i:])
			return b.String()
		}
		j += i
		b.WriteString(s[i:j])
		b.WriteString(open)
		b.WriteString(s[j : j+len(lterm)])
		b.WriteString(close)
		i = j + len(lterm)
	}
}

// EscapeHTML escapes the three characters that matter inside text nodes.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
