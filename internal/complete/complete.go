// Package complete implements the slash-triggered autocomplete: detecting
// the in-progress "/partial" token at the caret and resolving it to rider,
// race, tactic and free-tag candidates from the reference cache.
//
// Everything here is pure, synchronous computation over in-memory data.
// Caret positions and spans are rune offsets.
package complete

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/types"
)

// DefaultTactics is the fixed race-strategy vocabulary.
var DefaultTactics = []string{"三分戦", "二分戦", "単騎", "先行一車", "捲り", "差し", "カマシ"}

const (
	maxRiderCandidates = 6
	maxCandidates      = 8
)

// Kind classifies a candidate.
type Kind int

const (
	KindRider Kind = iota
	KindRace
	KindTactic
	KindTag
)

// String returns the candidate category label shown in dropdowns.
func (k Kind) String() string {
	switch k {
	case KindRider:
		return "選手"
	case KindRace:
		return "レース"
	case KindTactic:
		return "戦法"
	case KindTag:
		return "タグ"
	default:
		return "?"
	}
}

// Token is the active completion token: the "/body" span that ends exactly
// at the caret. Start covers the slash, End is the caret.
type Token struct {
	Body  string
	Start int
	End   int
}

// Candidate is one completion proposal.
type Candidate struct {
	Kind   Kind
	Rider  *types.RiderRecord
	Venue  string
	RaceNo int
	Tactic string
	Tag    string
}

// Resolver proposes candidates against a reference cache. A nil or empty
// cache is fine; the affected categories simply produce nothing.
type Resolver struct {
	Cache   *refdata.Cache
	Tactics []string
}

// NewResolver returns a Resolver over the cache with the default tactic
// vocabulary.
func NewResolver(cache *refdata.Cache) *Resolver {
	return &Resolver{Cache: cache, Tactics: DefaultTactics}
}

// DetectToken finds the active completion token in text at the given caret
// (rune offset): a "/body" run ending exactly at the caret, where the slash
// sits at the start of the text or after whitespace and the body is any run
// of non-space characters, further slashes included. Returns nil when no
// token is active.
func DetectToken(text string, caret int) *Token {
	runes := []rune(text)
	if caret < 0 || caret > len(runes) {
		return nil
	}

	// Walk back over the non-space run ending at the caret.
	i := caret
	for i > 0 && !unicode.IsSpace(runes[i-1]) {
		i--
	}
	// The run must open with the trigger slash; a slash deeper in the run
	// is part of the body.
	if i == caret || runes[i] != '/' {
		return nil
	}

	return &Token{
		Body:  string(runes[i+1 : caret]),
		Start: i,
		End:   caret,
	}
}

// Resolve returns the candidate list for the active token at the caret, or
// (nil, nil) when no token is active. The list preserves category order
// (riders, races, tactics, tag) and is capped at 8.
func (r *Resolver) Resolve(text string, caret int) ([]Candidate, *Token) {
	tok := DetectToken(text, caret)
	if tok == nil {
		return nil, nil
	}
	return r.Candidates(tok.Body), tok
}

// Candidates resolves a token body to its capped candidate list.
func (r *Resolver) Candidates(q string) []Candidate {
	n := strings.ToLower(q)
	var items []Candidate

	// Riders: substring match over "name region ki", case-insensitive.
	if r.Cache != nil && len(r.Cache.Riders) > 0 && q != "" {
		for i := range r.Cache.Riders {
			rec := &r.Cache.Riders[i]
			hay := strings.ToLower(rec.Name + " " + rec.Region + " " + rec.Ki)
			if strings.Contains(hay, n) {
				items = append(items, Candidate{Kind: KindRider, Rider: rec})
				if len(items) >= maxRiderCandidates {
					break
				}
			}
		}
	}

	// Races: fuzzy venue match plus optional trailing race number.
	if r.Cache != nil && len(r.Cache.DayCards) > 0 {
		maybeNo := trailingNumber(n)
	cards:
		for _, v := range r.Cache.DayCards {
			venue := strings.ToLower(v.Venue)
			if !strings.Contains(venue, n) && !strings.Contains(n, venue) {
				continue
			}
			for _, slot := range v.Races {
				if maybeNo != 0 && slot.RaceNumber != maybeNo {
					continue
				}
				items = append(items, Candidate{Kind: KindRace, Venue: v.Venue, RaceNo: slot.RaceNumber})
				if len(items) >= maxCandidates {
					break cards
				}
			}
		}
	}

	// Tactics: case-sensitive substring over the fixed vocabulary.
	for _, t := range r.Tactics {
		if strings.Contains(t, q) {
			items = append(items, Candidate{Kind: KindTactic, Tactic: t})
		}
	}

	// Free tag: echo the token body.
	if q != "" {
		items = append(items, Candidate{Kind: KindTag, Tag: q})
	}

	if len(items) > maxCandidates {
		items = items[:maxCandidates]
	}
	return items
}

// trailingNumber extracts the last one or two trailing digits from the
// token body, or 0 when the body ends without a digit. Race numbers start
// at 1, so 0 doubles as "no number".
func trailingNumber(s string) int {
	runes := []rune(s)
	i := len(runes)
	for i > 0 && runes[i-1] >= '0' && runes[i-1] <= '9' {
		i--
	}
	if i == len(runes) {
		return 0
	}
	if len(runes)-i > 2 {
		i = len(runes) - 2
	}
	no, err := strconv.Atoi(string(runes[i:]))
	if err != nil {
		return 0
	}
	return no
}

// CommitText returns the canonical surface text a committed candidate
// inserts into the note.
func (c Candidate) CommitText() string {
	switch c.Kind {
	case KindRider:
		if c.Rider.Region != "" {
			return fmt.Sprintf("@%s（%s／%s）", c.Rider.Name, c.Rider.Region, c.Rider.Ki)
		}
		return fmt.Sprintf("@%s（%s）", c.Rider.Name, c.Rider.Ki)
	case KindRace:
		return fmt.Sprintf("- %s%dR", c.Venue, c.RaceNo)
	case KindTactic:
		return "#" + c.Tactic
	case KindTag:
		return "+" + c.Tag
	default:
		return ""
	}
}

// Label returns the dropdown display form: category plus commit text.
func (c Candidate) Label() string {
	return c.Kind.String() + " " + c.CommitText()
}

// Commit replaces the token span in text with the candidate's commit text
// and returns the new text plus the caret position at the end of the
// insertion.
func Commit(text string, tok *Token, c Candidate) (string, int) {
	runes := []rune(text)
	ins := []rune(c.CommitText())
	before := runes[:tok.Start]
	after := runes[tok.End:]

	out := make([]rune, 0, len(before)+len(ins)+len(after))
	out = append(out, before...)
	out = append(out, ins...)
	caret := len(out)
	out = append(out, after...)
	return string(out), caret
}
