// Package extract derives the structured references of a note from its raw
// text: the race fragment, rider mentions, tactic terms and free tags.
//
// Each entity kind has its own scanner rule so the rules stay independently
// testable. Extraction never fails: unknown or ambiguous references degrade
// to partial fields. Identical (raw text, reference cache) inputs always
// produce identical output, which is what makes re-deriving on every edit
// safe.
package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/types"
)

var (
	// Race fragment: "- <venue letters><1-2 digits>R". Venue characters are
	// hiragana, katakana, the common kanji block, or Latin letters.
	raceRe = regexp.MustCompile(`-\s*([\x{3040}-\x{30FF}\x{4E00}-\x{9FAF}A-Za-z]+)([0-9]{1,2})R`)

	// Rider mention: "@Name" with an optional parenthesized annotation that
	// is discarded, never parsed back.
	riderRe = regexp.MustCompile(`@([^\s@#+（）()]+)(?:（[^）]*）)?`)

	// Tactic: "#Term".
	tacticRe = regexp.MustCompile(`#(\S+)`)

	// Free tag: "+Term" where Term is a quoted string (may contain spaces)
	// or a bare non-space run.
	tagRe = regexp.MustCompile(`\+("[^"]+"|\S+)`)
)

// Result holds everything derived from one note's raw text.
type Result struct {
	Race    *types.RaceRef
	Riders  []types.RiderRef
	Tactics []string
	Tags    []string
}

// Extractor runs the scanner rules against a reference cache.
type Extractor struct {
	Cache *refdata.Cache
	Now   func() time.Time
}

// New returns an Extractor over the cache using the wall clock for the
// race date.
func New(cache *refdata.Cache) *Extractor {
	return &Extractor{Cache: cache, Now: time.Now}
}

// Extract derives all structured references from raw.
func (x *Extractor) Extract(raw string) Result {
	return Result{
		Race:    x.Race(raw),
		Riders:  x.Riders(raw),
		Tactics: Tactics(raw),
		Tags:    Tags(raw),
	}
}

// Race scans for the first race fragment. When the parsed venue/number pair
// is on today's cards and the slot carries an entry URL, the result link is
// derived by swapping the entry path segment for the result segment;
// otherwise Links stays nil. The date is always today's local civil date.
func (x *Extractor) Race(raw string) *types.RaceRef {
	m := raceRe.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	venue := m[1]
	raceNo := atoi(m[2])

	ref := &types.RaceRef{
		Date:   x.now().Format("2006-01-02"),
		Venue:  venue,
		RaceNo: raceNo,
	}
	if slot, ok := x.Cache.FindSlot(venue, raceNo); ok && slot.URL != "" {
		ref.Links = &types.RaceLinks{
			Entry:  slot.URL,
			Result: strings.Replace(slot.URL, "/entry/", "/result/", 1),
		}
	}
	return ref
}

// Riders scans every "@Name" mention. A name resolves to a rider record
// (id, region, career class) only when exactly one record matches; zero or
// multiple matches keep just the name. Ambiguity is never guessed.
func (x *Extractor) Riders(raw string) []types.RiderRef {
	riders := []types.RiderRef{}
	for _, m := range riderRe.FindAllStringSubmatch(raw, -1) {
		name := m[1]
		cand := x.Cache.RidersByName(name)
		if len(cand) == 1 {
			riders = append(riders, types.RiderRef{
				ID:     cand[0].ID,
				Name:   name,
				Region: cand[0].Region,
				Ki:     cand[0].Ki,
			})
			continue
		}
		riders = append(riders, types.RiderRef{Name: name})
	}
	return riders
}

// Tactics returns every "#Term" occurrence in order.
func Tactics(raw string) []string {
	out := []string{}
	for _, m := range tacticRe.FindAllStringSubmatch(raw, -1) {
		out = append(out, m[1])
	}
	return out
}

// Tags returns every "+Term" occurrence in order, with surrounding quotes
// stripped from quoted tags.
func Tags(raw string) []string {
	out := []string{}
	for _, m := range tagRe.FindAllStringSubmatch(raw, -1) {
		out = append(out, strings.Trim(m[1], `"`))
	}
	return out
}

func (x *Extractor) now() time.Time {
	if x.Now != nil {
		return x.Now()
	}
	return time.Now()
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
