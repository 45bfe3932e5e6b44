// Package types provides the data structures shared across the mofu core:
// note entries, reference data rows, and the persisted slot shapes.
package types

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entry is one user-authored note, the atomic unit of storage. Raw is the
// source of truth; Race, Riders, Tactics and Tags are derivations of Raw
// against the reference cache and are recomputed on every edit.
// The JSON shape doubles as the NDJSON sync wire format, one Entry per line.
type Entry struct {
	ID  string `json:"id"`
	At  string `json:"at"` // RFC 3339 UTC creation timestamp
	Raw string `json:"raw"`

	Race    *RaceRef   `json:"race"`
	Riders  []RiderRef `json:"riders"`
	Tactics []string   `json:"tactics"`
	Tags    []string   `json:"tags"`
}

// RaceRef is a race reference extracted from an entry's raw text.
type RaceRef struct {
	Date   string     `json:"date"` // YYYY-MM-DD, local civil date at extraction time
	Venue  string     `json:"venue"`
	RaceNo int        `json:"raceNo"`
	Links  *RaceLinks `json:"links"` // nil when the venue/number pair is not on today's cards
}

// RaceLinks carries the resolved result/entry page URLs for a race.
type RaceLinks struct {
	Result string `json:"result"`
	Entry  string `json:"entry"`
}

// RiderRef is a rider mention extracted from an entry's raw text.
// ID is set only when exactly one rider record matches the name; an
// ambiguous or unknown name keeps just the surface form.
type RiderRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
	Ki     string `json:"ki,omitempty"`
}

// Validate checks the invariants a stored entry must hold.
func (e *Entry) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.Raw) == "" {
		return fmt.Errorf("raw text is required")
	}
	if e.At == "" {
		return fmt.Errorf("at is required")
	}
	return nil
}

// HeaderLabel returns the list/search header for the entry: the resolved
// "date venue NR" string when a race was extracted, otherwise the date
// portion of the creation timestamp.
func (e *Entry) HeaderLabel() string {
	if e.Race != nil && e.Race.Venue != "" {
		return fmt.Sprintf("%s %s%dR", e.Race.Date, e.Race.Venue, e.Race.RaceNo)
	}
	if len(e.At) >= 10 {
		return e.At[:10]
	}
	return e.At
}

// NewID returns a time-sortable unique identifier: the current unix
// millisecond count in base 36 followed by 20 hex characters of randomness.
func NewID() string {
	var buf [10]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// nanosecond entropy rather than returning an error from ID creation.
		return strconv.FormatInt(time.Now().UnixMilli(), 36) +
			strconv.FormatInt(time.Now().UnixNano(), 16)
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + hex.EncodeToString(buf[:])
}

// Timestamp formats t as the RFC 3339 UTC string stored in Entry.At.
// LWW merge compares these lexicographically, which is only sound if every
// writer uses the same format and zone.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
