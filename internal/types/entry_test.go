package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestHeaderLabel(t *testing.T) {
	e := Entry{At: "2026-08-30T05:00:00Z"}
	if got := e.HeaderLabel(); got != "2026-08-30" {
		t.Errorf("raceless header = %q", got)
	}

	e.Race = &RaceRef{Date: "2026-08-30", Venue: "平塚", RaceNo: 5}
	if got := e.HeaderLabel(); got != "2026-08-30 平塚5R" {
		t.Errorf("race header = %q", got)
	}
}

func TestNewID(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == b {
		t.Error("two ids collided")
	}
	if len(a) < 20 {
		t.Errorf("id too short: %q", a)
	}
}

func TestTimestamp(t *testing.T) {
	got := Timestamp(time.Date(2026, 8, 30, 14, 30, 0, 0, time.FixedZone("JST", 9*3600)))
	if got != "2026-08-30T05:30:00Z" {
		t.Errorf("Timestamp = %q, want UTC RFC 3339", got)
	}
	// Lexicographic order must track time order, the LWW premise.
	earlier := Timestamp(time.Date(2026, 8, 30, 4, 0, 0, 0, time.UTC))
	if !(earlier < got) {
		t.Errorf("timestamps not lexicographically ordered: %q vs %q", earlier, got)
	}
}

func TestValidate(t *testing.T) {
	good := Entry{ID: "x", At: "2026-08-30T05:00:00Z", Raw: "メモ"}
	if err := good.Validate(); err != nil {
		t.Errorf("valid entry rejected: %v", err)
	}
	for _, e := range []Entry{
		{At: "2026-08-30T05:00:00Z", Raw: "メモ"},
		{ID: "x", Raw: "メモ"},
		{ID: "x", At: "2026-08-30T05:00:00Z", Raw: "   "},
	} {
		if err := e.Validate(); err == nil {
			t.Errorf("invalid entry accepted: %+v", e)
		}
	}
}

func TestEntryWireShape(t *testing.T) {
	e := Entry{
		ID:      "id1",
		At:      "2026-08-30T05:00:00Z",
		Raw:     "- 平塚5R",
		Riders:  []RiderRef{},
		Tactics: []string{},
		Tags:    []string{},
	}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"id":"id1"`, `"race":null`, `"riders":[]`, `"tactics":[]`, `"tags":[]`} {
		if !strings.Contains(s, want) {
			t.Errorf("wire shape missing %s:\n%s", want, s)
		}
	}
}

func TestCredentialValid(t *testing.T) {
	now := int64(1_000_000)
	tests := []struct {
		name string
		c    *Credential
		want bool
	}{
		{"nil", nil, false},
		{"live", &Credential{AccessToken: "t", Expiry: now + 1000}, true},
		{"expired", &Credential{AccessToken: "t", Expiry: now - 1}, false},
		{"no token", &Credential{Expiry: now + 1000}, false},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(now); got != tt.want {
			t.Errorf("%s: Valid = %v, want %v", tt.name, got, tt.want)
		}
	}
}
