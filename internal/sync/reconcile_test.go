package sync

import (
	"strings"
	"testing"

	"github.com/keirinjingle/mofu/internal/types"
)

func mkEntry(id, at, raw string) types.Entry {
	return types.Entry{ID: id, At: at, Raw: raw}
}

func TestMergeRoundTrip(t *testing.T) {
	local := []types.Entry{
		mkEntry("a", "2026-08-29T10:00:00Z", "メモ1"),
		mkEntry("b", "2026-08-30T10:00:00Z", "メモ2"),
	}
	nd, err := Export(local)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	res := Merge(local, nd)
	if res.Changed {
		t.Errorf("merging our own export changed the collection: %+v", res)
	}
	if res.Added != 0 || res.Replaced != 0 || res.Skipped != 0 {
		t.Errorf("round trip counters: %+v", res)
	}
}

func TestMergeAppendsUnknown(t *testing.T) {
	local := []types.Entry{mkEntry("a", "2026-08-29T10:00:00Z", "ローカル")}
	remote, _ := Export([]types.Entry{
		mkEntry("a", "2026-08-29T10:00:00Z", "ローカル"),
		mkEntry("b", "2026-08-30T10:00:00Z", "リモートだけ"),
	})

	res := Merge(local, remote)
	if !res.Changed || res.Added != 1 {
		t.Fatalf("merge = %+v, want one addition", res)
	}
	if len(res.Entries) != 2 || res.Entries[1].ID != "b" {
		t.Errorf("entries = %+v, want remote entry appended", res.Entries)
	}
}

func TestMergeLastWriterWins(t *testing.T) {
	local := []types.Entry{mkEntry("a", "2026-08-30T10:00:00Z", "ローカル版")}

	// Strictly newer remote replaces.
	newer, _ := Export([]types.Entry{mkEntry("a", "2026-08-30T11:00:00Z", "リモート版")})
	res := Merge(local, newer)
	if !res.Changed || res.Replaced != 1 || res.Entries[0].Raw != "リモート版" {
		t.Errorf("newer remote: %+v", res)
	}

	// Older remote loses.
	older, _ := Export([]types.Entry{mkEntry("a", "2026-08-30T09:00:00Z", "リモート版")})
	res = Merge(local, older)
	if res.Changed || res.Entries[0].Raw != "ローカル版" {
		t.Errorf("older remote: %+v", res)
	}

	// A tie is not strictly greater; local wins.
	tie, _ := Export([]types.Entry{mkEntry("a", "2026-08-30T10:00:00Z", "リモート版")})
	res = Merge(local, tie)
	if res.Changed || res.Entries[0].Raw != "ローカル版" {
		t.Errorf("timestamp tie: %+v", res)
	}
}

func TestMergeSkipsMalformedLines(t *testing.T) {
	local := []types.Entry{mkEntry("a", "2026-08-29T10:00:00Z", "メモ")}
	remote := strings.Join([]string{
		`not json`,
		`{"at":"2026-08-30T00:00:00Z","raw":"idなし"}`,
		`{"id":"b","at":"2026-08-30T00:00:00Z","raw":"これは良い"}`,
		``,
	}, "\n")

	res := Merge(local, remote)
	if res.Skipped != 2 {
		t.Errorf("skipped = %d, want 2", res.Skipped)
	}
	if res.Added != 1 || len(res.Entries) != 2 {
		t.Errorf("good line not merged: %+v", res)
	}
}

func TestMergeHandlesCRLF(t *testing.T) {
	remote := "{\"id\":\"a\",\"at\":\"2026-08-30T00:00:00Z\",\"raw\":\"windows育ち\"}\r\n"
	res := Merge(nil, remote)
	if res.Added != 1 || res.Skipped != 0 {
		t.Errorf("CRLF line not parsed: %+v", res)
	}
}

func TestMergeNeverDeletes(t *testing.T) {
	local := []types.Entry{
		mkEntry("a", "2026-08-29T10:00:00Z", "メモ1"),
		mkEntry("b", "2026-08-29T11:00:00Z", "メモ2"),
	}
	// Remote knows nothing about b.
	remote, _ := Export(local[:1])

	res := Merge(local, remote)
	if len(res.Entries) != 2 {
		t.Errorf("merge dropped a local entry: %+v", res.Entries)
	}
}

func TestExportOrderAndShape(t *testing.T) {
	entries := []types.Entry{
		mkEntry("a", "2026-08-29T10:00:00Z", "先"),
		mkEntry("b", "2026-08-30T10:00:00Z", "後"),
	}
	nd, err := Export(entries)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	lines := strings.Split(nd, "\n")
	if len(lines) != 2 {
		t.Fatalf("export = %d lines, want 2 (no trailing newline)", len(lines))
	}
	if !strings.Contains(lines[0], `"id":"a"`) || !strings.Contains(lines[1], `"id":"b"`) {
		t.Errorf("export order wrong:\n%s", nd)
	}
}

func TestExportEmpty(t *testing.T) {
	nd, err := Export(nil)
	if err != nil || nd != "" {
		t.Errorf("Export(nil) = (%q, %v), want empty string", nd, err)
	}
	res := Merge(nil, nd)
	if res.Changed || len(res.Entries) != 0 {
		t.Errorf("merging empty export: %+v", res)
	}
}
