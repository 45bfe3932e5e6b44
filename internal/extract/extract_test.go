package extract

import (
	"reflect"
	"testing"
	"time"

	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/types"
)

var testDay = time.Date(2026, 8, 30, 14, 0, 0, 0, time.Local)

func testExtractor() *Extractor {
	x := New(&refdata.Cache{
		Riders: []types.RiderRecord{
			{ID: "014143", Name: "中野慎詞", Region: "岩手", Ki: "121期"},
			{ID: "015445", Name: "山田太郎", Region: "千葉", Ki: "119期"},
			{ID: "015446", Name: "山田太郎", Region: "大阪", Ki: "103期"},
		},
		DayCards: []types.VenueDayCard{
			{Venue: "平塚", Races: []types.RaceSlot{
				{RaceNumber: 5, URL: "https://keirin.example.jp/entry/2026083005"},
				{RaceNumber: 6},
			}},
		},
	})
	x.Now = func() time.Time { return testDay }
	return x
}

func TestRace(t *testing.T) {
	x := testExtractor()

	got := x.Race("本命決まった - 平塚5R 面白そう")
	if got == nil {
		t.Fatal("Race() = nil, want a race")
	}
	if got.Venue != "平塚" || got.RaceNo != 5 {
		t.Errorf("Race() = %s %dR, want 平塚 5R", got.Venue, got.RaceNo)
	}
	if got.Date != "2026-08-30" {
		t.Errorf("Race().Date = %q, want 2026-08-30", got.Date)
	}
	if got.Links == nil {
		t.Fatal("Race().Links = nil, want resolved links")
	}
	if got.Links.Entry != "https://keirin.example.jp/entry/2026083005" {
		t.Errorf("entry link = %q", got.Links.Entry)
	}
	if got.Links.Result != "https://keirin.example.jp/result/2026083005" {
		t.Errorf("result link = %q, want entry path swapped for result", got.Links.Result)
	}
}

func TestRaceNoLinks(t *testing.T) {
	x := testExtractor()

	// Race 6 is on the card but carries no entry URL.
	if got := x.Race("- 平塚6R"); got == nil || got.Links != nil {
		t.Errorf("Race(平塚6R) = %+v, want race without links", got)
	}

	// 小倉 is not racing today.
	got := x.Race("- 小倉3R")
	if got == nil {
		t.Fatal("Race() = nil, want the parsed race even off-card")
	}
	if got.Venue != "小倉" || got.RaceNo != 3 || got.Links != nil {
		t.Errorf("Race(小倉3R) = %+v, want 小倉 3R without links", got)
	}
}

func TestRaceAbsent(t *testing.T) {
	x := testExtractor()
	for _, raw := range []string{
		"ただのメモ",
		"- 平塚R",      // no race number
		"- 平塚123R",   // number too long
		"平塚5R",       // no leading dash
		"- ５R",        // full-width digit is not a race number
	} {
		if got := x.Race(raw); got != nil {
			t.Errorf("Race(%q) = %+v, want nil", raw, got)
		}
	}
}

func TestRaceFirstMatchWins(t *testing.T) {
	x := testExtractor()
	got := x.Race("- 平塚5R と - 小倉2R")
	if got == nil || got.Venue != "平塚" {
		t.Errorf("Race() = %+v, want the first fragment 平塚5R", got)
	}
}

func TestRiders(t *testing.T) {
	x := testExtractor()

	got := x.Riders("@中野慎詞（岩手／121期） が @山田太郎 に勝った @誰か")
	if len(got) != 3 {
		t.Fatalf("Riders() = %d mentions, want 3: %+v", len(got), got)
	}

	// Unique match: fully resolved, annotation discarded.
	if got[0].ID != "014143" || got[0].Region != "岩手" || got[0].Ki != "121期" {
		t.Errorf("resolved mention = %+v, want full record attached", got[0])
	}
	// Two 山田太郎 in the roster: ambiguity keeps just the name.
	if got[1].Name != "山田太郎" || got[1].ID != "" || got[1].Region != "" {
		t.Errorf("ambiguous mention = %+v, want bare name", got[1])
	}
	// Unknown name: bare as well.
	if got[2].Name != "誰か" || got[2].ID != "" {
		t.Errorf("unknown mention = %+v, want bare name", got[2])
	}
}

func TestTactics(t *testing.T) {
	got := Tactics("#三分戦 で #先行一車 気味")
	want := []string{"三分戦", "先行一車"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tactics() = %v, want %v", got, want)
	}
	if got := Tactics("no tactics"); len(got) != 0 {
		t.Errorf("Tactics() = %v, want empty", got)
	}
}

func TestTags(t *testing.T) {
	got := Tags(`+注目 +"要 チェック" end`)
	want := []string{"注目", "要 チェック"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags() = %v, want %v", got, want)
	}
}

func TestExtractDeterministic(t *testing.T) {
	x := testExtractor()
	raw := "- 平塚5R @中野慎詞 #三分戦 +注目"

	a := x.Extract(raw)
	b := x.Extract(raw)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Extract not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestExtractEmptySlices(t *testing.T) {
	x := testExtractor()
	got := x.Extract("ただのメモ")

	// Derivations serialize as [] rather than null on the wire.
	if got.Riders == nil || got.Tactics == nil || got.Tags == nil {
		t.Errorf("Extract() = %+v, want empty slices, not nil", got)
	}
	if got.Race != nil {
		t.Errorf("Race = %+v, want nil", got.Race)
	}
}
