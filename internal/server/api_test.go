package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/keirinjingle/mofu/internal/complete"
	"github.com/keirinjingle/mofu/internal/extract"
	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/search"
	"github.com/keirinjingle/mofu/internal/store"
	msync "github.com/keirinjingle/mofu/internal/sync"
	"github.com/keirinjingle/mofu/internal/types"
)

type recordingNotifier struct {
	messages []Message
	changes  []EntriesChangedData
}

func (n *recordingNotifier) Broadcast(msg Message) {
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) BroadcastEntriesChanged(action, id string) {
	n.changes = append(n.changes, EntriesChangedData{Action: action, ID: id})
}

func newTestAPI(t *testing.T) (*API, *recordingNotifier, *http.ServeMux) {
	t.Helper()

	cache := &refdata.Cache{
		Riders: []types.RiderRecord{
			{ID: "014143", Name: "中野慎詞", Region: "岩手", Ki: "121期"},
		},
		DayCards: []types.VenueDayCard{
			{Venue: "平塚", Races: []types.RaceSlot{{RaceNumber: 5}}},
		},
	}
	s, err := store.Open(t.TempDir(), extract.New(cache), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	api := &API{
		Store:    s,
		Resolver: complete.NewResolver(cache),
		Engine:   search.NewEngine(),
		Status:   refdata.Status{RidersOK: true, RacesOK: true},
	}
	n := &recordingNotifier{}
	mux := http.NewServeMux()
	api.register(mux, n)
	return api, n, mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if out != nil && rr.Code < 300 {
		if err := json.Unmarshal(rr.Body.Bytes(), out); err != nil {
			t.Fatalf("%s %s: decode response: %v\n%s", method, path, err, rr.Body.String())
		}
	}
	return rr
}

func TestAddAndListEntries(t *testing.T) {
	_, n, mux := newTestAPI(t)

	var created types.Entry
	rr := doJSON(t, mux, "POST", "/api/entries", `{"raw":"- 平塚5R #三分戦"}`, &created)
	if rr.Code != http.StatusCreated {
		t.Fatalf("POST /api/entries = %d: %s", rr.Code, rr.Body.String())
	}
	if created.ID == "" || created.Race == nil || created.Race.Venue != "平塚" {
		t.Errorf("created entry = %+v", created)
	}
	if len(n.changes) != 1 || n.changes[0].Action != "added" || n.changes[0].ID != created.ID {
		t.Errorf("broadcasts = %+v", n.changes)
	}

	var list []types.Entry
	rr = doJSON(t, mux, "GET", "/api/entries", "", &list)
	if rr.Code != http.StatusOK || len(list) != 1 {
		t.Fatalf("GET /api/entries = %d, %d entries", rr.Code, len(list))
	}
}

func TestAddEmptyText(t *testing.T) {
	_, n, mux := newTestAPI(t)

	rr := doJSON(t, mux, "POST", "/api/entries", `{"raw":"   "}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty add = %d, want 400", rr.Code)
	}
	if len(n.changes) != 0 {
		t.Errorf("rejected add broadcast a change: %+v", n.changes)
	}
}

func TestUpdateEntry(t *testing.T) {
	api, n, mux := newTestAPI(t)

	entry, err := api.Store.Add("元のメモ")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	var updated types.Entry
	rr := doJSON(t, mux, "PUT", "/api/entries/"+entry.ID, `{"raw":"直したメモ"}`, &updated)
	if rr.Code != http.StatusOK {
		t.Fatalf("PUT = %d: %s", rr.Code, rr.Body.String())
	}
	if updated.Raw != "直したメモ" || updated.At != entry.At {
		t.Errorf("updated = %+v", updated)
	}
	if len(n.changes) != 1 || n.changes[0].Action != "updated" {
		t.Errorf("broadcasts = %+v", n.changes)
	}

	rr = doJSON(t, mux, "PUT", "/api/entries/missing", `{"raw":"x"}`, nil)
	if rr.Code != http.StatusNotFound {
		t.Errorf("PUT missing = %d, want 404", rr.Code)
	}
}

func TestRemoveEntry(t *testing.T) {
	api, n, mux := newTestAPI(t)
	entry, _ := api.Store.Add("消すメモ")

	rr := doJSON(t, mux, "DELETE", "/api/entries/"+entry.ID, "", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", rr.Code)
	}
	if len(n.changes) != 1 || n.changes[0].Action != "removed" {
		t.Errorf("broadcasts = %+v", n.changes)
	}
}

func TestSearchEndpoint(t *testing.T) {
	api, _, mux := newTestAPI(t)
	api.Store.Add("- 平塚5R 三分戦で決着")
	api.Store.Add("別のメモ")

	var hits []search.Result
	rr := doJSON(t, mux, "GET", "/api/search?q="+escape("三分戦"), "", &hits)
	if rr.Code != http.StatusOK || len(hits) != 1 {
		t.Fatalf("search = %d, %d hits", rr.Code, len(hits))
	}
	if !strings.Contains(hits[0].Snippet, `<span class="hl">三分戦</span>`) {
		t.Errorf("snippet = %q", hits[0].Snippet)
	}

	// Empty query matches nothing.
	rr = doJSON(t, mux, "GET", "/api/search?q=", "", &hits)
	if rr.Code != http.StatusOK || len(hits) != 0 {
		t.Errorf("empty search = %d, %d hits", rr.Code, len(hits))
	}
}

func TestCompleteEndpoint(t *testing.T) {
	_, _, mux := newTestAPI(t)

	var resp struct {
		Token      *complete.Token `json:"token"`
		Candidates []struct {
			Kind   string `json:"kind"`
			Commit string `json:"commit"`
		} `json:"candidates"`
	}
	rr := doJSON(t, mux, "GET", "/api/complete?text="+escape("/中野")+"&caret=3", "", &resp)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete = %d", rr.Code)
	}
	if resp.Token == nil {
		t.Fatal("no token detected")
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Kind != "選手" {
		t.Errorf("candidates = %+v", resp.Candidates)
	}
	if resp.Candidates[0].Commit != "@中野慎詞（岩手／121期）" {
		t.Errorf("commit = %q", resp.Candidates[0].Commit)
	}

	// Without a token the candidate list is empty but present.
	rr = doJSON(t, mux, "GET", "/api/complete?text=plain&caret=5", "", &resp)
	if rr.Code != http.StatusOK {
		t.Fatalf("complete = %d", rr.Code)
	}
	if resp.Candidates == nil || len(resp.Candidates) != 0 {
		t.Errorf("no-token candidates = %+v, want empty list", resp.Candidates)
	}
}

func TestStatusEndpoint(t *testing.T) {
	_, _, mux := newTestAPI(t)

	var status map[string]any
	rr := doJSON(t, mux, "GET", "/api/status", "", &status)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if status["riders_ok"] != true || status["races_ok"] != true {
		t.Errorf("status = %+v", status)
	}
	if status["sync_enabled"] != false {
		t.Errorf("sync_enabled = %v, want false with no Sync wired", status["sync_enabled"])
	}
}

func TestSyncEndpointDisabled(t *testing.T) {
	_, _, mux := newTestAPI(t)

	rr := doJSON(t, mux, "POST", "/api/sync", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("sync without runner = %d, want 503", rr.Code)
	}
}

func TestSyncEndpoint(t *testing.T) {
	api, n, mux := newTestAPI(t)
	api.Sync = func(ctx context.Context) (msync.Summary, error) {
		return msync.Summary{MergedChanges: true, Added: 2}, nil
	}

	var sum msync.Summary
	rr := doJSON(t, mux, "POST", "/api/sync", "", &sum)
	if rr.Code != http.StatusOK || sum.Added != 2 {
		t.Fatalf("sync = %d, %+v", rr.Code, sum)
	}

	var sawMerged, sawComplete bool
	for _, c := range n.changes {
		if c.Action == "merged" {
			sawMerged = true
		}
	}
	for _, m := range n.messages {
		if m.Type == MessageTypeSyncComplete {
			sawComplete = true
		}
	}
	if !sawMerged || !sawComplete {
		t.Errorf("broadcasts: changes=%+v messages=%+v", n.changes, n.messages)
	}
}

func escape(s string) string {
	return url.QueryEscape(s)
}
