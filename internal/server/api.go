package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/keirinjingle/mofu/internal/complete"
	"github.com/keirinjingle/mofu/internal/refdata"
	"github.com/keirinjingle/mofu/internal/search"
	"github.com/keirinjingle/mofu/internal/store"
	msync "github.com/keirinjingle/mofu/internal/sync"
)

// API is the widget's HTTP surface over the local store and the
// autocomplete/search/sync machinery.
type API struct {
	Store    *store.Store
	Resolver *complete.Resolver
	Engine   *search.Engine
	Status   refdata.Status
	Sync     func(ctx context.Context) (msync.Summary, error) // nil when sync is disabled
	Logger   *log.Logger
}

type notifier interface {
	Broadcast(msg Message)
	BroadcastEntriesChanged(action, id string)
}

type entryRequest struct {
	Raw string `json:"raw"`
}

type candidateResponse struct {
	Kind   string `json:"kind"`
	Label  string `json:"label"`
	Commit string `json:"commit"`
}

type completeResponse struct {
	Token      *complete.Token     `json:"token"`
	Candidates []candidateResponse `json:"candidates"`
}

func (a *API) register(mux *http.ServeMux, n notifier) {
	mux.HandleFunc("GET /api/entries", a.handleList)
	mux.HandleFunc("POST /api/entries", a.handleAdd(n))
	mux.HandleFunc("PUT /api/entries/{id}", a.handleUpdate(n))
	mux.HandleFunc("DELETE /api/entries/{id}", a.handleRemove(n))
	mux.HandleFunc("GET /api/search", a.handleSearch)
	mux.HandleFunc("GET /api/complete", a.handleComplete)
	mux.HandleFunc("GET /api/status", a.handleStatus)
	mux.HandleFunc("POST /api/sync", a.handleSync(n))
}

func (a *API) handleList(w http.ResponseWriter, _ *http.Request) {
	entries, err := a.Store.List()
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleAdd(n notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if !a.decode(w, r, &req) {
			return
		}
		entry, err := a.Store.Add(req.Raw)
		if errors.Is(err, store.ErrEmptyText) {
			a.fail(w, http.StatusBadRequest, err)
			return
		}
		if err != nil {
			a.fail(w, http.StatusInternalServerError, err)
			return
		}
		n.BroadcastEntriesChanged("added", entry.ID)
		writeJSON(w, http.StatusCreated, entry)
	}
}

func (a *API) handleUpdate(n notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if !a.decode(w, r, &req) {
			return
		}
		entry, err := a.Store.Update(r.PathValue("id"), req.Raw)
		switch {
		case errors.Is(err, store.ErrNotFound):
			a.fail(w, http.StatusNotFound, err)
			return
		case errors.Is(err, store.ErrEmptyText):
			a.fail(w, http.StatusBadRequest, err)
			return
		case err != nil:
			a.fail(w, http.StatusInternalServerError, err)
			return
		}
		n.BroadcastEntriesChanged("updated", entry.ID)
		writeJSON(w, http.StatusOK, entry)
	}
}

func (a *API) handleRemove(n notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := a.Store.Remove(id); err != nil {
			a.fail(w, http.StatusInternalServerError, err)
			return
		}
		n.BroadcastEntriesChanged("removed", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Store.List()
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	hits := a.Engine.Search(entries, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, hits)
}

func (a *API) handleComplete(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	caret, err := strconv.Atoi(r.URL.Query().Get("caret"))
	if err != nil {
		caret = len([]rune(text))
	}

	cands, tok := a.Resolver.Resolve(text, caret)
	resp := completeResponse{Token: tok, Candidates: []candidateResponse{}}
	for _, c := range cands {
		resp.Candidates = append(resp.Candidates, candidateResponse{
			Kind:   c.Kind.String(),
			Label:  c.Label(),
			Commit: c.CommitText(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleStatus(w http.ResponseWriter, _ *http.Request) {
	entries, err := a.Store.Entries()
	if err != nil {
		a.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"riders_ok":    a.Status.RidersOK,
		"races_ok":     a.Status.RacesOK,
		"entries":      len(entries),
		"sync_enabled": a.Sync != nil,
	})
}

func (a *API) handleSync(n notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if a.Sync == nil {
			a.fail(w, http.StatusServiceUnavailable, errors.New("sync is disabled"))
			return
		}
		sum, err := a.Sync(r.Context())
		if err != nil {
			a.fail(w, http.StatusBadGateway, err)
			return
		}
		if sum.MergedChanges {
			n.BroadcastEntriesChanged("merged", "")
		}
		data, err := json.Marshal(sum)
		if err == nil {
			n.Broadcast(Message{Type: MessageTypeSyncComplete, Timestamp: time.Now(), Data: data})
		}
		writeJSON(w, http.StatusOK, sum)
	}
}

func (a *API) decode(w http.ResponseWriter, r *http.Request, out any) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (a *API) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError && a.Logger != nil {
		a.Logger.Printf("api error: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
