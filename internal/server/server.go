// Package server exposes the note widget over a local HTTP API with a
// WebSocket channel for live updates. It is the serving half of the
// browser widget: entries CRUD, autocomplete, search and sync, plus an
// entries-changed broadcast whenever the store is rewritten (by an API
// call or by another process, via the store watcher).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// MessageType classifies a broadcast message.
type MessageType string

const (
	// MessageTypeEntriesChanged indicates the entry collection was rewritten.
	MessageTypeEntriesChanged MessageType = "entries_changed"

	// MessageTypeSyncComplete indicates a Drive sync run finished.
	MessageTypeSyncComplete MessageType = "sync_complete"
)

// Message is one WebSocket broadcast.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EntriesChangedData describes a collection change.
type EntriesChangedData struct {
	Action string `json:"action"` // added, updated, removed, merged, external
	ID     string `json:"id,omitempty"`
}

// Config holds server configuration.
type Config struct {
	Port           int
	AllowedOrigins func(origin string) bool
	Logger         *log.Logger
}

// Server manages the HTTP API and WebSocket clients.
type Server struct {
	addr     string
	allowed  func(string) bool
	api      *API
	listener net.Listener
	server   *http.Server

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
	broadcast chan Message

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	logger *log.Logger
}

// NewServer creates a widget server around the given API surface.
func NewServer(cfg *Config, api *API) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	allowed := cfg.AllowedOrigins
	if allowed == nil {
		allowed = func(string) bool { return true }
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      fmt.Sprintf("127.0.0.1:%d", cfg.Port),
		allowed:   allowed,
		api:       api,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    logger,
	}
}

// Start begins listening and serving.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	s.api.register(mux, s)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/{$}", s.handleRoot)

	s.server = &http.Server{
		Handler:      s.checkOrigin(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("widget server listening on http://%s", s.addr)
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("server error: %v", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop() error {
	s.logger.Println("stopping widget server")
	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.wg.Wait()
	return nil
}

// Broadcast queues a message for all connected clients.
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
	default:
		s.logger.Println("broadcast channel full, dropping message")
	}
}

// BroadcastEntriesChanged is shorthand for the common change notification.
func (s *Server) BroadcastEntriesChanged(action, id string) {
	data, err := json.Marshal(EntriesChangedData{Action: action, ID: id})
	if err != nil {
		s.logger.Printf("marshal change data: %v", err)
		return
	}
	s.Broadcast(Message{Type: MessageTypeEntriesChanged, Timestamp: time.Now(), Data: data})
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}
			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("marshal message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			conns := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				conns = append(conns, conn)
			}
			s.clientsMu.RUnlock()

			for _, conn := range conns {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()
				if err != nil {
					s.logger.Printf("send to client: %v", err)
					s.removeClient(conn)
				}
			}
		}
	}
}

// checkOrigin rejects cross-origin browser requests that are not on the
// allow-list. Requests without an Origin header (curl, same-origin GETs)
// pass through.
func (s *Server) checkOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && !s.allowed(origin) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Origin already vetted by checkOrigin.
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		s.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.logger.Printf("client connected (total: %d)", count)

	go s.readLoop(conn)
}

// readLoop keeps the connection alive and notices disconnects. Client
// messages are not processed.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)
	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	if _, exists := s.clients[conn]; exists {
		delete(s.clients, conn)
		count := len(s.clients)
		s.clientsMu.Unlock()
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("client disconnected (total: %d)", count)
		return
	}
	s.clientsMu.Unlock()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.clientsMu.RLock()
	count := len(s.clients)
	s.clientsMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": count,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head><title>mofu</title></head>
<body>
  <h1>mofu widget server</h1>
  <p>Entries API: <code>/api/entries</code>, search: <code>/api/search?q=</code>,
     completion: <code>/api/complete?text=&amp;caret=</code></p>
  <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
  <p>Health check: <a href="/health">/health</a></p>
</body>
</html>`, r.Host)
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
