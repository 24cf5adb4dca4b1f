// Package overlay serves current score payloads to locally-hosted overlay
// clients and pushes updates to them over websockets.
package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/nhicks00/courtcast/internal/broadcast"
	"github.com/nhicks00/courtcast/internal/model"
)

// DefaultPort is the local TCP port overlay browser sources connect to.
const DefaultPort = "8787"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Overlay sources load from file:// or localhost; origin checks
		// don't apply to a local-only server.
		return true
	},
}

// Server is the overlay push server: per court, the last broadcast payload
// on plain GET, plus a websocket channel for subsequent updates.
type Server struct {
	server *http.Server
	hub    *Hub
	store  *broadcast.Store
	stop   chan struct{}
}

// NewServer creates an overlay server over the broadcast store.
func NewServer(store *broadcast.Store) *Server {
	s := &Server{
		hub:   NewHub(),
		store: store,
		stop:  make(chan struct{}),
	}

	router := mux.NewRouter()
	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/overlay/{courtID}", s.handleSnapshot).Methods("GET")
	router.HandleFunc("/ws/overlay/{courtID}", s.handleSocket).Methods("GET")

	s.server = &http.Server{Handler: router}
	return s
}

// Publish pushes a court's new payload to connected clients. Satisfies the
// engine's Publisher dependency.
func (s *Server) Publish(courtID int, payload []byte) {
	s.hub.Publish(courtID, payload)
}

// Start begins serving on the given port. Blocks until the listener fails
// or Shutdown is called.
func (s *Server) Start(port string) error {
	if port == "" {
		port = DefaultPort
	}
	s.server.Addr = fmt.Sprintf(":%s", port)

	go s.hub.Run(s.stop)

	log.Printf("[overlay] push server listening on :%s", port)
	return s.server.ListenAndServe()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// RunHub starts the hub without a listener, for serving through an external
// listener or test server.
func (s *Server) RunHub() {
	go s.hub.Run(s.stop)
}

// Shutdown stops the listener and disconnects every client.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stop)
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// courtID pulls and validates the court id route variable. Out-of-range ids
// are reported as not found, never as a server error.
func courtID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["courtID"])
	if err != nil || id < 1 || id > model.MaxCourts {
		return 0, false
	}
	return id, true
}

// handleSnapshot returns the last broadcast payload for a court, or the
// empty snapshot when nothing has been published yet.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := courtID(r)
	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "court not found"})
		return
	}

	payload := s.store.Get(id)
	if payload == nil {
		payload, _ = json.Marshal(model.EmptySnapshot(id))
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

// handleSocket upgrades to a websocket, sends the current payload, then
// streams updates for the court as they are published.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	id, ok := courtID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[overlay] upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     s.hub,
		conn:    conn,
		courtID: id,
		send:    make(chan []byte, 16),
	}

	// Seed the channel before registering so the initial state is the
	// first frame the client sees.
	if payload := s.store.Get(id); payload != nil {
		client.send <- payload
	} else if payload, err := json.Marshal(model.EmptySnapshot(id)); err == nil {
		client.send <- payload
	}

	s.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth reports server and client status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "healthy",
		"clients": s.hub.ClientCount(),
	})
}
