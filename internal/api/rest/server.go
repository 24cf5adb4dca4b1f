package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nhicks00/courtcast/internal/engine"
)

// Server is the control API the desktop UI drives: court inspection, queue
// edits, and polling control.
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates the control API server.
func NewServer(port string, eng *engine.Engine) *Server {
	handler := NewHandler(eng)

	router := mux.NewRouter()

	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)

	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/courts", handler.ListCourts).Methods("GET")
	api.HandleFunc("/courts/{courtID}", handler.GetCourt).Methods("GET")
	api.HandleFunc("/courts/{courtID}/name", handler.RenameCourt).Methods("PUT")
	api.HandleFunc("/courts/{courtID}/queue", handler.ReplaceQueue).Methods("PUT")
	api.HandleFunc("/courts/{courtID}/queue", handler.ClearQueue).Methods("DELETE")
	api.HandleFunc("/courts/{courtID}/queue/append", handler.AppendToQueue).Methods("POST")
	api.HandleFunc("/courts/{courtID}/skip-next", handler.SkipToNext).Methods("POST")
	api.HandleFunc("/courts/{courtID}/skip-previous", handler.SkipToPrevious).Methods("POST")
	api.HandleFunc("/courts/{courtID}/polling/start", handler.StartPolling).Methods("POST")
	api.HandleFunc("/courts/{courtID}/polling/stop", handler.StopPolling).Methods("POST")

	api.HandleFunc("/polling/start", handler.StartAllPolling).Methods("POST")
	api.HandleFunc("/polling/stop", handler.StopAllPolling).Methods("POST")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the control API server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
