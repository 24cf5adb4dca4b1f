package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nhicks00/courtcast/internal/engine"
	"github.com/nhicks00/courtcast/internal/model"
	"github.com/nhicks00/courtcast/internal/scan"
)

// Handler contains dependencies for control API handlers.
type Handler struct {
	engine *engine.Engine
}

// NewHandler creates a new handler.
func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{engine: eng}
}

// HealthCheck handles health check requests.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "courtcast",
	})
}

// ListCourts returns every court with its queue and live status.
func (h *Handler) ListCourts(w http.ResponseWriter, r *http.Request) {
	courts := h.engine.Courts()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"courts": courts,
		"count":  len(courts),
	})
}

// GetCourt returns one court.
func (h *Handler) GetCourt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}
	court, err := h.engine.Court(id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, court)
}

// RenameCourt sets a court's display name.
func (h *Handler) RenameCourt(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name must not be empty", nil)
		return
	}

	if err := h.engine.RenameCourt(id, req.Name); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// queueRequest carries matches for queue edits, either directly or as a raw
// bracket-scanner result to be converted.
type queueRequest struct {
	Matches    []model.MatchItem `json:"matches"`
	ScanResult json.RawMessage   `json:"scanResult"`
}

func (q *queueRequest) items() ([]model.MatchItem, error) {
	if len(q.ScanResult) > 0 {
		result, err := scan.ParseResult(q.ScanResult)
		if err != nil {
			return nil, err
		}
		return result.MatchItems(), nil
	}
	return q.Matches, nil
}

// ReplaceQueue swaps a court's queue wholesale.
func (h *Handler) ReplaceQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}

	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	matches, err := req.items()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scan result", err)
		return
	}

	if err := h.engine.ReplaceQueue(id, matches); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// AppendToQueue adds matches to the end of a court's queue.
func (h *Handler) AppendToQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}

	var req queueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	matches, err := req.items()
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scan result", err)
		return
	}

	if err := h.engine.AppendToQueue(id, matches); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// ClearQueue empties a court's queue and stops its polling.
func (h *Handler) ClearQueue(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}
	if err := h.engine.ClearQueue(id); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// SkipToNext advances a court to the next queued match.
func (h *Handler) SkipToNext(w http.ResponseWriter, r *http.Request) {
	h.skip(w, r, h.engine.SkipToNext)
}

// SkipToPrevious moves a court back one queued match.
func (h *Handler) SkipToPrevious(w http.ResponseWriter, r *http.Request) {
	h.skip(w, r, h.engine.SkipToPrevious)
}

func (h *Handler) skip(w http.ResponseWriter, r *http.Request, fn func(int) error) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}
	if err := fn(id); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// StartPolling schedules the poll task for one court.
func (h *Handler) StartPolling(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}
	if err := h.engine.StartPolling(id); err != nil {
		if errors.Is(err, engine.ErrEmptyQueue) {
			respondError(w, http.StatusConflict, "Court has no queued matches", err)
			return
		}
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// StopPolling cancels the poll task for one court.
func (h *Handler) StopPolling(w http.ResponseWriter, r *http.Request) {
	id, ok := h.courtID(w, r)
	if !ok {
		return
	}
	if err := h.engine.StopPolling(id); err != nil {
		respondEngineError(w, err)
		return
	}
	h.respondCourt(w, id)
}

// StartAllPolling starts every court with a non-empty queue.
func (h *Handler) StartAllPolling(w http.ResponseWriter, r *http.Request) {
	h.engine.StartAllPolling()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Polling started"})
}

// StopAllPolling stops every scheduled court.
func (h *Handler) StopAllPolling(w http.ResponseWriter, r *http.Request) {
	h.engine.StopAllPolling()
	respondJSON(w, http.StatusOK, map[string]string{"message": "Polling stopped"})
}

func (h *Handler) courtID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["courtID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid court ID", err)
		return 0, false
	}
	return id, true
}

func (h *Handler) respondCourt(w http.ResponseWriter, id int) {
	court, err := h.engine.Court(id)
	if err != nil {
		respondEngineError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, court)
}

func respondEngineError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrUnknownCourt) {
		respondError(w, http.StatusNotFound, "Court not found", err)
		return
	}
	respondError(w, http.StatusInternalServerError, "Engine operation failed", err)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func respondError(w http.ResponseWriter, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}

	json.NewEncoder(w).Encode(response)
}
