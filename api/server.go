package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crosslight/controlroom/traffic/service"
	"github.com/crosslight/controlroom/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.TrafficService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(trafficService service.TrafficService, hub *websocket.Hub) *Server {
	s := &Server{
		service: trafficService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Traffic state
	api.HandleFunc("/traffic", s.handleGetTraffic).Methods("GET")
	api.HandleFunc("/traffic/{direction}/maxSpeed", s.handleSetMaxSpeed).Methods("POST")
	api.HandleFunc("/density/{direction}", s.handleSetDensity).Methods("POST")

	// Assistant
	api.HandleFunc("/assistant", s.handleAssistant).Methods("POST")

	// Health
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (control-room frontend)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondInvalidDirection matches the failure shape the frontend expects.
func respondInvalidDirection(w http.ResponseWriter) {
	respondJSON(w, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"message": "Invalid direction",
	})
}

// Traffic Handlers

func (s *Server) handleGetTraffic(w http.ResponseWriter, r *http.Request) {
	snap, err := s.service.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSetMaxSpeed(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	direction := vars["direction"]

	var req struct {
		MaxSpeed float64 `json:"maxSpeed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SetMaxSpeed(r.Context(), direction, req.MaxSpeed)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDirection) {
			respondInvalidDirection(w)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    result.Status,
	})
}

func (s *Server) handleSetDensity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	direction := vars["direction"]

	var req struct {
		Density float64 `json:"density"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SetDensity(r.Context(), direction, req.Density)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDirection) {
			respondInvalidDirection(w)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"direction": result.Direction,
		"density":   result.Status.Density,
	})
}

// Assistant Handler

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
		UserID string `json:"userId,omitempty"`
	}
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	reply, err := s.service.Assist(r.Context(), req.Prompt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, reply)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
