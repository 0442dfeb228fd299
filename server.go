package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/paulmach/orb/geojson"
)

// RouteResponse is the body of POST /route
type RouteResponse struct {
	Success bool                       `json:"success"`
	Message string                     `json:"message,omitempty"`
	Plan    *Plan                      `json:"plan,omitempty"`
	GeoJSON *geojson.FeatureCollection `json:"geojson,omitempty"`
}

// Server exposes the planner over HTTP
type Server struct {
	planner *Planner
	hub     *Hub
	router  *mux.Router
}

// NewServer wires the routes. hub may be nil when no map clients are expected.
func NewServer(planner *Planner, hub *Hub) *Server {
	s := &Server{
		planner: planner,
		hub:     hub,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware)

	s.router.HandleFunc("/route", s.routeHandler).Methods(http.MethodPost, http.MethodOptions)
	s.router.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)
	s.router.HandleFunc("/launchSites", s.launchSitesHandler).Methods(http.MethodGet, http.MethodOptions)
	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// statusForError maps planner errors to HTTP status codes
func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrOutOfBounds):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnreachable), errors.Is(err, ErrNoLaunchSites):
		return http.StatusOK
	case errors.Is(err, ErrSearchLimit), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// POST /route - plan a route to a destination
func (s *Server) routeHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("========================================")
	log.Println("📍 Route request received")
	defer log.Println("========================================")

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ Invalid request body: %v\n", err)
		respondJSON(w, http.StatusBadRequest, RouteResponse{Message: "Invalid request body"})
		return
	}

	log.Printf("   Destination: (%.6f, %.6f)\n", req.Destination.Lat, req.Destination.Lon)
	if req.Start != nil {
		log.Printf("   Start:       (%.6f, %.6f)\n", req.Start.Lat, req.Start.Lon)
	}

	plan, err := s.planner.Plan(r.Context(), req)
	if err != nil {
		log.Printf("❌ %v\n", err)
		respondJSON(w, statusForError(err), RouteResponse{Message: err.Error()})
		return
	}

	fc := plan.FeatureCollection()
	if s.hub != nil {
		s.hub.Publish("plan_ready", fc)
	}
	respondJSON(w, http.StatusOK, RouteResponse{Success: true, Plan: plan, GeoJSON: fc})
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	dem := s.planner.DEM()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ready",
		"rows":        dem.Grid.Rows,
		"cols":        dem.Grid.Cols,
		"bounds":      dem.Geodesy.Bounds(),
		"launchSites": len(s.planner.Sites()),
	})
}

// GET /launchSites - launch sites as GeoJSON points
func (s *Server) launchSitesHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, SitesFeatureCollection(s.planner.Sites()))
}
