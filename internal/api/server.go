// Package api provides the HTTP API for watching a run.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (run control).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/field"
	"github.com/tessellab/acre/internal/persistence"
	"github.com/tessellab/acre/internal/scenario"
)

// Server serves a live run over HTTP.
type Server struct {
	Loop     *coupling.Loop
	Runner   *coupling.Runner
	Sim      coupling.Simulator
	Pop      *abm.Population
	Deck     *scenario.Deck
	DB       *persistence.DB
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// The field endpoint ships the whole grid; cap how fast one client can
	// poll it.
	fieldLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/field", RateLimitMiddleware(fieldLimiter, s.handleField))
	mux.HandleFunc("/api/v1/population", s.handlePopulation)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/runs/", s.handleRunSteps)

	// Control endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "control endpoints disabled (no ACRE_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	counts := make(map[string]int)
	for kind, n := range s.Pop.Counts() {
		counts[kind.String()] = n
	}

	status := map[string]any{
		"scenario":    s.Deck.Name,
		"kind":        s.Deck.Kind,
		"step":        s.Loop.CurrentStep(),
		"total_steps": s.Deck.Steps,
		"dt":          s.Loop.Dt(),
		"diagnostics": s.Loop.Last(),
		"agents":      counts,
	}
	if s.Runner != nil {
		status["speed"] = s.Runner.Speed
		status["running"] = s.Runner.Running
	}
	writeJSON(w, status)
}

// handleField returns the simulator's current observation field.
func (s *Server) handleField(w http.ResponseWriter, r *http.Request) {
	writeSnapshot(w, s.Sim.Observe())
}

// handlePopulation returns every live agent's position and kind.
func (s *Server) handlePopulation(w http.ResponseWriter, r *http.Request) {
	type agentEntry struct {
		ID   uint64 `json:"id"`
		Kind string `json:"kind"`
		Row  int    `json:"row"`
		Col  int    `json:"col"`
	}

	result := []agentEntry{}
	s.Pop.Each(func(a abm.Agent) {
		row, col := a.Pos()
		result = append(result, agentEntry{ID: a.ID(), Kind: a.Kind().String(), Row: row, Col: col})
	})
	writeJSON(w, result)
}

// handleRuns returns recorded run headers, most recent first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	runs, err := s.DB.ListRuns(limit)
	if err != nil {
		slog.Error("runs query failed", "error", err)
		http.Error(w, "runs query failed", http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []persistence.Run{}
	}
	writeJSON(w, runs)
}

// handleRunSteps returns the recorded step diagnostics for one run
// (GET /api/v1/runs/:id).
func (s *Server) handleRunSteps(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "usage: /api/v1/runs/:id", http.StatusBadRequest)
		return
	}

	steps, err := s.DB.RunSteps(id)
	if err != nil {
		slog.Error("run steps query failed", "error", err, "run", id)
		http.Error(w, "run steps query failed", http.StatusInternalServerError)
		return
	}
	if steps == nil {
		steps = []persistence.StepRecord{}
	}
	writeJSON(w, steps)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "run is not paced", http.StatusConflict)
		return
	}

	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Runner.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed})
}

func writeSnapshot(w http.ResponseWriter, snap *field.Snapshot) {
	writeJSON(w, map[string]any{
		"rows":   snap.Rows(),
		"cols":   snap.Cols(),
		"values": snap.Values(),
		"min":    snap.Min(),
		"max":    snap.Max(),
		"mean":   snap.Mean(),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
