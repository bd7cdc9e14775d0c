package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tessellab/acre/internal/abm"
	"github.com/tessellab/acre/internal/agents"
	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/field"
	"github.com/tessellab/acre/internal/scenario"
)

// flatSim is a minimal simulator for handler tests.
type flatSim struct {
	rows, cols int
}

func (s *flatSim) Shape() (int, int)                  { return s.rows, s.cols }
func (s *flatSim) Advance(dt float64) error           { return nil }
func (s *flatSim) Observe() *field.Snapshot           { return field.New(s.rows, s.cols).Snapshot() }
func (s *flatSim) SetForcing(f *field.Snapshot) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	sim := &flatSim{rows: 4, cols: 4}
	pop := abm.NewPopulation(4, 4, 1)
	require.NoError(t, pop.Add(agents.NewFarmer(pop.NextID(), 5, 0.1), 1, 1))
	require.NoError(t, pop.Add(agents.NewFarmer(pop.NextID(), 5, 0.1), 2, 3))

	loop, err := coupling.New(sim, pop, 1.0)
	require.NoError(t, err)

	deck := &scenario.Deck{Name: "handler-test", Kind: scenario.KindWells, Steps: 10, Dt: 1}
	deck.Grid.Rows, deck.Grid.Cols = 4, 4

	return &Server{
		Loop:     loop,
		Runner:   coupling.NewRunner(loop, 10),
		Sim:      sim,
		Pop:      pop,
		Deck:     deck,
		AdminKey: "sekrit",
	}
}

func TestStatusHandler(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.Loop.Step())

	rec := httptest.NewRecorder()
	s.handleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "handler-test", body["scenario"])
	require.Equal(t, float64(1), body["step"])

	counts, ok := body["agents"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(2), counts["farmer"])
}

func TestFieldHandler(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleField(rec, httptest.NewRequest(http.MethodGet, "/api/v1/field", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Rows   int       `json:"rows"`
		Cols   int       `json:"cols"`
		Values []float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 4, body.Rows)
	require.Len(t, body.Values, 16)
}

func TestPopulationHandler(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handlePopulation(rec, httptest.NewRequest(http.MethodGet, "/api/v1/population", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body []struct {
		Kind string `json:"kind"`
		Row  int    `json:"row"`
		Col  int    `json:"col"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	require.Equal(t, "farmer", body[0].Kind)
}

func TestSpeedRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	handler := s.adminOnly(s.handleSpeed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 4}`))
	rec := httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": 4}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec = httptest.NewRecorder()
	handler(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 4.0, s.Runner.Speed)

	// GET passes through without auth.
	rec = httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestSpeedRejectsOutOfRange(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/speed", strings.NewReader(`{"speed": -1}`))
	req.Header.Set("Authorization", "Bearer sekrit")
	rec := httptest.NewRecorder()
	s.adminOnly(s.handleSpeed)(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	require.True(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.2"), "limits are per client")
	require.Greater(t, rl.RetryAfter("10.0.0.1"), 0)
}
