// Package persistence provides SQLite-based run recording. Every run gets a
// row in runs; every completed coupling step appends its diagnostics to
// run_steps, so finished runs can be replayed or compared offline.
package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/scenario"
)

// DB wraps a SQLite connection for run recording.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		kind TEXT NOT NULL,
		seed INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		dt REAL NOT NULL,
		grid_rows INTEGER NOT NULL,
		grid_cols INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT
	);

	CREATE TABLE IF NOT EXISTS run_steps (
		run_id TEXT NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		active INTEGER NOT NULL,
		obs_min REAL NOT NULL,
		obs_max REAL NOT NULL,
		obs_mean REAL NOT NULL,
		agg_min REAL NOT NULL,
		agg_max REAL NOT NULL,
		agg_mean REAL NOT NULL,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_run_steps_run ON run_steps(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one recorded run's header row.
type Run struct {
	ID         string  `db:"id"`
	Scenario   string  `db:"scenario"`
	Kind       string  `db:"kind"`
	Seed       int64   `db:"seed"`
	Steps      int     `db:"steps"`
	Dt         float64 `db:"dt"`
	Rows       int     `db:"grid_rows"`
	Cols       int     `db:"grid_cols"`
	StartedAt  string  `db:"started_at"`
	FinishedAt *string `db:"finished_at"`
}

// StepRecord is one recorded coupling step.
type StepRecord struct {
	RunID   string  `db:"run_id"`
	Step    int     `db:"step"`
	Active  int     `db:"active"`
	ObsMin  float64 `db:"obs_min"`
	ObsMax  float64 `db:"obs_max"`
	ObsMean float64 `db:"obs_mean"`
	AggMin  float64 `db:"agg_min"`
	AggMax  float64 `db:"agg_max"`
	AggMean float64 `db:"agg_mean"`
}

// BeginRun inserts a run header and returns its fresh identifier.
func (db *DB) BeginRun(d *scenario.Deck) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(`INSERT INTO runs
		(id, scenario, kind, seed, steps, dt, grid_rows, grid_cols, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, d.Name, d.Kind, d.Seed, d.Steps, d.Dt,
		d.Grid.Rows, d.Grid.Cols, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	return id, nil
}

// RecordStep appends one step's diagnostics to a run.
func (db *DB) RecordStep(runID string, d coupling.Diagnostics) error {
	_, err := db.conn.Exec(`INSERT INTO run_steps
		(run_id, step, active, obs_min, obs_max, obs_mean, agg_min, agg_max, agg_mean)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, d.Step, d.Active,
		d.ObsMin, d.ObsMax, d.ObsMean,
		d.AggMin, d.AggMax, d.AggMean,
	)
	if err != nil {
		return fmt.Errorf("record step %d: %w", d.Step, err)
	}
	return nil
}

// FinishRun stamps a run's completion time.
func (db *DB) FinishRun(runID string) error {
	_, err := db.conn.Exec(
		"UPDATE runs SET finished_at = ? WHERE id = ?",
		time.Now().UTC().Format(time.RFC3339), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// ListRuns returns run headers, most recent first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY started_at DESC LIMIT ?", limit)
	return runs, err
}

// RunSteps returns all recorded steps for a run in order.
func (db *DB) RunSteps(runID string) ([]StepRecord, error) {
	var steps []StepRecord
	err := db.conn.Select(&steps,
		"SELECT * FROM run_steps WHERE run_id = ? ORDER BY step", runID)
	return steps, err
}
