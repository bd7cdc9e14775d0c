package coupling

import (
	"log/slog"
	"time"
)

// Runner paces a loop against the wall clock for live demonstration:
// one step per interval, scaled by a speed multiplier, pausable at speed 0.
type Runner struct {
	Loop     *Loop
	Steps    int           // Total steps to run
	Speed    float64       // Multiplier: 1.0 = one step per interval, 0 = paused
	Interval time.Duration // Base step interval
	Running  bool
}

// NewRunner creates a paced runner with one step per second at speed 1.
func NewRunner(l *Loop, steps int) *Runner {
	return &Runner{
		Loop:     l,
		Steps:    steps,
		Speed:    1.0,
		Interval: time.Second,
	}
}

// Run blocks until the configured steps complete, Stop is called, or a step
// fails.
func (r *Runner) Run() error {
	r.Running = true
	slog.Info("paced run started", "steps", r.Steps, "speed", r.Speed, "interval", r.Interval)

	for r.Running && r.Loop.CurrentStep() < r.Steps {
		if r.Speed <= 0 {
			// Paused — sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if err := r.Loop.Step(); err != nil {
			r.Running = false
			return err
		}

		// Sleep for the remainder of the interval, adjusted for speed.
		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / r.Speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	r.Running = false
	slog.Info("paced run stopped", "step", r.Loop.CurrentStep())
	return nil
}

// Stop halts the runner after the step in flight completes.
func (r *Runner) Stop() {
	r.Running = false
}
