package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tessellab/acre/internal/persistence"
)

var (
	reportDBPath string
	reportLimit  int
)

var reportCmd = &cobra.Command{
	Use:   "report [run-id]",
	Short: "List recorded runs or show one run's step history",
	Long: `Without arguments, lists the most recent recorded runs. With a run id,
prints that run's per-step diagnostics.`,
	Args: cobra.MaximumNArgs(1),
	RunE: report,
}

func init() {
	reportCmd.Flags().StringVar(&reportDBPath, "db", "data/acre.db", "SQLite database path")
	reportCmd.Flags().IntVar(&reportLimit, "limit", 20, "Number of runs to list")
}

func report(cmd *cobra.Command, args []string) error {
	db, err := persistence.Open(reportDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		return reportRun(db, args[0])
	}
	return reportList(db)
}

func reportList(db *persistence.DB) error {
	runs, err := db.ListRuns(reportLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-10s  %6s  %7s  %s\n",
		"ID", "SCENARIO", "KIND", "GRID", "STEPS", "STARTED")
	for _, r := range runs {
		started := r.StartedAt
		if t, err := time.Parse(time.RFC3339, r.StartedAt); err == nil {
			started = humanize.Time(t)
		}
		status := started
		if r.FinishedAt == nil {
			status += " (unfinished)"
		}
		fmt.Printf("%-36s  %-20s  %-10s  %3dx%-3d  %7d  %s\n",
			r.ID, r.Scenario, r.Kind, r.Rows, r.Cols, r.Steps, status)
	}
	return nil
}

func reportRun(db *persistence.DB, runID string) error {
	steps, err := db.RunSteps(runID)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Printf("No steps recorded for run %s.\n", runID)
		return nil
	}

	fmt.Printf("%6s  %7s  %10s  %10s  %10s  %10s\n",
		"STEP", "AGENTS", "OBS MIN", "OBS MAX", "OBS MEAN", "AGG MEAN")
	for _, s := range steps {
		fmt.Printf("%6d  %7s  %10.4g  %10.4g  %10.4g  %10.4g\n",
			s.Step, humanize.Comma(int64(s.Active)),
			s.ObsMin, s.ObsMax, s.ObsMean, s.AggMean)
	}
	fmt.Printf("\n%d steps recorded.\n", len(steps))
	return nil
}
