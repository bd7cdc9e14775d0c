package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tessellab/acre/internal/api"
	"github.com/tessellab/acre/internal/climate"
	"github.com/tessellab/acre/internal/coupling"
	"github.com/tessellab/acre/internal/persistence"
	"github.com/tessellab/acre/internal/scenario"
)

var (
	runDeckPath string
	runDBPath   string
	runHTTPPort int
	runPaced    bool
	runSpeed    float64
	runSteps    int
	runSeed     int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario deck",
	Long: `Run a scenario deck to completion, recording step diagnostics to the
database. With --paced the run is clocked against wall time (one step per
second at speed 1) and can be watched and controlled over the HTTP API.

Environment:
  OPENWEATHER_API_KEY  Scale recharge by current real-world weather
  ACRE_ADMIN_KEY       Bearer token enabling POST control endpoints`,
	RunE: runScenario,
}

func init() {
	runCmd.Flags().StringVar(&runDeckPath, "deck", "", "Path to the scenario deck YAML (required)")
	runCmd.Flags().StringVar(&runDBPath, "db", "data/acre.db", "SQLite database path, empty to disable recording")
	runCmd.Flags().IntVar(&runHTTPPort, "http", 0, "Serve the HTTP API on this port (0 = disabled)")
	runCmd.Flags().BoolVar(&runPaced, "paced", false, "Pace steps against the wall clock")
	runCmd.Flags().Float64Var(&runSpeed, "speed", 1.0, "Initial speed multiplier for paced runs")
	runCmd.Flags().IntVar(&runSteps, "steps", 0, "Override the deck's step count")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "Override the deck's seed")
	runCmd.MarkFlagRequired("deck")
}

func runScenario(cmd *cobra.Command, args []string) error {
	deck, err := scenario.Load(runDeckPath)
	if err != nil {
		return err
	}
	if runSteps > 0 {
		deck.Steps = runSteps
	}
	if runSeed != 0 {
		deck.Seed = runSeed
	}

	season, err := deck.ParseSeason()
	if err != nil {
		return err
	}

	// Real-world weather, when a key is configured, overrides the seasonal
	// recharge default.
	opts := scenario.Options{}
	weather := climate.NewClient(os.Getenv("OPENWEATHER_API_KEY"), os.Getenv("OPENWEATHER_LOCATION"))
	if weather != nil {
		opts.RechargeScale = weather.RechargeScale(season)
		slog.Info("weather-adjusted recharge", "scale", fmt.Sprintf("%.2f", opts.RechargeScale))
	}

	sc, err := scenario.Build(deck, opts)
	if err != nil {
		return err
	}

	slog.Info("scenario ready",
		"name", deck.Name,
		"kind", deck.Kind,
		"grid", fmt.Sprintf("%dx%d", deck.Grid.Rows, deck.Grid.Cols),
		"steps", deck.Steps,
		"season", climate.SeasonName(season),
		"agents", sc.Pop.Active(),
	)

	// Recording.
	var db *persistence.DB
	var runID string
	if runDBPath != "" {
		os.MkdirAll(filepath.Dir(runDBPath), 0755)
		db, err = persistence.Open(runDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		runID, err = db.BeginRun(deck)
		if err != nil {
			return err
		}
		sc.Loop.OnStep = func(d coupling.Diagnostics) {
			if err := db.RecordStep(runID, d); err != nil {
				slog.Error("step recording failed", "error", err)
			}
		}
		slog.Info("recording run", "id", runID, "db", runDBPath)
	}

	var runner *coupling.Runner
	if runPaced {
		runner = coupling.NewRunner(sc.Loop, deck.Steps)
		runner.Speed = runSpeed
	}

	if runHTTPPort > 0 {
		adminKey := os.Getenv("ACRE_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("ACRE_ADMIN_KEY not set, control endpoints disabled")
		}
		server := &api.Server{
			Loop:     sc.Loop,
			Runner:   runner,
			Sim:      sc.Sim,
			Pop:      sc.Pop,
			Deck:     deck,
			DB:       db,
			Port:     runHTTPPort,
			AdminKey: adminKey,
		}
		server.Start()
	}

	if runPaced {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigCh
			slog.Info("received signal, stopping", "signal", sig)
			runner.Stop()
		}()
		err = runner.Run()
	} else {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		err = sc.Loop.Run(ctx, deck.Steps)
	}

	if db != nil {
		if ferr := db.FinishRun(runID); ferr != nil {
			slog.Error("run finalization failed", "error", ferr)
		}
	}
	if err != nil {
		return err
	}

	last := sc.Loop.Last()
	fmt.Printf("\n%s finished after %d steps.\n", deck.Name, sc.Loop.CurrentStep())
	fmt.Printf("Agents alive: %d\n", last.Active)
	fmt.Printf("Observed field: min %.4g  max %.4g  mean %.4g\n", last.ObsMin, last.ObsMax, last.ObsMean)
	fmt.Printf("Aggregate forcing: min %.4g  max %.4g  mean %.4g\n", last.AggMin, last.AggMax, last.AggMean)
	if runID != "" {
		fmt.Printf("Recorded as run %s\n", runID)
	}
	return nil
}
