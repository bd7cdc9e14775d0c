package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "acre",
	Short: "Coupled field/agent simulation runner",
	Long: `Acre runs coupled simulations between a grid-based landscape model
and an agent population. Each step the model advances, the agents observe
the resulting field, act, and feed their aggregate state back as forcing.

Two scenario kinds ship with the runner:
  wells      Farmers pumping groundwater from an unconfined aquifer
  ecosystem  Grass, herbivores, and predators over soil-creep erosion

Scenarios are described by YAML decks; see the decks/ directory for examples.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
		slog.SetDefault(logger)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
