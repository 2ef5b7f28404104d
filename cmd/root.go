package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autopark-sim/autopark/sim"
)

var (
	configPath   string // YAML run configuration
	logLevel     string // Log verbosity level
	outputPath   string // Trace path; derived from the structure path when empty
	printSummary bool   // Print run metrics after the simulation
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "autopark",
	Short: "Discrete-event simulator for multi-floor parking garages",
}

// runCmd executes the simulation over the given input files
var runCmd = &cobra.Command{
	Use:   "run STRUCTURE EVENTS [RESTRICTIONS]",
	Short: "Simulate an event file against a garage structure and write the movement trace",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := sim.DefaultRunConfig()
		if configPath != "" {
			loaded, err := sim.LoadRunConfig(configPath)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			cfg = loaded
		}
		if cmd.Flags().Changed("log") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("summary") {
			cfg.Summary = printSummary
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid run config: %v", err)
		}

		setLogLevel(cfg.LogLevel)

		in := inputPaths{Structure: args[0], Events: args[1]}
		if len(args) == 3 {
			in.Restrictions = args[2]
		}
		out := outputPath
		if out == "" {
			out = cfg.TracePath(in.Structure)
		}

		logrus.Infof("Starting simulation: structure=%s events=%s restrictions=%q trace=%s cost_multiplier=%d",
			in.Structure, in.Events, in.Restrictions, out, cfg.Multiplier())

		metrics, err := runSimulation(cfg, in, out)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cfg.Summary {
			metrics.Print(os.Stdout)
		}

		logrus.Info("Simulation complete.")
	},
}

// setLogLevel applies a level name or exits.
func setLogLevel(name string) {
	level, err := logrus.ParseLevel(name)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", name)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error)")

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration (cost_multiplier, extensions, log_level, summary)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "Trace file path (default: structure path with the trace extension)")
	runCmd.Flags().BoolVar(&printSummary, "summary", false, "Print run metrics after the simulation")

	// Attach `run`, `generate` and `summary` as subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(summaryCmd)
}
