package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autopark-sim/autopark/sim"
	"github.com/autopark-sim/autopark/sim/restriction"
	"github.com/autopark-sim/autopark/sim/workload"
)

var (
	genOutputPath string // Event file path; stdout when empty
	genSeed       int64  // Overrides the spec seed when set
	genCostMult   int    // Cost multiplier used by the replay
)

// generateCmd writes a synthetic event file for a structure
var generateCmd = &cobra.Command{
	Use:   "generate STRUCTURE SPEC [RESTRICTIONS]",
	Short: "Generate a synthetic event file from a YAML workload spec",
	Args:  cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel(logLevel)

		spec, err := workload.LoadGeneratorSpec(args[1])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		if cmd.Flags().Changed("seed") {
			spec.Seed = genSeed
		}
		if genCostMult < 0 {
			logrus.Fatalf("--cost-multiplier must be non-negative, got %d", genCostMult)
		}
		restrictions := ""
		if len(args) == 3 {
			restrictions = args[2]
		}

		var out io.Writer = cmd.OutOrStdout()
		if genOutputPath != "" {
			f, err := os.Create(genOutputPath)
			if err != nil {
				logrus.Fatalf("creating event file: %v", err)
			}
			defer f.Close()
			out = f
		}
		if err := generateEvents(spec, args[0], restrictions, genCostMult, out); err != nil {
			logrus.Fatalf("%v", err)
		}
	},
}

func generateEvents(spec *workload.GeneratorSpec, structurePath, restrictionPath string, costMult int, out io.Writer) error {
	l, err := loadStructure(structurePath)
	if err != nil {
		return err
	}
	var restrictions *restriction.Engine
	if restrictionPath != "" {
		if restrictions, err = loadRestrictions(restrictionPath, l.Dims); err != nil {
			return err
		}
	}
	res, err := workload.Generate(spec, l, restrictions, costMult)
	if err != nil {
		return fmt.Errorf("%s: %w", structurePath, err)
	}
	if res.SkippedDepartures > 0 {
		logrus.Warnf("%d vehicles were still waiting when their stay ended and get no departure", res.SkippedDepartures)
	}
	return sim.WriteEvents(out, res.Events)
}

func init() {
	generateCmd.Flags().StringVar(&genOutputPath, "output", "", "Event file path (default: stdout)")
	generateCmd.Flags().Int64Var(&genSeed, "seed", 0, "Seed overriding the spec's seed")
	generateCmd.Flags().IntVar(&genCostMult, "cost-multiplier", sim.DefaultCostMultiplier, "Cost multiplier used while replaying candidate events")
}
