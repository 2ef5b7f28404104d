package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/autopark-sim/autopark/sim/trace"
)

// summaryCmd prints aggregate statistics of a trace file
var summaryCmd = &cobra.Command{
	Use:   "summary TRACE",
	Short: "Summarize a movement trace and re-check it with the trace validator",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, err := summarizeTrace(args[0])
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		s.Print(cmd.OutOrStdout())
		if s.Violations > 0 {
			logrus.Warnf("%s: %d records fail validation", args[0], s.Violations)
		}
	},
}

func summarizeTrace(path string) (*trace.TraceSummary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	defer f.Close()
	return summarize(f)
}

func summarize(r io.Reader) (*trace.TraceSummary, error) {
	records, err := trace.Read(r)
	if err != nil {
		return nil, err
	}
	return trace.Summarize(records), nil
}
