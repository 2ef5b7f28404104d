package trace

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// TraceSummary aggregates statistics from a movement trace.
type TraceSummary struct {
	Records    int
	ByCode     map[Code]int
	Vehicles   int // distinct tags
	Journeys   int // summary records
	Departures int
	Violations int // records the validator would reject

	MeanCost float64
	P50Cost  float64
	P95Cost  float64
	MaxCost  float64

	MeanDrive float64 // entry to park, in ticks
	MeanWalk  float64 // park to exit, in ticks
}

// Read parses a trace file. Blank lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	var records []Record
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return records, nil
}

// Summarize computes aggregate statistics over records.
// Returns a zero-value summary for nil or empty input.
func Summarize(records []Record) *TraceSummary {
	summary := &TraceSummary{ByCode: make(map[Code]int)}
	if len(records) == 0 {
		return summary
	}

	tags := make(map[string]struct{})
	v := NewValidator()
	var costs, drives, walks []float64
	for _, r := range records {
		summary.Records++
		summary.ByCode[r.Code]++
		tags[r.Tag] = struct{}{}
		if err := v.Accept(r); err != nil {
			summary.Violations++
		}
		switch r.Code {
		case Summary:
			summary.Journeys++
			costs = append(costs, float64(r.Z))
			drives = append(drives, float64(r.X-r.Tick))
			walks = append(walks, float64(r.Y-r.X))
		case Departed:
			summary.Departures++
		}
	}
	summary.Vehicles = len(tags)

	if len(costs) > 0 {
		slices.Sort(costs)
		summary.MeanCost = stat.Mean(costs, nil)
		summary.P50Cost = stat.Quantile(0.5, stat.Empirical, costs, nil)
		summary.P95Cost = stat.Quantile(0.95, stat.Empirical, costs, nil)
		summary.MaxCost = costs[len(costs)-1]
		summary.MeanDrive = stat.Mean(drives, nil)
		summary.MeanWalk = stat.Mean(walks, nil)
	}
	return summary
}

// Print writes a human-readable report of the summary.
func (s *TraceSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "=== Trace Summary ===\n")
	fmt.Fprintf(w, "Records    : %d\n", s.Records)
	fmt.Fprintf(w, "Vehicles   : %d\n", s.Vehicles)
	fmt.Fprintf(w, "Journeys   : %d\n", s.Journeys)
	fmt.Fprintf(w, "Departures : %d\n", s.Departures)
	fmt.Fprintf(w, "Violations : %d\n", s.Violations)
	codes := make([]Code, 0, len(s.ByCode))
	for c := range s.ByCode {
		codes = append(codes, c)
	}
	slices.Sort(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  %c: %d\n", c, s.ByCode[c])
	}
	if s.Journeys > 0 {
		fmt.Fprintf(w, "Cost       : mean %.2f p50 %.0f p95 %.0f max %.0f\n", s.MeanCost, s.P50Cost, s.P95Cost, s.MaxCost)
		fmt.Fprintf(w, "Drive ticks: mean %.2f\n", s.MeanDrive)
		fmt.Fprintf(w, "Walk ticks : mean %.2f\n", s.MeanWalk)
	}
}
