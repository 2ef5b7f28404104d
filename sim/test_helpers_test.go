package sim

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/autopark-sim/autopark/sim/internal/testutil"
	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/restriction"
	"github.com/autopark-sim/autopark/sim/trace"
)

// smallGarage is a 3x3 floor: entry (0,0,0), one free cell (1,1,0), C exit (2,2,0).
var smallGarage = testutil.Lines(
	"3 3 1 1 1",
	"  a",
	" . ",
	"e  ",
	"E1 0 0 0 C",
	"A1 2 2 0 C",
	"+",
)

// tiedGarage has two free cells at equal cost from entry (1,0,0) to exit (1,1,0).
var tiedGarage = testutil.Lines(
	"3 3 1 1 1",
	". .",
	" a ",
	" e ",
	"E1 1 0 0 C",
	"A1 1 1 0 C",
	"+",
)

func mustParse(t *testing.T, structure string) *layout.Layout {
	t.Helper()
	l, err := layout.Parse(strings.NewReader(structure))
	require.NoError(t, err)
	return l
}

// testRun is a simulator over in-memory inputs and the buffer its trace goes to.
type testRun struct {
	sim *Simulator
	out *bytes.Buffer
}

func (r *testRun) lines() []string {
	return testutil.SplitLines(r.out.String())
}

func newTestRun(t *testing.T, structure, events, restrictions string) *testRun {
	t.Helper()
	l := mustParse(t, structure)
	evs, err := LoadEvents(strings.NewReader(events), l)
	require.NoError(t, err)
	var eng *restriction.Engine
	if restrictions != "" {
		eng, err = restriction.Load(strings.NewReader(restrictions), l.Dims)
		require.NoError(t, err)
	}
	g, err := NewGarage(l, DefaultCostMultiplier)
	require.NoError(t, err)
	out := &bytes.Buffer{}
	return &testRun{sim: NewSimulator(g, eng, evs, trace.NewWriter(out)), out: out}
}

// recordSink collects records in memory.
type recordSink struct {
	records []trace.Record
}

func (s *recordSink) Write(r trace.Record) error {
	s.records = append(s.records, r)
	return nil
}

func (s *recordSink) lines() []string {
	out := make([]string, len(s.records))
	for i, r := range s.records {
		out[i] = r.String()
	}
	return out
}
