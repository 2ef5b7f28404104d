package cmd

import (
	"fmt"
	"os"

	"github.com/autopark-sim/autopark/sim"
	"github.com/autopark-sim/autopark/sim/layout"
	"github.com/autopark-sim/autopark/sim/restriction"
	"github.com/autopark-sim/autopark/sim/trace"
)

// inputPaths names the files of one run. Restrictions is optional.
type inputPaths struct {
	Structure    string
	Events       string
	Restrictions string
}

// runSimulation loads every input before creating the trace file, so a load
// error leaves no output behind.
func runSimulation(cfg *sim.RunConfig, in inputPaths, tracePath string) (*sim.Metrics, error) {
	l, err := loadStructure(in.Structure)
	if err != nil {
		return nil, err
	}
	events, err := loadEvents(in.Events, l)
	if err != nil {
		return nil, err
	}
	var restrictions *restriction.Engine
	if in.Restrictions != "" {
		if restrictions, err = loadRestrictions(in.Restrictions, l.Dims); err != nil {
			return nil, err
		}
	}
	garage, err := sim.NewGarage(l, cfg.Multiplier())
	if err != nil {
		return nil, err
	}

	f, err := os.Create(tracePath)
	if err != nil {
		return nil, fmt.Errorf("creating trace file: %w", err)
	}
	s := sim.NewSimulator(garage, restrictions, events, trace.NewWriter(f))
	runErr := s.Run()
	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("closing trace file: %w", err)
	}
	return s.Metrics, runErr
}

func loadStructure(path string) (*layout.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening structure file: %w", err)
	}
	defer f.Close()
	l, err := layout.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

func loadEvents(path string, l *layout.Layout) ([]sim.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening event file: %w", err)
	}
	defer f.Close()
	events, err := sim.LoadEvents(f, l)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return events, nil
}

func loadRestrictions(path string, dims layout.Dims) (*restriction.Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening restriction file: %w", err)
	}
	defer f.Close()
	e, err := restriction.Load(f, dims)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return e, nil
}
