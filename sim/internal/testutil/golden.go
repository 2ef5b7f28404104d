// Package testutil provides shared test infrastructure for the autopark simulator.
// It locates the golden scenarios under testdata/scenarios and holds small
// fixture helpers used across the sim test packages.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// Scenario is one directory of testdata/scenarios: a structure file, an event
// file, an optional restriction file and the trace the run must produce.
type Scenario struct {
	Name         string
	Structure    string // path to structure.cfg
	Events       string // path to events.txt
	Restrictions string // path to restrictions.txt, empty when the scenario has none
	Expected     string // path to expected.pts
}

// LoadScenarios lists the golden scenarios in name order.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadScenarios(t *testing.T) []Scenario {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	root := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios")
	dirs, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("Failed to read scenarios: %v", err)
	}

	var scenarios []Scenario
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		dir := filepath.Join(root, d.Name())
		sc := Scenario{
			Name:      d.Name(),
			Structure: filepath.Join(dir, "structure.cfg"),
			Events:    filepath.Join(dir, "events.txt"),
			Expected:  filepath.Join(dir, "expected.pts"),
		}
		if r := filepath.Join(dir, "restrictions.txt"); fileExists(r) {
			sc.Restrictions = r
		}
		scenarios = append(scenarios, sc)
	}
	if len(scenarios) == 0 {
		t.Fatalf("no scenarios under %s", root)
	}
	return scenarios
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ReadLines returns the non-empty lines of a file.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return SplitLines(string(data))
}

// SplitLines splits text into lines, dropping empty ones.
func SplitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		l = strings.TrimRight(l, "\r")
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Lines joins fixture lines into file content with a trailing newline.
// Map rows keep their trailing spaces.
func Lines(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

// WriteFile writes content to name inside dir and returns the path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
