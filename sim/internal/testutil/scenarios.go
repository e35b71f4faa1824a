// Package testutil provides shared test infrastructure for the krpsim packages.
// It locates the scenario configs under testdata/scenarios for the tests of
// sim/, sim/krpfile/ and sim/schedule/.
package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// Scenario config names under testdata/scenarios.
const (
	ScenarioCake     = "cake.krp"     // one process, limited by money
	ScenarioParallel = "parallel.krp" // four copies of one process in parallel
	ScenarioHouse    = "house.krp"    // two-stage chain, objective includes time
	ScenarioShortage = "shortage.krp" // the only process can never start
	ScenarioTiming   = "timing.krp"   // results only usable once the producer completes
	ScenarioPastry   = "pastry.krp"   // several competing chains with a resource cycle
)

// AllScenarios lists every scenario config.
var AllScenarios = []string{
	ScenarioCake, ScenarioParallel, ScenarioHouse, ScenarioShortage, ScenarioTiming, ScenarioPastry,
}

// ScenarioPath returns the absolute path of a scenario config.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/scenarios/.
func ScenarioPath(t *testing.T, name string) string {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "scenarios", name)
}

// LoadScenario returns the contents of a scenario config.
func LoadScenario(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(ScenarioPath(t, name))
	if err != nil {
		t.Fatalf("Failed to read scenario %s: %v", name, err)
	}
	return string(data)
}

// WriteTemp writes content to a file in a per-test temporary directory and returns its path.
func WriteTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
