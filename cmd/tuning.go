package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/schedule"
)

// loadTuning parses a scheduler tuning file on top of base.
// Keys absent from the file keep their base value.
// Uses strict field checking: typos must cause errors.
func loadTuning(path string, base schedule.Config) (schedule.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read tuning file: %w", err)
	}
	cfg := base
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return base, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	return cfg, nil
}

// schedulerFlags holds the krpsim flag values before they are merged.
type schedulerFlags struct {
	tuningPath      string
	seed            int64
	rollouts        int
	maxRollouts     int
	workers         int
	maxCycle        int64
	maxEvents       int
	temperature     float64
	scorers         string
	traceLevel      string
	counterfactualK int
}

// registerSchedulerFlags binds the scheduler flags to f.
func registerSchedulerFlags(fs *pflag.FlagSet, f *schedulerFlags) {
	fs.StringVar(&f.tuningPath, "tuning", "", "YAML file with scheduler settings (explicit flags take precedence)")
	fs.Int64Var(&f.seed, "seed", 42, "Seed for randomized rollouts")
	fs.IntVar(&f.rollouts, "rollouts", 64, "Rollouts per search round")
	fs.IntVar(&f.maxRollouts, "max-rollouts", 4096, "Total rollouts across rounds while the delay lasts and rounds keep improving")
	fs.IntVar(&f.workers, "workers", 4, "Rollouts run in parallel")
	fs.Int64Var(&f.maxCycle, "max-cycle", 100000, "Stop a rollout before advancing past this cycle")
	fs.IntVar(&f.maxEvents, "max-events", 200000, "Maximum process starts per rollout")
	fs.Float64Var(&f.temperature, "temperature", 0.35, "Score noise amplitude for randomized rollouts")
	fs.StringVar(&f.scorers, "scorers", "", "Process scorers as name:weight pairs ("+strings.Join(sim.ValidScorerNames(), ", ")+")")
	fs.StringVar(&f.traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	fs.IntVar(&f.counterfactualK, "counterfactual-k", 0, "Number of candidate processes kept per decision record")
}

// buildConfig merges defaults, the tuning file and explicitly set flags, in
// that order of increasing precedence. Flags left at their default never
// overwrite a value coming from the tuning file.
func buildConfig(fs *pflag.FlagSet, f *schedulerFlags) (schedule.Config, error) {
	cfg := schedule.DefaultConfig()
	if f.tuningPath != "" {
		var err error
		if cfg, err = loadTuning(f.tuningPath, cfg); err != nil {
			return cfg, err
		}
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	if fs.Changed("rollouts") {
		cfg.Rollouts = f.rollouts
	}
	if fs.Changed("max-rollouts") {
		cfg.MaxRollouts = f.maxRollouts
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("max-cycle") {
		cfg.MaxCycle = f.maxCycle
	}
	if fs.Changed("max-events") {
		cfg.MaxEvents = f.maxEvents
	}
	if fs.Changed("temperature") {
		cfg.Temperature = f.temperature
	}
	if fs.Changed("scorers") {
		scorers, err := sim.ParseScorerConfigs(f.scorers)
		if err != nil {
			return cfg, err
		}
		cfg.Scorers = scorers
	}
	if fs.Changed("trace-level") {
		cfg.TraceLevel = f.traceLevel
	}
	if fs.Changed("counterfactual-k") {
		cfg.CounterfactualK = f.counterfactualK
	}
	return cfg, cfg.Validate()
}
