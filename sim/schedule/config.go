package schedule

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/krpfile"
	"github.com/krpsim/krpsim/sim/trace"
)

// Config groups the scheduler's search parameters.
// YAML keys match the tuning file loaded by the CLI.
//
// Rollouts is the size of one search round. While budget remains and the
// previous round improved the best outcome, further rounds run until
// MaxRollouts rollouts in total; MaxRollouts ≤ Rollouts disables the extra rounds.
// MaxTraceBytes caps the encoded trace so krpsim_verif can read it back; 0 means no cap.
type Config struct {
	Seed            int64              `yaml:"seed"`
	Rollouts        int                `yaml:"rollouts" validate:"gte=1,lte=100000"`
	MaxRollouts     int                `yaml:"max_rollouts" validate:"gte=0,lte=1000000"`
	Workers         int                `yaml:"workers" validate:"gte=1,lte=256"`
	MaxCycle        int64              `yaml:"max_cycle" validate:"gte=1"`
	MaxEvents       int                `yaml:"max_events" validate:"gte=1"`
	MaxTraceBytes   int                `yaml:"max_trace_bytes" validate:"gte=0"`
	Temperature     float64            `yaml:"temperature" validate:"gte=0,lte=10"`
	Scorers         []sim.ScorerConfig `yaml:"scorers" validate:"dive"`
	TraceLevel      string             `yaml:"trace_level"`
	CounterfactualK int                `yaml:"counterfactual_k" validate:"gte=0,lte=64"`

	// Budget is the wall-clock allowance; it comes from the command line only.
	Budget time.Duration `yaml:"-"`
}

// DefaultConfig returns the defaults used by krpsim.
func DefaultConfig() Config {
	return Config{
		Seed:            42,
		Rollouts:        64,
		MaxRollouts:     4096,
		Workers:         4,
		MaxCycle:        100000,
		MaxEvents:       200000,
		MaxTraceBytes:   krpfile.MaxFileSize,
		Temperature:     0.35,
		Scorers:         sim.DefaultScorerConfigs(),
		TraceLevel:      string(trace.TraceLevelNone),
		CounterfactualK: 0,
		Budget:          time.Second,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and scorer names.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid scheduler config: %w", err)
	}
	if c.Budget < 0 {
		return fmt.Errorf("invalid scheduler config: negative budget %v", c.Budget)
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return fmt.Errorf("invalid scheduler config: unknown trace level %q", c.TraceLevel)
	}
	seen := make(map[string]bool, len(c.Scorers))
	for _, sc := range c.Scorers {
		if !sim.IsValidScorer(sc.Name) {
			return fmt.Errorf("invalid scheduler config: unknown scorer %q", sc.Name)
		}
		if seen[sc.Name] {
			return fmt.Errorf("invalid scheduler config: duplicate scorer %q", sc.Name)
		}
		seen[sc.Name] = true
	}
	return nil
}

// TraceConfig returns the decision-trace settings.
func (c Config) TraceConfig() trace.TraceConfig {
	return trace.TraceConfig{Level: trace.TraceLevel(c.TraceLevel), CounterfactualK: c.CounterfactualK}
}
