package sim

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ScorerConfig describes a named scorer with a weight for weighted process selection.
type ScorerConfig struct {
	Name   string  `yaml:"name" validate:"required"`
	Weight float64 `yaml:"weight" validate:"gt=0"`
}

// scorerFunc computes a score in [0,1] for starting process p in state s.
// Higher is better. Scorers read the state but never mutate it.
type scorerFunc func(a *Analysis, s *State, p ProcessID) float64

// validScorerNames maps scorer names to validity. Unexported to prevent mutation.
var validScorerNames = map[string]bool{
	"objective-affinity": true,
	"scarcity":           true,
	"duration":           true,
}

// IsValidScorer returns true if name is a recognized scorer.
func IsValidScorer(name string) bool { return validScorerNames[name] }

// ValidScorerNames returns sorted valid scorer names.
func ValidScorerNames() []string {
	names := make([]string, 0, len(validScorerNames))
	for n := range validScorerNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultScorerConfigs returns the default scorer configuration:
// objective-affinity:3, scarcity:2, duration:1.
func DefaultScorerConfigs() []ScorerConfig {
	return []ScorerConfig{
		{Name: "objective-affinity", Weight: 3.0},
		{Name: "scarcity", Weight: 2.0},
		{Name: "duration", Weight: 1.0},
	}
}

// ParseScorerConfigs parses a --scorers value: comma-separated
// "scorer:weight" entries, each scorer at most once. An empty value yields nil,
// which selects DefaultScorerConfigs.
func ParseScorerConfigs(s string) ([]ScorerConfig, error) {
	if s == "" {
		return nil, nil
	}
	var configs []ScorerConfig
	for _, entry := range strings.Split(s, ",") {
		c, err := parseScorerEntry(strings.TrimSpace(entry))
		if err != nil {
			return nil, err
		}
		for _, prev := range configs {
			if prev.Name == c.Name {
				return nil, fmt.Errorf("process scorer %q listed twice", c.Name)
			}
		}
		configs = append(configs, c)
	}
	return configs, nil
}

func parseScorerEntry(entry string) (ScorerConfig, error) {
	name, weightText, ok := strings.Cut(entry, ":")
	if !ok {
		return ScorerConfig{}, fmt.Errorf("process scorer entry %q: want scorer:weight", entry)
	}
	name = strings.TrimSpace(name)
	if !IsValidScorer(name) {
		return ScorerConfig{}, fmt.Errorf("unknown process scorer %q (valid: %s)", name, strings.Join(ValidScorerNames(), ", "))
	}
	weight, err := strconv.ParseFloat(strings.TrimSpace(weightText), 64)
	if err != nil {
		return ScorerConfig{}, fmt.Errorf("process scorer %q: weight %q is not a number", name, strings.TrimSpace(weightText))
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) || weight <= 0 {
		return ScorerConfig{}, fmt.Errorf("process scorer %q: weight must be finite and positive, got %v", name, weight)
	}
	return ScorerConfig{Name: name, Weight: weight}, nil
}

// normalizeScorerWeights scales the weights to fractions of their sum.
// Validation guarantees a positive sum; anything else panics.
func normalizeScorerWeights(configs []ScorerConfig) []float64 {
	weights := make([]float64, len(configs))
	sum := 0.0
	for i, c := range configs {
		weights[i] = c.Weight
		sum += c.Weight
	}
	if !(sum > 0) {
		panic(fmt.Sprintf("process scorer weights sum to %v", sum))
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights
}

// newScorer returns the scorer function for a named scorer.
// Panics on unknown name (validation should catch this before reaching here).
func newScorer(name string) scorerFunc {
	switch name {
	case "objective-affinity":
		return scoreObjectiveAffinity
	case "scarcity":
		return scoreScarcity
	case "duration":
		return scoreDuration
	default:
		panic(fmt.Sprintf("unknown scorer %q", name))
	}
}

// ProcessScorer combines weighted scorers into a single deterministic score.
// Immutable after construction; safe for concurrent use by rollouts.
type ProcessScorer struct {
	analysis *Analysis
	configs  []ScorerConfig
	weights  []float64
	scorers  []scorerFunc
}

// NewProcessScorer builds a ProcessScorer. Empty configs select DefaultScorerConfigs.
// Panics on unknown scorer names.
func NewProcessScorer(a *Analysis, configs []ScorerConfig) *ProcessScorer {
	if len(configs) == 0 {
		configs = DefaultScorerConfigs()
	}
	ps := &ProcessScorer{
		analysis: a,
		configs:  append([]ScorerConfig(nil), configs...),
		weights:  normalizeScorerWeights(configs),
		scorers:  make([]scorerFunc, len(configs)),
	}
	for i, c := range configs {
		ps.scorers[i] = newScorer(c.Name)
	}
	return ps
}

// Configs returns the scorer configuration in use.
func (ps *ProcessScorer) Configs() []ScorerConfig { return ps.configs }

// Score returns the weighted score of starting p in s, in [0,1].
func (ps *ProcessScorer) Score(s *State, p ProcessID) float64 {
	total := 0.0
	for i, f := range ps.scorers {
		total += ps.weights[i] * f(ps.analysis, s, p)
	}
	return total
}

// scoreObjectiveAffinity scores a process by its most valuable result.
// Objective resources score by priority; each hop away from the objective halves the score.
func scoreObjectiveAffinity(a *Analysis, _ *State, p ProcessID) float64 {
	best := 0.0
	for _, q := range a.inst.processes[p].Results {
		if v := a.Value[q.Resource]; v > best {
			best = v
		}
	}
	return best
}

// scoreScarcity scores by the smallest fraction of any required stock left
// after starting p. Consuming an objective resource halves the score.
func scoreScarcity(a *Analysis, s *State, p ProcessID) float64 {
	score := 1.0
	for _, q := range a.inst.processes[p].Requirements {
		have := s.Stock(q.Resource)
		if have <= 0 {
			return 0
		}
		left := float64(have-q.Amount) / float64(have)
		if left < 0 {
			left = 0
		}
		if left < score {
			score = left
		}
	}
	// Map to [0.5,1]: draining a stock is allowed, only less preferred.
	score = 0.5 + 0.5*score
	if a.ConsumesObjective[p] {
		score /= 2
	}
	return score
}

// scoreDuration prefers shorter processes: score = (1+min)/(1+duration).
func scoreDuration(a *Analysis, _ *State, p ProcessID) float64 {
	return float64(1+a.MinDuration) / float64(1+a.inst.processes[p].Duration)
}
