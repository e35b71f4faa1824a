package trace

// TraceLevel controls the verbosity of decision tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelDecisions captures every process selection and rollout termination.
	TraceLevelDecisions TraceLevel = "decisions"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:      true,
	TraceLevelDecisions: true,
	"":                  true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level           TraceLevel
	CounterfactualK int // number of counterfactual candidates per selection
}

// Enabled reports whether decisions should be recorded.
func (c TraceConfig) Enabled() bool { return c.Level == TraceLevelDecisions }

// SimulationTrace collects decision records during one scheduler rollout.
// Not safe for concurrent use; each rollout records into its own trace.
type SimulationTrace struct {
	Config       TraceConfig
	Selections   []SelectionRecord
	Terminations []TerminationRecord
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:       config,
		Selections:   make([]SelectionRecord, 0),
		Terminations: make([]TerminationRecord, 0),
	}
}

// RecordSelection appends a selection decision record.
func (st *SimulationTrace) RecordSelection(record SelectionRecord) {
	st.Selections = append(st.Selections, record)
}

// RecordTermination appends a rollout termination record.
func (st *SimulationTrace) RecordTermination(record TerminationRecord) {
	st.Terminations = append(st.Terminations, record)
}

// Merge appends the records of other, in order. A nil other is a no-op.
func (st *SimulationTrace) Merge(other *SimulationTrace) {
	if other == nil {
		return
	}
	st.Selections = append(st.Selections, other.Selections...)
	st.Terminations = append(st.Terminations, other.Terminations...)
}
