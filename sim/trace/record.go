// Package trace provides decision-trace recording for scheduler analysis.
// This package has no dependencies on sim/ or sim/schedule/; it stores pure data types.
package trace

// CandidateScore captures one startable process considered at a selection.
type CandidateScore struct {
	Process string
	Score   float64 // deterministic score, before rollout noise
}

// SelectionRecord captures a single process selection with optional counterfactual analysis.
type SelectionRecord struct {
	Rollout    int
	Cycle      int64
	Process    string
	Score      float64          // deterministic score of the chosen process
	Candidates []CandidateScore // top-k candidates sorted by score desc (nil if k=0)
	Regret     float64          // max(candidate scores) - score(chosen); 0 if chosen is best
}

// TerminationRecord captures why a rollout stopped emitting events.
type TerminationRecord struct {
	Rollout int
	Cycle   int64
	Reason  string
	Events  int
}
