package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalSelections     int
	MeanRegret          float64
	MaxRegret           float64
	UniqueProcesses     int
	ProcessDistribution map[string]int // process name → count of selections
	StopReasons         map[string]int // termination reason → count of rollouts
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ProcessDistribution: make(map[string]int),
		StopReasons:         make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalSelections = len(st.Selections)
	if len(st.Selections) > 0 {
		totalRegret := 0.0
		for _, s := range st.Selections {
			summary.ProcessDistribution[s.Process]++
			totalRegret += s.Regret
			if s.Regret > summary.MaxRegret {
				summary.MaxRegret = s.Regret
			}
		}
		summary.MeanRegret = totalRegret / float64(len(st.Selections))
	}
	for _, t := range st.Terminations {
		summary.StopReasons[t.Reason]++
	}

	summary.UniqueProcesses = len(summary.ProcessDistribution)

	return summary
}
