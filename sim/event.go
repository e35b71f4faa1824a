package sim

import "sort"

// TraceEvent is one (start cycle, process) pair of an execution trace.
type TraceEvent struct {
	Cycle   int64     // start cycle (in cycles)
	Process ProcessID // process started at Cycle
}

// TraceEntry is a trace event as read from a trace file, before the process
// name has been resolved against an Instance.
type TraceEntry struct {
	Cycle int64
	Name  string
	Line  int // 1-based source line, 0 when not read from a file
}

// Trace is an ordered sequence of events.
type Trace []TraceEvent

// Entries converts the trace to name-based entries for inst.
func (tr Trace) Entries(inst *Instance) []TraceEntry {
	out := make([]TraceEntry, len(tr))
	for i, ev := range tr {
		out[i] = TraceEntry{Cycle: ev.Cycle, Name: inst.processes[ev.Process].Name}
	}
	return out
}

// SortEntries orders entries by start cycle ascending. The sort is stable so
// events of the same cycle keep their supplied order.
func SortEntries(entries []TraceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Cycle < entries[j].Cycle
	})
}
