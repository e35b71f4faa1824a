package sim

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// RejectKind classifies why a trace was rejected.
type RejectKind string

const (
	RejectUnknownProcess    RejectKind = "unknown-process"
	RejectOutOfOrder        RejectKind = "out-of-order"
	RejectInsufficientStock RejectKind = "insufficient-stock"
	RejectStockOverflow     RejectKind = "stock-overflow"
)

// RejectError describes the first event of a trace that could not be executed.
type RejectError struct {
	Kind    RejectKind
	Cycle   int64  // start cycle of the offending event
	Process string // process name as written in the trace
	Line    int    // trace line, 0 if unknown
	Err     error  // underlying kernel error, if any
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("KO at cycle %d: %s (%s)", e.Cycle, e.Process, e.Kind)
}

func (e *RejectError) Unwrap() error { return e.Err }

// Verdict is the result of verifying a trace. State is always set, also on
// rejection, where it holds the stocks at the moment the offending event was refused.
type Verdict struct {
	Accepted  bool
	LastCycle int64        // set when Accepted
	State     *State       // final state
	Err       *RejectError // set when not Accepted
}

// Cycle returns the cycle to report: LastCycle when accepted, otherwise the
// start cycle of the rejected event.
func (v *Verdict) Cycle() int64 {
	if v.Accepted {
		return v.LastCycle
	}
	return v.Err.Cycle
}

func (v *Verdict) String() string {
	if v.Accepted {
		return fmt.Sprintf("OK at cycle %d", v.LastCycle)
	}
	return fmt.Sprintf("KO at cycle %d: %s", v.Err.Cycle, v.Err.Process)
}

// Verify replays entries against inst through the kernel.
// Entries are sorted by start cycle (stable) before replay; the caller's
// slice is not modified. Verification stops at the first rejected event.
func Verify(inst *Instance, entries []TraceEntry) *Verdict {
	sorted := append([]TraceEntry(nil), entries...)
	SortEntries(sorted)

	state := NewState(inst)
	for _, e := range sorted {
		p := inst.ProcessByName(e.Name)
		if p == NoProcess {
			return reject(state, RejectUnknownProcess, e, nil)
		}
		if e.Cycle < state.Clock() {
			return reject(state, RejectOutOfOrder, e, ErrClockBackwards)
		}
		if err := state.Start(p, e.Cycle); err != nil {
			var ise *InsufficientStockError
			if errors.As(err, &ise) {
				return reject(state, RejectInsufficientStock, e, err)
			}
			var soe *StockOverflowError
			if errors.As(err, &soe) {
				return reject(state, RejectStockOverflow, e, err)
			}
			return reject(state, RejectOutOfOrder, e, err)
		}
	}
	last := state.DrainAll()
	logrus.Debugf("verified %d events, last cycle %d", len(sorted), last)
	return &Verdict{Accepted: true, LastCycle: last, State: state}
}

// VerifyTrace verifies an id-based trace, as emitted by the scheduler.
func VerifyTrace(inst *Instance, tr Trace) *Verdict {
	entries := make([]TraceEntry, len(tr))
	for i, ev := range tr {
		name := fmt.Sprintf("#%d", ev.Process)
		if inst.HasProcess(ev.Process) {
			name = inst.processes[ev.Process].Name
		}
		entries[i] = TraceEntry{Cycle: ev.Cycle, Name: name}
	}
	return Verify(inst, entries)
}

func reject(state *State, kind RejectKind, e TraceEntry, err error) *Verdict {
	logrus.Debugf("trace rejected at cycle %d: %s (%s)", e.Cycle, e.Name, kind)
	return &Verdict{
		State: state,
		Err: &RejectError{
			Kind:    kind,
			Cycle:   e.Cycle,
			Process: e.Name,
			Line:    e.Line,
			Err:     err,
		},
	}
}
