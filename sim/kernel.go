// sim/kernel.go
package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ErrUnknownProcess is returned by Start for a ProcessID absent from the instance.
var ErrUnknownProcess = errors.New("unknown process")

// ErrClockBackwards is returned by Start when asked to start before the current cycle.
var ErrClockBackwards = errors.New("start cycle precedes current cycle")

// InsufficientStockError reports the first unmet requirement of a process start.
type InsufficientStockError struct {
	Process  ProcessID
	Resource ResourceID
	Have     int64
	Need     int64
	Cycle    int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock at cycle %d: process %d needs %d of resource %d, have %d",
		e.Cycle, e.Process, e.Need, e.Resource, e.Have)
}

// StockOverflowError reports a process start whose results would push a stock,
// counting results still pending, past the int64 range.
type StockOverflowError struct {
	Process  ProcessID
	Resource ResourceID
	Have     int64 // stock after the requirements are debited, plus pending results
	Add      int64
	Cycle    int64
}

func (e *StockOverflowError) Error() string {
	return fmt.Sprintf("stock overflow at cycle %d: process %d would add %d of resource %d to %d",
		e.Cycle, e.Process, e.Add, e.Resource, e.Have)
}

// AdvanceTo drains every pending completion with cycle ≤ t, crediting its
// results, and moves the clock to max(clock, t).
// After return, every pending completion is strictly later than t.
func (s *State) AdvanceTo(t int64) {
	s.advance(t)
}

// advance implements AdvanceTo and returns the latest completion cycle drained.
func (s *State) advance(t int64) (last int64, drained bool) {
	for {
		c, ok := s.pending.Peek()
		if !ok || c.Cycle > t {
			break
		}
		s.pending.PopNext()
		p := &s.inst.processes[c.Process]
		for _, q := range p.Results {
			s.stocks[q.Resource] += q.Amount
			s.incoming[q.Resource] -= q.Amount
		}
		s.completed[c.Process]++
		last, drained = c.Cycle, true
		logrus.Tracef("[cycle %07d] completed %s", c.Cycle, p.Name)
	}
	if t > s.clock {
		s.clock = t
	}
	return last, drained
}

// CanStart reports whether every requirement of p is covered by the current
// stocks. It does not advance the clock or mutate the state.
func (s *State) CanStart(p ProcessID) bool {
	if !s.inst.HasProcess(p) {
		return false
	}
	return s.unmet(p) < 0 && s.overflow(p) < 0
}

// unmet returns the index of the first unmet requirement of p, or -1.
func (s *State) unmet(p ProcessID) int {
	for i, q := range s.inst.processes[p].Requirements {
		if s.stocks[q.Resource] < q.Amount {
			return i
		}
	}
	return -1
}

// overflow returns the index of the first result of p that would overflow its
// stock once every pending result is credited, or -1. Requirements are
// assumed met.
func (s *State) overflow(p ProcessID) int {
	proc := &s.inst.processes[p]
	for i, q := range proc.Results {
		if q.Amount > math.MaxInt64-s.committed(proc, q.Resource) {
			return i
		}
	}
	return -1
}

// committed returns the stock of r after proc's requirements are debited,
// plus the results already pending for r.
func (s *State) committed(proc *Process, r ResourceID) int64 {
	have := s.stocks[r] + s.incoming[r]
	for _, q := range proc.Requirements {
		if q.Resource == r {
			have -= q.Amount
		}
	}
	return have
}

// Start advances to cycle t, then debits the requirements of p and schedules
// its completion at t + duration. On an unmet requirement it returns an
// *InsufficientStockError, and on a result that would overflow its stock a
// *StockOverflowError; either way stocks and pending are unchanged (the clock
// has still advanced to t, completions up to t have been credited).
func (s *State) Start(p ProcessID, t int64) error {
	if !s.inst.HasProcess(p) {
		return fmt.Errorf("start process %d at cycle %d: %w", p, t, ErrUnknownProcess)
	}
	if t < s.clock {
		return fmt.Errorf("start %s at cycle %d (clock %d): %w", s.inst.processes[p].Name, t, s.clock, ErrClockBackwards)
	}
	s.AdvanceTo(t)

	proc := &s.inst.processes[p]
	if i := s.unmet(p); i >= 0 {
		q := proc.Requirements[i]
		return &InsufficientStockError{
			Process:  p,
			Resource: q.Resource,
			Have:     s.stocks[q.Resource],
			Need:     q.Amount,
			Cycle:    t,
		}
	}
	if i := s.overflow(p); i >= 0 {
		q := proc.Results[i]
		return &StockOverflowError{
			Process:  p,
			Resource: q.Resource,
			Have:     s.committed(proc, q.Resource),
			Add:      q.Amount,
			Cycle:    t,
		}
	}
	for _, q := range proc.Requirements {
		s.stocks[q.Resource] -= q.Amount
	}
	for _, q := range proc.Results {
		s.incoming[q.Resource] += q.Amount
	}
	s.pending.Schedule(t+proc.Duration, p)
	s.started[p]++
	logrus.Tracef("[cycle %07d] started %s (completes at %d)", t, proc.Name, t+proc.Duration)
	return nil
}

// DrainAll completes every pending process and returns the final cycle: the
// latest completion drained, or the current cycle if nothing was pending.
// The clock is moved to the returned cycle.
func (s *State) DrainAll() int64 {
	prev := s.clock
	last, drained := s.advance(math.MaxInt64)
	if !drained || last < prev {
		last = prev
	}
	s.clock = last
	return last
}
