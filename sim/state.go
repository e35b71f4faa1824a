package sim

import "fmt"

// State is the mutable simulation state of one run: stocks, pending
// completions and the discrete clock.
// A State is exclusively owned by its simulator and may only be mutated
// through the kernel operations (AdvanceTo, Start, DrainAll).
//
// Thread-safety: NOT thread-safe. Each rollout owns its own State.
type State struct {
	inst      *Instance
	stocks    []int64 // indexed by ResourceID; 0 means absent
	pending   *PendingHeap
	incoming  []int64 // pending results per ResourceID; stocks[r]+incoming[r] never overflows
	clock     int64
	started   []int64 // per ProcessID
	completed []int64 // per ProcessID
}

// NewState creates the initial State of inst: initial stocks, nothing pending, cycle 0.
func NewState(inst *Instance) *State {
	s := &State{
		inst:      inst,
		stocks:    make([]int64, inst.NumResources()),
		pending:   NewPendingHeap(),
		incoming:  make([]int64, inst.NumResources()),
		clock:     0,
		started:   make([]int64, inst.NumProcesses()),
		completed: make([]int64, inst.NumProcesses()),
	}
	copy(s.stocks, inst.initial)
	return s
}

// Instance returns the instance this state simulates.
func (s *State) Instance() *Instance { return s.inst }

// Clock returns the current cycle.
func (s *State) Clock() int64 { return s.clock }

// Stock returns the current quantity of resource r.
func (s *State) Stock(r ResourceID) int64 { return s.stocks[r] }

// Stocks returns a copy of the current stocks indexed by ResourceID.
func (s *State) Stocks() []int64 { return append([]int64(nil), s.stocks...) }

// PendingLen returns the number of started processes not yet completed.
func (s *State) PendingLen() int { return s.pending.Len() }

// Pending returns the pending completions in drain order.
func (s *State) Pending() []Completion { return s.pending.Sorted() }

// NextCompletion returns the earliest pending completion cycle.
func (s *State) NextCompletion() (int64, bool) {
	c, ok := s.pending.Peek()
	return c.Cycle, ok
}

// Started returns how many copies of p have been started.
func (s *State) Started(p ProcessID) int64 { return s.started[p] }

// Completed returns how many copies of p have completed.
func (s *State) Completed(p ProcessID) int64 { return s.completed[p] }

// Running returns how many copies of p are in flight.
func (s *State) Running(p ProcessID) int64 { return s.started[p] - s.completed[p] }

// Outcome snapshots the stocks together with lastCycle for objective ranking.
func (s *State) Outcome(lastCycle int64) Outcome {
	return Outcome{Stocks: s.Stocks(), LastCycle: lastCycle}
}

// Clone returns an independent deep copy sharing only the immutable Instance.
func (s *State) Clone() *State {
	return &State{
		inst:      s.inst,
		stocks:    append([]int64(nil), s.stocks...),
		pending:   s.pending.clone(),
		incoming:  append([]int64(nil), s.incoming...),
		clock:     s.clock,
		started:   append([]int64(nil), s.started...),
		completed: append([]int64(nil), s.completed...),
	}
}

func (s *State) String() string {
	return fmt.Sprintf("State: (Clock: %d, Stocks: %v, Pending: %d)", s.clock, s.stocks, s.pending.Len())
}
