package sim

// Analysis holds static facts about an Instance that the scheduler's
// scorers and termination checks read on every selection.
// It is computed once per instance and shared read-only by all rollouts.
type Analysis struct {
	inst *Instance

	// Value[r] in [0,1]: how directly resource r feeds the objective.
	// Objective resource k has value 1/(1+k); each process hop halves it.
	Value []float64
	// Useful[p] is true when a result of p has a positive Value.
	Useful []bool
	// ConsumesObjective[p] is true when p requires an objective resource.
	ConsumesObjective []bool
	// Lossy[p] is true when the first objective resource p changes, in
	// priority order, decreases.
	Lossy []bool
	// Producers[r] lists the processes with r among their results.
	Producers [][]ProcessID

	MinDuration int64
	MaxDuration int64
}

// Analyze computes the static Analysis of inst.
func Analyze(inst *Instance) *Analysis {
	nr, np := inst.NumResources(), inst.NumProcesses()
	a := &Analysis{
		inst:              inst,
		Value:             make([]float64, nr),
		Useful:            make([]bool, np),
		ConsumesObjective: make([]bool, np),
		Lossy:             make([]bool, np),
		Producers:         make([][]ProcessID, nr),
	}

	obj := inst.Objective()
	for k, r := range obj.Resources {
		v := 1.0 / float64(1+k)
		if v > a.Value[r] {
			a.Value[r] = v
		}
	}

	// Backward relaxation: a requirement of a process is worth half of the
	// best result it helps produce. Going around a cycle only halves a value,
	// so nr rounds suffice.
	for round := 0; round < nr+1; round++ {
		changed := false
		for i := range inst.processes {
			p := &inst.processes[i]
			best := 0.0
			for _, q := range p.Results {
				if a.Value[q.Resource] > best {
					best = a.Value[q.Resource]
				}
			}
			if best == 0 {
				continue
			}
			for _, q := range p.Requirements {
				if half := best / 2; half > a.Value[q.Resource] {
					a.Value[q.Resource] = half
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	for i := range inst.processes {
		p := &inst.processes[i]
		for _, q := range p.Results {
			a.Producers[q.Resource] = append(a.Producers[q.Resource], p.ID)
			if a.Value[q.Resource] > 0 {
				a.Useful[i] = true
			}
		}
		for _, q := range p.Requirements {
			if obj.Priority(q.Resource) >= 0 {
				a.ConsumesObjective[i] = true
			}
		}
		a.Lossy[i] = objectiveDelta(obj, p) < 0
		if i == 0 || p.Duration < a.MinDuration {
			a.MinDuration = p.Duration
		}
		if i == 0 || p.Duration > a.MaxDuration {
			a.MaxDuration = p.Duration
		}
	}
	return a
}

// objectiveDelta returns the sign of the net change p makes to the objective
// resources, compared in priority order.
func objectiveDelta(obj Objective, p *Process) int {
	for _, r := range obj.Resources {
		var d int64
		for _, q := range p.Results {
			if q.Resource == r {
				d += q.Amount
			}
		}
		for _, q := range p.Requirements {
			if q.Resource == r {
				d -= q.Amount
			}
		}
		if d > 0 {
			return 1
		}
		if d < 0 {
			return -1
		}
	}
	return 0
}

// Instance returns the analyzed instance.
func (a *Analysis) Instance() *Instance { return a.inst }

// AnyUseful reports whether at least one process contributes to the objective.
func (a *Analysis) AnyUseful() bool {
	for _, u := range a.Useful {
		if u {
			return true
		}
	}
	return false
}

// Feasible returns, per process, whether its requirements can ever be met
// from the current stocks, the pending results, and the results of other
// feasible processes. It over-approximates: a process reported infeasible
// can never start again in this run.
func (a *Analysis) Feasible(s *State) []bool {
	nr, np := a.inst.NumResources(), a.inst.NumProcesses()
	available := s.Stocks()
	for _, c := range s.pending.items {
		for _, q := range a.inst.processes[c.Process].Results {
			available[q.Resource] += q.Amount
		}
	}
	producible := make([]bool, nr)
	feasible := make([]bool, np)
	for changed := true; changed; {
		changed = false
		for i := range a.inst.processes {
			if feasible[i] {
				continue
			}
			ok := true
			for _, q := range a.inst.processes[i].Requirements {
				if available[q.Resource] < q.Amount && !producible[q.Resource] {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			feasible[i] = true
			changed = true
			for _, q := range a.inst.processes[i].Results {
				producible[q.Resource] = true
			}
		}
	}
	return feasible
}

// DeadState reports whether no useful process can ever start again from s.
func (a *Analysis) DeadState(s *State) bool {
	for p, ok := range a.Feasible(s) {
		if ok && a.Useful[p] {
			return false
		}
	}
	return true
}
