package schedule

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/krpfile"
	"github.com/krpsim/krpsim/sim/trace"
)

// StopReason records why a rollout stopped emitting events.
type StopReason string

const (
	StopIdle         StopReason = "idle"          // nothing startable and nothing pending
	StopDeadState    StopReason = "dead-state"    // no useful process can ever start again
	StopBudget       StopReason = "budget"        // wall-clock budget exhausted
	StopCycleCeiling StopReason = "cycle-ceiling" // next completion beyond MaxCycle
	StopEventCeiling StopReason = "event-ceiling" // MaxEvents starts emitted
	StopTraceSize    StopReason = "trace-size"    // another line could push the encoded trace past MaxTraceBytes
)

// rollout is one greedy pass over the instance. Rollout 0 is deterministic
// greedy; later rollouts perturb scores with their own RNG stream.
type rollout struct {
	index       int
	analysis    *sim.Analysis
	scorer      *sim.ProcessScorer
	rng         *rand.Rand // nil: no perturbation
	temperature float64
	avoidLossy  bool
	maxCycle    int64
	maxEvents   int
	maxBytes    int // encoded trace cap, 0 for none
	budget      *Budget
	traceCfg    trace.TraceConfig
}

type rolloutResult struct {
	index     int
	trace     sim.Trace
	lastCycle int64
	state     *sim.State
	outcome   sim.Outcome
	reason    StopReason
	decisions *trace.SimulationTrace
	elapsed   time.Duration
}

// candidates returns the processes this rollout may start, in id order.
func (r *rollout) candidates() []sim.ProcessID {
	var out []sim.ProcessID
	for i, useful := range r.analysis.Useful {
		if !useful || (r.avoidLossy && r.analysis.Lossy[i]) {
			continue
		}
		out = append(out, sim.ProcessID(i))
	}
	return out
}

// run executes the rollout. Every event goes through the kernel, so the
// returned trace is accepted by the verifier with the same last cycle.
func (r *rollout) run() *rolloutResult {
	start := time.Now()
	inst := r.analysis.Instance()
	state := sim.NewState(inst)
	var rec *trace.SimulationTrace
	if r.traceCfg.Enabled() {
		rec = trace.NewSimulationTrace(r.traceCfg)
	}

	cands := r.candidates()
	longest := 0
	for _, p := range cands {
		longest = max(longest, len(inst.Process(p).Name))
	}
	size := krpfile.MaxSummaryLineSize
	var tr sim.Trace
	reason := StopIdle
	if len(cands) == 0 {
		reason = StopDeadState
	}

	for len(cands) > 0 {
		if r.budget.Exhausted() {
			reason = StopBudget
			break
		}
		if len(tr) >= r.maxEvents {
			reason = StopEventCeiling
			break
		}
		if r.maxBytes > 0 && size+krpfile.EventLineSize(state.Clock(), "")+longest > r.maxBytes {
			reason = StopTraceSize
			break
		}
		if p, ok := r.choose(state, cands, rec); ok {
			now := state.Clock()
			if err := state.Start(p, now); err != nil {
				panic(fmt.Sprintf("rollout %d: kernel refused %s at cycle %d after CanStart: %v",
					r.index, inst.Process(p).Name, now, err))
			}
			tr = append(tr, sim.TraceEvent{Cycle: now, Process: p})
			size += krpfile.EventLineSize(now, inst.Process(p).Name)
			continue
		}

		next, pending := state.NextCompletion()
		if !pending {
			reason = StopIdle
			break
		}
		if next > r.maxCycle {
			reason = StopCycleCeiling
			break
		}
		state.AdvanceTo(next)
		if r.analysis.DeadState(state) {
			reason = StopDeadState
			break
		}
	}

	stopCycle := state.Clock()
	last := state.DrainAll()
	if rec != nil {
		rec.RecordTermination(trace.TerminationRecord{Rollout: r.index, Cycle: stopCycle, Reason: string(reason), Events: len(tr)})
	}
	logrus.Debugf("rollout %d: %d events, stopped (%s) at cycle %d, last cycle %d",
		r.index, len(tr), reason, stopCycle, last)

	return &rolloutResult{
		index:     r.index,
		trace:     tr,
		lastCycle: last,
		state:     state,
		outcome:   state.Outcome(last),
		reason:    reason,
		decisions: rec,
		elapsed:   time.Since(start),
	}
}

type scored struct {
	p     sim.ProcessID
	base  float64
	noisy float64
}

// choose picks the startable candidate with the highest (perturbed) score.
// Ties go to the lowest ProcessID, i.e. the lexicographically first name.
func (r *rollout) choose(state *sim.State, cands []sim.ProcessID, rec *trace.SimulationTrace) (sim.ProcessID, bool) {
	var startable []scored
	best := -1
	for _, p := range cands {
		if !state.CanStart(p) {
			continue
		}
		base := r.scorer.Score(state, p)
		s := scored{p: p, base: base, noisy: base}
		if r.rng != nil {
			s.noisy += r.temperature * r.rng.Float64()
		}
		startable = append(startable, s)
		if best < 0 || s.noisy > startable[best].noisy {
			best = len(startable) - 1
		}
	}
	if best < 0 {
		return sim.NoProcess, false
	}
	chosen := startable[best]
	if rec != nil {
		r.record(rec, state, startable, chosen)
	}
	return chosen.p, true
}

func (r *rollout) record(rec *trace.SimulationTrace, state *sim.State, startable []scored, chosen scored) {
	inst := r.analysis.Instance()
	maxBase := chosen.base
	for _, s := range startable {
		if s.base > maxBase {
			maxBase = s.base
		}
	}
	var cands []trace.CandidateScore
	if k := rec.Config.CounterfactualK; k > 0 {
		sorted := append([]scored(nil), startable...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].base > sorted[j].base })
		if len(sorted) > k {
			sorted = sorted[:k]
		}
		cands = make([]trace.CandidateScore, len(sorted))
		for i, s := range sorted {
			cands[i] = trace.CandidateScore{Process: inst.Process(s.p).Name, Score: s.base}
		}
	}
	rec.RecordSelection(trace.SelectionRecord{
		Rollout:    r.index,
		Cycle:      state.Clock(),
		Process:    inst.Process(chosen.p).Name,
		Score:      chosen.base,
		Candidates: cands,
		Regret:     maxBase - chosen.base,
	})
}
