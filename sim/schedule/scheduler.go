// Package schedule synthesizes execution traces for a KRP instance.
//
// The scheduler runs greedy rollouts through the simulation kernel in rounds
// under a wall-clock budget and keeps the one the instance's objective ranks
// best. A new round starts only while budget remains and the last round
// improved the best outcome. Legality is decided only by the kernel, so every
// trace it returns is accepted by sim.Verify with the same last cycle.
//
// Rollout policies, by index:
//   - 0: deterministic greedy, skipping processes that lose objective resources
//   - 1: deterministic greedy over every useful process
//   - k ≥ 2: greedy with scores perturbed by rollout k's RNG stream; even k
//     skip lossy processes, odd k do not
//
// Rollouts fan out over Config.Workers goroutines. Each owns its State and its
// RNG; the Instance, Analysis and ProcessScorer are shared read-only. The final
// reduction picks the best Outcome, ties going to the lowest rollout index, so
// the result does not depend on the number of workers. Rounds are sequential,
// so the set of rollouts that runs is fixed as long as the budget holds.
package schedule

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/trace"
)

// Result is the outcome of a scheduler run.
type Result struct {
	Trace      sim.Trace
	LastCycle  int64
	State      *sim.State // final state of the winning rollout
	Outcome    sim.Outcome
	Rollout    int        // index of the winning rollout
	Rollouts   int        // rollouts that ran
	StopReason StopReason // why the winning rollout stopped
	Elapsed    time.Duration

	// Decisions holds the decision records of every rollout in index order;
	// nil unless the trace level is "decisions".
	Decisions *trace.SimulationTrace
}

// Scheduler produces traces for one instance.
type Scheduler struct {
	inst     *sim.Instance
	cfg      Config
	analysis *sim.Analysis
	scorer   *sim.ProcessScorer
	metrics  *Metrics
}

// New validates cfg and prepares a scheduler for inst.
func New(inst *sim.Instance, cfg Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := sim.Analyze(inst)
	return &Scheduler{
		inst:     inst,
		cfg:      cfg,
		analysis: a,
		scorer:   sim.NewProcessScorer(a, cfg.Scorers),
		metrics:  NewMetrics(),
	}, nil
}

// Metrics returns the run statistics collected so far.
func (s *Scheduler) Metrics() *Metrics { return s.metrics }

// Analysis returns the static analysis of the instance.
func (s *Scheduler) Analysis() *sim.Analysis { return s.analysis }

// newRollout builds rollout k. It must be called from the Run goroutine,
// which owns rng.
func (s *Scheduler) newRollout(k int, rng *sim.PartitionedRNG, budget *Budget) *rollout {
	r := &rollout{
		index:       k,
		analysis:    s.analysis,
		scorer:      s.scorer,
		temperature: s.cfg.Temperature,
		avoidLossy:  k%2 == 0,
		maxCycle:    s.cfg.MaxCycle,
		maxEvents:   s.cfg.MaxEvents,
		maxBytes:    s.cfg.MaxTraceBytes,
		budget:      budget,
		traceCfg:    s.cfg.TraceConfig(),
	}
	if k >= 2 && s.cfg.Temperature > 0 {
		r.rng = rng.ForSubsystem(sim.SubsystemRollout(k))
	}
	return r
}

// Run executes rollouts in rounds of Config.Rollouts until the budget is
// exhausted, MaxRollouts is reached, or a round after the first fails to
// improve the best outcome, and returns the best trace seen. Rollout 0 always
// runs; on an exhausted budget it stops before its first event and yields the
// empty trace. Cancelling ctx behaves like an exhausted budget.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	budget := NewBudget(ctx, s.cfg.Budget)
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(s.cfg.Seed))
	limit := max(s.cfg.Rollouts, s.cfg.MaxRollouts)
	var results []*rolloutResult
	var best *rolloutResult

	for round := 0; len(results) < limit; round++ {
		if round > 0 && budget.Exhausted() {
			break
		}
		n := min(s.cfg.Rollouts, limit-len(results))
		batch, err := s.runRound(len(results), n, rng, budget)
		if err != nil {
			return nil, err
		}
		results = append(results, batch...)

		improved := false
		for _, r := range batch {
			if r != nil && (best == nil || s.inst.Objective().Better(r.outcome, best.outcome)) {
				best, improved = r, true
			}
		}
		if round > 0 && !improved {
			logrus.Debugf("round %d did not improve the best outcome, stopping after %d rollouts", round, len(results))
			break
		}
	}

	res := s.reduce(results)
	res.Elapsed = budget.Elapsed()
	s.metrics.observeBest(res)
	logrus.Infof("scheduler: %d rollouts in %v, best is rollout %d (%d events, last cycle %d, stopped: %s)",
		res.Rollouts, res.Elapsed.Round(time.Millisecond), res.Rollout, len(res.Trace), res.LastCycle, res.StopReason)
	return res, nil
}

// runRound runs rollouts first..first+n-1 over the worker pool. Entries of
// rollouts skipped on an exhausted budget stay nil; the first one always runs.
func (s *Scheduler) runRound(first, n int, rng *sim.PartitionedRNG, budget *Budget) ([]*rolloutResult, error) {
	rollouts := make([]*rollout, n)
	for i := range rollouts {
		rollouts[i] = s.newRollout(first+i, rng, budget)
	}
	results := make([]*rolloutResult, n)

	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, r := range rollouts {
		if i > 0 && budget.Exhausted() {
			logrus.Debugf("budget exhausted after launching %d of %d rollouts", first+i, first+n)
			break
		}
		i, r := i, r
		g.Go(func() error {
			res := r.run()
			results[i] = res
			s.metrics.observeRollout(res)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// reduce picks the best result by objective; ties go to the lowest index.
func (s *Scheduler) reduce(results []*rolloutResult) *Result {
	obj := s.inst.Objective()
	var best *rolloutResult
	ran := 0
	var decisions *trace.SimulationTrace
	if s.cfg.TraceConfig().Enabled() {
		decisions = trace.NewSimulationTrace(s.cfg.TraceConfig())
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		ran++
		if decisions != nil {
			decisions.Merge(r.decisions)
		}
		if best == nil || obj.Better(r.outcome, best.outcome) {
			best = r
		}
	}
	return &Result{
		Trace:      best.trace,
		LastCycle:  best.lastCycle,
		State:      best.state,
		Outcome:    best.outcome,
		Rollout:    best.index,
		Rollouts:   ran,
		StopReason: best.reason,
		Decisions:  decisions,
	}
}
