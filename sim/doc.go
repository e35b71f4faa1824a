// Package sim provides the discrete-time resource transformation model (KRP):
// the problem instance, the simulation kernel, the verifier and the objective.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - instance.go: interned resources and processes, InstanceBuilder
//   - state.go: the mutable State (stocks, pending completions, clock)
//   - kernel.go: AdvanceTo, Start and DrainAll, the only operations that mutate a State
//   - verifier.go: replays a trace through the kernel and returns a Verdict
//
// # Semantics
//
// Starting a process debits its requirements immediately and schedules its
// results to be credited at start + duration. Completions are drained before
// requirements are checked, so a result completing at cycle t is usable by a
// process starting at t. Stocks never go negative and the clock never moves back.
//
// # Architecture
//
// The sim package holds the model and the kernel; the rest lives in sub-packages:
//   - sim/krpfile/: config and trace file parsing, trace writing, state printing
//   - sim/schedule/: the trace synthesizer (greedy rollouts under a wall-clock budget)
//   - sim/trace/: scheduler decision records
//
// # Key Types
//
//   - Objective: total pre-order over run Outcomes derived from the optimize list
//   - Analysis: static relevance and feasibility facts used by the scheduler
//   - ProcessScorer: weighted, named scorers ranking startable processes
//   - PartitionedRNG: per-rollout deterministic random streams
package sim
