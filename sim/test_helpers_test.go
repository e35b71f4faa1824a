package sim

import (
	"testing"
)

// q is shorthand for a NamedQuantity in test instance definitions.
func q(name string, amount int64) NamedQuantity {
	return NamedQuantity{Name: name, Amount: amount}
}

type testProcess struct {
	name     string
	reqs     []NamedQuantity
	results  []NamedQuantity
	duration int64
}

// buildInstance builds an instance from literal stocks, processes and optimize list.
func buildInstance(t *testing.T, stocks map[string]int64, procs []testProcess, optimize ...string) *Instance {
	t.Helper()
	b := NewInstanceBuilder()
	for name, qty := range stocks {
		if err := b.AddStock(name, qty); err != nil {
			t.Fatalf("AddStock(%s): %v", name, err)
		}
	}
	for _, p := range procs {
		if err := b.AddProcess(p.name, p.reqs, p.results, p.duration); err != nil {
			t.Fatalf("AddProcess(%s): %v", p.name, err)
		}
	}
	if err := b.SetOptimize(optimize); err != nil {
		t.Fatalf("SetOptimize: %v", err)
	}
	inst, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return inst
}

// cakeInstance: euro:10; buy_cake:(euro:5):(cake:1):1; optimize:(cake)
func cakeInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"euro": 10},
		[]testProcess{{"buy_cake", []NamedQuantity{q("euro", 5)}, []NamedQuantity{q("cake", 1)}, 1}},
		"cake")
}

// parallelInstance: a:4; p:(a:1):(b:1):3; optimize:(b)
func parallelInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"a": 4},
		[]testProcess{{"p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 3}},
		"b")
}

// houseInstance: wood:10; chop and build; optimize:(time;house)
func houseInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"wood": 10},
		[]testProcess{
			{"chop", []NamedQuantity{q("wood", 2)}, []NamedQuantity{q("plank", 1)}, 1},
			{"build", []NamedQuantity{q("plank", 3)}, []NamedQuantity{q("house", 1)}, 2},
		},
		"time", "house")
}

// shortageInstance: euro:3; buy:(euro:5):(cake:1):1; optimize:(cake)
func shortageInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"euro": 3},
		[]testProcess{{"buy", []NamedQuantity{q("euro", 5)}, []NamedQuantity{q("cake", 1)}, 1}},
		"cake")
}

// timingInstance: a:1; p1:(a:1):(b:1):5; p2:(b:1):(c:1):1; optimize:(c)
func timingInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"a": 1},
		[]testProcess{
			{"p1", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 5},
			{"p2", []NamedQuantity{q("b", 1)}, []NamedQuantity{q("c", 1)}, 1},
		},
		"c")
}

// entries builds name-based trace entries from alternating cycle/name pairs.
func entries(pairs ...any) []TraceEntry {
	out := make([]TraceEntry, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, TraceEntry{Cycle: int64(pairs[i].(int)), Name: pairs[i+1].(string), Line: i/2 + 1})
	}
	return out
}

// stockOf returns the current stock of the named resource.
func stockOf(t *testing.T, s *State, name string) int64 {
	t.Helper()
	r := s.Instance().Resource(name)
	if r == NoResource {
		t.Fatalf("unknown resource %q", name)
	}
	return s.Stock(r)
}

// totalOf returns stock plus pending results of the named resource.
func totalOf(t *testing.T, s *State, name string) int64 {
	t.Helper()
	r := s.Instance().Resource(name)
	total := s.Stock(r)
	for _, c := range s.Pending() {
		for _, res := range s.Instance().Process(c.Process).Results {
			if res.Resource == r {
				total += res.Amount
			}
		}
	}
	return total
}

// hugeResultInstance: a:1; p:(a:1):(a:9000000000000000000):1; optimize:(a)
// Two completions of p exceed the int64 range of a.
func hugeResultInstance(t *testing.T) *Instance {
	return buildInstance(t,
		map[string]int64{"a": 1},
		[]testProcess{{"p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("a", 9000000000000000000)}, 1}},
		"a")
}
