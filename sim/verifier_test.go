package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		inst       func(*testing.T) *Instance
		trace      []TraceEntry
		wantOK     bool
		wantCycle  int64
		wantKind   RejectKind
		wantString string
		wantStocks map[string]int64
	}{
		{
			name:       "trivial cake",
			inst:       cakeInstance,
			trace:      entries(0, "buy_cake", 1, "buy_cake"),
			wantOK:     true,
			wantCycle:  2,
			wantString: "OK at cycle 2",
			wantStocks: map[string]int64{"euro": 0, "cake": 2},
		},
		{
			name:       "parallel copies",
			inst:       parallelInstance,
			trace:      entries(0, "p", 0, "p", 0, "p", 0, "p"),
			wantOK:     true,
			wantCycle:  3,
			wantString: "OK at cycle 3",
			wantStocks: map[string]int64{"a": 0, "b": 4},
		},
		{
			name:       "house by cycle 3",
			inst:       houseInstance,
			trace:      entries(0, "chop", 0, "chop", 0, "chop", 1, "build"),
			wantOK:     true,
			wantCycle:  3,
			wantString: "OK at cycle 3",
			wantStocks: map[string]int64{"wood": 4, "plank": 0, "house": 1},
		},
		{
			name:       "shortage",
			inst:       shortageInstance,
			trace:      entries(0, "buy"),
			wantCycle:  0,
			wantKind:   RejectInsufficientStock,
			wantString: "KO at cycle 0: buy",
			wantStocks: map[string]int64{"euro": 3},
		},
		{
			name:       "unknown process",
			inst:       cakeInstance,
			trace:      entries(0, "buy_cake", 4, "ghost"),
			wantCycle:  4,
			wantKind:   RejectUnknownProcess,
			wantString: "KO at cycle 4: ghost",
			wantStocks: map[string]int64{"euro": 5, "cake": 0},
		},
		{
			name:       "result used at completion cycle",
			inst:       timingInstance,
			trace:      entries(0, "p1", 5, "p2"),
			wantOK:     true,
			wantCycle:  6,
			wantString: "OK at cycle 6",
			wantStocks: map[string]int64{"a": 0, "b": 0, "c": 1},
		},
		{
			name:       "result used before completion",
			inst:       timingInstance,
			trace:      entries(0, "p1", 4, "p2"),
			wantCycle:  4,
			wantKind:   RejectInsufficientStock,
			wantString: "KO at cycle 4: p2",
			wantStocks: map[string]int64{"a": 0, "b": 0},
		},
		{
			name:       "empty trace",
			inst:       cakeInstance,
			trace:      nil,
			wantOK:     true,
			wantCycle:  0,
			wantString: "OK at cycle 0",
			wantStocks: map[string]int64{"euro": 10},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN the instance and a name-based trace
			inst := tt.inst(t)

			// WHEN the trace is verified
			v := Verify(inst, tt.trace)

			// THEN the verdict and the final stocks match
			require.NotNil(t, v.State)
			assert.Equal(t, tt.wantOK, v.Accepted)
			assert.Equal(t, tt.wantCycle, v.Cycle())
			assert.Equal(t, tt.wantString, v.String())
			if !tt.wantOK {
				require.NotNil(t, v.Err)
				assert.Equal(t, tt.wantKind, v.Err.Kind)
			} else {
				assert.Nil(t, v.Err)
			}
			for name, want := range tt.wantStocks {
				assert.Equal(t, want, stockOf(t, v.State, name), "stock of %s", name)
			}
		})
	}
}

func TestVerify_SortsByCycle_WithoutModifyingInput(t *testing.T) {
	// GIVEN a valid trace written out of order
	inst := timingInstance(t)
	trace := entries(5, "p2", 0, "p1")

	// WHEN verified
	v := Verify(inst, trace)

	// THEN it is accepted and the caller's slice keeps its order
	assert.True(t, v.Accepted)
	assert.Equal(t, int64(6), v.LastCycle)
	assert.Equal(t, "p2", trace[0].Name)
}

func TestVerify_SameCycleEntriesKeepSuppliedOrder(t *testing.T) {
	// GIVEN zero-duration x produces what y needs
	inst := buildInstance(t,
		map[string]int64{"a": 1},
		[]testProcess{
			{"x", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 0},
			{"y", []NamedQuantity{q("b", 1)}, []NamedQuantity{q("c", 1)}, 0},
		},
		"c")

	// WHEN the same-cycle entries appear in producer-first or consumer-first order
	ok := Verify(inst, entries(0, "x", 0, "y"))
	ko := Verify(inst, entries(0, "y", 0, "x"))

	// THEN only the producer-first order is legal
	assert.True(t, ok.Accepted)
	assert.Equal(t, int64(0), ok.LastCycle)
	assert.False(t, ko.Accepted)
	assert.Equal(t, "KO at cycle 0: y", ko.String())
}

func TestVerify_RejectErrorUnwrapsKernelError(t *testing.T) {
	inst := shortageInstance(t)

	v := Verify(inst, entries(2, "buy"))

	require.NotNil(t, v.Err)
	var ise *InsufficientStockError
	assert.True(t, errors.As(v.Err, &ise))
	assert.Equal(t, int64(5), ise.Need)
	assert.Equal(t, 1, v.Err.Line)
	assert.Contains(t, v.Err.Error(), "insufficient-stock")
}

func TestVerify_StopsAtFirstRejection(t *testing.T) {
	inst := cakeInstance(t)

	v := Verify(inst, entries(0, "ghost", 1, "buy_cake"))

	assert.Equal(t, "KO at cycle 0: ghost", v.String())
	assert.Equal(t, int64(10), stockOf(t, v.State, "euro"))
}

func TestVerifyTrace_IDBasedTrace(t *testing.T) {
	inst := cakeInstance(t)
	buy := inst.ProcessByName("buy_cake")

	v := VerifyTrace(inst, Trace{{Cycle: 0, Process: buy}, {Cycle: 0, Process: buy}})

	assert.True(t, v.Accepted)
	assert.Equal(t, int64(1), v.LastCycle)

	bad := VerifyTrace(inst, Trace{{Cycle: 0, Process: 42}})
	assert.False(t, bad.Accepted)
	assert.Equal(t, RejectUnknownProcess, bad.Err.Kind)
}

func TestTrace_Entries(t *testing.T) {
	inst := houseInstance(t)
	tr := Trace{{Cycle: 0, Process: inst.ProcessByName("chop")}, {Cycle: 1, Process: inst.ProcessByName("build")}}

	got := tr.Entries(inst)

	assert.Equal(t, []TraceEntry{{Cycle: 0, Name: "chop"}, {Cycle: 1, Name: "build"}}, got)
}

func TestVerify_ResultOverflow_Rejected(t *testing.T) {
	// GIVEN a trace whose second start would wrap the stock of a
	inst := hugeResultInstance(t)

	// WHEN verified
	v := Verify(inst, entries(0, "p", 1, "p"))

	// THEN it is rejected at the second start and no stock went negative
	require.False(t, v.Accepted)
	assert.Equal(t, RejectStockOverflow, v.Err.Kind)
	assert.Equal(t, "KO at cycle 1: p", v.String())
	var soe *StockOverflowError
	assert.True(t, errors.As(v.Err, &soe))
	assert.Equal(t, int64(9000000000000000000), stockOf(t, v.State, "a"))
}
