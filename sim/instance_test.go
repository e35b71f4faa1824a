package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceBuilder_InternsInNameOrder(t *testing.T) {
	// GIVEN processes and resources declared out of name order
	inst := buildInstance(t,
		map[string]int64{"zinc": 1, "apple": 2},
		[]testProcess{
			{"zeta", []NamedQuantity{q("zinc", 1)}, []NamedQuantity{q("mango", 1)}, 1},
			{"alpha", []NamedQuantity{q("apple", 1)}, []NamedQuantity{q("mango", 1)}, 2},
		},
		"mango")

	// THEN ids follow lexicographic name order
	assert.Equal(t, ProcessID(0), inst.ProcessByName("alpha"))
	assert.Equal(t, ProcessID(1), inst.ProcessByName("zeta"))
	assert.Equal(t, []string{"apple", "mango", "zinc"}, []string{inst.ResourceName(0), inst.ResourceName(1), inst.ResourceName(2)})
	assert.Equal(t, int64(2), inst.InitialStock(inst.Resource("apple")))
	assert.Equal(t, int64(0), inst.InitialStock(inst.Resource("mango")))
}

func TestInstanceBuilder_LookupMisses(t *testing.T) {
	inst := cakeInstance(t)
	assert.Equal(t, NoProcess, inst.ProcessByName("ghost"))
	assert.Equal(t, NoResource, inst.Resource("ghost"))
	assert.Equal(t, NoResource, inst.Resource(TimeResource))
	assert.False(t, inst.HasProcess(NoProcess))
	assert.True(t, inst.HasProcess(0))
}

func TestInstanceBuilder_DuplicateEntriesSummed(t *testing.T) {
	inst := buildInstance(t,
		map[string]int64{"a": 10},
		[]testProcess{{"p", []NamedQuantity{q("a", 1), q("a", 2)}, []NamedQuantity{q("b", 1)}, 1}},
		"b")

	p := inst.Process(inst.ProcessByName("p"))
	require.Len(t, p.Requirements, 1)
	assert.Equal(t, int64(3), p.Requirements[0].Amount)
}

func TestInstanceBuilder_LaterDeclarationWins(t *testing.T) {
	b := NewInstanceBuilder()
	require.NoError(t, b.AddStock("a", 1))
	require.NoError(t, b.AddStock("a", 7))
	require.NoError(t, b.AddProcess("p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 1))
	require.NoError(t, b.AddProcess("p", []NamedQuantity{q("a", 2)}, []NamedQuantity{q("c", 1)}, 4))
	require.NoError(t, b.SetOptimize([]string{"c"}))

	inst, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, int64(7), inst.InitialStock(inst.Resource("a")))
	assert.Equal(t, 1, inst.NumProcesses())
	p := inst.Process(0)
	assert.Equal(t, int64(4), p.Duration)
	assert.Equal(t, NoResource, inst.Resource("b"))
}

func TestInstanceBuilder_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *InstanceBuilder) error
	}{
		{"time as stock", func(b *InstanceBuilder) error { return b.AddStock("time", 1) }},
		{"negative stock", func(b *InstanceBuilder) error { return b.AddStock("a", -1) }},
		{"invalid stock name", func(b *InstanceBuilder) error { return b.AddStock("a-b", 1) }},
		{"time as requirement", func(b *InstanceBuilder) error {
			return b.AddProcess("p", []NamedQuantity{q("time", 1)}, []NamedQuantity{q("b", 1)}, 1)
		}},
		{"time as result", func(b *InstanceBuilder) error {
			return b.AddProcess("p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("time", 1)}, 1)
		}},
		{"zero quantity", func(b *InstanceBuilder) error {
			return b.AddProcess("p", []NamedQuantity{q("a", 0)}, []NamedQuantity{q("b", 1)}, 1)
		}},
		{"negative duration", func(b *InstanceBuilder) error {
			return b.AddProcess("p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, -1)
		}},
		{"invalid process name", func(b *InstanceBuilder) error {
			return b.AddProcess("", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 1)
		}},
		{"empty optimize", func(b *InstanceBuilder) error { return b.SetOptimize(nil) }},
		{"optimize twice", func(b *InstanceBuilder) error {
			if err := b.SetOptimize([]string{"a"}); err != nil {
				return nil
			}
			return b.SetOptimize([]string{"b"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.build(NewInstanceBuilder()))
		})
	}
}

func TestInstanceBuilder_BuildRequiresAllSections(t *testing.T) {
	tests := []struct {
		name     string
		stock    bool
		process  bool
		optimize bool
	}{
		{"no stocks", false, true, true},
		{"no processes", true, false, true},
		{"no optimize", true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewInstanceBuilder()
			if tt.stock {
				require.NoError(t, b.AddStock("a", 1))
			}
			if tt.process {
				require.NoError(t, b.AddProcess("p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 1))
			}
			if tt.optimize {
				require.NoError(t, b.SetOptimize([]string{"b"}))
			}
			_, err := b.Build()
			assert.Error(t, err)
		})
	}
}

func TestInstanceBuilder_OptimizeUnknownNameIsLegal(t *testing.T) {
	inst := buildInstance(t,
		map[string]int64{"a": 1},
		[]testProcess{{"p", []NamedQuantity{q("a", 1)}, []NamedQuantity{q("b", 1)}, 1}},
		"gold", "time")

	obj := inst.Objective()
	assert.Equal(t, []string{"gold", "time"}, obj.Names())
	assert.True(t, obj.OptimizeTime)
	require.Len(t, obj.Resources, 1)
	assert.Equal(t, "gold", inst.ResourceName(obj.Resources[0]))
}

func TestIsValidName(t *testing.T) {
	assert.True(t, IsValidName("buy_cake"))
	assert.True(t, IsValidName("A9"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("a b"))
	assert.False(t, IsValidName("a:b"))
}
