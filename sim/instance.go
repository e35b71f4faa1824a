package sim

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/sirupsen/logrus"
)

// TimeResource is the reserved optimize-list token selecting the minimize-cycles objective.
// It never names a stock and is never produced or consumed by a process.
const TimeResource = "time"

// ResourceID is the dense interned index of a resource name.
type ResourceID int

// ProcessID is the dense interned index of a process name.
// Process ids are assigned in lexicographic name order, so comparing ids
// compares names.
type ProcessID int

// NoProcess is returned by lookups for names absent from the instance.
const NoProcess ProcessID = -1

// NoResource is returned by lookups for names absent from the instance.
const NoResource ResourceID = -1

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// IsValidName returns true if s is a legal resource or process name.
func IsValidName(s string) bool { return namePattern.MatchString(s) }

// Quantity is an amount of one resource.
type Quantity struct {
	Resource ResourceID
	Amount   int64
}

// Process is an immutable transformation: requirements are debited when it
// starts, results are credited Duration cycles later.
type Process struct {
	ID           ProcessID
	Name         string
	Requirements []Quantity // sorted by Resource, no duplicates, all Amount > 0
	Results      []Quantity // sorted by Resource, no duplicates, all Amount > 0
	Duration     int64
}

// Instance is the parsed, immutable problem definition.
// It is shared read-only by every simulator, verifier and scheduler rollout.
type Instance struct {
	resources []string
	resIndex  map[string]ResourceID
	processes []Process
	procIndex map[string]ProcessID
	initial   []int64
	objective Objective
}

// NumResources returns the number of interned resources.
func (inst *Instance) NumResources() int { return len(inst.resources) }

// NumProcesses returns the number of processes.
func (inst *Instance) NumProcesses() int { return len(inst.processes) }

// ResourceName returns the name of resource r.
func (inst *Instance) ResourceName(r ResourceID) string { return inst.resources[r] }

// Resource looks up a resource by name, returning NoResource if absent.
func (inst *Instance) Resource(name string) ResourceID {
	if id, ok := inst.resIndex[name]; ok {
		return id
	}
	return NoResource
}

// Process returns the process with id p. The returned pointer must not be modified.
func (inst *Instance) Process(p ProcessID) *Process { return &inst.processes[p] }

// Processes returns the process table in id order. Callers MUST NOT modify it.
func (inst *Instance) Processes() []Process { return inst.processes }

// ProcessByName looks up a process by name, returning NoProcess if absent.
func (inst *Instance) ProcessByName(name string) ProcessID {
	if id, ok := inst.procIndex[name]; ok {
		return id
	}
	return NoProcess
}

// HasProcess returns true if p resolves in the process table.
func (inst *Instance) HasProcess(p ProcessID) bool {
	return p >= 0 && int(p) < len(inst.processes)
}

// InitialStock returns the initial quantity of resource r.
func (inst *Instance) InitialStock(r ResourceID) int64 { return inst.initial[r] }

// Objective returns the declared optimization target.
func (inst *Instance) Objective() Objective { return inst.objective }

// InstanceBuilder accumulates stocks, processes and the optimize list, then
// interns every name into dense ids on Build.
type InstanceBuilder struct {
	stocks    map[string]int64
	processes map[string]processDecl
	optimize  []string
	hasOpt    bool
}

type processDecl struct {
	requirements map[string]int64
	results      map[string]int64
	duration     int64
}

// NamedQuantity is a (resource name, amount) pair as written in a config file.
type NamedQuantity struct {
	Name   string
	Amount int64
}

// NewInstanceBuilder creates an empty builder.
func NewInstanceBuilder() *InstanceBuilder {
	return &InstanceBuilder{
		stocks:    make(map[string]int64),
		processes: make(map[string]processDecl),
	}
}

// AddStock declares an initial stock. A later declaration of the same name replaces the earlier one.
func (b *InstanceBuilder) AddStock(name string, qty int64) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid stock name %q", name)
	}
	if name == TimeResource {
		return fmt.Errorf("stock name %q is reserved", name)
	}
	if qty < 0 {
		return fmt.Errorf("stock %q has negative quantity %d", name, qty)
	}
	b.stocks[name] = qty
	return nil
}

// AddProcess declares a process. Repeated resources in one list are summed.
// A later declaration of the same name replaces the earlier one.
func (b *InstanceBuilder) AddProcess(name string, requirements, results []NamedQuantity, duration int64) error {
	if !IsValidName(name) {
		return fmt.Errorf("invalid process name %q", name)
	}
	if duration < 0 {
		return fmt.Errorf("process %q has negative duration %d", name, duration)
	}
	reqs, err := mergeQuantities(name, requirements)
	if err != nil {
		return err
	}
	res, err := mergeQuantities(name, results)
	if err != nil {
		return err
	}
	if _, dup := b.processes[name]; dup {
		logrus.Warnf("process %q declared more than once; keeping the last declaration", name)
	}
	b.processes[name] = processDecl{requirements: reqs, results: res, duration: duration}
	return nil
}

func mergeQuantities(process string, list []NamedQuantity) (map[string]int64, error) {
	out := make(map[string]int64, len(list))
	for _, q := range list {
		if !IsValidName(q.Name) {
			return nil, fmt.Errorf("process %q: invalid resource name %q", process, q.Name)
		}
		if q.Name == TimeResource {
			return nil, fmt.Errorf("process %q: resource name %q is reserved", process, q.Name)
		}
		if q.Amount <= 0 {
			return nil, fmt.Errorf("process %q: quantity of %q must be positive, got %d", process, q.Name, q.Amount)
		}
		out[q.Name] += q.Amount
	}
	return out, nil
}

// SetOptimize declares the optimize list. It may be called only once.
func (b *InstanceBuilder) SetOptimize(names []string) error {
	if b.hasOpt {
		return fmt.Errorf("optimize declared more than once")
	}
	if len(names) == 0 {
		return fmt.Errorf("optimize list is empty")
	}
	for _, n := range names {
		if !IsValidName(n) {
			return fmt.Errorf("invalid optimize name %q", n)
		}
	}
	b.optimize = append([]string(nil), names...)
	b.hasOpt = true
	return nil
}

// Build interns all names and returns the immutable Instance.
// It requires at least one stock, at least one process and an optimize list.
func (b *InstanceBuilder) Build() (*Instance, error) {
	if len(b.stocks) == 0 {
		return nil, fmt.Errorf("instance has no stocks")
	}
	if len(b.processes) == 0 {
		return nil, fmt.Errorf("instance has no processes")
	}
	if !b.hasOpt {
		return nil, fmt.Errorf("instance has no optimize line")
	}

	nameSet := make(map[string]struct{})
	for n := range b.stocks {
		nameSet[n] = struct{}{}
	}
	for _, p := range b.processes {
		for n := range p.requirements {
			nameSet[n] = struct{}{}
		}
		for n := range p.results {
			nameSet[n] = struct{}{}
		}
	}
	for _, n := range b.optimize {
		if n != TimeResource {
			nameSet[n] = struct{}{}
		}
	}

	inst := &Instance{
		resources: sortedKeys(nameSet),
		resIndex:  make(map[string]ResourceID, len(nameSet)),
		procIndex: make(map[string]ProcessID, len(b.processes)),
	}
	for i, n := range inst.resources {
		inst.resIndex[n] = ResourceID(i)
	}
	inst.initial = make([]int64, len(inst.resources))
	for n, q := range b.stocks {
		inst.initial[inst.resIndex[n]] = q
	}

	procNames := make([]string, 0, len(b.processes))
	for n := range b.processes {
		procNames = append(procNames, n)
	}
	sort.Strings(procNames)
	inst.processes = make([]Process, len(procNames))
	for i, n := range procNames {
		decl := b.processes[n]
		inst.processes[i] = Process{
			ID:           ProcessID(i),
			Name:         n,
			Requirements: inst.internQuantities(decl.requirements),
			Results:      inst.internQuantities(decl.results),
			Duration:     decl.duration,
		}
		inst.procIndex[n] = ProcessID(i)
	}

	inst.objective = newObjective(inst, b.optimize)
	return inst, nil
}

func (inst *Instance) internQuantities(m map[string]int64) []Quantity {
	out := make([]Quantity, 0, len(m))
	for n, q := range m {
		out = append(out, Quantity{Resource: inst.resIndex[n], Amount: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Resource < out[j].Resource })
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
