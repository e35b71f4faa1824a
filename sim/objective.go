package sim

// Objective is the optimize list compiled against an Instance.
// Listed resources are maximized in list order; when the time token is
// listed, fewer cycles is compared after every listed resource.
type Objective struct {
	Resources    []ResourceID // maximize, highest priority first
	OptimizeTime bool         // minimize LastCycle
	names        []string     // declared list, including the time token
}

// Outcome is the part of a finished run the objective ranks.
type Outcome struct {
	Stocks    []int64 // final stock per ResourceID
	LastCycle int64
}

func newObjective(inst *Instance, names []string) Objective {
	obj := Objective{names: append([]string(nil), names...)}
	seen := make(map[ResourceID]bool, len(names))
	for _, n := range names {
		if n == TimeResource {
			obj.OptimizeTime = true
			continue
		}
		r := inst.resIndex[n]
		if seen[r] {
			continue
		}
		seen[r] = true
		obj.Resources = append(obj.Resources, r)
	}
	return obj
}

// Names returns the optimize list as declared.
func (o Objective) Names() []string { return o.names }

// Priority returns the position of r in the maximize list, or -1 if r is not an objective resource.
func (o Objective) Priority(r ResourceID) int {
	for i, or := range o.Resources {
		if or == r {
			return i
		}
	}
	return -1
}

// Compare ranks two outcomes: positive if a is better than b, negative if
// worse, zero if the objective cannot tell them apart.
func (o Objective) Compare(a, b Outcome) int {
	for _, r := range o.Resources {
		va, vb := stockAt(a.Stocks, r), stockAt(b.Stocks, r)
		if va != vb {
			if va > vb {
				return 1
			}
			return -1
		}
	}
	if o.OptimizeTime && a.LastCycle != b.LastCycle {
		if a.LastCycle < b.LastCycle {
			return 1
		}
		return -1
	}
	return 0
}

// Better reports whether a is strictly better than b.
func (o Objective) Better(a, b Outcome) bool { return o.Compare(a, b) > 0 }

func stockAt(stocks []int64, r ResourceID) int64 {
	if int(r) < len(stocks) {
		return stocks[r]
	}
	return 0
}
