package krpfile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/krpsim/krpsim/sim"
)

// PrintState writes the human-readable state block, every line a '#' comment:
//
//	# <n> items in stock, <m> processes, <k> to optimize
//	# === Stocks:
//	# <name>: <qty>
//	# === Processes:
//	# <name>: <duration>
//	# === Optimize:
//	# <name>
//
// Only non-zero stocks are listed; stocks and processes are in name order.
func PrintState(w io.Writer, s *sim.State) error {
	inst := s.Instance()
	bw := bufio.NewWriter(w)

	// resource ids are assigned in name order
	var stocks []sim.ResourceID
	for r := 0; r < inst.NumResources(); r++ {
		if s.Stock(sim.ResourceID(r)) != 0 {
			stocks = append(stocks, sim.ResourceID(r))
		}
	}

	opt := inst.Objective().Names()
	fmt.Fprintf(bw, "# %d items in stock, %d processes, %d to optimize\n", len(stocks), inst.NumProcesses(), len(opt))
	fmt.Fprintln(bw, "# === Stocks:")
	for _, r := range stocks {
		fmt.Fprintf(bw, "# %s: %d\n", inst.ResourceName(r), s.Stock(r))
	}
	fmt.Fprintln(bw, "# === Processes:")
	for _, p := range inst.Processes() {
		fmt.Fprintf(bw, "# %s: %d\n", p.Name, p.Duration)
	}
	fmt.Fprintln(bw, "# === Optimize:")
	for _, n := range opt {
		fmt.Fprintf(bw, "# %s\n", n)
	}
	return bw.Flush()
}
