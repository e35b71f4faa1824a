package krpfile

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/krpsim/krpsim/sim"
)

var traceLine = regexp.MustCompile(`^([0-9]+):([A-Za-z0-9_]+)$`)

const lastCyclePrefix = "# last_cycle: "

// MaxSummaryLineSize is the encoded length of the "# last_cycle: N" line for the largest int64 N.
const MaxSummaryLineSize = len(lastCyclePrefix) + 19 + 1

// EventLineSize returns the encoded length of the "cycle:name" line WriteTrace emits for one event.
func EventLineSize(cycle int64, name string) int {
	return len(strconv.FormatInt(cycle, 10)) + 1 + len(name) + 1
}

// ParseTrace parses "cycle:process_name" lines. Blank lines and '#' comments
// (including the "# last_cycle" summary) are skipped. Entries are returned in
// file order; the verifier sorts them.
func ParseTrace(src string) ([]sim.TraceEntry, error) {
	var entries []sim.TraceEntry
	for i, raw := range strings.Split(src, "\n") {
		if isSkipped(raw) {
			continue
		}
		m := traceLine.FindStringSubmatch(stripSpace(raw))
		if m == nil {
			return nil, &ParseError{Line: i + 1, Text: strings.TrimRight(raw, "\r"), Msg: "invalid trace line (expected cycle:process)"}
		}
		cycle, err := parseCount(m[1])
		if err != nil {
			return nil, &ParseError{Line: i + 1, Text: raw, Msg: err.Error()}
		}
		entries = append(entries, sim.TraceEntry{Cycle: cycle, Name: m[2], Line: i + 1})
	}
	return entries, nil
}

// LoadTrace reads and parses the trace file at path.
func LoadTrace(path string) ([]sim.TraceEntry, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	entries, err := ParseTrace(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// WriteTrace writes tr in emission order followed by the "# last_cycle: N" summary.
func WriteTrace(w io.Writer, inst *sim.Instance, tr sim.Trace, lastCycle int64) error {
	bw := bufio.NewWriter(w)
	for _, ev := range tr {
		if _, err := fmt.Fprintf(bw, "%d:%s\n", ev.Cycle, inst.Process(ev.Process).Name); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(bw, "%s%d\n", lastCyclePrefix, lastCycle); err != nil {
		return err
	}
	return bw.Flush()
}
