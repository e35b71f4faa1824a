package krpfile

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/krpsim/krpsim/sim"
)

var (
	stockLine    = regexp.MustCompile(`^([A-Za-z0-9_]+):([0-9]+)$`)
	processLine  = regexp.MustCompile(`^([A-Za-z0-9_]+):\(([^()]*)\):\(([^()]*)\):([0-9]+)$`)
	optimizeLine = regexp.MustCompile(`^optimize:\(([^()]*)\)$`)
	quantityItem = regexp.MustCompile(`^([A-Za-z0-9_]+):([0-9]+)$`)
)

// ParseError reports a malformed or semantically invalid line.
// Line is 0 for errors about the file as a whole (missing sections).
type ParseError struct {
	Line int
	Text string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error: %s", e.Msg)
	}
	return fmt.Sprintf("parse error at line %d: %s: %q", e.Line, e.Msg, e.Text)
}

// stripSpace removes all whitespace; it is not significant between tokens
// and names cannot contain it.
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// isSkipped reports blank lines and '#' comments.
func isSkipped(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}

// ParseConfig parses an instance config.
//
// Line kinds, tried in this order:
//
//	name:quantity
//	name:(req:q;...):(res:q;...):duration
//	optimize:(name;...)
//
// Any other non-blank, non-comment line is a fatal error.
func ParseConfig(src string) (*sim.Instance, error) {
	b := sim.NewInstanceBuilder()
	var stocks, processes int
	for i, raw := range strings.Split(src, "\n") {
		lineNo := i + 1
		if isSkipped(raw) {
			continue
		}
		line := stripSpace(raw)
		fail := func(msg string, args ...any) error {
			return &ParseError{Line: lineNo, Text: strings.TrimRight(raw, "\r"), Msg: fmt.Sprintf(msg, args...)}
		}

		if m := stockLine.FindStringSubmatch(line); m != nil {
			qty, err := parseCount(m[2])
			if err != nil {
				return nil, fail("%v", err)
			}
			if err := b.AddStock(m[1], qty); err != nil {
				return nil, fail("%v", err)
			}
			stocks++
			continue
		}
		if m := processLine.FindStringSubmatch(line); m != nil {
			reqs, err := parseQuantities(m[2])
			if err != nil {
				return nil, fail("requirements: %v", err)
			}
			res, err := parseQuantities(m[3])
			if err != nil {
				return nil, fail("results: %v", err)
			}
			dur, err := parseCount(m[4])
			if err != nil {
				return nil, fail("%v", err)
			}
			if err := b.AddProcess(m[1], reqs, res, dur); err != nil {
				return nil, fail("%v", err)
			}
			processes++
			continue
		}
		if m := optimizeLine.FindStringSubmatch(line); m != nil {
			names, err := parseNames(m[1])
			if err != nil {
				return nil, fail("optimize: %v", err)
			}
			if err := b.SetOptimize(names); err != nil {
				return nil, fail("%v", err)
			}
			continue
		}
		return nil, fail("unrecognized line")
	}

	inst, err := b.Build()
	if err != nil {
		return nil, &ParseError{Msg: err.Error()}
	}
	logrus.Debugf("parsed config: %d stock lines, %d process lines, %d resources, %d processes",
		stocks, processes, inst.NumResources(), inst.NumProcesses())
	return inst, nil
}

// LoadConfig reads and parses the config file at path.
func LoadConfig(path string) (*sim.Instance, error) {
	src, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	inst, err := ParseConfig(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

func parseCount(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return n, nil
}

// parseQuantities parses "a:1;b:2"; at least one item is required.
func parseQuantities(s string) ([]sim.NamedQuantity, error) {
	if s == "" {
		return nil, fmt.Errorf("empty list")
	}
	items := strings.Split(s, ";")
	out := make([]sim.NamedQuantity, 0, len(items))
	for _, item := range items {
		m := quantityItem.FindStringSubmatch(item)
		if m == nil {
			return nil, fmt.Errorf("invalid item %q (expected name:quantity)", item)
		}
		qty, err := parseCount(m[2])
		if err != nil {
			return nil, err
		}
		out = append(out, sim.NamedQuantity{Name: m[1], Amount: qty})
	}
	return out, nil
}

// parseNames parses "a;b;time"; at least one name is required.
func parseNames(s string) ([]string, error) {
	if s == "" {
		return nil, fmt.Errorf("empty list")
	}
	names := strings.Split(s, ";")
	for _, n := range names {
		if !sim.IsValidName(n) {
			return nil, fmt.Errorf("invalid name %q", n)
		}
	}
	return names, nil
}
