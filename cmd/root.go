package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/krpfile"
	"github.com/krpsim/krpsim/sim/schedule"
	"github.com/krpsim/krpsim/sim/trace"
)

var (
	logLevel       string         // Log verbosity level
	simFlags       schedulerFlags // Scheduler knobs, merged over the tuning file
	summarizeTrace bool           // Print a decision-trace summary to stderr
	metricsFile    string         // Prometheus textfile destination
)

// rootCmd runs the scheduler and prints the trace it found.
var rootCmd = &cobra.Command{
	Use:   "krpsim <config_file> <delay_seconds>",
	Short: "Search for a resource transformation trace that optimizes the config's objective",
	Long: `krpsim reads a KRP config, searches for an execution trace for at most
delay_seconds of wall-clock time, and writes the best trace found to stdout
as "cycle:process" lines followed by "# last_cycle: N".`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		delay, err := parseDelay(args[1])
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		cfg, err := buildConfig(cmd.Flags(), &simFlags)
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		cfg.Budget = delay

		inst, err := krpfile.LoadConfig(args[0])
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		logrus.Infof("loaded %s: %d resources, %d processes, optimize %v",
			args[0], inst.NumResources(), inst.NumProcesses(), inst.Objective().Names())

		res, metrics, err := runSimulation(cmd.Context(), cmd.OutOrStdout(), inst, cfg)
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if summarizeTrace {
			if res.Decisions == nil {
				logrus.Warn("--summarize-trace has no effect without --trace-level decisions")
			} else {
				printTraceSummary(cmd.ErrOrStderr(), trace.Summarize(res.Decisions))
			}
		}
		if metricsFile != "" {
			if err := metrics.WriteTextfile(metricsFile); err != nil {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("write metrics: %w", err)}
			}
		}
		return nil
	},
}

// setupLogging applies --log to the global logger.
func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return &ExitError{Code: ExitFailure, Err: fmt.Errorf("invalid log level %q", logLevel)}
	}
	logrus.SetLevel(level)
	return nil
}

// parseDelay converts a non-negative number of seconds into a budget.
// Values beyond the range of time.Duration saturate.
func parseDelay(s string) (time.Duration, error) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) || secs < 0 {
		return 0, fmt.Errorf("invalid delay %q: expected a non-negative number of seconds", s)
	}
	ns := secs * float64(time.Second)
	if ns >= math.MaxInt64 {
		return time.Duration(math.MaxInt64), nil
	}
	return time.Duration(ns), nil
}

// runSimulation runs the scheduler on inst and writes the trace to out.
func runSimulation(ctx context.Context, out io.Writer, inst *sim.Instance, cfg schedule.Config) (*schedule.Result, *schedule.Metrics, error) {
	s, err := schedule.New(inst, cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := s.Run(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := krpfile.WriteTrace(out, inst, res.Trace, res.LastCycle); err != nil {
		return nil, nil, fmt.Errorf("write trace: %w", err)
	}
	return res, s.Metrics(), nil
}

func printTraceSummary(w io.Writer, sum *trace.TraceSummary) {
	fmt.Fprintln(w, "=== Decision Trace Summary ===")
	fmt.Fprintf(w, "Selections: %d\n", sum.TotalSelections)
	fmt.Fprintf(w, "Unique processes: %d\n", sum.UniqueProcesses)
	fmt.Fprintf(w, "Mean regret: %.4f\n", sum.MeanRegret)
	fmt.Fprintf(w, "Max regret: %.4f\n", sum.MaxRegret)
	fmt.Fprintln(w, "Selections by process:")
	for _, name := range sortedKeys(sum.ProcessDistribution) {
		fmt.Fprintf(w, "  %s: %d\n", name, sum.ProcessDistribution[name])
	}
	fmt.Fprintln(w, "Stop reasons:")
	for _, reason := range sortedKeys(sum.StopReasons) {
		fmt.Fprintf(w, "  %s: %d\n", reason, sum.StopReasons[reason])
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Execute runs the krpsim command and exits with its status.
func Execute() {
	os.Exit(execute(rootCmd))
}

// execute runs c with interrupt handling and maps its error to an exit code.
func execute(c *cobra.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := c.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintf(c.ErrOrStderr(), "%s: %v\n", c.Name(), err)
	}
	return GetExitCode(err)
}

// init sets up CLI flags
func init() {
	rootCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")

	registerSchedulerFlags(rootCmd.Flags(), &simFlags)
	rootCmd.Flags().BoolVar(&summarizeTrace, "summarize-trace", false, "Print a decision trace summary to stderr")
	rootCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
}
