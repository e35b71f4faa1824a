package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/krpfile"
)

// verifCmd replays a trace against a config and reports the verdict.
var verifCmd = &cobra.Command{
	Use:   "krpsim_verif <config_file> <trace_file>",
	Short: "Check that a trace is a legal execution of a KRP config",
	Long: `krpsim_verif replays every "cycle:process" line of the trace against the
config and prints the resulting state followed by "OK at cycle N" or
"KO at cycle N: process". The exit status is 2 when the trace is rejected.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		verdict, err := runVerification(cmd.OutOrStdout(), args[0], args[1])
		if err != nil {
			return &ExitError{Code: ExitFailure, Err: err}
		}
		if !verdict.Accepted {
			return &ExitError{Code: ExitRejected}
		}
		return nil
	},
}

// runVerification loads both files, verifies the trace and writes the final
// state and the verdict to out. A rejected trace is not an error.
func runVerification(out io.Writer, configPath, tracePath string) (*sim.Verdict, error) {
	inst, err := krpfile.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	entries, err := krpfile.LoadTrace(tracePath)
	if err != nil {
		return nil, err
	}
	logrus.Debugf("verifying %d trace entries from %s", len(entries), tracePath)

	verdict := sim.Verify(inst, entries)
	if verdict.Err != nil {
		logrus.Warnf("%s:%d: %v", tracePath, verdict.Err.Line, verdict.Err)
		var stockErr *sim.InsufficientStockError
		if errors.As(verdict.Err, &stockErr) {
			logrus.Warnf("%s needs %d %s, %d in stock",
				inst.Process(stockErr.Process).Name, stockErr.Need, inst.ResourceName(stockErr.Resource), stockErr.Have)
		}
		var overflowErr *sim.StockOverflowError
		if errors.As(verdict.Err, &overflowErr) {
			logrus.Warnf("%s would add %d %s to %d, past the stock limit",
				inst.Process(overflowErr.Process).Name, overflowErr.Add, inst.ResourceName(overflowErr.Resource), overflowErr.Have)
		}
	}
	if err := krpfile.PrintState(out, verdict.State); err != nil {
		return nil, fmt.Errorf("write state: %w", err)
	}
	if _, err := fmt.Fprintln(out, verdict); err != nil {
		return nil, fmt.Errorf("write verdict: %w", err)
	}
	return verdict, nil
}

// ExecuteVerif runs the krpsim_verif command and exits with its status.
func ExecuteVerif() {
	os.Exit(execute(verifCmd))
}

func init() {
	verifCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
