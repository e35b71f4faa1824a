package cmd

import (
	"errors"
	"fmt"
)

// Exit codes shared by krpsim and krpsim_verif.
const (
	ExitSuccess  = 0 // run completed, or trace accepted
	ExitFailure  = 1 // I/O, parse or usage error
	ExitRejected = 2 // trace rejected by the verifier
)

// ExitError carries the exit code a command failure maps to.
// A nil Err means the command already reported the failure on stdout.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// GetExitCode extracts the exit code from an error.
// Errors that are not an ExitError map to ExitFailure.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
