package exitcode

import (
	"context"
	"errors"
	"os"
	"strings"

	daxerrors "github.com/felixgeelhaar/daxbuild/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates a missing or unknown command. It shares the
	// general failure code so scripts only need to test for nonzero.
	UsageError = 1

	// Interrupted indicates the run was cancelled by SIGINT/SIGTERM
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// An explicit exit code carried by a DaxbuildError anywhere in the chain wins,
// so the code of a failed external tool is reported unchanged.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	for e := err; e != nil; {
		var de *daxerrors.DaxbuildError
		if !errors.As(e, &de) {
			break
		}
		if de.ExitCode != 0 {
			return de.ExitCode
		}
		e = de.Cause
	}

	if errors.Is(err, context.Canceled) {
		return Interrupted
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "unknown command") || strings.Contains(errMsg, "unknown flag") {
		return UsageError
	}
	if strings.Contains(errMsg, "invalid argument") || strings.Contains(errMsg, "flag needs an argument") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case Interrupted:
		return "Interrupted"
	default:
		return "External tool failure"
	}
}
