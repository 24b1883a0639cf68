package cli

import (
	"errors"
	"fmt"

	"github.com/openkraft/excess/internal/domain"
)

// Process exit codes.
const (
	ExitClean    = 0
	ExitHigh     = 1 // high-severity violation or degraded baseline delta
	ExitCritical = 2
	ExitFailure  = 3 // configuration or tool failure
)

// ExitError carries the process exit code. Err is nil when the run itself
// succeeded but its findings demand a non-zero exit.
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

// asExitError maps any command error onto an *ExitError. Errors that are
// not already exit errors are configuration or tool failures.
func asExitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	return &ExitError{Code: ExitFailure, Err: err}
}

// findingsExit derives the exit code from a finished audit.
func findingsExit(r *domain.AuditResult, d *domain.ScoreDelta) error {
	switch {
	case r.Summary.Critical > 0:
		return &ExitError{Code: ExitCritical}
	case r.Summary.High > 0:
		return &ExitError{Code: ExitHigh}
	case d != nil && d.Status == domain.StatusDegraded:
		return &ExitError{Code: ExitHigh}
	}
	return nil
}
