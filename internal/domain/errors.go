package domain

import (
	"errors"
	"fmt"
)

// ConfigError is a configuration-level failure. It aborts a run before any
// collector starts.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HistoryError marks corrupt history or baseline content. Callers treat it
// as "no baseline available".
type HistoryError struct {
	Path string
	Err  error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s: %v", e.Path, e.Err)
}

func (e *HistoryError) Unwrap() error { return e.Err }

// ErrNoBaseline is returned when a comparison is requested but no baseline
// exists for the audited path.
var ErrNoBaseline = errors.New("no baseline recorded for this path")

func errMustBePositive(v int) error {
	return fmt.Errorf("must be > 0 (got %d)", v)
}

func errRatio(v float64) error {
	return fmt.Errorf("must be in (0, 1] (got %.2f)", v)
}

func errAtLeastOne(v float64) error {
	return fmt.Errorf("must be >= 1 (got %.2f)", v)
}

func errCriticalBelowLarge(critical, large int) error {
	return fmt.Errorf("must be >= large_file_lines (%d < %d)", critical, large)
}
