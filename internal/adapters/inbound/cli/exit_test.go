package cli

import (
	"errors"
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAsExitError(t *testing.T) {
	assert.NoError(t, asExitError(nil))

	err := asExitError(errors.New("boom"))
	var ee *ExitError
	assert.True(t, errors.As(err, &ee))
	assert.Equal(t, ExitFailure, ee.Code)
	assert.Equal(t, "boom", err.Error())

	kept := asExitError(&ExitError{Code: ExitCritical})
	assert.True(t, errors.As(kept, &ee))
	assert.Equal(t, ExitCritical, ee.Code)
	assert.Equal(t, "exit status 2", ee.Error())
}

func TestFindingsExit(t *testing.T) {
	tests := []struct {
		name    string
		summary domain.Summary
		delta   *domain.ScoreDelta
		want    int
	}{
		{"clean", domain.Summary{Medium: 3, Low: 2}, nil, ExitClean},
		{"high", domain.Summary{High: 1}, nil, ExitHigh},
		{"critical wins", domain.Summary{High: 2, Critical: 1}, nil, ExitCritical},
		{"degraded", domain.Summary{}, &domain.ScoreDelta{Status: domain.StatusDegraded}, ExitHigh},
		{"improved", domain.Summary{}, &domain.ScoreDelta{Status: domain.StatusImproved}, ExitClean},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := findingsExit(&domain.AuditResult{Summary: tt.summary}, tt.delta)
			if tt.want == ExitClean {
				assert.NoError(t, err)
				return
			}
			var ee *ExitError
			assert.True(t, errors.As(err, &ee))
			assert.Equal(t, tt.want, ee.Code)
		})
	}
}
