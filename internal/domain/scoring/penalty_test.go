package scoring

import (
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestCappedPenalty(t *testing.T) {
	assert.Equal(t, 0.0, cappedPenalty(0, 0.5, 3))
	assert.Equal(t, 1.5, cappedPenalty(3, 0.5, 3))
	assert.Equal(t, 3.0, cappedPenalty(100, 0.5, 3))
}

func TestLevelScore_ClampsAndRounds(t *testing.T) {
	assert.Equal(t, 10.0, levelScore())
	assert.Equal(t, 8.8, levelScore(0.66, 0.55))
	assert.Equal(t, 0.0, levelScore(6, 6))
}

func TestIssueSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityLow, issueSeverity(5, 5))
	assert.Equal(t, domain.SeverityLow, issueSeverity(9, 5))
	assert.Equal(t, domain.SeverityMedium, issueSeverity(10, 5))
	assert.Equal(t, domain.SeverityHigh, issueSeverity(20, 5))
	assert.Equal(t, domain.SeverityMedium, issueSeverity(3, 0))
}

func TestLargeFileSeverity(t *testing.T) {
	th := domain.DefaultThresholds()

	_, large := largeFileSeverity(500, th)
	assert.False(t, large)

	sev, large := largeFileSeverity(501, th)
	assert.True(t, large)
	assert.Equal(t, domain.SeverityMedium, sev)

	sev, _ = largeFileSeverity(1001, th)
	assert.Equal(t, domain.SeverityHigh, sev)

	sev, _ = largeFileSeverity(2001, th)
	assert.Equal(t, domain.SeverityCritical, sev)
}
