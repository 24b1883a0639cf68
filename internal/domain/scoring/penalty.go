package scoring

import (
	"math"

	"github.com/openkraft/excess/internal/domain"
)

// maxScore is the starting score of every level before penalties.
const maxScore = 10.0

// cappedPenalty deducts per points for each finding, never more than limit.
func cappedPenalty(count int, per, limit float64) float64 {
	return math.Min(limit, float64(count)*per)
}

// levelScore subtracts every penalty from the maximum, clamps to [0,10] and
// rounds to one decimal.
func levelScore(penalties ...float64) float64 {
	score := maxScore
	for _, p := range penalties {
		score -= p
	}
	return domain.Round1(domain.ClampScore(score))
}

// issueSeverity returns a severity based on how far the actual value
// exceeds the threshold: ≥4x high, ≥2x medium, else low.
func issueSeverity(actual, threshold int) domain.Severity {
	if threshold <= 0 {
		return domain.SeverityMedium
	}
	ratio := float64(actual) / float64(threshold)
	switch {
	case ratio >= 4.0:
		return domain.SeverityHigh
	case ratio >= 2.0:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}

// largeFileSeverity escalates past the large and critical line thresholds.
// The second return is false for files within limits.
func largeFileSeverity(lines int, th domain.Thresholds) (domain.Severity, bool) {
	switch {
	case lines > 2*th.CriticalFileLines:
		return domain.SeverityCritical, true
	case lines > th.CriticalFileLines:
		return domain.SeverityHigh, true
	case lines > th.LargeFileLines:
		return domain.SeverityMedium, true
	}
	return "", false
}

// largeFileWeight is the penalty weight of one large file by severity.
func largeFileWeight(s domain.Severity) float64 {
	switch s {
	case domain.SeverityCritical:
		return 1.5
	case domain.SeverityHigh:
		return 1.0
	default:
		return 0.5
	}
}

// round2 rounds similarity values for reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
