package domain_test

import (
	"testing"
	"time"

	"github.com/openkraft/excess/internal/domain"
	"github.com/stretchr/testify/assert"
)

func entry(dry, rams, heid float64) domain.HistoryEntry {
	return domain.HistoryEntry{
		Path: "/proj",
		Scores: domain.Scores{
			DRY: dry, Rams: rams, Heidegger: heid,
			Overall: domain.ComputeOverall(dry, rams, heid),
		},
	}
}

func TestCompareScores_SelfIsUnchanged(t *testing.T) {
	base := entry(7.3, 8.1, 6.4)
	d := domain.CompareScores(base.Scores, base, domain.DefaultDegradeThreshold)

	assert.Equal(t, domain.StatusUnchanged, d.Status)
	assert.Zero(t, d.DRY)
	assert.Zero(t, d.Rams)
	assert.Zero(t, d.Heidegger)
	assert.Zero(t, d.Overall)
}

func TestCompareScores_Improved(t *testing.T) {
	base := entry(5, 5, 5)
	cur := entry(6, 5, 5).Scores
	d := domain.CompareScores(cur, base, -0.5)

	assert.Equal(t, domain.StatusImproved, d.Status)
	assert.InDelta(t, 1.0, d.DRY, 0.0001)
	assert.InDelta(t, 0.3, d.Overall, 0.0001)
}

func TestCompareScores_SmallDropIsUnchanged(t *testing.T) {
	base := entry(5, 5, 5)
	cur := entry(4, 5, 5).Scores // overall -0.3
	d := domain.CompareScores(cur, base, -0.5)

	assert.Equal(t, domain.StatusUnchanged, d.Status)
	assert.InDelta(t, -0.3, d.Overall, 0.0001)
}

func TestCompareScores_Degraded(t *testing.T) {
	base := entry(8, 8, 8)
	cur := entry(8, 8, 5).Scores // overall -1.2
	d := domain.CompareScores(cur, base, -0.5)

	assert.Equal(t, domain.StatusDegraded, d.Status)
	assert.InDelta(t, -3.0, d.Heidegger, 0.0001)
	assert.InDelta(t, -1.2, d.Overall, 0.0001)
	assert.Equal(t, base, d.Baseline)
}

func TestEntryFromResult(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &domain.AuditResult{
		RunID:     "run-1",
		Timestamp: ts,
		Path:      "/proj",
		Project:   domain.Project{Name: "proj", Commit: "abc1234", Branch: "main"},
		Scores:    domain.Scores{DRY: 9, Rams: 8, Heidegger: 7, Overall: 7.9},
		Summary:   domain.Summary{High: 1, Total: 1},
	}
	e := domain.EntryFromResult(r)

	assert.Equal(t, "run-1", e.ID)
	assert.Equal(t, ts, e.Timestamp)
	assert.Equal(t, "/proj", e.Path)
	assert.Equal(t, "proj", e.Project)
	assert.Equal(t, "abc1234", e.Commit)
	assert.Equal(t, "main", e.Branch)
	assert.Equal(t, r.Scores, e.Scores)
	assert.Equal(t, 1, e.Violations.High)
}
