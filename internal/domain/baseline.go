package domain

import "time"

// Delta statuses.
const (
	StatusImproved  = "improved"
	StatusDegraded  = "degraded"
	StatusUnchanged = "unchanged"
)

// HistoryEntry is one recorded run. Entries are append-only.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Path       string    `json:"path"`
	Project    string    `json:"project"`
	Commit     string    `json:"commit,omitempty"`
	Branch     string    `json:"branch,omitempty"`
	Scores     Scores    `json:"scores"`
	Violations Summary   `json:"violations"`
}

// Baseline is the pinned reference entry for a path.
type Baseline struct {
	Path      string       `json:"path"`
	CreatedAt time.Time    `json:"created_at"`
	Entry     HistoryEntry `json:"entry"`
}

// ScoreDelta compares a run against a baseline. Positive numbers mean the
// current run scored higher.
type ScoreDelta struct {
	DRY       float64      `json:"dry"`
	Rams      float64      `json:"rams"`
	Heidegger float64      `json:"heidegger"`
	Overall   float64      `json:"overall"`
	Status    string       `json:"status"`
	Baseline  HistoryEntry `json:"baseline"`
}

// EntryFromResult condenses an AuditResult into a history entry.
func EntryFromResult(r *AuditResult) HistoryEntry {
	return HistoryEntry{
		ID:         r.RunID,
		Timestamp:  r.Timestamp,
		Path:       r.Path,
		Project:    r.Project.Name,
		Commit:     r.Project.Commit,
		Branch:     r.Project.Branch,
		Scores:     r.Scores,
		Violations: r.Summary,
	}
}

// CompareScores computes per-level deltas against the baseline entry.
// Overall deltas above zero are improvements; deltas below degradeThreshold
// (a negative number) are degradations; everything else is unchanged.
func CompareScores(current Scores, baseline HistoryEntry, degradeThreshold float64) ScoreDelta {
	d := ScoreDelta{
		DRY:       Round1(current.DRY - baseline.Scores.DRY),
		Rams:      Round1(current.Rams - baseline.Scores.Rams),
		Heidegger: Round1(current.Heidegger - baseline.Scores.Heidegger),
		Overall:   Round1(current.Overall - baseline.Scores.Overall),
		Baseline:  baseline,
	}
	switch {
	case d.Overall > 0:
		d.Status = StatusImproved
	case d.Overall < degradeThreshold:
		d.Status = StatusDegraded
	default:
		d.Status = StatusUnchanged
	}
	return d
}
