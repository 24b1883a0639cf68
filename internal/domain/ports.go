package domain

import "context"

// ProjectScanner enumerates a project tree and builds the immutable
// snapshot every collector reads.
type ProjectScanner interface {
	Scan(ctx context.Context, cfg AuditConfig) (*Snapshot, error)
}

// ConfigLoader reads .excess.yaml from a project root.
type ConfigLoader interface {
	Load(projectPath string) (ProjectConfig, error)
}

// HistoryStore persists audit runs. Implementations must make appends
// atomic so a crash never leaves a truncated record.
type HistoryStore interface {
	Append(stateDir string, entry HistoryEntry) error
	// Load returns entries recorded for path in append order.
	Load(stateDir, path string) ([]HistoryEntry, error)
}

// BaselineStore holds the pinned baseline for a path. Load returns
// (nil, nil) when no usable baseline exists.
type BaselineStore interface {
	Save(stateDir string, b Baseline) error
	Load(stateDir, path string) (*Baseline, error)
	Clear(stateDir string) error
}

// CommitInfo reads the VCS position of a tree.
type CommitInfo interface {
	Head(projectPath string) (commit, branch string)
}
