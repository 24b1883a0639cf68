package application

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/openkraft/excess/internal/domain"
)

// BaselineService records runs in history, pins baselines and compares
// fresh results against them. Everything is keyed by the absolute audit
// root so several trees can share one state directory.
type BaselineService struct {
	history   domain.HistoryStore
	baselines domain.BaselineStore
	logger    *slog.Logger
	now       func() time.Time
}

func NewBaselineService(history domain.HistoryStore, baselines domain.BaselineStore, logger *slog.Logger) *BaselineService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BaselineService{
		history:   history,
		baselines: baselines,
		logger:    logger,
		now:       time.Now,
	}
}

// Record appends r to the history log under cfg.StateDir.
func (s *BaselineService) Record(cfg domain.AuditConfig, r *domain.AuditResult) (domain.HistoryEntry, error) {
	entry := domain.EntryFromResult(r)
	if err := s.history.Append(cfg.StateDir, entry); err != nil {
		return domain.HistoryEntry{}, fmt.Errorf("recording history: %w", err)
	}
	s.logger.Debug("history entry recorded", "id", entry.ID, "path", entry.Path)
	return entry, nil
}

// SaveBaseline pins r as the baseline for its path, replacing any earlier one.
func (s *BaselineService) SaveBaseline(cfg domain.AuditConfig, r *domain.AuditResult) (domain.Baseline, error) {
	b := domain.Baseline{
		Path:      r.Path,
		CreatedAt: s.now().UTC(),
		Entry:     domain.EntryFromResult(r),
	}
	if err := s.baselines.Save(cfg.StateDir, b); err != nil {
		return domain.Baseline{}, fmt.Errorf("saving baseline: %w", err)
	}
	s.logger.Info("baseline saved", "path", b.Path, "overall", b.Entry.Scores.Overall)
	return b, nil
}

// ClearBaseline drops the pinned baseline.
func (s *BaselineService) ClearBaseline(cfg domain.AuditConfig) error {
	if err := s.baselines.Clear(cfg.StateDir); err != nil {
		return fmt.Errorf("clearing baseline: %w", err)
	}
	return nil
}

// Baseline returns the pinned baseline for path, or nil when none is usable.
func (s *BaselineService) Baseline(cfg domain.AuditConfig, path string) (*domain.Baseline, error) {
	b, err := s.baselines.Load(cfg.StateDir, path)
	if err != nil {
		var he *domain.HistoryError
		if errors.As(err, &he) {
			s.logger.Warn("ignoring unreadable baseline", "path", he.Path, "reason", he.Err)
			return nil, nil
		}
		return nil, fmt.Errorf("loading baseline: %w", err)
	}
	return b, nil
}

// Compare computes the delta of r against the pinned baseline for its path.
// It returns domain.ErrNoBaseline when nothing has been pinned yet.
func (s *BaselineService) Compare(cfg domain.AuditConfig, r *domain.AuditResult) (*domain.ScoreDelta, error) {
	b, err := s.Baseline(cfg, r.Path)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrNoBaseline
	}
	d := domain.CompareScores(r.Scores, b.Entry, cfg.DegradeThreshold)
	return &d, nil
}

// History returns the recorded runs for path, oldest first.
func (s *BaselineService) History(cfg domain.AuditConfig, path string) ([]domain.HistoryEntry, error) {
	entries, err := s.history.Load(cfg.StateDir, path)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	return entries, nil
}
