package baseline

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/excess/internal/adapters/outbound/history"
	"github.com/openkraft/excess/internal/domain"
)

// FileName is the pinned baseline inside the state directory.
const FileName = "baseline.json"

// Store is a file-based implementation of domain.BaselineStore.
type Store struct {
	logger *slog.Logger
}

// New creates a new file-based baseline store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// Load reads the baseline pinned for path. Returns (nil, nil) if none
// exists or the stored one belongs to another path. Unparsable content is
// reported as a *domain.HistoryError.
func (s *Store) Load(stateDir, path string) (*domain.Baseline, error) {
	fp := filepath.Join(stateDir, FileName)
	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var b domain.Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, &domain.HistoryError{Path: fp, Err: err}
	}
	if b.Path != path {
		s.logger.Debug("baseline belongs to another path", "stored", b.Path, "requested", path)
		return nil, nil
	}
	return &b, nil
}

// Save writes the baseline atomically, creating directories as needed.
func (s *Store) Save(stateDir string, b domain.Baseline) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return history.WriteAtomic(filepath.Join(stateDir, FileName), append(data, '\n'))
}

// Clear removes the pinned baseline.
func (s *Store) Clear(stateDir string) error {
	if err := os.Remove(filepath.Join(stateDir, FileName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
