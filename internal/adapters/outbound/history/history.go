package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openkraft/excess/internal/domain"
)

// FileName is the history log inside the state directory.
const FileName = "history.jsonl"

// maxLine bounds one JSONL record.
const maxLine = 1 << 20

// FileHistory implements domain.HistoryStore as an append-only JSONL log.
type FileHistory struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *FileHistory {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &FileHistory{logger: logger}
}

// Append adds one record. The existing log and the new line are written to
// a temp file in the same directory which then replaces the log, so readers
// never observe a half-written record.
func (h *FileHistory) Append(stateDir string, entry domain.HistoryEntry) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return err
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	fp := filepath.Join(stateDir, FileName)
	existing, err := os.ReadFile(fp)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if len(existing) > 0 && existing[len(existing)-1] != '\n' {
		existing = append(existing, '\n')
	}

	data := make([]byte, 0, len(existing)+len(line)+1)
	data = append(data, existing...)
	data = append(data, line...)
	data = append(data, '\n')
	return WriteAtomic(fp, data)
}

// Load returns the entries recorded for path in append order. Corrupt or
// oversized lines are logged and skipped.
func (h *FileHistory) Load(stateDir, path string) ([]domain.HistoryEntry, error) {
	fp := filepath.Join(stateDir, FileName)
	data, err := os.ReadFile(fp)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.HistoryEntry
	lineNo := 0
	for line := range bytes.Lines(data) {
		lineNo++
		raw := bytes.TrimSpace(line)
		if len(raw) == 0 {
			continue
		}
		if len(raw) > maxLine {
			herr := &domain.HistoryError{Path: fp, Err: fmt.Errorf("line %d: record exceeds %d bytes", lineNo, maxLine)}
			h.logger.Warn("skipping oversized history line", "path", fp, "line", lineNo, "reason", herr)
			continue
		}
		var e domain.HistoryEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			herr := &domain.HistoryError{Path: fp, Err: fmt.Errorf("line %d: %w", lineNo, err)}
			h.logger.Warn("skipping corrupt history line", "path", fp, "line", lineNo, "reason", herr)
			continue
		}
		if e.Path == path {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// WriteAtomic writes data to a temp file next to dest and renames it over
// dest.
func WriteAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
