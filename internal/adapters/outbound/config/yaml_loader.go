package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/openkraft/excess/internal/domain"
)

// FileName is the project config file looked up at the audit root.
const FileName = ".excess.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .excess.yaml.
type YAMLLoader struct {
	file string
}

// New creates a YAMLLoader that reads FileName from the project root.
func New() *YAMLLoader { return &YAMLLoader{} }

// NewWithFile creates a YAMLLoader that always reads file, whatever root is
// audited. A missing explicit file is an error.
func NewWithFile(file string) *YAMLLoader { return &YAMLLoader{file: file} }

// Load reads the project config. A missing .excess.yaml yields
// DefaultConfig. Every failure is a *domain.ConfigError.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	p := l.file
	if p == "" {
		p = filepath.Join(projectPath, FileName)
	}

	data, err := os.ReadFile(p)
	if err != nil {
		if l.file == "" && errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, &domain.ConfigError{Err: fmt.Errorf("reading %s: %w", p, err)}
	}

	cfg, err := Parse(data)
	if err != nil {
		return domain.ProjectConfig{}, err
	}
	return cfg, nil
}

// Parse decodes and validates config content. Unknown keys are rejected so
// typos surface instead of silently falling back to defaults.
func Parse(data []byte) (domain.ProjectConfig, error) {
	var cfg domain.ProjectConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return domain.ProjectConfig{}, &domain.ConfigError{Err: fmt.Errorf("parsing %s: %w", FileName, err)}
	}
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, err
	}
	return cfg, nil
}
