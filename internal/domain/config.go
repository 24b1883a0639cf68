package domain

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Output formats understood by the CLI.
const (
	OutputText     = "text"
	OutputJSON     = "json"
	OutputMarkdown = "markdown"
)

const (
	DefaultStateDir         = ".excess"
	DefaultMaxDepth         = 32
	DefaultMaxFileBytes     = 1 << 20
	DefaultDegradeThreshold = -0.5
)

// DefaultIgnore lists globs that are never scanned.
var DefaultIgnore = []string{
	"**/node_modules/**",
	"**/dist/**",
	"**/build/**",
	"**/out/**",
	"**/.next/**",
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/coverage/**",
	"**/vendor/**",
	"**/*.min.js",
	"**/*.map",
	"**/.excess/**",
}

// ProjectConfig holds project-level configuration loaded from .excess.yaml.
type ProjectConfig struct {
	Ignore           []string            `yaml:"ignore"                      json:"ignore,omitempty"`
	Focus            []string            `yaml:"focus"                       json:"focus,omitempty"`
	EntryPoints      []string            `yaml:"entry_points"                json:"entry_points,omitempty"`
	Aliases          map[string]string   `yaml:"aliases"                     json:"aliases,omitempty"`
	Output           string              `yaml:"output"                      json:"output,omitempty"`
	StateDir         string              `yaml:"state_dir"                   json:"state_dir,omitempty"`
	MaxDepth         *int                `yaml:"max_depth,omitempty"         json:"max_depth,omitempty"`
	MaxFileBytes     *int64              `yaml:"max_file_bytes,omitempty"    json:"max_file_bytes,omitempty"`
	DegradeThreshold *float64            `yaml:"degrade_threshold,omitempty" json:"degrade_threshold,omitempty"`
	Thresholds       *ThresholdOverrides `yaml:"thresholds,omitempty"        json:"thresholds,omitempty"`
}

// DefaultConfig returns a zero-value config that changes nothing.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{}
}

// AuditConfig is the resolved, validated configuration for one run.
// Immutable once built.
type AuditConfig struct {
	Root             string
	Ignore           []string
	Focus            []string
	EntryPoints      []string
	Aliases          map[string]string
	Thresholds       Thresholds
	Output           string
	StateDir         string
	MaxDepth         int
	MaxFileBytes     int64
	DegradeThreshold float64
}

// DefaultAuditConfig returns the resolved defaults for root.
func DefaultAuditConfig(root string) AuditConfig {
	cfg, _ := ResolveConfig(root, DefaultConfig())
	return cfg
}

// Validate checks the config for invalid values and returns a ConfigError.
func (c ProjectConfig) Validate() error {
	globs := []struct {
		field    string
		patterns []string
	}{
		{"ignore", c.Ignore},
		{"focus", c.Focus},
		{"entry_points", c.EntryPoints},
	}
	for _, g := range globs {
		for i, p := range g.patterns {
			if strings.TrimSpace(p) == "" {
				return &ConfigError{Field: fmt.Sprintf("%s[%d]", g.field, i), Err: fmt.Errorf("empty pattern")}
			}
			if !doublestar.ValidatePattern(p) {
				return &ConfigError{Field: fmt.Sprintf("%s[%d]", g.field, i), Err: fmt.Errorf("malformed glob %q", p)}
			}
		}
	}

	for prefix, dir := range c.Aliases {
		if prefix == "" || dir == "" {
			return &ConfigError{Field: "aliases", Err: fmt.Errorf("alias %q -> %q must have both sides", prefix, dir)}
		}
		if filepath.IsAbs(dir) {
			return &ConfigError{Field: "aliases." + prefix, Err: fmt.Errorf("target %q must be relative to the root", dir)}
		}
	}

	switch c.Output {
	case "", OutputText, OutputJSON, OutputMarkdown:
	default:
		return &ConfigError{Field: "output", Err: fmt.Errorf("unknown format %q (valid: text, json, markdown)", c.Output)}
	}

	if c.MaxDepth != nil && *c.MaxDepth <= 0 {
		return &ConfigError{Field: "max_depth", Err: errMustBePositive(*c.MaxDepth)}
	}
	if c.MaxFileBytes != nil && *c.MaxFileBytes <= 0 {
		return &ConfigError{Field: "max_file_bytes", Err: fmt.Errorf("must be > 0 (got %d)", *c.MaxFileBytes)}
	}
	if c.DegradeThreshold != nil && *c.DegradeThreshold >= 0 {
		return &ConfigError{Field: "degrade_threshold", Err: fmt.Errorf("must be < 0 (got %.2f)", *c.DegradeThreshold)}
	}

	return c.Thresholds.Apply(DefaultThresholds()).validate()
}

// ResolveConfig merges defaults with pc and validates the result.
func ResolveConfig(root string, pc ProjectConfig) (AuditConfig, error) {
	if err := pc.Validate(); err != nil {
		return AuditConfig{}, err
	}

	cfg := AuditConfig{
		Root:             root,
		Ignore:           append(append([]string{}, DefaultIgnore...), pc.Ignore...),
		Focus:            append([]string{}, pc.Focus...),
		EntryPoints:      append([]string{}, pc.EntryPoints...),
		Aliases:          make(map[string]string, len(pc.Aliases)),
		Thresholds:       pc.Thresholds.Apply(DefaultThresholds()),
		Output:           pc.Output,
		StateDir:         pc.StateDir,
		MaxDepth:         DefaultMaxDepth,
		MaxFileBytes:     DefaultMaxFileBytes,
		DegradeThreshold: DefaultDegradeThreshold,
	}
	for k, v := range pc.Aliases {
		cfg.Aliases[k] = filepath.ToSlash(filepath.Clean(v))
	}
	if cfg.Output == "" {
		cfg.Output = OutputText
	}
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}
	if !filepath.IsAbs(cfg.StateDir) {
		cfg.StateDir = filepath.Join(root, cfg.StateDir)
	}
	if pc.MaxDepth != nil {
		cfg.MaxDepth = *pc.MaxDepth
	}
	if pc.MaxFileBytes != nil {
		cfg.MaxFileBytes = *pc.MaxFileBytes
	}
	if pc.DegradeThreshold != nil {
		cfg.DegradeThreshold = *pc.DegradeThreshold
	}
	return cfg, nil
}

// Ignored reports whether a root-relative path matches an ignore glob.
func (c AuditConfig) Ignored(rel string) bool {
	return MatchGlobs(c.Ignore, rel)
}

// InFocus reports whether rel passes the focus filter. No focus globs means
// everything is in focus.
func (c AuditConfig) InFocus(rel string) bool {
	if len(c.Focus) == 0 {
		return true
	}
	return MatchGlobs(c.Focus, rel)
}

// MatchGlobs reports whether rel matches any of the doublestar patterns.
func MatchGlobs(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
