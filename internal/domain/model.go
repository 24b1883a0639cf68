package domain

import (
	"math"
	"time"
)

// Level names one of the three audit axes.
type Level string

const (
	LevelDRY       Level = "dry"
	LevelRams      Level = "rams"
	LevelHeidegger Level = "heidegger"
)

// Fixed level weights for the overall score.
const (
	WeightDRY       = 0.3
	WeightRams      = 0.3
	WeightHeidegger = 0.4
)

// Severity of a single violation.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Rank orders severities from most to least severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// Violation types emitted by the collectors.
const (
	ViolationDuplicateBlock     = "duplicate-block"
	ViolationSimilarFiles       = "similar-files"
	ViolationSimilarFunctions   = "similar-functions"
	ViolationRepeatedLiteral    = "repeated-literal"
	ViolationUnusedImport       = "unused-import"
	ViolationDeadExport         = "dead-export"
	ViolationUnusedDependency   = "unused-dependency"
	ViolationLargeFile          = "large-file"
	ViolationEmptyFile          = "empty-file"
	ViolationCircularDependency = "circular-dependency"
	ViolationOrphanedFile       = "orphaned-file"
	ViolationIncompletePackage  = "incomplete-package"
	ViolationMissingDocs        = "missing-documentation"
	ViolationNamingDrift        = "naming-inconsistency"
	ViolationHighCoupling       = "high-coupling"
	ViolationUnclearSurface     = "unclear-public-surface"
)

// Violation is a single detected issue. Collectors create them; nothing
// mutates them afterwards.
type Violation struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Message    string   `json:"message"`
	File       string   `json:"file,omitempty"`
	Files      []string `json:"files,omitempty"`
	Lines      int      `json:"lines,omitempty"`
	Suggestion string   `json:"suggestion"`
}

// Commendation is a positive finding for a component with zero violations.
type Commendation struct {
	Level     Level  `json:"level"`
	Component string `json:"component"`
	Reason    string `json:"reason"`
}

// BlockLocation pins one occurrence of a duplicated block.
type BlockLocation struct {
	File      string `json:"file"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

type DuplicateBlock struct {
	Files       []string        `json:"files"`
	Lines       int             `json:"lines"`
	Fragment    string          `json:"fragment"`
	Occurrences []BlockLocation `json:"occurrences"`
}

type SimilarFile struct {
	FileA      string  `json:"file_a"`
	FileB      string  `json:"file_b"`
	Similarity float64 `json:"similarity"`
}

type SimilarFunction struct {
	File       string  `json:"file"`
	FunctionA  string  `json:"function_a"`
	FunctionB  string  `json:"function_b"`
	Similarity float64 `json:"similarity"`
}

type RepeatedLiteral struct {
	Value string   `json:"value"`
	Count int      `json:"count"`
	Files []string `json:"files"`
}

type DRYMetrics struct {
	DuplicateBlocks  []DuplicateBlock  `json:"duplicate_blocks"`
	SimilarFiles     []SimilarFile     `json:"similar_files"`
	SimilarFunctions []SimilarFunction `json:"similar_functions"`
	RepeatedLiterals []RepeatedLiteral `json:"repeated_literals"`
	DuplicatedLines  int               `json:"duplicated_lines"`
	TotalLines       int               `json:"total_lines"`
	Score            float64           `json:"score"`
	Violations       []Violation       `json:"violations"`
}

type UnusedImport struct {
	File      string `json:"file"`
	Symbol    string `json:"symbol"`
	Specifier string `json:"specifier"`
	Line      int    `json:"line"`
}

type DeadExport struct {
	File   string `json:"file"`
	Export string `json:"export"`
}

// Dependency kinds as declared in a package manifest.
const (
	DependencyRuntime = "dependency"
	DependencyDev     = "devDependency"
	DependencyPeer    = "peerDependency"
)

type UnusedDependency struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Manifest string `json:"manifest"`
}

type LargeFile struct {
	File  string `json:"file"`
	Lines int    `json:"lines"`
}

type RamsMetrics struct {
	UnusedImports      []UnusedImport     `json:"unused_imports"`
	DeadExports        []DeadExport       `json:"dead_exports"`
	UnusedDependencies []UnusedDependency `json:"unused_dependencies"`
	LargeFiles         []LargeFile        `json:"large_files"`
	EmptyFiles         []string           `json:"empty_files"`
	Score              float64            `json:"score"`
	Violations         []Violation        `json:"violations"`
}

type CircularDependency struct {
	Cycle []string `json:"cycle"`
}

type OrphanedFile struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

type PackageCompleteness struct {
	Package      string   `json:"package"`
	Completeness float64  `json:"completeness"`
	Missing      []string `json:"missing,omitempty"`
}

type NamingDrift struct {
	File        string   `json:"file"`
	Consistency float64  `json:"consistency"`
	Offenders   []string `json:"offenders"`
}

type CouplingFinding struct {
	File    string `json:"file"`
	Imports int    `json:"imports"`
	Exports int    `json:"exports"`
}

type HeideggerMetrics struct {
	CircularDependencies []CircularDependency  `json:"circular_dependencies"`
	OrphanedFiles        []OrphanedFile        `json:"orphaned_files"`
	PackageCompleteness  []PackageCompleteness `json:"package_completeness"`
	Undocumented         []string              `json:"undocumented"`
	NamingDrift          []NamingDrift         `json:"naming_drift"`
	Coupling             []CouplingFinding     `json:"coupling"`
	Score                float64               `json:"score"`
	Violations           []Violation           `json:"violations"`
}

// Project identifies the audited tree.
type Project struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Commit string `json:"commit,omitempty"`
	Branch string `json:"branch,omitempty"`
}

// Scores is the comparable subset of an AuditResult.
type Scores struct {
	DRY       float64 `json:"dry"`
	Rams      float64 `json:"rams"`
	Heidegger float64 `json:"heidegger"`
	Overall   float64 `json:"overall"`
}

// Summary tallies violations by severity.
type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Total    int `json:"total"`
}

// AuditResult is the serializable output of one run.
type AuditResult struct {
	RunID         string           `json:"run_id"`
	Timestamp     time.Time        `json:"timestamp"`
	Project       Project          `json:"project"`
	Path          string           `json:"path"`
	Scores        Scores           `json:"scores"`
	DRY           DRYMetrics       `json:"dry"`
	Rams          RamsMetrics      `json:"rams"`
	Heidegger     HeideggerMetrics `json:"heidegger"`
	Commendations []Commendation   `json:"commendations"`
	Summary       Summary          `json:"summary"`
	FilesScanned  int              `json:"files_scanned"`
	Skipped       []SkippedFile    `json:"skipped,omitempty"`
}

// Violations returns every violation across the three levels.
func (r *AuditResult) Violations() []Violation {
	all := make([]Violation, 0, r.Summary.Total)
	all = append(all, r.DRY.Violations...)
	all = append(all, r.Rams.Violations...)
	all = append(all, r.Heidegger.Violations...)
	return all
}

// ComputeOverall applies the fixed level weights and rounds to one decimal.
func ComputeOverall(dry, rams, heidegger float64) float64 {
	return Round1(dry*WeightDRY + rams*WeightRams + heidegger*WeightHeidegger)
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ClampScore bounds a score to [0, 10].
func ClampScore(v float64) float64 {
	return math.Max(0, math.Min(10, v))
}

// Summarize tallies the given violations by severity.
func Summarize(violations ...[]Violation) Summary {
	var s Summary
	for _, vs := range violations {
		for _, v := range vs {
			switch v.Severity {
			case SeverityCritical:
				s.Critical++
			case SeverityHigh:
				s.High++
			case SeverityMedium:
				s.Medium++
			default:
				s.Low++
			}
			s.Total++
		}
	}
	return s
}

// GradeFor maps an overall score to a letter grade.
func GradeFor(score float64) string {
	switch {
	case score >= 9:
		return "A+"
	case score >= 8:
		return "A"
	case score >= 7:
		return "B"
	case score >= 6:
		return "C"
	case score >= 5:
		return "D"
	default:
		return "F"
	}
}
