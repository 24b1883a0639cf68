package scoring

import (
	"fmt"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

const (
	orphanNotImported = "not imported by any file"
	orphanUnreachable = "unreachable from any entry point"

	// minNamingSample is the fewest declarations a file needs before its
	// naming ratio means anything.
	minNamingSample = 2
	// packageArtifacts counts manifest, source dir, tests and README.
	packageArtifacts = 4
)

// CollectHeidegger checks how each file connects to the rest of the
// system: cycles, orphans, package shape, documentation, naming, coupling.
func CollectHeidegger(in *Input) domain.HeideggerMetrics {
	snap := in.Snapshot
	if len(snap.Files) == 0 {
		return domain.HeideggerMetrics{}
	}
	th := in.Thresholds

	var m domain.HeideggerMetrics
	for _, c := range snap.Graph.DetectCycles() {
		m.CircularDependencies = append(m.CircularDependencies, domain.CircularDependency{Cycle: c})
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationCircularDependency,
			Severity:   domain.SeverityHigh,
			Message:    "import cycle: " + strings.Join(append(append([]string{}, c...), c[0]), " → "),
			File:       c[0],
			Files:      c,
			Suggestion: "Break the cycle by moving shared code into a module both sides import.",
		})
	}

	m.OrphanedFiles = findOrphans(in)
	for _, o := range m.OrphanedFiles {
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationOrphanedFile,
			Severity:   domain.SeverityMedium,
			Message:    o.Reason,
			File:       o.File,
			Suggestion: "Import the file where it is needed or delete it.",
		})
	}

	completenessSum := 0.0
	for _, p := range snap.Packages {
		pc := packageCompleteness(p)
		m.PackageCompleteness = append(m.PackageCompleteness, pc)
		completenessSum += pc.Completeness
		if len(pc.Missing) > 0 {
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationIncompletePackage,
				Severity:   domain.SeverityLow,
				Message:    fmt.Sprintf("package %s is missing %s", pc.Package, strings.Join(pc.Missing, ", ")),
				File:       manifestOrDir(p),
				Suggestion: "Add the missing artifacts so the package stands on its own.",
			})
		}
	}
	avgCompleteness := 1.0
	if len(m.PackageCompleteness) > 0 {
		avgCompleteness = completenessSum / float64(len(m.PackageCompleteness))
	}

	documentable := 0
	for _, f := range snap.Files {
		if f.IsTest || f.IsBlank() || f.IsDeclarationFile() {
			continue
		}
		documentable++
		if !f.HasModuleDoc {
			m.Undocumented = append(m.Undocumented, f.Path)
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationMissingDocs,
				Severity:   domain.SeverityLow,
				Message:    "no leading module comment",
				File:       f.Path,
				Suggestion: "Open the file with a comment saying what it is for.",
			})
		}
	}
	undocumentedRatio := 0.0
	if documentable > 0 {
		undocumentedRatio = float64(len(m.Undocumented)) / float64(documentable)
	}

	for _, f := range snap.Files {
		if len(f.Declarations) < minNamingSample {
			continue
		}
		ratio, offenders := NamingConsistency(f.Declarations)
		if ratio >= th.NamingConsistency {
			continue
		}
		m.NamingDrift = append(m.NamingDrift, domain.NamingDrift{File: f.Path, Consistency: round2(ratio), Offenders: offenders})
		m.Violations = append(m.Violations, domain.Violation{
			Type:       domain.ViolationNamingDrift,
			Severity:   domain.SeverityLow,
			Message:    fmt.Sprintf("%.0f%% of declarations follow naming conventions: %s", ratio*100, strings.Join(offenders, ", ")),
			File:       f.Path,
			Suggestion: "Use lowerCamelCase for functions and PascalCase for classes and types.",
		})
	}

	for _, f := range snap.Files {
		imports := distinctSpecifiers(f)
		exports := len(f.Exports)
		if imports <= th.MaxImports && exports <= th.MaxExports {
			continue
		}
		m.Coupling = append(m.Coupling, domain.CouplingFinding{File: f.Path, Imports: imports, Exports: exports})
		if imports > th.MaxImports {
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationHighCoupling,
				Severity:   domain.SeverityMedium,
				Message:    fmt.Sprintf("%d imports (limit %d)", imports, th.MaxImports),
				File:       f.Path,
				Suggestion: "Split the file so each part depends on less.",
			})
		}
		if exports > th.MaxExports {
			m.Violations = append(m.Violations, domain.Violation{
				Type:       domain.ViolationUnclearSurface,
				Severity:   domain.SeverityLow,
				Message:    fmt.Sprintf("%d exports (limit %d)", exports, th.MaxExports),
				File:       f.Path,
				Suggestion: "Narrow the public surface to what callers use.",
			})
		}
	}
	sortViolations(m.Violations)

	m.Score = levelScore(
		cappedPenalty(len(m.CircularDependencies), 1, 4),
		cappedPenalty(len(m.OrphanedFiles), 0.2, 2),
		min(1.5, (1-avgCompleteness)*1.5),
		min(1, undocumentedRatio),
		cappedPenalty(len(m.NamingDrift), 0.25, 1),
		cappedPenalty(len(m.Coupling), 0.25, 0.5),
	)
	return m
}

// findOrphans reports files nothing imports and, when entry points exist,
// files no entry point reaches.
func findOrphans(in *Input) []domain.OrphanedFile {
	snap := in.Snapshot
	entries := in.EntryPoints()
	var reachable map[string]bool
	if len(entries) > 0 {
		reachable = snap.Graph.Reachable(entries)
	}

	var out []domain.OrphanedFile
	for _, f := range snap.Files {
		if in.IsEntryPoint(f.Path) {
			continue
		}
		switch {
		case snap.Graph.InDegree(f.Path) == 0:
			out = append(out, domain.OrphanedFile{File: f.Path, Reason: orphanNotImported})
		case reachable != nil && !reachable[f.Path]:
			out = append(out, domain.OrphanedFile{File: f.Path, Reason: orphanUnreachable})
		}
	}
	return out
}

func packageCompleteness(p domain.Package) domain.PackageCompleteness {
	var missing []string
	if p.Manifest == "" {
		missing = append(missing, "package.json")
	}
	if !p.HasSourceDir {
		missing = append(missing, "source directory")
	}
	if !p.HasTests {
		missing = append(missing, "tests")
	}
	if !p.HasReadme {
		missing = append(missing, "README")
	}
	name := p.Name
	if name == "" {
		name = p.Dir
	}
	return domain.PackageCompleteness{
		Package:      name,
		Completeness: float64(packageArtifacts-len(missing)) / packageArtifacts,
		Missing:      missing,
	}
}

func manifestOrDir(p domain.Package) string {
	if p.Manifest != "" {
		return p.Manifest
	}
	return p.Dir
}

func distinctSpecifiers(f *domain.SourceFile) int {
	seen := make(map[string]bool, len(f.Imports))
	for _, imp := range f.Imports {
		seen[imp.Specifier] = true
	}
	return len(seen)
}
