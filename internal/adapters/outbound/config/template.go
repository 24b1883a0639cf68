package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// Template renders a commented .excess.yaml holding the stock defaults.
func Template() string {
	th := domain.DefaultThresholds()

	var b strings.Builder
	b.WriteString("# excess configuration\n\n")
	b.WriteString("# Extra paths to skip, on top of node_modules, dist, build and friends.\n")
	b.WriteString("ignore: []\n\n")
	b.WriteString("# Restrict analysis to matching files. Empty means everything.\n")
	b.WriteString("focus: []\n\n")
	b.WriteString("# Files loaded from outside the import graph (framework routes, workers).\n")
	b.WriteString("entry_points: []\n\n")
	b.WriteString("# Import specifier prefixes mapped to directories relative to this file.\n")
	b.WriteString("# aliases:\n#   \"@/\": src/\n\n")
	b.WriteString("output: text\n")
	fmt.Fprintf(&b, "state_dir: %s\n", domain.DefaultStateDir)
	fmt.Fprintf(&b, "max_depth: %d\n", domain.DefaultMaxDepth)
	fmt.Fprintf(&b, "max_file_bytes: %d\n", domain.DefaultMaxFileBytes)
	fmt.Fprintf(&b, "degrade_threshold: %.1f\n\n", domain.DefaultDegradeThreshold)

	b.WriteString("thresholds:\n")
	fmt.Fprintf(&b, "  block_size: %d\n", th.BlockSize)
	fmt.Fprintf(&b, "  min_block_chars: %d\n", th.MinBlockChars)
	fmt.Fprintf(&b, "  similarity_threshold: %.2f\n", th.SimilarityThreshold)
	fmt.Fprintf(&b, "  similar_size_ratio: %.1f\n", th.SimilarSizeRatio)
	fmt.Fprintf(&b, "  min_similar_chars: %d\n", th.MinSimilarChars)
	fmt.Fprintf(&b, "  function_similarity: %.2f\n", th.FunctionSimilarity)
	fmt.Fprintf(&b, "  min_function_lines: %d\n", th.MinFunctionLines)
	fmt.Fprintf(&b, "  min_literal_length: %d\n", th.MinLiteralLength)
	fmt.Fprintf(&b, "  min_literal_repeats: %d\n", th.MinLiteralRepeats)
	fmt.Fprintf(&b, "  large_file_lines: %d\n", th.LargeFileLines)
	fmt.Fprintf(&b, "  critical_file_lines: %d\n", th.CriticalFileLines)
	fmt.Fprintf(&b, "  naming_consistency: %.2f\n", th.NamingConsistency)
	fmt.Fprintf(&b, "  max_imports: %d\n", th.MaxImports)
	fmt.Fprintf(&b, "  max_exports: %d\n", th.MaxExports)
	return b.String()
}

// WriteTemplate creates .excess.yaml in root. An existing file is kept
// unless force is set.
func WriteTemplate(root string, force bool) (string, error) {
	dest := filepath.Join(root, FileName)
	if !force {
		if _, err := os.Stat(dest); err == nil {
			return dest, fmt.Errorf("%s already exists (use --force to overwrite)", FileName)
		}
	}
	if err := os.WriteFile(dest, []byte(Template()), 0o644); err != nil {
		return dest, fmt.Errorf("writing config: %w", err)
	}
	return dest, nil
}
