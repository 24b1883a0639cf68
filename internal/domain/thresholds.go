package domain

// Thresholds carries every tunable the collectors read.
// Built from defaults merged with user overrides.
type Thresholds struct {
	// DRY
	BlockSize           int     // sliding window size in normalized lines
	MinBlockChars       int     // windows shorter than this are ignored
	SimilarityThreshold float64 // whole-file Dice threshold
	SimilarSizeRatio    float64 // larger/smaller size bound for file pairs
	MinSimilarChars     int     // files below this are never compared
	FunctionSimilarity  float64 // per-file function body Dice threshold
	MinFunctionLines    int     // bodies below this are not compared
	MinLiteralLength    int
	MinLiteralRepeats   int

	// Rams
	LargeFileLines    int
	CriticalFileLines int

	// Heidegger
	NamingConsistency float64
	MaxImports        int
	MaxExports        int
}

// DefaultThresholds returns the stock tuning.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BlockSize:           5,
		MinBlockChars:       40,
		SimilarityThreshold: 0.8,
		SimilarSizeRatio:    2.0,
		MinSimilarChars:     200,
		FunctionSimilarity:  0.9,
		MinFunctionLines:    5,
		MinLiteralLength:    10,
		MinLiteralRepeats:   3,
		LargeFileLines:      500,
		CriticalFileLines:   1000,
		NamingConsistency:   0.8,
		MaxImports:          15,
		MaxExports:          20,
	}
}

// ThresholdOverrides allows users to override specific thresholds.
// Pointer types distinguish "not specified" from zero values.
type ThresholdOverrides struct {
	BlockSize           *int     `yaml:"block_size,omitempty"            json:"block_size,omitempty"`
	MinBlockChars       *int     `yaml:"min_block_chars,omitempty"       json:"min_block_chars,omitempty"`
	SimilarityThreshold *float64 `yaml:"similarity_threshold,omitempty"  json:"similarity_threshold,omitempty"`
	SimilarSizeRatio    *float64 `yaml:"similar_size_ratio,omitempty"    json:"similar_size_ratio,omitempty"`
	MinSimilarChars     *int     `yaml:"min_similar_chars,omitempty"     json:"min_similar_chars,omitempty"`
	FunctionSimilarity  *float64 `yaml:"function_similarity,omitempty"   json:"function_similarity,omitempty"`
	MinFunctionLines    *int     `yaml:"min_function_lines,omitempty"    json:"min_function_lines,omitempty"`
	MinLiteralLength    *int     `yaml:"min_literal_length,omitempty"    json:"min_literal_length,omitempty"`
	MinLiteralRepeats   *int     `yaml:"min_literal_repeats,omitempty"   json:"min_literal_repeats,omitempty"`
	LargeFileLines      *int     `yaml:"large_file_lines,omitempty"      json:"large_file_lines,omitempty"`
	CriticalFileLines   *int     `yaml:"critical_file_lines,omitempty"   json:"critical_file_lines,omitempty"`
	NamingConsistency   *float64 `yaml:"naming_consistency,omitempty"    json:"naming_consistency,omitempty"`
	MaxImports          *int     `yaml:"max_imports,omitempty"           json:"max_imports,omitempty"`
	MaxExports          *int     `yaml:"max_exports,omitempty"           json:"max_exports,omitempty"`
}

// Apply overlays the set fields on top of base.
func (o *ThresholdOverrides) Apply(base Thresholds) Thresholds {
	if o == nil {
		return base
	}
	setInt := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(dst *float64, src *float64) {
		if src != nil {
			*dst = *src
		}
	}
	setInt(&base.BlockSize, o.BlockSize)
	setInt(&base.MinBlockChars, o.MinBlockChars)
	setFloat(&base.SimilarityThreshold, o.SimilarityThreshold)
	setFloat(&base.SimilarSizeRatio, o.SimilarSizeRatio)
	setInt(&base.MinSimilarChars, o.MinSimilarChars)
	setFloat(&base.FunctionSimilarity, o.FunctionSimilarity)
	setInt(&base.MinFunctionLines, o.MinFunctionLines)
	setInt(&base.MinLiteralLength, o.MinLiteralLength)
	setInt(&base.MinLiteralRepeats, o.MinLiteralRepeats)
	setInt(&base.LargeFileLines, o.LargeFileLines)
	setInt(&base.CriticalFileLines, o.CriticalFileLines)
	setFloat(&base.NamingConsistency, o.NamingConsistency)
	setInt(&base.MaxImports, o.MaxImports)
	setInt(&base.MaxExports, o.MaxExports)
	return base
}

// validate checks the merged thresholds.
func (t Thresholds) validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"block_size", t.BlockSize},
		{"min_block_chars", t.MinBlockChars},
		{"min_similar_chars", t.MinSimilarChars},
		{"min_function_lines", t.MinFunctionLines},
		{"min_literal_length", t.MinLiteralLength},
		{"min_literal_repeats", t.MinLiteralRepeats},
		{"large_file_lines", t.LargeFileLines},
		{"critical_file_lines", t.CriticalFileLines},
		{"max_imports", t.MaxImports},
		{"max_exports", t.MaxExports},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return &ConfigError{Field: "thresholds." + p.name, Err: errMustBePositive(p.v)}
		}
	}

	ratios := []struct {
		name string
		v    float64
	}{
		{"similarity_threshold", t.SimilarityThreshold},
		{"function_similarity", t.FunctionSimilarity},
		{"naming_consistency", t.NamingConsistency},
	}
	for _, r := range ratios {
		if r.v <= 0 || r.v > 1 {
			return &ConfigError{Field: "thresholds." + r.name, Err: errRatio(r.v)}
		}
	}

	if t.SimilarSizeRatio < 1 {
		return &ConfigError{Field: "thresholds.similar_size_ratio", Err: errAtLeastOne(t.SimilarSizeRatio)}
	}
	if t.CriticalFileLines < t.LargeFileLines {
		return &ConfigError{Field: "thresholds.critical_file_lines", Err: errCriticalBelowLarge(t.CriticalFileLines, t.LargeFileLines)}
	}
	return nil
}
