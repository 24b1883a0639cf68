package scoring

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/similarity"
)

// preparedFile is the per-file view the DRY checks share.
type preparedFile struct {
	lineNos []int    // 1-based source line of each normalized line
	windows []string // windows[i] joins normalized lines i..i+BlockSize-1; "" when too short
	content string   // all normalized lines
	bigrams similarity.Bigrams
}

// occurrence is a window position: index into the sorted file list and
// index of the window's first normalized line.
type occurrence struct {
	file, idx int
}

// dryIndex maps every window signature to the first place it was seen.
// One is built per run.
type dryIndex struct {
	first map[string]occurrence
}

type rawMatch struct {
	first, other occurrence
}

// run is a sequence of raw matches where both positions advance together:
// one duplicated region seen through consecutive sliding windows.
type run struct {
	first, other occurrence
	length       int // number of windows
}

// CollectDRY finds duplicated blocks, near-duplicate files and functions,
// and repeated string literals.
func CollectDRY(ctx context.Context, in *Input) (domain.DRYMetrics, error) {
	files := in.Snapshot.Files
	if len(files) == 0 {
		return domain.DRYMetrics{}, nil
	}
	th := in.Thresholds

	prepared, err := prepareFiles(ctx, files, th)
	if err != nil {
		return domain.DRYMetrics{}, err
	}

	m := domain.DRYMetrics{TotalLines: in.Snapshot.TotalLines()}
	m.DuplicateBlocks, m.DuplicatedLines = findDuplicateBlocks(files, prepared, th)
	m.SimilarFiles, err = findSimilarFiles(ctx, files, prepared, th)
	if err != nil {
		return domain.DRYMetrics{}, err
	}
	m.SimilarFunctions = findSimilarFunctions(files, th)
	m.RepeatedLiterals = findRepeatedLiterals(files, th)

	m.Violations = dryViolations(m, th)
	sortViolations(m.Violations)

	var dupRatio float64
	if m.TotalLines > 0 {
		dupRatio = float64(m.DuplicatedLines) / float64(m.TotalLines)
	}
	m.Score = levelScore(
		math.Min(5, dupRatio*50),
		cappedPenalty(len(m.SimilarFiles), 0.5, 3),
		cappedPenalty(len(m.SimilarFunctions), 0.25, 1),
		cappedPenalty(len(m.RepeatedLiterals), 0.2, 2),
	)
	return m, nil
}

// prepareFiles normalizes every file in parallel. Each goroutine fills only
// its own slot.
func prepareFiles(ctx context.Context, files []*domain.SourceFile, th domain.Thresholds) ([]preparedFile, error) {
	out := make([]preparedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = prepareFile(f, th)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func prepareFile(f *domain.SourceFile, th domain.Thresholds) preparedFile {
	var (
		pf    preparedFile
		lines []string
	)
	for i, raw := range strings.Split(f.Code, "\n") {
		n := normalizeLine(raw)
		if n == "" {
			continue
		}
		lines = append(lines, n)
		pf.lineNos = append(pf.lineNos, i+1)
	}

	for i := 0; i+th.BlockSize <= len(lines); i++ {
		sig := strings.Join(lines[i:i+th.BlockSize], "\n")
		if len(sig) < th.MinBlockChars {
			sig = ""
		}
		pf.windows = append(pf.windows, sig)
	}

	pf.content = strings.Join(lines, "\n")
	if len(pf.content) >= th.MinSimilarChars {
		pf.bigrams = similarity.NewBigrams(pf.content)
	}
	return pf
}

// findDuplicateBlocks runs the project-wide window table in sorted file
// order, merges consecutive raw matches into runs and reports every set of
// runs with overlapping line spans as one finding. It also returns the
// number of duplicated normalized lines outside first occurrences.
func findDuplicateBlocks(files []*domain.SourceFile, prepared []preparedFile, th domain.Thresholds) ([]domain.DuplicateBlock, int) {
	idx := dryIndex{first: make(map[string]occurrence)}
	var raw []rawMatch
	for fi, pf := range prepared {
		for wi, sig := range pf.windows {
			if sig == "" {
				continue
			}
			cur := occurrence{file: fi, idx: wi}
			first, seen := idx.first[sig]
			if !seen {
				idx.first[sig] = cur
				continue
			}
			// A same-file repeat must start at least one full window after
			// the first occurrence, so back-to-back copies still count.
			if first.file != fi || wi-first.idx >= th.BlockSize {
				raw = append(raw, rawMatch{first: first, other: cur})
			}
		}
	}
	if len(raw) == 0 {
		return nil, 0
	}

	runs := mergeRuns(raw)

	// A span is the inclusive range of normalized lines one side of a run
	// covers. Runs whose spans share a line in some file belong to the same
	// duplicated region.
	type span struct{ file, start, end, run int }
	spans := make([]span, 0, 2*len(runs))
	dupSeen := make(map[occurrence]bool)
	for i, r := range runs {
		lines := th.BlockSize + r.length - 1
		spans = append(spans,
			span{r.first.file, r.first.idx, r.first.idx + lines - 1, i},
			span{r.other.file, r.other.idx, r.other.idx + lines - 1, i})
		for k := 0; k < lines; k++ {
			dupSeen[occurrence{file: r.other.file, idx: r.other.idx + k}] = true
		}
	}
	sort.Slice(spans, func(i, j int) bool {
		a, b := spans[i], spans[j]
		if a.file != b.file {
			return a.file < b.file
		}
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end < b.end
	})

	regions := newDisjointSet(len(runs))
	places := newDisjointSet(len(spans))
	for i := range spans {
		for j := i + 1; j < len(spans) && spans[j].file == spans[i].file && spans[j].start <= spans[i].end; j++ {
			regions.union(spans[i].run, spans[j].run)
			// The two sides of one run stay separate places even when a
			// repeated block abuts or overlaps itself.
			if spans[i].run != spans[j].run {
				places.union(i, j)
			}
		}
	}

	type place struct{ file, start, end int }
	var (
		order    []int
		regionOf = make(map[int][]int)  // region root -> place roots in span order
		placeOf  = make(map[int]*place) // place root -> merged range
	)
	for i, sp := range spans {
		reg, pl := regions.find(sp.run), places.find(i)
		if p, ok := placeOf[pl]; ok {
			p.end = max(p.end, sp.end)
			continue
		}
		placeOf[pl] = &place{sp.file, sp.start, sp.end}
		if _, ok := regionOf[reg]; !ok {
			order = append(order, reg)
		}
		regionOf[reg] = append(regionOf[reg], pl)
	}

	blocks := make([]domain.DuplicateBlock, 0, len(order))
	for _, reg := range order {
		pls := regionOf[reg]
		if len(pls) < 2 {
			continue
		}
		first := placeOf[pls[0]]
		b := domain.DuplicateBlock{Fragment: prepared[first.file].windows[first.start]}
		seen := make(map[int]bool)
		for _, pl := range pls {
			p := placeOf[pl]
			nos := prepared[p.file].lineNos
			b.Lines = max(b.Lines, p.end-p.start+1)
			b.Occurrences = append(b.Occurrences, domain.BlockLocation{
				File:      files[p.file].Path,
				StartLine: nos[p.start],
				EndLine:   nos[p.end],
			})
			if !seen[p.file] {
				seen[p.file] = true
				b.Files = append(b.Files, files[p.file].Path)
			}
		}
		blocks = append(blocks, b)
	}
	return blocks, len(dupSeen)
}

// mergeRuns collapses raw matches on the same diagonal (same file pair, same
// offset between positions) with consecutive window indexes.
func mergeRuns(raw []rawMatch) []run {
	sort.Slice(raw, func(i, j int) bool {
		a, b := raw[i], raw[j]
		if a.first.file != b.first.file {
			return a.first.file < b.first.file
		}
		if a.other.file != b.other.file {
			return a.other.file < b.other.file
		}
		da, db := a.other.idx-a.first.idx, b.other.idx-b.first.idx
		if da != db {
			return da < db
		}
		return a.first.idx < b.first.idx
	})

	var runs []run
	for _, m := range raw {
		if n := len(runs); n > 0 {
			r := &runs[n-1]
			if r.first.file == m.first.file && r.other.file == m.other.file &&
				r.other.idx-r.first.idx == m.other.idx-m.first.idx &&
				r.first.idx+r.length == m.first.idx {
				r.length++
				continue
			}
		}
		runs = append(runs, run{first: m.first, other: m.other, length: 1})
	}

	sort.SliceStable(runs, func(i, j int) bool {
		a, b := runs[i], runs[j]
		if a.first != b.first {
			if a.first.file != b.first.file {
				return a.first.file < b.first.file
			}
			return a.first.idx < b.first.idx
		}
		if a.length != b.length {
			return a.length > b.length
		}
		if a.other.file != b.other.file {
			return a.other.file < b.other.file
		}
		return a.other.idx < b.other.idx
	})
	return runs
}

// findSimilarFiles compares every pair of comparable size. Rows are computed
// in parallel and concatenated in file order.
func findSimilarFiles(ctx context.Context, files []*domain.SourceFile, prepared []preparedFile, th domain.Thresholds) ([]domain.SimilarFile, error) {
	var cands []int
	for i, pf := range prepared {
		if len(pf.content) >= th.MinSimilarChars {
			cands = append(cands, i)
		}
	}

	rows := make([][]domain.SimilarFile, len(cands))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for ci := range cands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := prepared[cands[ci]]
			for _, j := range cands[ci+1:] {
				b := prepared[j]
				if sizeRatio(len(a.content), len(b.content)) > th.SimilarSizeRatio {
					continue
				}
				sim := similarity.DiceBigrams(a.bigrams, b.bigrams)
				if sim >= th.SimilarityThreshold {
					rows[ci] = append(rows[ci], domain.SimilarFile{
						FileA:      files[cands[ci]].Path,
						FileB:      files[j].Path,
						Similarity: round2(sim),
					})
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []domain.SimilarFile
	for _, row := range rows {
		out = append(out, row...)
	}
	return out, nil
}

func sizeRatio(a, b int) float64 {
	if a < b {
		a, b = b, a
	}
	if b == 0 {
		return math.Inf(1)
	}
	return float64(a) / float64(b)
}

// findSimilarFunctions compares function bodies within each file.
func findSimilarFunctions(files []*domain.SourceFile, th domain.Thresholds) []domain.SimilarFunction {
	type fn struct {
		name    string
		bigrams similarity.Bigrams
		content string
	}
	var out []domain.SimilarFunction
	for _, f := range files {
		var fns []fn
		for _, d := range f.Declarations {
			if d.Kind != domain.DeclFunction || d.Body == "" || d.EndLine-d.Line+1 < th.MinFunctionLines {
				continue
			}
			content := normalizedContent(d.Body)
			fns = append(fns, fn{name: d.Name, content: content, bigrams: similarity.NewBigrams(content)})
		}
		for i := 0; i < len(fns); i++ {
			for j := i + 1; j < len(fns); j++ {
				sim := 1.0
				if fns[i].content != fns[j].content {
					sim = similarity.DiceBigrams(fns[i].bigrams, fns[j].bigrams)
				}
				if sim >= th.FunctionSimilarity {
					out = append(out, domain.SimilarFunction{
						File:       f.Path,
						FunctionA:  fns[i].name,
						FunctionB:  fns[j].name,
						Similarity: round2(sim),
					})
				}
			}
		}
	}
	return out
}

// findRepeatedLiterals counts long string literals across non-test files.
func findRepeatedLiterals(files []*domain.SourceFile, th domain.Thresholds) []domain.RepeatedLiteral {
	type agg struct {
		count int
		files map[string]bool
	}
	byValue := make(map[string]*agg)
	for _, f := range files {
		if f.IsTest {
			continue
		}
		for _, l := range f.Literals {
			a, ok := byValue[l.Value]
			if !ok {
				a = &agg{files: make(map[string]bool)}
				byValue[l.Value] = a
			}
			a.count++
			a.files[f.Path] = true
		}
	}

	var out []domain.RepeatedLiteral
	for _, v := range sortedKeys(byValue) {
		a := byValue[v]
		if a.count < th.MinLiteralRepeats {
			continue
		}
		out = append(out, domain.RepeatedLiteral{Value: v, Count: a.count, Files: sortedKeys(a.files)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func dryViolations(m domain.DRYMetrics, th domain.Thresholds) []domain.Violation {
	var vs []domain.Violation
	for _, b := range m.DuplicateBlocks {
		vs = append(vs, domain.Violation{
			Type:       domain.ViolationDuplicateBlock,
			Severity:   issueSeverity(b.Lines, th.BlockSize),
			Message:    fmt.Sprintf("%d duplicated lines in %d places", b.Lines, len(b.Occurrences)),
			File:       b.Files[0],
			Files:      b.Files,
			Lines:      b.Lines,
			Suggestion: "Extract the repeated block into a shared function or module.",
		})
	}
	for _, s := range m.SimilarFiles {
		sev := domain.SeverityMedium
		if s.Similarity >= 0.95 {
			sev = domain.SeverityHigh
		}
		vs = append(vs, domain.Violation{
			Type:       domain.ViolationSimilarFiles,
			Severity:   sev,
			Message:    fmt.Sprintf("%s and %s are %.0f%% similar", s.FileA, s.FileB, s.Similarity*100),
			File:       s.FileA,
			Files:      []string{s.FileA, s.FileB},
			Suggestion: "Merge the files or move their common logic into one module.",
		})
	}
	for _, s := range m.SimilarFunctions {
		vs = append(vs, domain.Violation{
			Type:       domain.ViolationSimilarFunctions,
			Severity:   domain.SeverityLow,
			Message:    fmt.Sprintf("%s and %s are %.0f%% similar", s.FunctionA, s.FunctionB, s.Similarity*100),
			File:       s.File,
			Suggestion: "Combine the functions and parameterize what differs.",
		})
	}
	for _, l := range m.RepeatedLiterals {
		sev := domain.SeverityLow
		if l.Count >= 2*th.MinLiteralRepeats {
			sev = domain.SeverityMedium
		}
		vs = append(vs, domain.Violation{
			Type:       domain.ViolationRepeatedLiteral,
			Severity:   sev,
			Message:    fmt.Sprintf("string %q appears %d times", truncate(l.Value, 60), l.Count),
			File:       l.Files[0],
			Files:      l.Files,
			Suggestion: "Hoist the value into a named constant.",
		})
	}
	return vs
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
