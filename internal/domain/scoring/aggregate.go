package scoring

import "github.com/openkraft/excess/internal/domain"

// component is one check inside a level, commended when it found nothing.
type component struct {
	name   string
	reason string
	clean  bool
}

// Outcome is what the aggregator adds on top of the three level metrics.
type Outcome struct {
	Scores        domain.Scores
	Commendations []domain.Commendation
	Summary       domain.Summary
}

// Aggregate weighs the level scores into the overall score, tallies
// violations and commends every component without findings. A run over
// zero files earns no commendations.
func Aggregate(files int, dry domain.DRYMetrics, rams domain.RamsMetrics, heid domain.HeideggerMetrics) Outcome {
	out := Outcome{
		Scores: domain.Scores{
			DRY:       dry.Score,
			Rams:      rams.Score,
			Heidegger: heid.Score,
			Overall:   domain.ComputeOverall(dry.Score, rams.Score, heid.Score),
		},
		Summary: domain.Summarize(dry.Violations, rams.Violations, heid.Violations),
	}
	if files == 0 {
		return out
	}

	levels := []struct {
		level      domain.Level
		components []component
	}{
		{domain.LevelDRY, []component{
			{"duplicate-blocks", "no duplicated blocks", len(dry.DuplicateBlocks) == 0},
			{"similar-files", "no near-duplicate files", len(dry.SimilarFiles) == 0},
			{"similar-functions", "no near-duplicate functions", len(dry.SimilarFunctions) == 0},
			{"literals", "no repeated string literals", len(dry.RepeatedLiterals) == 0},
		}},
		{domain.LevelRams, []component{
			{"imports", "no unused imports", len(rams.UnusedImports) == 0},
			{"exports", "no dead exports", len(rams.DeadExports) == 0},
			{"dependencies", "every declared dependency is used", len(rams.UnusedDependencies) == 0},
			{"file-size", "no oversized files", len(rams.LargeFiles) == 0},
			{"empty-files", "no empty files", len(rams.EmptyFiles) == 0},
		}},
		{domain.LevelHeidegger, []component{
			{"cycles", "no circular imports", len(heid.CircularDependencies) == 0},
			{"orphans", "every file is connected", len(heid.OrphanedFiles) == 0},
			{"packages", "every package is complete", allComplete(heid.PackageCompleteness)},
			{"documentation", "every module is documented", len(heid.Undocumented) == 0},
			{"naming", "naming is consistent", len(heid.NamingDrift) == 0},
			{"coupling", "imports and exports stay within limits", len(heid.Coupling) == 0},
		}},
	}

	for _, l := range levels {
		for _, c := range l.components {
			if c.clean {
				out.Commendations = append(out.Commendations, domain.Commendation{
					Level:     l.level,
					Component: c.name,
					Reason:    c.reason,
				})
			}
		}
	}
	return out
}

func allComplete(pcs []domain.PackageCompleteness) bool {
	for _, pc := range pcs {
		if len(pc.Missing) > 0 {
			return false
		}
	}
	return true
}
