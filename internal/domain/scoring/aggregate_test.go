package scoring_test

import (
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
)

func TestAggregate_WeightsAndSummary(t *testing.T) {
	dry := domain.DRYMetrics{Score: 7.3, Violations: []domain.Violation{{Severity: domain.SeverityHigh}}}
	rams := domain.RamsMetrics{Score: 8.1, UnusedImports: []domain.UnusedImport{{}}, Violations: []domain.Violation{{Severity: domain.SeverityLow}}}
	heid := domain.HeideggerMetrics{Score: 6.4, Violations: []domain.Violation{{Severity: domain.SeverityCritical}, {Severity: domain.SeverityMedium}}}

	out := scoring.Aggregate(3, dry, rams, heid)
	assert.Equal(t, domain.Scores{DRY: 7.3, Rams: 8.1, Heidegger: 6.4, Overall: 7.2}, out.Scores)
	assert.Equal(t, domain.Summary{Critical: 1, High: 1, Medium: 1, Low: 1, Total: 4}, out.Summary)

	var rc []string
	for _, c := range out.Commendations {
		if c.Level == domain.LevelRams {
			rc = append(rc, c.Component)
		}
	}
	assert.Equal(t, []string{"exports", "dependencies", "file-size", "empty-files"}, rc)
}

func TestAggregate_CleanProjectCommendsEverything(t *testing.T) {
	out := scoring.Aggregate(1,
		domain.DRYMetrics{Score: 10},
		domain.RamsMetrics{Score: 10},
		domain.HeideggerMetrics{Score: 10, PackageCompleteness: []domain.PackageCompleteness{{Package: "p", Completeness: 1}}})

	assert.Equal(t, 10.0, out.Scores.Overall)
	assert.Len(t, out.Commendations, 15)
	assert.Zero(t, out.Summary.Total)
}

func TestAggregate_IncompletePackageIsNotCommended(t *testing.T) {
	out := scoring.Aggregate(1, domain.DRYMetrics{}, domain.RamsMetrics{},
		domain.HeideggerMetrics{PackageCompleteness: []domain.PackageCompleteness{{Package: "p", Completeness: 0.5, Missing: []string{"tests", "README"}}}})

	for _, c := range out.Commendations {
		assert.NotEqual(t, "packages", c.Component)
	}
}

func TestAggregate_NoFilesNoCommendations(t *testing.T) {
	out := scoring.Aggregate(0, domain.DRYMetrics{}, domain.RamsMetrics{}, domain.HeideggerMetrics{})
	assert.Empty(t, out.Commendations)
	assert.Equal(t, domain.Scores{}, out.Scores)
	assert.Zero(t, out.Summary.Total)
}

func TestAggregate_OverallInvariantOnRealProject(t *testing.T) {
	in := project(t, map[string]string{
		"package.json": `{"name": "demo", "main": "index.js", "dependencies": {"lodash": "4"}}`,
		"index.js":     "import { a } from './a';\nimport { unused } from './b';\na();\n",
		"a.js":         "import './b';\nexport function a() {}\n",
		"b.js":         "import './a';\nexport const unused = 1;\nexport const dead = 2;\n",
	})

	dry := collectDRY(t, in)
	rams := scoring.CollectRams(in)
	heid := scoring.CollectHeidegger(in)
	out := scoring.Aggregate(len(in.Snapshot.Files), dry, rams, heid)

	assert.Equal(t, domain.ComputeOverall(dry.Score, rams.Score, heid.Score), out.Scores.Overall)
	assert.Equal(t, len(dry.Violations)+len(rams.Violations)+len(heid.Violations), out.Summary.Total)
	for _, s := range []float64{out.Scores.DRY, out.Scores.Rams, out.Scores.Heidegger, out.Scores.Overall} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 10.0)
	}
	assert.Len(t, heid.CircularDependencies, 1)
	assert.Len(t, rams.UnusedDependencies, 1)
}
