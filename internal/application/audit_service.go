package application

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/scoring"
)

// AuditService orchestrates one run:
// load config → scan → collect DRY, Rams and Heidegger concurrently → aggregate.
type AuditService struct {
	scanner      domain.ProjectScanner
	configLoader domain.ConfigLoader
	commits      domain.CommitInfo
	logger       *slog.Logger
	now          func() time.Time
}

func NewAuditService(
	scanner domain.ProjectScanner,
	configLoader domain.ConfigLoader,
	commits domain.CommitInfo,
	logger *slog.Logger,
) *AuditService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuditService{
		scanner:      scanner,
		configLoader: configLoader,
		commits:      commits,
		logger:       logger,
		now:          time.Now,
	}
}

// ResolveConfig loads the project config for projectPath and merges it
// over the defaults. The returned root is absolute.
func (s *AuditService) ResolveConfig(projectPath string) (domain.AuditConfig, error) {
	root, err := filepath.Abs(projectPath)
	if err != nil {
		return domain.AuditConfig{}, fmt.Errorf("resolving path: %w", err)
	}
	pc := domain.DefaultConfig()
	if s.configLoader != nil {
		pc, err = s.configLoader.Load(root)
		if err != nil {
			return domain.AuditConfig{}, fmt.Errorf("loading config: %w", err)
		}
	}
	return domain.ResolveConfig(root, pc)
}

// AuditPath resolves the config for projectPath and audits it.
func (s *AuditService) AuditPath(ctx context.Context, projectPath string) (*domain.AuditResult, domain.AuditConfig, error) {
	cfg, err := s.ResolveConfig(projectPath)
	if err != nil {
		return nil, domain.AuditConfig{}, err
	}
	r, err := s.Audit(ctx, cfg)
	return r, cfg, err
}

// Snapshot resolves the config for projectPath and scans it without
// running the collectors. The graph command renders it.
func (s *AuditService) Snapshot(ctx context.Context, projectPath string) (*domain.Snapshot, domain.AuditConfig, error) {
	cfg, err := s.ResolveConfig(projectPath)
	if err != nil {
		return nil, domain.AuditConfig{}, err
	}
	snap, err := s.scanner.Scan(ctx, cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("scanning project: %w", err)
	}
	return snap, cfg, nil
}

// Audit runs the pipeline against an already resolved config.
func (s *AuditService) Audit(ctx context.Context, cfg domain.AuditConfig) (*domain.AuditResult, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg.Root = root
	started := s.now()

	snap, err := s.scanner.Scan(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in := scoring.NewInput(snap, cfg.Thresholds)
	var (
		dry  domain.DRYMetrics
		rams domain.RamsMetrics
		heid domain.HeideggerMetrics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dry, err = scoring.CollectDRY(gctx, in)
		return err
	})
	g.Go(func() error {
		rams = scoring.CollectRams(in)
		return nil
	})
	g.Go(func() error {
		heid = scoring.CollectHeidegger(in)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collecting metrics: %w", err)
	}

	out := scoring.Aggregate(len(snap.Files), dry, rams, heid)
	result := &domain.AuditResult{
		RunID:         uuid.NewString(),
		Timestamp:     started.UTC(),
		Project:       s.project(snap),
		Path:          root,
		Scores:        out.Scores,
		DRY:           dry,
		Rams:          rams,
		Heidegger:     heid,
		Commendations: out.Commendations,
		Summary:       out.Summary,
		FilesScanned:  len(snap.Files),
		Skipped:       snap.Skipped,
	}
	fillEmpty(result)

	s.logger.Info("audit complete",
		"path", root,
		"files", result.FilesScanned,
		"overall", result.Scores.Overall,
		"violations", result.Summary.Total,
		"elapsed", s.now().Sub(started))
	return result, nil
}

func (s *AuditService) project(snap *domain.Snapshot) domain.Project {
	p := domain.Project{Name: filepath.Base(snap.Root), Path: snap.Root}
	for _, pkg := range snap.Packages {
		if pkg.Dir == "." && pkg.Name != "" {
			p.Name = pkg.Name
		}
	}
	if s.commits != nil {
		p.Commit, p.Branch = s.commits.Head(snap.Root)
	}
	return p
}

// fillEmpty replaces nil result lists so JSON consumers always see arrays.
func fillEmpty(r *domain.AuditResult) {
	if r.Commendations == nil {
		r.Commendations = []domain.Commendation{}
	}
	for _, vs := range []*[]domain.Violation{&r.DRY.Violations, &r.Rams.Violations, &r.Heidegger.Violations} {
		if *vs == nil {
			*vs = []domain.Violation{}
		}
	}
}
