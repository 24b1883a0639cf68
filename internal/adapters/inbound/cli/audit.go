package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/excess/internal/adapters/outbound/report"
	"github.com/openkraft/excess/internal/adapters/outbound/tui"
	"github.com/openkraft/excess/internal/domain"
)

// auditOutput is the JSON shape of `excess audit --json`.
type auditOutput struct {
	*domain.AuditResult
	Delta *domain.ScoreDelta `json:"delta,omitempty"`
}

func newAuditCmd(opts *globalOptions) *cobra.Command {
	var (
		jsonOutput   bool
		markdown     bool
		compare      bool
		saveBaseline bool
		noHistory    bool
	)

	cmd := &cobra.Command{
		Use:   "audit [path]",
		Short: "Audit a JavaScript/TypeScript tree for excess",
		Long: "Scan the tree once, score it on the DRY, Rams and Heidegger levels and list every violation.\n\n" +
			"Exit codes: 0 clean, 1 high-severity violation or degraded score, 2 critical violation, 3 configuration or tool failure.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput && markdown {
				return fmt.Errorf("--json and --markdown are mutually exclusive")
			}
			logger := opts.logger(cmd)
			auditSvc, baselineSvc := opts.services(logger)

			r, cfg, err := auditSvc.AuditPath(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}

			var delta *domain.ScoreDelta
			if compare {
				delta, err = baselineSvc.Compare(cfg, r)
				switch {
				case errors.Is(err, domain.ErrNoBaseline):
					logger.Warn("no baseline to compare against; run `excess baseline` first", "path", r.Path)
				case err != nil:
					return err
				}
			}
			if saveBaseline {
				if _, err := baselineSvc.SaveBaseline(cfg, r); err != nil {
					return err
				}
			}
			if !noHistory {
				if _, err := baselineSvc.Record(cfg, r); err != nil {
					logger.Warn("could not record history", "reason", err)
				}
			}

			format := cfg.Output
			switch {
			case jsonOutput:
				format = domain.OutputJSON
			case markdown:
				format = domain.OutputMarkdown
			}

			out := cmd.OutOrStdout()
			switch format {
			case domain.OutputJSON:
				if err := report.JSON(out, auditOutput{AuditResult: r, Delta: delta}); err != nil {
					return err
				}
			case domain.OutputMarkdown:
				fmt.Fprint(out, report.Markdown(r, delta))
			default:
				fmt.Fprint(out, tui.RenderAudit(r))
				if delta != nil {
					fmt.Fprint(out, tui.RenderDelta(delta))
				}
			}

			return findingsExit(r, delta)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Output the result as Markdown")
	cmd.Flags().BoolVar(&compare, "compare", false, "Compare scores with the pinned baseline")
	cmd.Flags().BoolVar(&saveBaseline, "save-baseline", false, "Pin this run as the new baseline")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not append this run to the history log")

	return cmd
}
