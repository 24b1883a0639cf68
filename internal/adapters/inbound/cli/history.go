package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openkraft/excess/internal/adapters/outbound/report"
	"github.com/openkraft/excess/internal/adapters/outbound/tui"
	"github.com/openkraft/excess/internal/domain"
)

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var (
		jsonOutput bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show recorded audit runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auditSvc, baselineSvc := opts.services(opts.logger(cmd))

			cfg, err := auditSvc.ResolveConfig(pathArg(args))
			if err != nil {
				return err
			}
			entries, err := baselineSvc.History(cfg, cfg.Root)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[len(entries)-limit:]
			}

			if jsonOutput {
				if entries == nil {
					entries = []domain.HistoryEntry{}
				}
				return report.JSON(cmd.OutOrStdout(), entries)
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderHistory(entries))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output history as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show only the most recent N runs")
	return cmd
}
