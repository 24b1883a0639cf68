package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBaselineCmd(opts *globalOptions) *cobra.Command {
	var clearBaseline bool

	cmd := &cobra.Command{
		Use:   "baseline [path]",
		Short: "Audit the tree and pin the result as the baseline",
		Long:  "Run an audit, record it in history and pin it as the reference for `excess audit --compare`.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			auditSvc, baselineSvc := opts.services(logger)

			if clearBaseline {
				cfg, err := auditSvc.ResolveConfig(pathArg(args))
				if err != nil {
					return err
				}
				if err := baselineSvc.ClearBaseline(cfg); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Baseline cleared")
				return nil
			}

			r, cfg, err := auditSvc.AuditPath(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}
			if _, err := baselineSvc.Record(cfg, r); err != nil {
				logger.Warn("could not record history", "reason", err)
			}
			b, err := baselineSvc.SaveBaseline(cfg, r)
			if err != nil {
				return err
			}

			s := b.Entry.Scores
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline saved: overall %.1f (DRY %.1f, Rams %.1f, Heidegger %.1f)\n",
				s.Overall, s.DRY, s.Rams, s.Heidegger)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clearBaseline, "clear", false, "Remove the pinned baseline instead of saving one")
	return cmd
}
