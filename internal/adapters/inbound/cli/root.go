package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	mcpadapter "github.com/openkraft/excess/internal/adapters/inbound/mcp"
	"github.com/openkraft/excess/internal/adapters/outbound/baseline"
	"github.com/openkraft/excess/internal/adapters/outbound/config"
	"github.com/openkraft/excess/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/excess/internal/adapters/outbound/history"
	"github.com/openkraft/excess/internal/adapters/outbound/scanner"
	"github.com/openkraft/excess/internal/application"
)

var (
	version = "dev"
	commit  = "none"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	verbose    bool
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "excess",
		Short: "Find what your codebase does not need",
		Long: "excess audits a JavaScript/TypeScript tree for duplicated implementation (DRY), " +
			"unearned artifacts (Rams) and files disconnected from the system (Heidegger).",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log scan details to stderr")
	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (defaults to <path>/.excess.yaml)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newAuditCmd(opts))
	cmd.AddCommand(newBaselineCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newGraphCmd(opts))
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newMCPCmd(opts))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the CLI. The returned error is an *ExitError whenever the
// process should exit non-zero.
func Execute(ctx context.Context) error {
	mcpadapter.Version = version
	return asExitError(newRootCmd().ExecuteContext(ctx))
}

func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// services wires the outbound adapters into the two application services.
func (o *globalOptions) services(logger *slog.Logger) (*application.AuditService, *application.BaselineService) {
	loader := config.New()
	if o.configFile != "" {
		loader = config.NewWithFile(o.configFile)
	}
	return application.NewAuditService(scanner.New(logger), loader, gitinfo.New(), logger),
		application.NewBaselineService(history.New(logger), baseline.New(logger), logger)
}

func pathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
