package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/openkraft/excess/internal/adapters/outbound/report"
	"github.com/openkraft/excess/internal/adapters/outbound/tui"
	"github.com/openkraft/excess/internal/domain"
)

func newGraphCmd(opts *globalOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "graph [path]",
		Short: "Visualize the file import graph",
		Long:  "Scan the tree and display fan-in and fan-out per file, import cycles and unresolved specifiers.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auditSvc, _ := opts.services(opts.logger(cmd))

			snap, _, err := auditSvc.Snapshot(cmd.Context(), pathArg(args))
			if err != nil {
				return err
			}

			if jsonOutput {
				return report.JSON(cmd.OutOrStdout(), graphOutput(snap))
			}
			fmt.Fprint(cmd.OutOrStdout(), tui.RenderGraph(snap.Graph, projectName(snap)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the graph as JSON")
	return cmd
}

type graphJSON struct {
	Root   string     `json:"root"`
	Files  int        `json:"files"`
	Edges  int        `json:"edges"`
	Cycles [][]string `json:"cycles"`
	Nodes  []nodeJSON `json:"nodes"`
}

type nodeJSON struct {
	Path       string   `json:"path"`
	Imports    []string `json:"imports"`
	ImportedBy []string `json:"imported_by"`
	External   []string `json:"external,omitempty"`
	Unresolved []string `json:"unresolved,omitempty"`
}

func graphOutput(snap *domain.Snapshot) graphJSON {
	g := snap.Graph
	out := graphJSON{
		Root:   snap.Root,
		Files:  len(g.Nodes),
		Edges:  g.EdgeCount(),
		Cycles: g.DetectCycles(),
		Nodes:  make([]nodeJSON, 0, len(g.Nodes)),
	}
	if out.Cycles == nil {
		out.Cycles = [][]string{}
	}
	for _, p := range g.Paths() {
		n := g.Nodes[p]
		out.Nodes = append(out.Nodes, nodeJSON{
			Path:       p,
			Imports:    orEmpty(n.Imports),
			ImportedBy: orEmpty(n.ImportedBy),
			External:   n.External,
			Unresolved: n.Unresolved,
		})
	}
	return out
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func projectName(snap *domain.Snapshot) string {
	for _, p := range snap.Packages {
		if p.Dir == "." && p.Name != "" {
			return p.Name
		}
	}
	return filepath.Base(snap.Root)
}
