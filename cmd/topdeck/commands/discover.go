package commands

import (
	"github.com/spf13/cobra"

	"github.com/MattVerwey/TopDeck-sub004/pkg/graph"
)

var discoverOut string

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover the topology and save a snapshot",
	Long: `Run the enabled discovery sources and write the resulting topology
to a snapshot file for later analysis.

Example:
  topdeck discover --region us-east-1 --out topology.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()

		g, err := buildGraph(cmd.Context(), logger)
		if err != nil {
			return err
		}

		logger.Info("discovery complete", "stats", g.DumpStats(), "partial", g.Metadata.Partial)
		for _, scope := range g.Metadata.FailedScopes {
			logger.Warn("scope failed during discovery", "scope", scope.Scope, "error", scope.Error)
		}

		if err := graph.SaveSnapshot(g, discoverOut); err != nil {
			return err
		}
		logger.Info("snapshot written", "path", discoverOut)
		return nil
	},
}

func init() {
	discoverCmd.Flags().StringVarP(&discoverOut, "out", "o", "topology.yaml", "Snapshot output path")
}
