package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MattVerwey/TopDeck-sub004/pkg/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the topology interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func runTUI(ctx context.Context) error {
	e, g, _, err := setup(ctx)
	if err != nil {
		return err
	}
	return tui.Run(e, g)
}
