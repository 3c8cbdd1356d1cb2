package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var blastDepth int
var blastJSON bool

var blastCmd = &cobra.Command{
	Use:   "blast <resource-id>",
	Short: "Compute the blast radius of a resource failure",
	Long: `Trace every resource that would be affected if the given resource
failed, split into direct and transitive dependents.

Example:
  topdeck blast user-db --snapshot topology.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, _, _, err := setup(ctx)
		if err != nil {
			return err
		}

		report, err := e.BlastRadius(ctx, args[0], blastDepth)
		if err != nil {
			return err
		}

		if blastJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Blast radius of %s:\n", report.ResourceID)
		fmt.Printf("  Direct:   %d\n", len(report.DirectlyAffected))
		for _, r := range report.DirectlyAffected {
			fmt.Printf("    - %s (%s)\n", r.IDStr(), r.Type)
		}
		fmt.Printf("  Indirect: %d\n", len(report.IndirectlyAffected))
		for _, r := range report.IndirectlyAffected {
			fmt.Printf("    - %s (%s)\n", r.IDStr(), r.Type)
		}
		fmt.Printf("  Estimated downtime: %.0fs\n", report.EstimatedDowntimeSeconds)
		fmt.Printf("  User impact: %s\n", report.UserImpact)
		if len(report.CriticalPath) > 0 {
			fmt.Printf("  Critical path: %v\n", report.CriticalPath)
		}
		return nil
	},
}

func init() {
	blastCmd.Flags().IntVar(&blastDepth, "depth", 0, "Traversal depth limit (0 = configured default)")
	blastCmd.Flags().BoolVar(&blastJSON, "json", false, "Output JSON")
}
