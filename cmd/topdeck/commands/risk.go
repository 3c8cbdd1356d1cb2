package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var riskJSON bool

var riskCmd = &cobra.Command{
	Use:   "risk <resource-id>",
	Short: "Assess the structural risk of a resource",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, _, _, err := setup(ctx)
		if err != nil {
			return err
		}

		assessment, err := e.AssessRisk(ctx, args[0])
		if err != nil {
			return err
		}

		if riskJSON {
			data, err := json.MarshalIndent(assessment, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Risk assessment for %s:\n", assessment.ResourceID)
		fmt.Printf("  Score:        %.1f / 100\n", assessment.RiskScore)
		fmt.Printf("  Dependencies: %d out, %d in\n", assessment.DependenciesCount, assessment.DependentsCount)
		fmt.Printf("  SPOF:         %v\n", assessment.SinglePointOfFailure)
		for _, rec := range assessment.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
		return nil
	},
}

func init() {
	riskCmd.Flags().BoolVar(&riskJSON, "json", false, "Output JSON")
}
