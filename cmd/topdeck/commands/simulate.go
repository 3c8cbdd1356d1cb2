package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MattVerwey/TopDeck-sub004/pkg/engine/scenario"
)

var (
	simulateFailure string
	simulateJSON    bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <resource-id>",
	Short: "Simulate a failure scenario for a resource",
	Long: `Model what happens when the resource fails in a given mode, with
probabilistic outcomes derived from the blast radius.

Example:
  topdeck simulate user-db --failure-type full_outage`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		failureType, err := scenario.ParseFailureType(simulateFailure)
		if err != nil {
			return err
		}

		e, _, _, err := setup(ctx)
		if err != nil {
			return err
		}

		sc, err := e.Simulate(ctx, args[0], failureType)
		if err != nil {
			return err
		}

		if simulateJSON {
			data, err := json.MarshalIndent(sc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Scenario: %s fails with %s\n", sc.ResourceID, sc.FailureType)
		fmt.Printf("Overall impact: %s\n\n", sc.OverallImpact)
		for _, o := range sc.Outcomes {
			fmt.Printf("  %3.0f%%  %-20s %.0fs downtime, %.0f%% of users\n",
				o.Probability*100, o.Type, o.DurationSeconds, o.AffectedPercentage)
			fmt.Printf("        %s\n", o.UserImpactDescription)
		}
		if len(sc.MitigationStrategies) > 0 {
			fmt.Println("\nMitigations:")
			for _, m := range sc.MitigationStrategies {
				fmt.Printf("  - %s\n", m)
			}
		}
		if len(sc.MonitoringRecommendations) > 0 {
			fmt.Println("\nMonitoring:")
			for _, m := range sc.MonitoringRecommendations {
				fmt.Printf("  - %s\n", m)
			}
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFailure, "failure-type", "f", "full_outage", "Failure type: full_outage, degraded_performance, intermittent_failure")
	simulateCmd.Flags().BoolVar(&simulateJSON, "json", false, "Output JSON")
}
