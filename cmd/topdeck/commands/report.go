package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/MattVerwey/TopDeck-sub004/internal/report"
	"github.com/MattVerwey/TopDeck-sub004/pkg/engine"
	awsprovider "github.com/MattVerwey/TopDeck-sub004/pkg/providers/aws"
	"github.com/MattVerwey/TopDeck-sub004/pkg/storage"
)

var (
	reportJSON    bool
	reportOut     string
	reportArchive bool
)

var reportCmd = &cobra.Command{
	Use:   "report [resource-id...]",
	Short: "Full risk report: blast radius, score and scenarios",
	Long: `Run the complete analysis pipeline. With no arguments, every
resource in the topology is analyzed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, g, logger, err := setup(ctx)
		if err != nil {
			return err
		}

		ids := args
		if len(ids) == 0 {
			for _, res := range g.Store.GetAllResources() {
				ids = append(ids, res.IDStr())
			}
		}

		var reports []*engine.ResourceRiskReport
		for _, id := range ids {
			r, err := e.RiskReport(ctx, id)
			if err != nil {
				if len(args) > 0 {
					return err
				}
				logger.Warn("skipping resource", "resource", id, "error", err)
				continue
			}
			reports = append(reports, r)
		}

		if reportArchive {
			if err := archiveReports(ctx, reports, logger); err != nil {
				return err
			}
		}

		if reportOut != "" {
			if err := report.WriteJSON(reports, reportOut); err != nil {
				return err
			}
			logger.Info("report written", "path", reportOut, "resources", len(reports))
			return nil
		}

		for _, r := range reports {
			if reportJSON {
				data, err := report.MarshalJSON(r)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				continue
			}
			fmt.Println(report.Render(r))
		}
		return nil
	},
}

// archiveReports keeps a timestamped copy of every report run, locally
// or in S3 when a bucket is configured.
func archiveReports(ctx context.Context, reports []*engine.ResourceRiskReport, logger *slog.Logger) error {
	items := make([]report.Item, 0, len(reports))
	for _, r := range reports {
		items = append(items, report.NewItem(r))
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	var store storage.BlobStore
	if config.ArchiveBucket != "" {
		awsCfg, err := awsprovider.NewConfig(ctx, config.Region, config.Profile)
		if err != nil {
			return fmt.Errorf("archive backend: %w", err)
		}
		store = storage.NewS3Store(awsCfg, config.ArchiveBucket)
	} else {
		store = storage.NewLocalStore("")
	}

	key := fmt.Sprintf("reports/%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	logger.Info("report archived", "key", key, "resources", len(items))
	return nil
}

func init() {
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output JSON")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Write JSON report to a file")
	reportCmd.Flags().BoolVar(&reportArchive, "archive", false, "Keep a timestamped copy in the report archive")
}
