package cmd

import (
	"fmt"
	"os"

	"cohort-indexer/feature/portals"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Render the portal summary table",
	Long: `Renders every published portal record as a table sorted by name and
cohort, writes it to <output.dir>/index.txt and prints it. With --from (or
OUTPUT_AGGREGATE_ADDRESS) the records are read from the /portals/*.json files
published at that address instead of the local output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		from, _ := cmd.Flags().GetString("from")
		if from == "" {
			from = a.cfg.Output.AggregateAddress
		}

		var records []portals.Record
		if from != "" {
			recs, pass, err := portals.Aggregate(ctx, a.store, from, a.cfg.Crawl.Settle(), a.logger)
			if err != nil {
				return err
			}
			if !pass.Converged {
				a.logger.Warn("Aggregate source did not settle, summary may be partial", zap.String("address", from))
			}
			records = recs
		} else {
			recs, err := a.sink.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list portal records: %w", err)
			}
			records = recs
		}

		svc := portals.NewService(a.sink, a.cfg.Output.Dir, a.logger)
		if _, err := svc.WriteSummary(records); err != nil {
			return err
		}
		return portals.RenderSummary(os.Stdout, records)
	},
}

func init() {
	summaryCmd.Flags().String("from", "", "Address publishing /portals/*.json to summarize")
	RootCmd.AddCommand(summaryCmd)
}
