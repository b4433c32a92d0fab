package cmd

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

// crawlCmd represents the crawl command
var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Crawl the cohort hierarchy once",
	Long: `Resolves the master list, every cohort list and every cohort's portals,
then writes the portal records that changed. Sources that time out or fail are
reported but never fail the crawl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		report, err := a.resolver().Run(ctx, "")
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return report.Render(os.Stdout)
	},
}

func init() {
	crawlCmd.Flags().Bool("json", false, "Print the run report as JSON")
	RootCmd.AddCommand(crawlCmd)
}
