package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/engine"
	"github.com/user/vulnrecord/pkg/source"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <report-file>",
	Short: "Parse a scan report and save it to the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		out, err := a.ingestor.Ingest(cmd.Context(), source.FileSource{Path: args[0]})
		if err != nil {
			return err
		}
		printOutcome(out)
		return nil
	},
}

func printOutcome(out *engine.Outcome) {
	for _, ce := range out.Result.Skipped {
		fmt.Printf("warning: %v\n", ce)
	}
	fmt.Printf("Document inserted with _id: %s\n", out.Document.ID)
	fmt.Printf("Report ID: %s\n", out.Document.Report.ReportID)
	fmt.Printf("Vulnerabilities: %d\n", out.Document.Report.Summary.TotalVulnerabilities)
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
