package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/engine"
	"github.com/user/vulnrecord/pkg/logging"
	"github.com/user/vulnrecord/pkg/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse <report-file>",
	Short: "Parse a scan report and print the structured record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(DebugMode)
		if err != nil {
			return err
		}
		defer log.Sync()

		text, err := source.FileSource{Path: args[0]}.Read(cmd.Context())
		if err != nil {
			return err
		}
		res := engine.NewParser(log).Parse(text)
		for _, ce := range res.Skipped {
			fmt.Fprintf(os.Stderr, "warning: %v\n", ce)
		}

		data, err := json.MarshalIndent(res.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		out, _ := cmd.Flags().GetString("out")
		if out != "" {
			if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}
			fmt.Printf("Report %s written to %s\n", res.Report.ReportID, out)
			return nil
		}
		fmt.Println(string(data))
		return nil
	},
}

func init() {
	parseCmd.Flags().StringP("out", "o", "", "Write the report JSON to this file")
	rootCmd.AddCommand(parseCmd)
}
