package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/engine"
)

var exportCmd = &cobra.Command{
	Use:   "export <report-id|report.json>",
	Short: "Export the findings of a report as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.loadReport(ctx, args[0])
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		out, _ := cmd.Flags().GetString("out")
		if out != "" {
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			w = f
		}
		if err := engine.WriteCSV(w, r); err != nil {
			return fmt.Errorf("failed to write CSV: %w", err)
		}
		if out != "" {
			fmt.Printf("Exported %d findings to %s\n", len(r.Vulnerabilities), out)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Write the CSV to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}
