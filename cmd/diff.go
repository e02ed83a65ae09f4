package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/engine"
)

var diffCmd = &cobra.Command{
	Use:   "diff <baseline> <current>",
	Short: "Compare two reports and show new, fixed and unchanged findings",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		baseline, err := a.loadReport(ctx, args[0])
		if err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
		current, err := a.loadReport(ctx, args[1])
		if err != nil {
			return fmt.Errorf("current: %w", err)
		}

		d := engine.CompareReports(baseline, current)
		fmt.Print(engine.FormatDiff(baseline.ReportID, current.ReportID, d))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
