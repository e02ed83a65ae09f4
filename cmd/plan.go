package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/engine"
	"github.com/user/vulnrecord/pkg/model"
)

var planCmd = &cobra.Command{
	Use:   "plan <report-id|report.json>",
	Short: "Show (and optionally apply) the remediation plan of a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		minSev, _ := cmd.Flags().GetString("min-severity")
		floor, ok := model.ParseSeverity(minSev)
		if !ok {
			return fmt.Errorf("invalid severity: %s", minSev)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.loadReport(ctx, args[0])
		if err != nil {
			return err
		}

		eng := engine.NewRemediationEngine(engine.ShellRunner{}, a.log)
		plan, err := eng.GeneratePlan(r, floor)
		if err != nil {
			return err
		}
		fmt.Print(plan)

		execute, _ := cmd.Flags().GetBool("execute")
		if !execute {
			fmt.Println("\n[DRY RUN] Re-run with --execute to apply these commands.")
			return nil
		}

		results, err := eng.Execute(ctx, r, floor)
		fmt.Println("\n[EXECUTION]")
		for _, res := range results {
			fmt.Printf("[%s] #%d %s\n", res.Status, res.SequenceID, res.Command)
			if res.Output != "" && res.Status != engine.StatusSuccess {
				fmt.Printf("    %s\n", res.Output)
			}
		}
		return err
	},
}

func init() {
	planCmd.Flags().Bool("execute", false, "Run the remediation commands")
	planCmd.Flags().String("min-severity", string(model.SevLow), "Only include findings at or above this severity")
	rootCmd.AddCommand(planCmd)
}
