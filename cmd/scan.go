package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/vulnrecord/pkg/logging"
	"github.com/user/vulnrecord/pkg/scan"
)

// runScans appends the results of the named scans to the log at path.
func runScans(ctx context.Context, log *zap.SugaredLogger, path, target string, names []string) error {
	kinds, err := scan.ParseKinds(names, target)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open scan log: %w", err)
	}
	defer f.Close()

	results, err := scan.NewScanner(scan.ExecRunner{}, log).Run(ctx, kinds, target, f)
	for _, r := range results {
		status := "done"
		if r.Err != nil {
			status = "failed: " + r.Err.Error()
		}
		fmt.Printf("[%s] %s\n", r.Kind.Label(), status)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Scan results appended to %s\n", path)
	return nil
}

var scanCmd = &cobra.Command{
	Use:   "scan <scan-log>",
	Short: "Run nmap and lynis and append their results to a scan log",
	Long: `Runs the selected scans and appends one timestamped entry per scan to the
log file, ready for 'vulnrecord analyze'. Network scans (service, ports,
vuln) need --target; without one only the local lynis audit runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logging.New(DebugMode)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer log.Sync()

		target, _ := cmd.Flags().GetString("target")
		names, _ := cmd.Flags().GetStringSlice("scans")
		return runScans(cmd.Context(), log, args[0], target, names)
	},
}

func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("target", "t", "", "Host or IP address for the nmap scans")
	cmd.Flags().StringSlice("scans", nil, "Scans to run: service, ports, vuln, lynis (default: all with --target, lynis otherwise)")
}

func init() {
	addScanFlags(scanCmd)
	rootCmd.AddCommand(scanCmd)
}
