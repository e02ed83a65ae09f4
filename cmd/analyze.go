package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/user/vulnrecord/pkg/adk"
	"github.com/user/vulnrecord/pkg/source"
)

// writeThrough keeps a copy of the generated report text.
type writeThrough struct {
	src  source.Source
	path string
}

func (w writeThrough) Read(ctx context.Context) (string, error) {
	text, err := w.src.Read(ctx)
	if err != nil || w.path == "" {
		return text, err
	}
	if err := os.WriteFile(w.path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", w.path, err)
	}
	return text, nil
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <scan-log>",
	Short: "Generate a report from a raw scanner log with the configured model, then ingest it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		providerName := a.cfg.SelectedProvider
		apiKey := a.cfg.GetAPIKey(providerName)
		if apiKey == "" {
			return fmt.Errorf("no API key for %s; run 'vulnrecord config setup'", providerName)
		}

		if doScan, _ := cmd.Flags().GetBool("scan"); doScan {
			target, _ := cmd.Flags().GetString("target")
			names, _ := cmd.Flags().GetStringSlice("scans")
			if err := runScans(ctx, a.log, args[0], target, names); err != nil {
				return err
			}
		}

		fmt.Printf("Connecting to %s (Model: %s)...\n", providerName, a.cfg.SelectedModel)
		provider, err := adk.NewProvider(ctx, providerName, apiKey, a.cfg.SelectedModel)
		if err != nil {
			return fmt.Errorf("failed to create AI provider: %w", err)
		}
		if closer, ok := provider.(interface{ Close() }); ok {
			defer closer.Close()
		}

		out, _ := cmd.Flags().GetString("out")
		src := writeThrough{
			src: source.LLMSource{
				Log:      source.FileSource{Path: args[0]},
				Analyzer: adk.NewAnalyst(provider),
			},
			path: out,
		}

		res, err := a.ingestor.Ingest(ctx, src)
		if err != nil {
			return err
		}
		printOutcome(res)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringP("out", "o", "", "Also write the generated report text to this file")
	analyzeCmd.Flags().Bool("scan", false, "Run the scans and append them to the scan log first")
	addScanFlags(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}
