package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vulnrecord",
	Short: "Turn AI-generated vulnerability scan reports into validated records",
	Long: `vulnrecord parses chunked, AI-generated vulnerability scan reports into
structured findings, validates them against the report schema and stores them
as queryable documents.`,
	SilenceUsage: true,
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
}
