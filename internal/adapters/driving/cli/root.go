// Package cli wires the service together behind a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/weave/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "weave",
	Short: "OAuth credential broker and knowledge assistant for SaaS integrations",
	Long: `weave brokers OAuth flows against Airtable, Hubspot and Notion,
normalises their records into canonical items, and feeds a per-tenant
knowledge index that grounds a conversational assistant.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.toml", "path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
