// Package cmd implements the command-line interface for the GATE question curator.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superawat/Gate-QA/cmd/audit"
	"github.com/superawat/Gate-QA/cmd/classify"
	"github.com/superawat/Gate-QA/cmd/common"
	"github.com/superawat/Gate-QA/cmd/merge"
)

// Version is set at build time with -ldflags "-X github.com/superawat/Gate-QA/cmd.Version=...".
var Version = "dev"

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gateqa",
		Short:         "Curate the GATE CSE question dataset",
		Long:          `gateqa merges scraped GATE Overflow questions into the canonical dataset, keeping it clean and CSE-only.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String(common.FlagConfig, "",
		"config file (default is $CONFIG_PATH or ./config.yml)")
	rootCmd.PersistentFlags().Bool(common.FlagDebug, false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gateqa version %s\n", Version)
		},
	})

	rootCmd.AddCommand(merge.Command())
	rootCmd.AddCommand(audit.Command())
	rootCmd.AddCommand(classify.Command())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().ExecuteContext(context.Background())
}
