// Package main implements the mzcc CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "mzcc",
	Short:         "Compile a restricted C subset into 16-bit MZ executables",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(checksumCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
