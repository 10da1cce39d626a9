package main

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "cachetrace",
	Short: "Cachetrace simulates a one- or two-level cache hierarchy over " +
		"a memory access trace.",
	Long: `Cachetrace simulates an inclusive, write-back cache hierarchy ` +
		`driven by a trace of memory accesses. It prints one line per ` +
		`hit/miss/eviction/writeback event and a per-level summary, and ` +
		`can store the full run in a SQLite database or serve it over HTTP.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
