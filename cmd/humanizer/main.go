// Package main provides the humanizer command line tool and HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "humanizer",
		Short: "Rewrite machine-sounding prose so it reads naturally",
		Long: `humanizer rewrites text through a deterministic, seeded pipeline of stages (typography, formulaic
phrase removal, paraphrasing, sentence restructuring) while protecting code, links and other spans,
and scores texts for machine-generation markers.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newTransformCmd(),
		newDetectCmd(),
		newBatchCmd(),
		newServeCmd(),
		newProfilesCmd(),
	)
	return rootCmd
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
