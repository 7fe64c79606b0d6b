package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "strand",
		Short: "Streaming HTML server toolkit",
		Long: `Strand is a streaming HTML server for Go.

Route files under a pages directory compile into a manifest of
specificity-scored patterns. Handlers return content trees that
stream to the client as ordered chunks, with slow subtrees deferred
behind suspense boundaries and delivered out of order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		routesCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}
