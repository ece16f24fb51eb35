package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	host   string
	tenant string
	dryRun bool
)

var rootCmd = &cobra.Command{
	Use:   "rankings-cli",
	Short: "A CLI to interact with the rankings server",
	Long: `A command-line interface for making requests to the various endpoints
of the rankings service: rankings, results, CSV imports and player merges.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "The host address of the server")
	rootCmd.PersistentFlags().StringVar(&tenant, "tenant", "", "Tenant to act on (defaults to the server's tenant)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log writes on the server without applying them")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your command '%s'", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
