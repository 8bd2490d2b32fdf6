package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prm",
	Short: "PRM - Partner metrics and scoring engine",
	Long: `PRM Unified CLI

Partner relationship backend: monthly performance trends, lead conversion,
and composite partner scoring over CRM deal and lead activity.

Usage:
  go run ./cmd/prm [command]

Examples:
  go run ./cmd/prm api
  go run ./cmd/prm score --all
  go run ./cmd/prm scheduler start
  go run ./cmd/prm test-db`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
