package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "circuijts",
	Short: "Circuijt - circuit notation parsing and analysis tools",
	Long: `Circuijt (circuijts) processes .circuijt circuit topology files:
  - Parsing and validation of the circuit notation
  - Topological short circuit detection
  - Small-signal model generation for MOS devices

Examples:
  circuijts shorts amp.circuijt          # Detect topological shorts
  circuijts ssm amp.circuijt --stdout    # Generate small-signal model
  circuijts info amp.circuijt            # Show circuit summary
  circuijts fmt amp.circuijt             # Print canonical form`,
	Version: "0.3.0",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
