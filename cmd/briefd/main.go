// Briefd assembles meeting-derived context packages for upcoming
// deliverables.
//
// The daemon exposes the assembly pipeline over HTTP; the same binary also
// offers one-shot commands for assembling a package locally and probing a
// running server.
//
// Usage:
//
//	# Start the daemon with defaults (embedded chromem store)
//	briefd serve
//
//	# Assemble a package directly, without a running daemon
//	briefd assemble --name "Q3 Board Report" --type report \
//	    --topic "revenue performance" --audience "executive team"
//
//	# Probe a running daemon
//	briefd health --server http://localhost:9180
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/briefd/internal/config"
)

var version = "dev"

// configPath is the optional YAML config file, shared by all subcommands.
var configPath string

var rootCmd = &cobra.Command{
	Use:     "briefd",
	Short:   "Deliverable context assembly daemon",
	Version: version,
	Long: `briefd turns accumulated meeting intelligence into ready-to-use context
packages for deliverables: who the audience is, what the deliverable must
contain, which decisions bind it, what worked last time, and what can go
wrong, each scored for completeness.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads configuration from the optional --config file plus
// environment overrides.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadWithFile(configPath)
	}
	return config.Load()
}
