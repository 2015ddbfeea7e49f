package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pagetable/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile     string
	envFile     string
	logLevel    string
	logFormat   string
	pageSize    int
	delayMillis int
	driver      string
)

var rootCmd = &cobra.Command{
	Use:   "pagetable",
	Short: "Paginated data table over a simulated remote source",
	Long: `A terminal data table that pages through a remote result set with
server-driven pagination.

Features:
  - Grouped column headers (Name, Info)
  - Page navigation, page size selection and new random queries
  - Only the latest request is ever displayed, whatever order responses arrive in
  - In-memory source with simulated latency, or a MySQL table
  - Retry with backoff and a circuit breaker for transport failures`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Config file flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "pagetable.yaml",
		"Path to configuration file (defaults are used if it does not exist)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Path to a .env file loaded before the configuration")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Table and source overrides
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", 0,
		"Override the default page size")
	rootCmd.PersistentFlags().IntVar(&delayMillis, "delay", 0,
		"Override the simulated source delay in milliseconds")
	rootCmd.PersistentFlags().StringVar(&driver, "driver", "",
		"Override the source driver (memory, mysql)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:    logLevel,
		LogFormat:   logFormat,
		PageSize:    pageSize,
		DelayMillis: delayMillis,
		HasDelay:    rootCmd.PersistentFlags().Changed("delay"),
		Driver:      driver,
	}
}
