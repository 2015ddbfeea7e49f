package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pagetable/internal/config"
	"github.com/dbsmedya/pagetable/internal/database"
	"github.com/dbsmedya/pagetable/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and check the database",
	Long: `Validate checks the configuration file and, for the mysql driver,
that the database is reachable.

Checks performed:
  - Configuration syntax and value ranges
  - Page size options
  - Database connectivity (mysql driver only)

Example:
  pagetable validate --config pagetable.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile := GetConfigFile()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting validation checks...")

	cmd.Printf("\n=== Configuration Validation ===\n")
	cmd.Printf("Config file: %s\n", configFile)
	cmd.Printf("Driver: %s\n", cfg.Source.Driver)
	cmd.Printf("Page size: %d (options %v)\n", cfg.Table.DefaultPageSize, cfg.Table.PageSizeOptions)
	cmd.Printf("Delay: %s\n", cfg.Source.Delay())
	cmd.Printf("Result set size: %d-%d\n", cfg.Source.MinResults, cfg.Source.MaxResults)

	if cfg.Source.Driver == config.DriverMySQL {
		ctx := context.Background()

		dbManager := database.NewManager(&cfg.Database)
		if err := dbManager.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer dbManager.Close()

		if err := dbManager.Ping(ctx); err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		cmd.Printf("Database: %s:%d/%s reachable\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)
	}

	cmd.Println("=== Validation Complete ===")
	return nil
}
