package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pagetable/internal/config"
	"github.com/dbsmedya/pagetable/internal/logger"
)

var seedCount int

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the MySQL table with generated records",
	Long: `Seed replaces the contents of the configured MySQL table with
freshly generated records. The table is created if it does not exist.

Reseeding holds the advisory lock pagetable:seed:<table>, so it waits for
any other process reseeding the same table.

Example:
  pagetable seed --driver mysql --count 250`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 100,
		"Number of records to insert")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedCount < 0 {
		return fmt.Errorf("count cannot be negative: %d", seedCount)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Source.Driver != config.DriverMySQL {
		return fmt.Errorf("seed requires the %s driver, configured driver is %q", config.DriverMySQL, cfg.Source.Driver)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := SetupSignalHandler(context.Background(), func(sig os.Signal) {
		log.Warnw("Received shutdown signal", "signal", sig.String())
	})
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sql.Seed(ctx, seedCount); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	cmd.Printf("Seeded %d records into table %s\n", seedCount, cfg.Source.Table)
	return nil
}
