package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/medusa"
)

var (
	filePath string
	dryRun   bool
)

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Grant collected coupon codes to customers from a CSV file",
	Long: `Reads a CSV file with customer_id and code columns and appends each
code to the customer's collected coupons through the Medusa Admin API.
Codes a customer already holds are skipped.`,
	SilenceUsage: true,
	RunE:         runImport,
}

func init() {
	rootCmd.Flags().StringVarP(&filePath, "file", "f", "", "Path to the coupon CSV file")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and diff without writing to the backend")
	_ = rootCmd.MarkFlagRequired("file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, _ []string) error {
	cfg := config.FromEnv()
	if strings.TrimSpace(cfg.Medusa.SecretKey) == "" {
		return fmt.Errorf("MEDUSA_SECRET_KEY is required")
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	admin := medusa.NewAdmin(medusa.Options{
		BaseURL: cfg.Medusa.BackendURL,
		Timeout: cfg.Medusa.Timeout,
		Logger:  logger,
	}, cfg.Medusa.SecretKey)

	start := time.Now()
	stats, err := importer.NewCSVImporter(f, admin, dryRun, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("import failed after %d rows: %w", stats.Rows, err)
	}

	logger.Info("import finished",
		zap.Int("rows", stats.Rows),
		zap.Int("customers", stats.Customers),
		zap.Int("added", stats.Added),
		zap.Int("skipped", stats.Skipped),
		zap.Bool("dry_run", dryRun),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d codes for %d customers (%d already held)\n", stats.Added, stats.Customers, stats.Skipped)
	return nil
}
