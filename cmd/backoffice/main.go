package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"kettle-backoffice/internal/app"
	"kettle-backoffice/internal/core"
	"kettle-backoffice/internal/db"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Back-office CLI for stock, procurement and catalogue management",
}

func init() {
	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(verifyDBCmd)
	rootCmd.AddCommand(seedCmd)

	// Stock
	rootCmd.AddCommand(stockCmd)

	// Procurement
	rootCmd.AddCommand(ordersCmd)

	// Catalogue
	rootCmd.AddCommand(catalogueCmd)
}

// boot loads .env, connects to the database and wires the application
// service. The returned pool must be closed by the caller.
func boot(ctx context.Context) (app.ApplicationService, *pgxpool.Pool, error) {
	_ = godotenv.Load()

	pool, err := db.NewPool(ctx)
	if err != nil {
		return nil, nil, err
	}

	stock := core.NewStockService(pool)
	svc := app.NewAppService(
		pool,
		core.NewProductService(pool),
		core.NewSupplierService(pool),
		stock,
		core.NewProcurementService(pool, stock),
		core.NewBundleService(pool),
		core.NewCatalogueService(pool),
	)
	return svc, pool, nil
}
