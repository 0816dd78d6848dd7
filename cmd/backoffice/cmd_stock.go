package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kettle-backoffice/internal/app"
)

var stockCmd = &cobra.Command{
	Use:   "stock",
	Short: "Inspect and adjust stock levels",
}

func init() {
	stockCmd.AddCommand(stockLevelsCmd)
	stockCmd.AddCommand(stockAlertsCmd)
	stockCmd.AddCommand(stockMovementsCmd)
	stockCmd.AddCommand(stockAdjustCmd)

	stockAdjustCmd.Flags().String("sku", "", "product SKU")
	stockAdjustCmd.Flags().Int("location", 0, "location ID")
	stockAdjustCmd.Flags().Int64("delta", 0, "quantity change, negative to deduct")
	stockAdjustCmd.Flags().String("ref", "", "free-form reference for the audit trail")
	stockAdjustCmd.MarkFlagRequired("sku")
	stockAdjustCmd.MarkFlagRequired("location")
	stockAdjustCmd.MarkFlagRequired("delta")
}

// backoffice stock levels
var stockLevelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Show on-hand quantities per product and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.GetStockLevels(ctx)
		if err != nil {
			return err
		}
		for _, l := range result.Levels {
			fmt.Printf("%-10s %-28s %-20s %6d\n", l.ProductSKU, l.ProductName, l.LocationName, l.Quantity)
		}
		return nil
	},
}

// backoffice stock alerts
var stockAlertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show products at or under their reorder threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.ListStockBelowThreshold(ctx)
		if err != nil {
			return err
		}
		if len(result.Alerts) == 0 {
			fmt.Println("No products need reordering.")
			return nil
		}
		for _, a := range result.Alerts {
			fmt.Printf("%-10s %-28s on hand %d, threshold %d\n",
				a.ProductSKU, a.ProductName, a.TotalOnHand, a.QtyThreshold)
		}
		return nil
	},
}

// backoffice stock movements <sku>
var stockMovementsCmd = &cobra.Command{
	Use:   "movements <sku>",
	Short: "Show the movement audit trail for a product, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.GetStockMovements(ctx, args[0])
		if err != nil {
			return err
		}
		for _, m := range result.Movements {
			order := "-"
			if m.OrderID != nil {
				order = fmt.Sprintf("order %d", *m.OrderID)
			}
			fmt.Printf("%s  %-10s loc %d  %+6d  %-10s %-10s %s\n",
				m.MovedAt.Format("2006-01-02 15:04"), m.ProductSKU, m.LocationID,
				m.Delta, m.Reason, order, m.Reference)
		}
		return nil
	},
}

// backoffice stock adjust --sku SKU123 --location 1 --delta -5 --ref "damaged in storage"
var stockAdjustCmd = &cobra.Command{
	Use:   "adjust",
	Short: "Apply a manual stock correction at a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		sku, _ := cmd.Flags().GetString("sku")
		location, _ := cmd.Flags().GetInt("location")
		delta, _ := cmd.Flags().GetInt64("delta")
		ref, _ := cmd.Flags().GetString("ref")

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := svc.AdjustStock(ctx, app.AdjustStockRequest{
			ProductSKU: sku,
			LocationID: location,
			Delta:      delta,
			Reference:  ref,
		}); err != nil {
			return err
		}
		fmt.Printf("Adjusted %s at location %d by %+d\n", sku, location, delta)
		return nil
	},
}
