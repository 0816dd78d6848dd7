package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"kettle-backoffice/internal/app"
)

var catalogueCmd = &cobra.Command{
	Use:   "catalogue",
	Short: "Browse the catalogue and quote prices",
}

func init() {
	catalogueCmd.AddCommand(catalogueListCmd)
	catalogueCmd.AddCommand(catalogueQuoteCmd)

	catalogueQuoteCmd.Flags().String("sku", "", "product SKU to quote")
	catalogueQuoteCmd.Flags().Int("bundle", 0, "bundle ID to quote")
	catalogueQuoteCmd.Flags().Int64("qty", 1, "quantity")
	catalogueQuoteCmd.Flags().String("code", "", "discount code")
	catalogueQuoteCmd.Flags().String("date", "", "order date (YYYY-MM-DD), defaults to today")
}

// backoffice catalogue list
var catalogueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all catalogue entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.ListCatalogue(ctx)
		if err != nil {
			return err
		}
		for _, e := range result.Entries {
			fmt.Printf("%-18s %8s  %s\n", e.Ref, e.Price, e.Description)
		}
		return nil
	},
}

// backoffice catalogue quote --sku SKU123 --qty 4 --code XMAS2020
var catalogueQuoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote the price of a product or bundle, optionally with a discount code",
	RunE: func(cmd *cobra.Command, args []string) error {
		sku, _ := cmd.Flags().GetString("sku")
		bundleID, _ := cmd.Flags().GetInt("bundle")
		qty, _ := cmd.Flags().GetInt64("qty")
		code, _ := cmd.Flags().GetString("code")
		date, _ := cmd.Flags().GetString("date")

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.QuotePrice(ctx, app.QuoteRequest{
			ProductSKU:   sku,
			BundleID:     bundleID,
			Quantity:     qty,
			DiscountCode: code,
			OrderDate:    date,
		})
		if err != nil {
			return err
		}

		fmt.Printf("%s x %s at %s\n", result.Ref, strconv.FormatInt(result.Quantity, 10), result.ListPrice)
		if result.DiscountCode != "" {
			fmt.Printf("After %s: %s\n", result.DiscountCode, result.FinalPrice)
		} else {
			fmt.Printf("Total: %s\n", result.FinalPrice)
		}
		return nil
	},
}
