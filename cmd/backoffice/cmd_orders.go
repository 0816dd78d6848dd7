package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"kettle-backoffice/internal/app"
	"kettle-backoffice/internal/core"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Manage procurement orders",
}

func init() {
	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersShowCmd)
	ordersCmd.AddCommand(ordersCreateCmd)
	ordersCmd.AddCommand(ordersPaidCmd)
	ordersCmd.AddCommand(ordersTransitCmd)
	ordersCmd.AddCommand(ordersFulfilCmd)
	ordersCmd.AddCommand(ordersCancelCmd)

	ordersListCmd.Flags().String("status", "", "filter by fulfilment status (CREATED, IN_TRANSIT, FULFILLED, CANCELLED)")

	ordersCreateCmd.Flags().Int("supplier", 0, "supplier ID")
	ordersCreateCmd.Flags().Int("location", 0, "receiving location ID")
	ordersCreateCmd.Flags().String("date", "", "order date (YYYY-MM-DD), defaults to today")
	ordersCreateCmd.Flags().StringArray("item", nil, "order line as sku:qty:rate, repeatable")
	ordersCreateCmd.Flags().StringArray("bundle", nil, "bundle line as bundleID:qty:rate, repeatable")
	ordersCreateCmd.MarkFlagRequired("supplier")
	ordersCreateCmd.MarkFlagRequired("location")
}

// backoffice orders list [--status FULFILLED]
var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List procurement orders, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.ListOrders(ctx, status)
		if err != nil {
			return err
		}
		for _, o := range result.Orders {
			fmt.Printf("#%-5d %s  %-26s %-10s %-11s %s %s\n",
				o.ID, o.OrderDate, o.SupplierName, o.Payment, o.Fulfilment, o.Currency, o.TotalAmount)
		}
		return nil
	},
}

// backoffice orders show <id>
var ordersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one procurement order with its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("order ID must be numeric, got %q", args[0])
		}

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		printOrder(result.Order)
		return nil
	},
}

// backoffice orders create --supplier 1 --location 1 --item SKU123:20:16
var ordersCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a procurement order from product and bundle lines",
	RunE: func(cmd *cobra.Command, args []string) error {
		supplier, _ := cmd.Flags().GetInt("supplier")
		location, _ := cmd.Flags().GetInt("location")
		date, _ := cmd.Flags().GetString("date")
		itemSpecs, _ := cmd.Flags().GetStringArray("item")
		bundleSpecs, _ := cmd.Flags().GetStringArray("bundle")

		var lines []app.OrderLineInput
		for _, spec := range itemSpecs {
			sku, qty, rate, err := parseLineSpec(spec)
			if err != nil {
				return err
			}
			lines = append(lines, app.OrderLineInput{ProductSKU: sku, Quantity: qty, Rate: rate})
		}
		for _, spec := range bundleSpecs {
			idStr, qty, rate, err := parseLineSpec(spec)
			if err != nil {
				return err
			}
			bundleID, err := strconv.Atoi(idStr)
			if err != nil {
				return fmt.Errorf("bundle ID must be numeric in %q", spec)
			}
			lines = append(lines, app.OrderLineInput{BundleID: bundleID, Quantity: qty, Rate: rate})
		}

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := svc.CreateOrder(ctx, app.CreateOrderRequest{
			SupplierID: supplier,
			LocationID: location,
			OrderDate:  date,
			Lines:      lines,
		})
		if err != nil {
			return err
		}
		printOrder(result.Order)
		return nil
	},
}

var ordersPaidCmd = &cobra.Command{
	Use:   "paid <id>",
	Short: "Mark an order's payment as PAID",
	Args:  cobra.ExactArgs(1),
	RunE: transitionRunE(func(svc app.ApplicationService, ctx context.Context, id int) (*app.OrderResult, error) {
		return svc.MarkPaid(ctx, id)
	}),
}

var ordersTransitCmd = &cobra.Command{
	Use:   "transit <id>",
	Short: "Mark an order as IN_TRANSIT",
	Args:  cobra.ExactArgs(1),
	RunE: transitionRunE(func(svc app.ApplicationService, ctx context.Context, id int) (*app.OrderResult, error) {
		return svc.MarkInTransit(ctx, id)
	}),
}

var ordersFulfilCmd = &cobra.Command{
	Use:   "fulfil <id>",
	Short: "Mark an order as FULFILLED and receive its items into stock",
	Args:  cobra.ExactArgs(1),
	RunE: transitionRunE(func(svc app.ApplicationService, ctx context.Context, id int) (*app.OrderResult, error) {
		return svc.MarkFulfilled(ctx, id)
	}),
}

var ordersCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel an unfulfilled order",
	Args:  cobra.ExactArgs(1),
	RunE: transitionRunE(func(svc app.ApplicationService, ctx context.Context, id int) (*app.OrderResult, error) {
		return svc.CancelOrder(ctx, id)
	}),
}

func transitionRunE(fn func(app.ApplicationService, context.Context, int) (*app.OrderResult, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("order ID must be numeric, got %q", args[0])
		}

		ctx := context.Background()
		svc, pool, err := boot(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		result, err := fn(svc, ctx, id)
		if err != nil {
			return err
		}
		printOrder(result.Order)
		return nil
	}
}

// parseLineSpec splits "ref:qty:rate" into its parts.
func parseLineSpec(spec string) (ref string, qty int64, rate decimal.Decimal, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return "", 0, decimal.Zero, fmt.Errorf("line %q must be ref:qty:rate", spec)
	}
	qty, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, decimal.Zero, fmt.Errorf("quantity must be numeric in %q", spec)
	}
	rate, err = decimal.NewFromString(parts[2])
	if err != nil {
		return "", 0, decimal.Zero, fmt.Errorf("rate must be numeric in %q", spec)
	}
	return parts[0], qty, rate, nil
}

func printOrder(o *core.ProcurementOrder) {
	fmt.Printf("Order #%d  %s\n", o.ID, o.OrderDate)
	fmt.Printf("Supplier: %s <%s>\n", o.SupplierName, o.SupplierEmail)
	fmt.Printf("Deliver to: %s\n", o.LocationName)
	fmt.Printf("Status: payment %s, fulfilment %s\n", o.Payment, o.Fulfilment)
	for _, it := range o.Items {
		fmt.Printf("  %2d. %-10s %-28s %6d x %8s = %10s\n",
			it.LineNumber, it.ProductSKU, it.ProductName, it.Quantity, it.Rate, it.LineTotal)
	}
	fmt.Printf("Total: %s %s\n", o.Currency, o.TotalAmount)
}
