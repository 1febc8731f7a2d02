package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deliverus/foodstore/internal/models"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics [restaurantID]",
	Short: "Print the popularity ranking and, for one restaurant, the daily dashboard",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := models.LoadConfig(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		store, cleanup, err := openStore(ctx, cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer cleanup()

		popular, err := store.Products.Popular(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println("Top products:")
		if len(popular) == 0 {
			fmt.Println("  (none)")
		}
		for i, product := range popular {
			fmt.Printf("  %d. %s (%s, %s): %d sold\n",
				i+1, product.Name, product.Restaurant.Name, product.RestaurantCategory.Name, product.SoldProductCount)
		}

		if len(args) == 0 {
			return
		}
		restaurantID := args[0]

		dashboard, err := store.Orders.Analytics(ctx, restaurantID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("\nRestaurant %s:\n", restaurantID)
		fmt.Printf("  orders yesterday:       %d\n", dashboard.NumYesterdayOrders)
		fmt.Printf("  pending orders:         %d\n", dashboard.NumPendingOrders)
		fmt.Printf("  delivered today:        %d\n", dashboard.NumDeliveredTodayOrders)
		fmt.Printf("  invoiced today:         %.2f\n", dashboard.InvoicedToday)

		average, err := store.Restaurants.AverageServiceTime(ctx, restaurantID)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if average == nil {
			fmt.Printf("  average service time:   n/a\n")
		} else {
			fmt.Printf("  average service time:   %.1f min\n", *average)
		}
	},
}

func init() {
	rootCmd.AddCommand(analyticsCmd)
}
