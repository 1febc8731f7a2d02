package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/deliverus/foodstore/internal/export"
	"github.com/deliverus/foodstore/internal/models"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export order history to day-partitioned Parquet files",
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

		var exporter *export.OrderExporter
		if cfg.S3Bucket != "" {
			exporter, err = export.NewS3OrderExporter(ctx, cfg.ExportFolder, cfg.S3Bucket, cfg.S3Region)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		} else {
			exporter = export.NewOrderExporter(".", cfg.ExportFolder)
		}

		restaurants, err := store.Restaurants.FindAll(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		var exported int
		bar := progressbar.Default(int64(len(restaurants)), "exporting orders")
		for _, restaurant := range restaurants {
			page, err := store.Orders.FindByRestaurantID(ctx, restaurant.ID, models.FindOptions{})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			for _, order := range page.Items {
				if err := exporter.WriteOrder(ctx, order); err != nil {
					fmt.Fprintln(os.Stderr, err)
					os.Exit(1)
				}
				exported++
			}
			bar.Add(1)
		}

		if err := exporter.Close(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Exported %d orders\n", exported)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
