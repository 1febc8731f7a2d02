package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/deliverus/foodstore/internal/events"
	"github.com/deliverus/foodstore/internal/factories"
	"github.com/deliverus/foodstore/internal/models"
	"github.com/deliverus/foodstore/internal/repositories"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the configured backend with randomized data",
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

		publisher := events.Publisher(events.NoopPublisher{})
		if cfg.KafkaEnabled {
			publisher, err = events.NewSaramaPublisher(cfg.KafkaBrokerList, cfg.KafkaTopic)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		}
		defer publisher.Close()

		if err := runSeed(ctx, cfg, store, publisher); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(ctx context.Context, cfg *models.Config, store *repositories.Store, publisher events.Publisher) error {
	categoryFactory := &factories.CategoryFactory{}
	restaurantFactory := &factories.RestaurantFactory{}
	productFactory := &factories.ProductFactory{}
	orderFactory := &factories.OrderFactory{}

	var restaurantCategories []*models.Category
	for _, category := range categoryFactory.RestaurantCategories() {
		created, err := store.Categories.CreateRestaurantCategory(ctx, category)
		if err != nil {
			return fmt.Errorf("seeding restaurant categories: %w", err)
		}
		restaurantCategories = append(restaurantCategories, created)
	}
	var productCategories []*models.Category
	for _, category := range categoryFactory.ProductCategories() {
		created, err := store.Categories.CreateProductCategory(ctx, category)
		if err != nil {
			return fmt.Errorf("seeding product categories: %w", err)
		}
		productCategories = append(productCategories, created)
	}

	customers := make([]string, cfg.SeedCustomers)
	for i := range customers {
		customers[i] = fmt.Sprintf("customer-%03d", i+1)
	}

	bar := progressbar.Default(int64(cfg.SeedRestaurants), "seeding restaurants")
	for i := 0; i < cfg.SeedRestaurants; i++ {
		ownerID := fmt.Sprintf("owner-%03d", i+1)
		category := restaurantCategories[rand.Intn(len(restaurantCategories))]
		restaurant, err := store.Restaurants.Create(ctx, restaurantFactory.CreateRestaurant(category.ID, ownerID))
		if err != nil {
			return fmt.Errorf("seeding restaurant: %w", err)
		}

		for j := 0; j < cfg.SeedProductsPerPlace; j++ {
			productCategory := productCategories[rand.Intn(len(productCategories))]
			product := productFactory.CreateProduct(restaurant.ID, productCategory.ID, j+1)
			if _, err := store.Products.Create(ctx, product); err != nil {
				return fmt.Errorf("seeding product: %w", err)
			}
		}

		// re-read so the order factory sees the assigned product ids
		restaurant, err = store.Restaurants.FindByID(ctx, restaurant.ID)
		if err != nil {
			return fmt.Errorf("reloading restaurant: %w", err)
		}

		for j := 0; j < cfg.SeedOrdersPerPlace; j++ {
			customer := customers[rand.Intn(len(customers))]
			order, err := store.Orders.Create(ctx, orderFactory.CreateOrder(restaurant, customer))
			if err != nil {
				return fmt.Errorf("seeding order: %w", err)
			}
			if err := publisher.PublishOrder(events.NewOrderEvent(order)); err != nil {
				log.Printf("Failed to publish order event: %v", err)
			}
		}

		if _, err := store.Restaurants.UpdateAverageServiceTime(ctx, restaurant.ID); err != nil {
			return fmt.Errorf("updating average service time: %w", err)
		}
		bar.Add(1)
	}
	return nil
}
