package factories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverus/foodstore/internal/models"
)

func TestCreateRestaurant(t *testing.T) {
	factory := &RestaurantFactory{}
	restaurant := factory.CreateRestaurant("cat-1", "owner-1")

	assert.Empty(t, restaurant.ID, "id assignment belongs to the repository")
	assert.Equal(t, "cat-1", restaurant.RestaurantCategoryID)
	assert.Equal(t, "owner-1", restaurant.UserID)
	assert.NoError(t, restaurant.Validate())
}

func TestCreateProduct(t *testing.T) {
	factory := &ProductFactory{}
	product := factory.CreateProduct("rest-1", "cat-1", 3)

	assert.Equal(t, 3, product.DisplayOrder)
	assert.Equal(t, "rest-1", product.RestaurantID)
	assert.NoError(t, product.Validate())
	assert.GreaterOrEqual(t, product.Price, 3.0)
}

func TestCreateOrder(t *testing.T) {
	restaurant := &models.Restaurant{
		ID:            "rest-1",
		ShippingCosts: 2.5,
		Products: []models.Product{
			{ID: "p1", Name: "Ramen", Price: 11.5},
			{ID: "p2", Name: "Tacos", Price: 4},
			{ID: "p3", Name: "Tiramisu", Price: 6},
		},
	}
	factory := &OrderFactory{}

	for i := 0; i < 50; i++ {
		order := factory.CreateOrder(restaurant, "customer-1")
		require.NotEmpty(t, order.Products)
		require.LessOrEqual(t, len(order.Products), 3)

		var total float64
		for _, line := range order.Products {
			assert.Positive(t, line.Quantity)
			total += line.UnityPrice * float64(line.Quantity)
		}
		assert.InDelta(t, total+restaurant.ShippingCosts, order.Price, 1e-9)
	}
}

func TestCreateOrderLifecycleIsMonotonic(t *testing.T) {
	restaurant := &models.Restaurant{
		ID:            "rest-1",
		ShippingCosts: 1,
		Products:      []models.Product{{ID: "p1", Name: "Ramen", Price: 10}},
	}
	factory := &OrderFactory{}

	for i := 0; i < 50; i++ {
		order := factory.CreateOrder(restaurant, "customer-1")
		if order.StartedAt != nil {
			assert.True(t, order.StartedAt.After(order.CreatedAt))
		}
		if order.SentAt != nil {
			require.NotNil(t, order.StartedAt)
			assert.True(t, order.SentAt.After(*order.StartedAt))
		}
		if order.DeliveredAt != nil {
			require.NotNil(t, order.SentAt)
			assert.True(t, order.DeliveredAt.After(*order.SentAt))
		}
	}
}

func TestCategorySeedSets(t *testing.T) {
	factory := &CategoryFactory{}

	restaurantCategories := factory.RestaurantCategories()
	productCategories := factory.ProductCategories()
	assert.NotEmpty(t, restaurantCategories)
	assert.NotEmpty(t, productCategories)
	for _, category := range append(restaurantCategories, productCategories...) {
		assert.NoError(t, category.Validate())
	}
}
