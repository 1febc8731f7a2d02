package factories

import (
	"math/rand"
	"time"

	"github.com/deliverus/foodstore/internal/models"
)

type OrderFactory struct{}

// CreateOrder builds an order against the restaurant's products with
// 1 to 3 lines, a consistent total and a random point in the
// pending/in process/sent/delivered lifecycle. CreatedAt falls inside
// the last two days so the daily analytics facets have data to count.
func (of *OrderFactory) CreateOrder(restaurant *models.Restaurant, userID string) *models.Order {
	lineCount := rand.Intn(3) + 1
	if lineCount > len(restaurant.Products) {
		lineCount = len(restaurant.Products)
	}

	var lines []models.OrderedProduct
	var total float64
	for _, i := range rand.Perm(len(restaurant.Products))[:lineCount] {
		product := restaurant.Products[i]
		quantity := rand.Intn(3) + 1
		lines = append(lines, models.OrderedProduct{
			ProductID:  product.ID,
			Name:       product.Name,
			Image:      product.Image,
			UnityPrice: product.Price,
			Quantity:   quantity,
		})
		total += product.Price * float64(quantity)
	}

	order := &models.Order{
		CreatedAt:     time.Now().Add(-time.Duration(rand.Intn(48*60)) * time.Minute),
		Price:         total + restaurant.ShippingCosts,
		Address:       fake.Address().StreetAddress(),
		ShippingCosts: restaurant.ShippingCosts,
		RestaurantID:  restaurant.ID,
		UserID:        userID,
		Products:      lines,
	}
	of.advanceLifecycle(order)
	return order
}

func (of *OrderFactory) advanceLifecycle(order *models.Order) {
	stage := rand.Intn(4)
	at := order.CreatedAt
	if stage >= 1 {
		at = at.Add(time.Duration(rand.Intn(10)+1) * time.Minute)
		started := at
		order.StartedAt = &started
	}
	if stage >= 2 {
		at = at.Add(time.Duration(rand.Intn(20)+5) * time.Minute)
		sent := at
		order.SentAt = &sent
	}
	if stage >= 3 {
		at = at.Add(time.Duration(rand.Intn(30)+10) * time.Minute)
		delivered := at
		order.DeliveredAt = &delivered
	}
}
