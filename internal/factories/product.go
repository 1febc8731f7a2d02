package factories

import (
	"math/rand"

	"github.com/deliverus/foodstore/internal/models"
)

type ProductFactory struct{}

func (pf *ProductFactory) CreateProduct(restaurantID, categoryID string, displayOrder int) *models.Product {
	return &models.Product{
		Name:              randomDishName(),
		Description:       fake.Lorem().Sentence(6),
		Price:             fake.Float64(2, 3, 40),
		Image:             fake.Internet().URL() + "/product.jpg",
		DisplayOrder:      displayOrder,
		Availability:      rand.Intn(10) > 0,
		RestaurantID:      restaurantID,
		ProductCategoryID: categoryID,
	}
}

func randomDishName() string {
	dishes := []string{
		"Margherita Pizza", "Pepperoni Pizza", "Spaghetti Carbonara", "Lasagna",
		"Chicken Tikka Masala", "Vegetable Curry", "Biryani", "Naan Bread",
		"Classic Cheeseburger", "Veggie Burger", "BBQ Ribs", "Hot Dog",
		"Sushi Roll", "Ramen", "Tempura", "Miso Soup",
		"Tacos", "Burrito", "Quesadilla", "Guacamole",
		"Pad Thai", "Green Curry", "Caesar Salad", "Greek Salad",
		"Falafel", "Hummus", "Gyros", "Moussaka",
		"Tiramisu", "Baklava", "Apple Pie", "Chocolate Shake",
	}
	return dishes[rand.Intn(len(dishes))]
}
