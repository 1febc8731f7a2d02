package factories

import "github.com/deliverus/foodstore/internal/models"

type CategoryFactory struct{}

// RestaurantCategories returns the fixed seed set of restaurant
// categories.
func (cf *CategoryFactory) RestaurantCategories() []*models.Category {
	return categoriesFrom([]string{
		"Italian", "Indian", "American", "Japanese", "Mexican",
		"Chinese", "Thai", "Greek", "Mediterranean", "Fast Food",
	})
}

// ProductCategories returns the fixed seed set of product categories.
func (cf *CategoryFactory) ProductCategories() []*models.Category {
	return categoriesFrom([]string{
		"Starters", "Mains", "Sides", "Desserts", "Drinks",
	})
}

func categoriesFrom(names []string) []*models.Category {
	categories := make([]*models.Category, len(names))
	for i, name := range names {
		categories[i] = &models.Category{Name: name}
	}
	return categories
}
