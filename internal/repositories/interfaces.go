// Package repositories defines the storage contract every backend
// satisfies. Implementations live in the postgres and mongodb
// subpackages; callers pick exactly one at composition time and never
// see native query objects across this boundary.
package repositories

import (
	"context"

	"github.com/deliverus/foodstore/internal/models"
)

// RestaurantRepository persists restaurants. FindByID yields the
// restaurant with its products populated in display order and both
// category kinds resolved; an unknown id yields (nil, nil), never an
// error. Destroy restricts on order history: a restaurant with orders
// fails with ConflictError on every backend.
type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Restaurant, error)
	FindAll(ctx context.Context) ([]*models.Restaurant, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*models.Restaurant, error)
	Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)
	Update(ctx context.Context, id string, patch models.RestaurantPatch) (*models.Restaurant, error)
	Destroy(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error)

	// AverageServiceTime computes the mean service minutes over the
	// restaurant's delivered orders; nil when none qualify.
	AverageServiceTime(ctx context.Context, id string) (*float64, error)
	// UpdateAverageServiceTime recomputes and persists the value onto
	// the restaurant. Read-modify-write without a lock: a concurrent
	// edit of the same restaurant can be clobbered. Accepted gap.
	UpdateAverageServiceTime(ctx context.Context, id string) (*models.Restaurant, error)
}

// ProductRepository persists products. Destroy restricts like the
// restaurant variant: a product referenced by order lines fails with
// ConflictError.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Destroy(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, product *models.Product) (*models.Product, error)

	// Popular returns the 3 most sold products in descending sold
	// count, decorated with restaurant and restaurant category. It
	// swallows internal errors and returns an empty slice instead.
	Popular(ctx context.Context) ([]models.PopularProduct, error)
	// HasBeenOrdered reports whether any order line references the
	// product.
	HasBeenOrdered(ctx context.Context, productID string) (bool, error)
}

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindByRestaurantID(ctx context.Context, restaurantID string, opts models.FindOptions) (*models.OrderPage, error)
	// FindByCustomerID pages through a customer's history newest
	// first, with each order's restaurant populated.
	FindByCustomerID(ctx context.Context, customerID string, page, limit int) (*models.OrderPage, error)
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error)
	Destroy(ctx context.Context, id string) (bool, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)

	// Analytics computes the four daily facets for one restaurant.
	Analytics(ctx context.Context, restaurantID string) (*models.OrderAnalytics, error)
}

type CategoryRepository interface {
	RestaurantCategories(ctx context.Context) ([]models.Category, error)
	ProductCategories(ctx context.Context) ([]models.Category, error)
	CreateRestaurantCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	CreateProductCategory(ctx context.Context, category *models.Category) (*models.Category, error)
}
