package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deliverus/foodstore/internal/repositories/mongodb"
	"github.com/deliverus/foodstore/internal/repositories/postgres"
)

// Store bundles one repository per aggregate, all bound to the same
// backend.
type Store struct {
	Restaurants RestaurantRepository
	Products    ProductRepository
	Orders      OrderRepository
	Categories  CategoryRepository
}

func NewPostgres(pool *pgxpool.Pool) *Store {
	return &Store{
		Restaurants: postgres.NewRestaurantRepository(pool),
		Products:    postgres.NewProductRepository(pool),
		Orders:      postgres.NewOrderRepository(pool),
		Categories:  postgres.NewCategoryRepository(pool),
	}
}

func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Restaurants: mongodb.NewRestaurantRepository(db),
		Products:    mongodb.NewProductRepository(db),
		Orders:      mongodb.NewOrderRepository(db),
		Categories:  mongodb.NewCategoryRepository(db),
	}
}
