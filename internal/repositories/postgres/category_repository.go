package postgres

import (
	"context"
	"time"

	"github.com/deliverus/foodstore/internal/models"
	"github.com/lucsky/cuid"
)

type CategoryRepository struct {
	pool DB
}

func NewCategoryRepository(pool DB) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) RestaurantCategories(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, "restaurant_categories")
}

func (r *CategoryRepository) ProductCategories(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, "product_categories")
}

func (r *CategoryRepository) list(ctx context.Context, table string) ([]models.Category, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM `+table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) CreateRestaurantCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	return r.create(ctx, "restaurant_categories", category)
}

func (r *CategoryRepository) CreateProductCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	return r.create(ctx, "product_categories", category)
}

func (r *CategoryRepository) create(ctx context.Context, table string, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}
	created := *category
	created.ID = cuid.New()
	query := `INSERT INTO ` + table + ` (id, name, created_at) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, created.ID, created.Name, time.Now()); err != nil {
		return nil, err
	}
	return &created, nil
}
