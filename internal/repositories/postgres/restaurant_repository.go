package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deliverus/foodstore/internal/analytics"
	"github.com/deliverus/foodstore/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/lucsky/cuid"
)

type RestaurantRepository struct {
	pool DB
}

func NewRestaurantRepository(pool DB) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

const restaurantColumns = `
        r.id, r.name, r.description, r.address, r.postal_code, r.url,
        r.shipping_costs, r.average_service_minutes, r.email, r.phone,
        r.logo, r.hero_image, r.status, r.restaurant_category_id, r.user_id,
        r.created_at, r.updated_at,
        rc.id, rc.name`

func scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	category := &models.Category{}
	err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.Description,
		&restaurant.Address,
		&restaurant.PostalCode,
		&restaurant.URL,
		&restaurant.ShippingCosts,
		&restaurant.AverageServiceMinutes,
		&restaurant.Email,
		&restaurant.Phone,
		&restaurant.Logo,
		&restaurant.HeroImage,
		&restaurant.Status,
		&restaurant.RestaurantCategoryID,
		&restaurant.UserID,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
		&category.ID,
		&category.Name,
	)
	if err != nil {
		return nil, err
	}
	restaurant.RestaurantCategory = category
	return restaurant, nil
}

// FindByID eagerly loads the restaurant's products in display order,
// each with its product category. An unknown id yields (nil, nil).
func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	query := `
        SELECT ` + restaurantColumns + `
        FROM restaurants r
        JOIN restaurant_categories rc ON rc.id = r.restaurant_category_id
        WHERE r.id = $1
    `
	restaurant, err := scanRestaurant(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	products, err := productsByRestaurantID(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}
	restaurant.Products = products
	return restaurant, nil
}

// FindAll lists every restaurant with its category, ordered by category
// name ascending.
func (r *RestaurantRepository) FindAll(ctx context.Context) ([]*models.Restaurant, error) {
	query := `
        SELECT ` + restaurantColumns + `
        FROM restaurants r
        JOIN restaurant_categories rc ON rc.id = r.restaurant_category_id
        ORDER BY rc.name ASC
    `
	return r.queryRestaurants(ctx, query)
}

func (r *RestaurantRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*models.Restaurant, error) {
	query := `
        SELECT ` + restaurantColumns + `
        FROM restaurants r
        JOIN restaurant_categories rc ON rc.id = r.restaurant_category_id
        WHERE r.user_id = $1
    `
	return r.queryRestaurants(ctx, query, ownerID)
}

func (r *RestaurantRepository) queryRestaurants(ctx context.Context, query string, args ...any) ([]*models.Restaurant, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*models.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}

	created := *restaurant
	created.ID = cuid.New()
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := r.insert(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *RestaurantRepository) insert(ctx context.Context, restaurant *models.Restaurant) error {
	query := `
        INSERT INTO restaurants (
            id, name, description, address, postal_code, url, shipping_costs,
            average_service_minutes, email, phone, logo, hero_image, status,
            restaurant_category_id, user_id, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
        )
    `
	_, err := r.pool.Exec(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.PostalCode,
		restaurant.URL,
		restaurant.ShippingCosts,
		restaurant.AverageServiceMinutes,
		restaurant.Email,
		restaurant.Phone,
		restaurant.Logo,
		restaurant.HeroImage,
		restaurant.Status,
		restaurant.RestaurantCategoryID,
		restaurant.UserID,
		restaurant.CreatedAt,
		restaurant.UpdatedAt,
	)
	return mapReferenceError(err)
}

// Update merges the patch into the stored restaurant; only provided
// fields change.
func (r *RestaurantRepository) Update(ctx context.Context, id string, patch models.RestaurantPatch) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: id}
	}

	patch.Apply(restaurant)
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	restaurant.UpdatedAt = time.Now()

	if err := r.replace(ctx, restaurant); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *RestaurantRepository) replace(ctx context.Context, restaurant *models.Restaurant) error {
	query := `
        UPDATE restaurants SET
            name = $2, description = $3, address = $4, postal_code = $5,
            url = $6, shipping_costs = $7, average_service_minutes = $8,
            email = $9, phone = $10, logo = $11, hero_image = $12,
            status = $13, restaurant_category_id = $14, user_id = $15,
            updated_at = $16
        WHERE id = $1
    `
	_, err := r.pool.Exec(ctx, query,
		restaurant.ID,
		restaurant.Name,
		restaurant.Description,
		restaurant.Address,
		restaurant.PostalCode,
		restaurant.URL,
		restaurant.ShippingCosts,
		restaurant.AverageServiceMinutes,
		restaurant.Email,
		restaurant.Phone,
		restaurant.Logo,
		restaurant.HeroImage,
		restaurant.Status,
		restaurant.RestaurantCategoryID,
		restaurant.UserID,
		restaurant.UpdatedAt,
	)
	return mapReferenceError(err)
}

// Destroy removes the restaurant; its products go with it via the
// cascading foreign key. Returns true iff exactly one row was removed.
// A restaurant with order history is not removable: the foreign key
// from orders blocks the delete and surfaces as a ConflictError.
func (r *RestaurantRepository) Destroy(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM restaurants WHERE id = $1`, id)
	if err != nil {
		return false, mapConflictError(err, "restaurant", id)
	}
	return tag.RowsAffected() == 1, nil
}

// Save is an idempotent upsert keyed by id: insert when absent, full
// replace when present.
func (r *RestaurantRepository) Save(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if restaurant.ID == "" {
		return r.Create(ctx, restaurant)
	}
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}

	saved := *restaurant
	now := time.Now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	query := `
        INSERT INTO restaurants (
            id, name, description, address, postal_code, url, shipping_costs,
            average_service_minutes, email, phone, logo, hero_image, status,
            restaurant_category_id, user_id, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
        )
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name, description = EXCLUDED.description,
            address = EXCLUDED.address, postal_code = EXCLUDED.postal_code,
            url = EXCLUDED.url, shipping_costs = EXCLUDED.shipping_costs,
            average_service_minutes = EXCLUDED.average_service_minutes,
            email = EXCLUDED.email, phone = EXCLUDED.phone,
            logo = EXCLUDED.logo, hero_image = EXCLUDED.hero_image,
            status = EXCLUDED.status,
            restaurant_category_id = EXCLUDED.restaurant_category_id,
            user_id = EXCLUDED.user_id, updated_at = EXCLUDED.updated_at
    `
	_, err := r.pool.Exec(ctx, query,
		saved.ID,
		saved.Name,
		saved.Description,
		saved.Address,
		saved.PostalCode,
		saved.URL,
		saved.ShippingCosts,
		saved.AverageServiceMinutes,
		saved.Email,
		saved.Phone,
		saved.Logo,
		saved.HeroImage,
		saved.Status,
		saved.RestaurantCategoryID,
		saved.UserID,
		saved.CreatedAt,
		saved.UpdatedAt,
	)
	if err := mapReferenceError(err); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, saved.ID)
}

// AverageServiceTime averages delivered-order service minutes. The
// minute arithmetic lives in the analytics package so both backends
// produce identical values.
func (r *RestaurantRepository) AverageServiceTime(ctx context.Context, id string) (*float64, error) {
	query := `
        SELECT created_at, delivered_at
        FROM orders
        WHERE restaurant_id = $1 AND delivered_at IS NOT NULL
    `
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var minutes []int64
	for rows.Next() {
		var createdAt, deliveredAt time.Time
		if err := rows.Scan(&createdAt, &deliveredAt); err != nil {
			return nil, err
		}
		minutes = append(minutes, analytics.ServiceMinutes(createdAt, deliveredAt))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return analytics.MeanServiceMinutes(minutes), nil
}

// UpdateAverageServiceTime recomputes the average and writes it back.
// Deliberately a plain read-then-write without a transaction or
// optimistic lock; see the contract documentation.
func (r *RestaurantRepository) UpdateAverageServiceTime(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, nil
	}

	average, err := r.AverageServiceTime(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recomputing average service time: %w", err)
	}

	query := `UPDATE restaurants SET average_service_minutes = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.pool.Exec(ctx, query, id, average, time.Now()); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
