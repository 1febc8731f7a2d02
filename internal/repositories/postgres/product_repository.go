package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/deliverus/foodstore/internal/analytics"
	"github.com/deliverus/foodstore/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/lucsky/cuid"
)

type ProductRepository struct {
	pool DB
}

func NewProductRepository(pool DB) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `
        p.id, p.name, p.description, p.price, p.image, p.display_order,
        p.availability, p.restaurant_id, p.product_category_id,
        p.created_at, p.updated_at,
        pc.id, pc.name`

func scanProduct(row pgx.Row) (*models.Product, error) {
	product := &models.Product{}
	category := &models.Category{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Image,
		&product.DisplayOrder,
		&product.Availability,
		&product.RestaurantID,
		&product.ProductCategoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&category.ID,
		&category.Name,
	)
	if err != nil {
		return nil, err
	}
	product.ProductCategory = category
	return product, nil
}

// productsByRestaurantID loads a restaurant's products in display
// order; restaurant reads share it to populate eagerly.
func productsByRestaurantID(ctx context.Context, pool DB, restaurantID string) ([]models.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN product_categories pc ON pc.id = p.product_category_id
        WHERE p.restaurant_id = $1
        ORDER BY p.display_order ASC
    `
	rows, err := pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	return products, rows.Err()
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
        SELECT ` + productColumns + `
        FROM products p
        JOIN product_categories pc ON pc.id = p.product_category_id
        WHERE p.id = $1
    `
	product, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (r *ProductRepository) FindByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error) {
	products, err := productsByRestaurantID(ctx, r.pool, restaurantID)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Product, len(products))
	for i := range products {
		out[i] = &products[i]
	}
	return out, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}

	created := *product
	created.ID = cuid.New()
	now := time.Now()
	created.CreatedAt = now
	created.UpdatedAt = now

	if err := r.upsert(ctx, &created, false); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.ReferenceError{Entity: "product", ID: id}
	}

	patch.Apply(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	product.UpdatedAt = time.Now()

	if err := r.upsert(ctx, product, true); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Destroy removes the product. A product referenced by order lines is
// not removable; the foreign key surfaces as a ConflictError.
func (r *ProductRepository) Destroy(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, mapConflictError(err, "product", id)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == "" {
		return r.Create(ctx, product)
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	saved := *product
	now := time.Now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if err := r.upsert(ctx, &saved, true); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, saved.ID)
}

func (r *ProductRepository) upsert(ctx context.Context, product *models.Product, replace bool) error {
	query := `
        INSERT INTO products (
            id, name, description, price, image, display_order, availability,
            restaurant_id, product_category_id, created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
    `
	if replace {
		query += `
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name, description = EXCLUDED.description,
            price = EXCLUDED.price, image = EXCLUDED.image,
            display_order = EXCLUDED.display_order,
            availability = EXCLUDED.availability,
            restaurant_id = EXCLUDED.restaurant_id,
            product_category_id = EXCLUDED.product_category_id,
            updated_at = EXCLUDED.updated_at
    `
	}
	_, err := r.pool.Exec(ctx, query,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.Image,
		product.DisplayOrder,
		product.Availability,
		product.RestaurantID,
		product.ProductCategoryID,
		product.CreatedAt,
		product.UpdatedAt,
	)
	return mapReferenceError(err)
}

// Popular ranks the 3 most sold products with a raw grouped query, then
// decorates them with restaurant and category names in a second pass
// that preserves rank order. The ranking query runs under an execution
// deadline and the whole operation fails soft: any error is logged and
// an empty slice returned.
func (r *ProductRepository) Popular(ctx context.Context) ([]models.PopularProduct, error) {
	ranks, err := r.rankProducts(ctx)
	if err != nil {
		log.Printf("Error fetching popular products: %v", err)
		return []models.PopularProduct{}, nil
	}
	if len(ranks) == 0 {
		return []models.PopularProduct{}, nil
	}

	details, err := r.productDetails(ctx, ranks)
	if err != nil {
		log.Printf("Error decorating popular products: %v", err)
		return []models.PopularProduct{}, nil
	}
	return analytics.DecorateInRankOrder(ranks, details), nil
}

func (r *ProductRepository) rankProducts(ctx context.Context) ([]analytics.ProductRank, error) {
	ctx, cancel := context.WithTimeout(ctx, analytics.RankingTimeout)
	defer cancel()

	query := `
        SELECT product_id, SUM(quantity)::bigint AS sold_product_count
        FROM order_products
        GROUP BY product_id
        ORDER BY sold_product_count DESC
        LIMIT $1
    `
	rows, err := r.pool.Query(ctx, query, analytics.PopularLimit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.ErrQueryTimeout
		}
		return nil, err
	}
	defer rows.Close()

	var ranks []analytics.ProductRank
	for rows.Next() {
		var rank analytics.ProductRank
		if err := rows.Scan(&rank.ProductID, &rank.SoldProductCount); err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, models.ErrQueryTimeout
		}
		return nil, err
	}
	return ranks, nil
}

func (r *ProductRepository) productDetails(ctx context.Context, ranks []analytics.ProductRank) (map[string]models.PopularProduct, error) {
	ids := make([]string, len(ranks))
	for i, rank := range ranks {
		ids[i] = rank.ProductID
	}

	query := `
        SELECT p.id, p.name, p.price, r.id, r.name, rc.id, rc.name
        FROM products p
        JOIN restaurants r ON r.id = p.restaurant_id
        JOIN restaurant_categories rc ON rc.id = r.restaurant_category_id
        WHERE p.id = ANY($1)
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make(map[string]models.PopularProduct)
	for rows.Next() {
		var detail models.PopularProduct
		err := rows.Scan(
			&detail.ID,
			&detail.Name,
			&detail.Price,
			&detail.Restaurant.ID,
			&detail.Restaurant.Name,
			&detail.RestaurantCategory.ID,
			&detail.RestaurantCategory.Name,
		)
		if err != nil {
			return nil, err
		}
		details[detail.ID] = detail
	}
	return details, rows.Err()
}

func (r *ProductRepository) HasBeenOrdered(ctx context.Context, productID string) (bool, error) {
	var ordered bool
	query := `SELECT EXISTS (SELECT 1 FROM order_products WHERE product_id = $1)`
	err := r.pool.QueryRow(ctx, query, productID).Scan(&ordered)
	return ordered, err
}
