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
	"golang.org/x/sync/errgroup"
)

type OrderRepository struct {
	pool DB
}

func NewOrderRepository(pool DB) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const orderColumns = `
        o.id, o.created_at, o.started_at, o.sent_at, o.delivered_at,
        o.price, o.address, o.shipping_costs, o.restaurant_id, o.user_id,
        o.updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.CreatedAt,
		&order.StartedAt,
		&order.SentAt,
		&order.DeliveredAt,
		&order.Price,
		&order.Address,
		&order.ShippingCosts,
		&order.RestaurantID,
		&order.UserID,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// attachLines loads the order_products rows for a batch of orders in
// one query and distributes them.
func (r *OrderRepository) attachLines(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
	}

	query := `
        SELECT order_id, product_id, name, image, unity_price, quantity
        FROM order_products
        WHERE order_id = ANY($1)
        ORDER BY line_number ASC
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var line models.OrderedProduct
		err := rows.Scan(&orderID, &line.ProductID, &line.Name, &line.Image, &line.UnityPrice, &line.Quantity)
		if err != nil {
			return err
		}
		if order, ok := byID[orderID]; ok {
			order.Products = append(order.Products, line)
		}
	}
	return rows.Err()
}

// FindByRestaurantID lists a restaurant's orders newest first,
// narrowed to one customer when opts carry an OwnerID. When opts ask
// for pagination the count and the page are fetched concurrently and
// joined before returning.
func (r *OrderRepository) FindByRestaurantID(ctx context.Context, restaurantID string, opts models.FindOptions) (*models.OrderPage, error) {
	where := `WHERE o.restaurant_id = $1`
	countWhere := `WHERE restaurant_id = $1`
	args := []any{restaurantID}
	if opts.OwnerID != "" {
		where += ` AND o.user_id = $2`
		countWhere += ` AND user_id = $2`
		args = append(args, opts.OwnerID)
	}

	if !opts.Paginated {
		orders, err := r.queryOrders(ctx, `
            SELECT `+orderColumns+`
            FROM orders o
            `+where+`
            ORDER BY o.created_at DESC
        `, args...)
		if err != nil {
			return nil, err
		}
		return &models.OrderPage{Items: orders}, nil
	}

	opts = opts.Normalize()
	pageQuery := fmt.Sprintf(`
        SELECT %s
        FROM orders o
        %s
        ORDER BY o.created_at DESC
        LIMIT $%d OFFSET $%d
    `, orderColumns, where, len(args)+1, len(args)+2)
	return r.paginate(ctx, `SELECT COUNT(*) FROM orders `+countWhere, pageQuery, args, opts.Page, opts.Limit)
}

// FindByCustomerID pages through a customer's order history, restaurant
// populated on each order.
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string, page, limit int) (*models.OrderPage, error) {
	opts := models.FindOptions{Paginated: true, Page: page, Limit: limit}.Normalize()
	result, err := r.paginate(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`,
		`
        SELECT `+orderColumns+`
        FROM orders o
        WHERE o.user_id = $1
        ORDER BY o.created_at DESC
        LIMIT $2 OFFSET $3
    `, []any{customerID}, opts.Page, opts.Limit)
	if err != nil {
		return nil, err
	}
	if err := r.attachRestaurants(ctx, result.Items); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *OrderRepository) paginate(ctx context.Context, countQuery, pageQuery string, filterArgs []any, page, limit int) (*models.OrderPage, error) {
	var total int64
	var orders []*models.Order

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return r.pool.QueryRow(groupCtx, countQuery, filterArgs...).Scan(&total)
	})
	group.Go(func() error {
		args := append(append([]any{}, filterArgs...), limit, (page-1)*limit)
		var err error
		orders, err = r.queryOrders(groupCtx, pageQuery, args...)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &models.OrderPage{
		Items:      orders,
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachLines(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *OrderRepository) attachRestaurants(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	seen := make(map[string]bool)
	for _, order := range orders {
		if !seen[order.RestaurantID] {
			seen[order.RestaurantID] = true
			ids = append(ids, order.RestaurantID)
		}
	}

	query := `
        SELECT ` + restaurantColumns + `
        FROM restaurants r
        JOIN restaurant_categories rc ON rc.id = r.restaurant_category_id
        WHERE r.id = ANY($1)
    `
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	restaurants := make(map[string]*models.Restaurant)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return err
		}
		restaurants[restaurant.ID] = restaurant
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, order := range orders {
		order.Restaurant = restaurants[order.RestaurantID]
	}
	return nil
}

// Create persists the order and its lines atomically. Lines snapshot
// name, image and unit price at order time.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	created := *order
	created.ID = cuid.New()
	now := time.Now()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	created.UpdatedAt = now

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := insertOrder(ctx, tx, &created); err != nil {
		return nil, err
	}
	if err := insertLines(ctx, tx, created.ID, created.Products); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func insertOrder(ctx context.Context, tx pgx.Tx, order *models.Order) error {
	query := `
        INSERT INTO orders (
            id, created_at, started_at, sent_at, delivered_at, price,
            address, shipping_costs, restaurant_id, user_id, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
    `
	_, err := tx.Exec(ctx, query,
		order.ID,
		order.CreatedAt,
		order.StartedAt,
		order.SentAt,
		order.DeliveredAt,
		order.Price,
		order.Address,
		order.ShippingCosts,
		order.RestaurantID,
		order.UserID,
		order.UpdatedAt,
	)
	return mapReferenceError(err)
}

func insertLines(ctx context.Context, tx pgx.Tx, orderID string, lines []models.OrderedProduct) error {
	for i, line := range lines {
		query := `
            INSERT INTO order_products (order_id, line_number, product_id, name, image, unity_price, quantity)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
        `
		_, err := tx.Exec(ctx, query, orderID, i+1, line.ProductID, line.Name, line.Image, line.UnityPrice, line.Quantity)
		if err != nil {
			return mapReferenceError(err)
		}
	}
	return nil
}

func (r *OrderRepository) Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &models.ReferenceError{Entity: "order", ID: id}
	}

	replaceLines := patch.Products != nil
	patch.Apply(order)
	if err := order.Validate(); err != nil {
		return nil, err
	}
	order.UpdatedAt = time.Now()

	if err := r.writeOrder(ctx, order, replaceLines, false); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) Destroy(ctx context.Context, id string) (bool, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, id); err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// Save upserts the order by id, replacing its lines wholesale.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == "" {
		return r.Create(ctx, order)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	saved := *order
	now := time.Now()
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = now
	}
	saved.UpdatedAt = now

	if err := r.writeOrder(ctx, &saved, true, true); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, saved.ID)
}

func (r *OrderRepository) writeOrder(ctx context.Context, order *models.Order, replaceLines, upsert bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
        UPDATE orders SET
            started_at = $2, sent_at = $3, delivered_at = $4, price = $5,
            address = $6, shipping_costs = $7, restaurant_id = $8,
            user_id = $9, updated_at = $10
        WHERE id = $1
    `
	if upsert {
		query = `
        INSERT INTO orders (
            id, started_at, sent_at, delivered_at, price, address,
            shipping_costs, restaurant_id, user_id, updated_at, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
        )
        ON CONFLICT (id) DO UPDATE SET
            started_at = EXCLUDED.started_at, sent_at = EXCLUDED.sent_at,
            delivered_at = EXCLUDED.delivered_at, price = EXCLUDED.price,
            address = EXCLUDED.address,
            shipping_costs = EXCLUDED.shipping_costs,
            restaurant_id = EXCLUDED.restaurant_id,
            user_id = EXCLUDED.user_id, updated_at = EXCLUDED.updated_at
    `
	}

	args := []any{
		order.ID,
		order.StartedAt,
		order.SentAt,
		order.DeliveredAt,
		order.Price,
		order.Address,
		order.ShippingCosts,
		order.RestaurantID,
		order.UserID,
		order.UpdatedAt,
	}
	if upsert {
		args = append(args, order.CreatedAt)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapReferenceError(err)
	}

	if replaceLines {
		if _, err := tx.Exec(ctx, `DELETE FROM order_products WHERE order_id = $1`, order.ID); err != nil {
			return err
		}
		if err := insertLines(ctx, tx, order.ID, order.Products); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Analytics computes the four daily facets. The facets touch disjoint
// result sets, so the queries fan out concurrently and join before the
// combined result is returned.
func (r *OrderRepository) Analytics(ctx context.Context, restaurantID string) (*models.OrderAnalytics, error) {
	window := analytics.NewDayWindow(time.Now())
	result := &models.OrderAnalytics{RestaurantID: restaurantID}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		query := `
            SELECT COUNT(*) FROM orders
            WHERE restaurant_id = $1 AND created_at >= $2 AND created_at < $3
        `
		return r.pool.QueryRow(groupCtx, query, restaurantID, window.YesterdayStart, window.TodayStart).
			Scan(&result.NumYesterdayOrders)
	})
	group.Go(func() error {
		query := `
            SELECT COUNT(*) FROM orders
            WHERE restaurant_id = $1 AND started_at IS NULL
        `
		return r.pool.QueryRow(groupCtx, query, restaurantID).Scan(&result.NumPendingOrders)
	})
	group.Go(func() error {
		query := `
            SELECT COUNT(*) FROM orders
            WHERE restaurant_id = $1 AND delivered_at >= $2 AND delivered_at < $3
        `
		return r.pool.QueryRow(groupCtx, query, restaurantID, window.TodayStart, window.TomorrowStart).
			Scan(&result.NumDeliveredTodayOrders)
	})
	group.Go(func() error {
		query := `
            SELECT COALESCE(SUM(price), 0) FROM orders
            WHERE restaurant_id = $1 AND started_at >= $2 AND started_at < $3
        `
		return r.pool.QueryRow(groupCtx, query, restaurantID, window.TodayStart, window.TomorrowStart).
			Scan(&result.InvoicedToday)
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}
