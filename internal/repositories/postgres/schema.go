package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the relational schema when absent. Statements
// are idempotent, so running this on every startup is fine.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS restaurant_categories (
			id         text PRIMARY KEY,
			name       text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS product_categories (
			id         text PRIMARY KEY,
			name       text NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS restaurants (
			id                      text PRIMARY KEY,
			name                    text NOT NULL,
			description             text NOT NULL DEFAULT '',
			address                 text NOT NULL,
			postal_code             text NOT NULL,
			url                     text NOT NULL DEFAULT '',
			shipping_costs          double precision NOT NULL DEFAULT 0,
			average_service_minutes double precision,
			email                   text NOT NULL DEFAULT '',
			phone                   text NOT NULL DEFAULT '',
			logo                    text NOT NULL DEFAULT '',
			hero_image              text NOT NULL DEFAULT '',
			status                  text NOT NULL DEFAULT 'offline',
			restaurant_category_id  text NOT NULL REFERENCES restaurant_categories (id),
			user_id                 text NOT NULL,
			created_at              timestamptz NOT NULL DEFAULT now(),
			updated_at              timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id                  text PRIMARY KEY,
			name                text NOT NULL,
			description         text NOT NULL DEFAULT '',
			price               double precision NOT NULL,
			image               text NOT NULL DEFAULT '',
			display_order       integer NOT NULL DEFAULT 0,
			availability        boolean NOT NULL DEFAULT true,
			restaurant_id       text NOT NULL REFERENCES restaurants (id) ON DELETE CASCADE,
			product_category_id text NOT NULL REFERENCES product_categories (id),
			created_at          timestamptz NOT NULL DEFAULT now(),
			updated_at          timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id             text PRIMARY KEY,
			created_at     timestamptz NOT NULL DEFAULT now(),
			started_at     timestamptz,
			sent_at        timestamptz,
			delivered_at   timestamptz,
			price          double precision NOT NULL,
			address        text NOT NULL,
			shipping_costs double precision NOT NULL DEFAULT 0,
			restaurant_id  text NOT NULL REFERENCES restaurants (id),
			user_id        text NOT NULL,
			updated_at     timestamptz NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_products (
			order_id    text NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
			product_id  text NOT NULL REFERENCES products (id),
			line_number integer NOT NULL,
			name        text NOT NULL,
			image       text NOT NULL DEFAULT '',
			unity_price double precision NOT NULL,
			quantity    integer NOT NULL,
			PRIMARY KEY (order_id, line_number)
		)`,
		`CREATE INDEX IF NOT EXISTS products_restaurant_idx ON products (restaurant_id, display_order)`,
		`CREATE INDEX IF NOT EXISTS orders_restaurant_created_idx ON orders (restaurant_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS orders_user_created_idx ON orders (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS order_products_product_idx ON order_products (product_id)`,
	}
	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("ensuring schema: %w", err)
		}
	}
	return nil
}
