package postgres

import (
	"errors"

	"github.com/deliverus/foodstore/internal/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgForeignKeyViolation is the SQLSTATE for a foreign key constraint
// failure.
const pgForeignKeyViolation = "23503"

// mapReferenceError translates a foreign key violation into the domain
// ReferenceError so callers never see driver error types.
func mapReferenceError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &models.ReferenceError{Entity: referencedEntity(pgErr.ConstraintName), ID: pgErr.Detail}
	}
	return err
}

// mapConflictError translates a foreign key violation raised by a
// DELETE into the domain ConflictError: the row still has dependents.
func mapConflictError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
		return &models.ConflictError{Entity: entity, ID: id}
	}
	return err
}

func referencedEntity(constraint string) string {
	switch constraint {
	case "restaurants_restaurant_category_id_fkey":
		return "restaurant category"
	case "restaurants_user_id_fkey", "orders_user_id_fkey":
		return "user"
	case "products_product_category_id_fkey":
		return "product category"
	case "products_restaurant_id_fkey", "orders_restaurant_id_fkey":
		return "restaurant"
	case "order_products_product_id_fkey":
		return "product"
	}
	return "record"
}
