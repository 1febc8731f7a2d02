package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverus/foodstore/internal/models"
)

var restaurantRowColumns = []string{
	"id", "name", "description", "address", "postal_code", "url",
	"shipping_costs", "average_service_minutes", "email", "phone",
	"logo", "hero_image", "status", "restaurant_category_id", "user_id",
	"created_at", "updated_at", "category_id", "category_name",
}

func restaurantRow(id string, created time.Time) *pgxmock.Rows {
	return pgxmock.NewRows(restaurantRowColumns).
		AddRow(id, "Luigi's", "", "Via Roma 1", "00100", "",
			2.5, (*float64)(nil), "", "",
			"", "", models.RestaurantOnline, "c1", "u1",
			created, created, "c1", "Italian")
}

func TestRestaurantRepositoryDestroyReportsRemoval(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRestaurantRepository(mock)

	mock.ExpectExec(`DELETE FROM restaurants WHERE id = \$1`).
		WithArgs("r1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	ok, err := repo.Destroy(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, ok)

	// the row is gone now
	mock.ExpectExec(`DELETE FROM restaurants WHERE id = \$1`).
		WithArgs("r1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	ok, err = repo.Destroy(context.Background(), "r1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepositoryDestroyWithOrderHistoryConflicts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRestaurantRepository(mock)

	mock.ExpectExec(`DELETE FROM restaurants WHERE id = \$1`).
		WithArgs("r1").
		WillReturnError(&pgconn.PgError{
			Code:           pgForeignKeyViolation,
			ConstraintName: "orders_restaurant_id_fkey",
		})

	ok, err := repo.Destroy(context.Background(), "r1")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.ErrorContains(t, err, "still has dependent records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRestaurantRepositorySaveUpsertIsIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewRestaurantRepository(mock)

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	restaurant := &models.Restaurant{
		ID:                   "r1",
		Name:                 "Luigi's",
		Address:              "Via Roma 1",
		PostalCode:           "00100",
		ShippingCosts:        2.5,
		Status:               models.RestaurantOnline,
		RestaurantCategoryID: "c1",
		UserID:               "u1",
		CreatedAt:            created,
	}

	for i := 0; i < 2; i++ {
		mock.ExpectExec(`INSERT INTO restaurants .+ ON CONFLICT \(id\) DO UPDATE SET`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectQuery(`FROM restaurants r\s+JOIN restaurant_categories rc ON rc\.id = r\.restaurant_category_id\s+WHERE r\.id = \$1`).
			WithArgs("r1").
			WillReturnRows(restaurantRow("r1", created))
		mock.ExpectQuery(`FROM products p\s+JOIN product_categories pc ON pc\.id = p\.product_category_id\s+WHERE p\.restaurant_id = \$1`).
			WithArgs("r1").
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "name", "description", "price", "image", "display_order",
				"availability", "restaurant_id", "product_category_id",
				"created_at", "updated_at", "category_id", "category_name",
			}))

		saved, err := repo.Save(context.Background(), restaurant)
		require.NoError(t, err)
		assert.Equal(t, "r1", saved.ID)
		assert.Equal(t, "Luigi's", saved.Name)
		require.NotNil(t, saved.RestaurantCategory)
		assert.Equal(t, "Italian", saved.RestaurantCategory.Name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepositoryDestroyWithOrderHistoryConflicts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewProductRepository(mock)

	mock.ExpectExec(`DELETE FROM products WHERE id = \$1`).
		WithArgs("p1").
		WillReturnError(&pgconn.PgError{
			Code:           pgForeignKeyViolation,
			ConstraintName: "order_products_product_id_fkey",
		})

	ok, err := repo.Destroy(context.Background(), "p1")
	assert.False(t, ok)
	require.Error(t, err)
	assert.True(t, models.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
