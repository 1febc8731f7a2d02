package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverus/foodstore/internal/models"
)

var orderRowColumns = []string{
	"id", "created_at", "started_at", "sent_at", "delivered_at",
	"price", "address", "shipping_costs", "restaurant_id", "user_id",
	"updated_at",
}

var orderLineColumns = []string{
	"order_id", "product_id", "name", "image", "unity_price", "quantity",
}

func TestOrderRepositoryFindByRestaurantIDFiltersByOwner(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	// count and page run concurrently
	mock.MatchExpectationsInOrder(false)
	repo := NewOrderRepository(mock)

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE restaurant_id = \$1 AND user_id = \$2`).
		WithArgs("r1", "u1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`FROM orders o\s+WHERE o\.restaurant_id = \$1 AND o\.user_id = \$2\s+ORDER BY o\.created_at DESC\s+LIMIT \$3 OFFSET \$4`).
		WithArgs("r1", "u1", 10, 0).
		WillReturnRows(pgxmock.NewRows(orderRowColumns).
			AddRow("o1", created, (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil),
				12.5, "221B Baker Street", 2.0, "r1", "u1", created))
	mock.ExpectQuery(`FROM order_products\s+WHERE order_id = ANY\(\$1\)`).
		WillReturnRows(pgxmock.NewRows(orderLineColumns).
			AddRow("o1", "p1", "Margherita", "", 9.5, 1))

	page, err := repo.FindByRestaurantID(context.Background(), "r1",
		models.FindOptions{OwnerID: "u1", Paginated: true, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "o1", page.Items[0].ID)
	assert.Equal(t, "u1", page.Items[0].UserID)
	require.Len(t, page.Items[0].Products, 1)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryFindByRestaurantIDOwnerFilterWithoutPagination(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	mock.ExpectQuery(`FROM orders o\s+WHERE o\.restaurant_id = \$1 AND o\.user_id = \$2\s+ORDER BY o\.created_at DESC`).
		WithArgs("r1", "u1").
		WillReturnRows(pgxmock.NewRows(orderRowColumns))

	page, err := repo.FindByRestaurantID(context.Background(), "r1", models.FindOptions{OwnerID: "u1"})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Nil(t, page.Pagination)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryDestroyReportsRemoval(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM order_products WHERE order_id = \$1`).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	ok, err := repo.Destroy(context.Background(), "o1")
	require.NoError(t, err)
	assert.True(t, ok)

	// second destroy finds nothing to remove
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM order_products WHERE order_id = \$1`).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`DELETE FROM orders WHERE id = \$1`).
		WithArgs("o1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	ok, err = repo.Destroy(context.Background(), "o1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositorySaveUpsertIsIdempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := NewOrderRepository(mock)

	created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	order := &models.Order{
		ID:           "o1",
		CreatedAt:    created,
		Price:        12.5,
		Address:      "221B Baker Street",
		RestaurantID: "r1",
		UserID:       "u1",
		Products: []models.OrderedProduct{
			{ProductID: "p1", Name: "Margherita", UnityPrice: 9.5, Quantity: 1},
		},
	}

	// saving the same order twice walks the identical upsert path and
	// lands on the identical stored state
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO orders .+ ON CONFLICT \(id\) DO UPDATE SET`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`DELETE FROM order_products WHERE order_id = \$1`).
			WithArgs("o1").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectExec(`INSERT INTO order_products`).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()
		mock.ExpectQuery(`FROM orders o WHERE o\.id = \$1`).
			WithArgs("o1").
			WillReturnRows(pgxmock.NewRows(orderRowColumns).
				AddRow("o1", created, (*time.Time)(nil), (*time.Time)(nil), (*time.Time)(nil),
					12.5, "221B Baker Street", 0.0, "r1", "u1", created))
		mock.ExpectQuery(`FROM order_products\s+WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(pgxmock.NewRows(orderLineColumns).
				AddRow("o1", "p1", "Margherita", "", 9.5, 1))

		saved, err := repo.Save(context.Background(), order)
		require.NoError(t, err)
		assert.Equal(t, "o1", saved.ID)
		assert.Equal(t, 12.5, saved.Price)
		require.Len(t, saved.Products, 1)
		assert.Equal(t, "p1", saved.Products[0].ProductID)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepositoryAnalyticsCombinesFacets(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	// the four facet queries fan out concurrently
	mock.MatchExpectationsInOrder(false)
	repo := NewOrderRepository(mock)

	mock.ExpectQuery(`created_at >= \$2 AND created_at < \$3`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`started_at IS NULL`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`delivered_at >= \$2 AND delivered_at < \$3`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`COALESCE\(SUM\(price\), 0\)`).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(15.0))

	result, err := repo.Analytics(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", result.RestaurantID)
	assert.Equal(t, int64(1), result.NumYesterdayOrders)
	assert.Equal(t, int64(1), result.NumPendingOrders)
	assert.Equal(t, int64(1), result.NumDeliveredTodayOrders)
	assert.Equal(t, 15.0, result.InvoicedToday)
	assert.NoError(t, mock.ExpectationsWereMet())
}
