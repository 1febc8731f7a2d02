package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/deliverus/foodstore/internal/models"
)

func orderDocResponse(oid, restaurantID, productID primitive.ObjectID, created time.Time) bson.D {
	return bson.D{
		{Key: "_id", Value: oid},
		{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
		{Key: "price", Value: 12.5},
		{Key: "address", Value: "221B Baker Street"},
		{Key: "shippingCosts", Value: 2.0},
		{Key: "restaurantId", Value: restaurantID},
		{Key: "userId", Value: "u1"},
		{Key: "products", Value: bson.A{bson.D{
			{Key: "productId", Value: productID},
			{Key: "name", Value: "Margherita"},
			{Key: "unityPrice", Value: 9.5},
			{Key: "quantity", Value: 1},
		}}},
		{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(created)},
	}
}

func TestOrderRepositoryFindByIDMalformedID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("malformed id reads as absent", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		order, err := repo.FindByID(context.Background(), "not-an-object-id")
		require.NoError(mt, err)
		assert.Nil(mt, order)
	})
}

func TestOrderRepositoryFindByRestaurantIDFiltersByOwner(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("owner id narrows the filter", func(mt *mtest.T) {
		restaurantID := primitive.NewObjectID()
		oid := primitive.NewObjectID()
		productID := primitive.NewObjectID()
		created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "foodstore.orders", mtest.FirstBatch,
			orderDocResponse(oid, restaurantID, productID, created)))

		repo := NewOrderRepository(mt.DB)
		page, err := repo.FindByRestaurantID(context.Background(), restaurantID.Hex(),
			models.FindOptions{OwnerID: "u1"})
		require.NoError(mt, err)
		require.Len(mt, page.Items, 1)
		assert.Equal(mt, "u1", page.Items[0].UserID)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "find", started.CommandName)
		owner, err := started.Command.LookupErr("filter", "userId")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", owner.StringValue())
	})

	mt.Run("malformed restaurant id yields an empty page", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		page, err := repo.FindByRestaurantID(context.Background(), "nope", models.FindOptions{OwnerID: "u1"})
		require.NoError(mt, err)
		assert.Empty(mt, page.Items)
	})
}

func TestOrderRepositoryDestroyReportsRemoval(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("true then false for the same id", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		id := primitive.NewObjectID().Hex()

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		ok, err := repo.Destroy(context.Background(), id)
		require.NoError(mt, err)
		assert.True(mt, ok)

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		ok, err = repo.Destroy(context.Background(), id)
		require.NoError(mt, err)
		assert.False(mt, ok)
	})

	mt.Run("malformed id is a no-op", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		ok, err := repo.Destroy(context.Background(), "nope")
		require.NoError(mt, err)
		assert.False(mt, ok)
	})
}

func TestOrderRepositorySaveUpsertIsIdempotent(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("saving twice lands on the same document", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		restaurantID := primitive.NewObjectID()
		productID := primitive.NewObjectID()
		created := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
		order := &models.Order{
			ID:            oid.Hex(),
			CreatedAt:     created,
			Price:         12.5,
			Address:       "221B Baker Street",
			ShippingCosts: 2.0,
			RestaurantID:  restaurantID.Hex(),
			UserID:        "u1",
			Products: []models.OrderedProduct{
				{ProductID: productID.Hex(), Name: "Margherita", UnityPrice: 9.5, Quantity: 1},
			},
		}
		repo := NewOrderRepository(mt.DB)

		for i := 0; i < 2; i++ {
			mt.AddMockResponses(
				// restaurant reference check
				mtest.CreateCursorResponse(0, "foodstore.restaurants", mtest.FirstBatch,
					bson.D{{Key: "n", Value: 1}}),
				// replace with upsert
				mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
				// read back
				mtest.CreateCursorResponse(0, "foodstore.orders", mtest.FirstBatch,
					orderDocResponse(oid, restaurantID, productID, created)),
			)

			saved, err := repo.Save(context.Background(), order)
			require.NoError(mt, err)
			assert.Equal(mt, oid.Hex(), saved.ID)
			assert.Equal(mt, 12.5, saved.Price)
			require.Len(mt, saved.Products, 1)
			assert.Equal(mt, productID.Hex(), saved.Products[0].ProductID)
		}
	})
}

func TestOrderRepositoryAnalyticsCombinesFacets(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("facets land on the result", func(mt *mtest.T) {
		restaurantID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "foodstore.orders", mtest.FirstBatch, bson.D{
			{Key: "numYesterdayOrders", Value: int64(1)},
			{Key: "numPendingOrders", Value: int64(1)},
			{Key: "numDeliveredTodayOrders", Value: int64(1)},
			{Key: "invoicedToday", Value: 15.0},
		}))

		repo := NewOrderRepository(mt.DB)
		result, err := repo.Analytics(context.Background(), restaurantID.Hex())
		require.NoError(mt, err)
		assert.Equal(mt, int64(1), result.NumYesterdayOrders)
		assert.Equal(mt, int64(1), result.NumPendingOrders)
		assert.Equal(mt, int64(1), result.NumDeliveredTodayOrders)
		assert.Equal(mt, 15.0, result.InvoicedToday)
	})

	mt.Run("malformed restaurant id zeroes every facet", func(mt *mtest.T) {
		repo := NewOrderRepository(mt.DB)
		result, err := repo.Analytics(context.Background(), "nope")
		require.NoError(mt, err)
		assert.Equal(mt, &models.OrderAnalytics{RestaurantID: "nope"}, result)
	})
}
