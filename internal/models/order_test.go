package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestOrderStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		order Order
		want  OrderStatus
	}{
		{"no timestamps", Order{}, OrderPending},
		{"started only", Order{StartedAt: timePtr(now)}, OrderInProcess},
		{"started and sent", Order{StartedAt: timePtr(now), SentAt: timePtr(now)}, OrderSent},
		{"full lifecycle", Order{StartedAt: timePtr(now), SentAt: timePtr(now), DeliveredAt: timePtr(now)}, OrderDelivered},
		// later timestamps win even when earlier stages were skipped
		{"sent without started", Order{SentAt: timePtr(now)}, OrderSent},
		{"delivered without sent", Order{StartedAt: timePtr(now), DeliveredAt: timePtr(now)}, OrderDelivered},
		{"delivered only", Order{DeliveredAt: timePtr(now)}, OrderDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.order.Status())
		})
	}
}

func validOrder() Order {
	return Order{
		Address:       "1 Main St",
		Price:         25.5,
		ShippingCosts: 2.5,
		RestaurantID:  "r1",
		UserID:        "u1",
		Products: []OrderedProduct{
			{ProductID: "p1", Name: "Ramen", UnityPrice: 11.5, Quantity: 2},
		},
	}
}

func TestOrderValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Order)
		field  string
	}{
		{"valid", func(o *Order) {}, ""},
		{"missing address", func(o *Order) { o.Address = "" }, "address"},
		{"negative price", func(o *Order) { o.Price = -1 }, "price"},
		{"negative shipping", func(o *Order) { o.ShippingCosts = -0.5 }, "shippingCosts"},
		{"missing restaurant", func(o *Order) { o.RestaurantID = "" }, "restaurantId"},
		{"missing user", func(o *Order) { o.UserID = "" }, "userId"},
		{"line without product", func(o *Order) { o.Products[0].ProductID = "" }, "products.productId"},
		{"zero quantity", func(o *Order) { o.Products[0].Quantity = 0 }, "products.quantity"},
		{"negative unity price", func(o *Order) { o.Products[0].UnityPrice = -3 }, "products.unityPrice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := validOrder()
			tt.mutate(&order)
			err := order.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestOrderPatchApply(t *testing.T) {
	order := validOrder()
	started := time.Now()

	t.Run("nil fields untouched", func(t *testing.T) {
		patched := order
		OrderPatch{}.Apply(&patched)
		assert.Equal(t, order, patched)
	})

	t.Run("set fields applied", func(t *testing.T) {
		patched := order
		address := "2 Side St"
		OrderPatch{Address: &address, StartedAt: &started}.Apply(&patched)
		assert.Equal(t, "2 Side St", patched.Address)
		require.NotNil(t, patched.StartedAt)
		assert.Equal(t, OrderInProcess, patched.Status())
	})

	t.Run("non-nil products replace wholesale", func(t *testing.T) {
		patched := order
		OrderPatch{Products: []OrderedProduct{
			{ProductID: "p9", Name: "Tacos", UnityPrice: 4, Quantity: 1},
		}}.Apply(&patched)
		require.Len(t, patched.Products, 1)
		assert.Equal(t, "p9", patched.Products[0].ProductID)
	})
}
