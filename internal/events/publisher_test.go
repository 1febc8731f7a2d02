package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deliverus/foodstore/internal/models"
)

func TestNewOrderEvent(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		order models.Order
		want  string
	}{
		{"fresh order", models.Order{}, EventOrderCreated},
		{"started", models.Order{StartedAt: &now}, EventOrderConfirmed},
		{"sent", models.Order{StartedAt: &now, SentAt: &now}, EventOrderSent},
		{"delivered", models.Order{StartedAt: &now, SentAt: &now, DeliveredAt: &now}, EventOrderDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.order.ID = "o1"
			event := NewOrderEvent(&tt.order)
			assert.Equal(t, tt.want, event.Type)
			assert.Equal(t, "o1", event.OrderID)
			assert.Equal(t, string(tt.order.Status()), event.Status)
		})
	}
}

func TestOrderEventWireShape(t *testing.T) {
	now := time.Now()
	order := &models.Order{ID: "o1", RestaurantID: "r1", UserID: "u1", Price: 20.5, DeliveredAt: &now}

	payload, err := json.Marshal(NewOrderEvent(order))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "order.delivered", decoded["type"])
	assert.Equal(t, "o1", decoded["orderId"])
	assert.Equal(t, "r1", decoded["restaurantId"])
	assert.Equal(t, "delivered", decoded["status"])
	assert.Equal(t, 20.5, decoded["price"])
}

func TestSaramaPublisherPublishOrder(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := &SaramaPublisher{producer: producer, topic: "order_events"}

	producer.ExpectSendMessageAndSucceed()
	err := publisher.PublishOrder(NewOrderEvent(&models.Order{ID: "o1", RestaurantID: "r1"}))
	assert.NoError(t, err)

	producer.ExpectSendMessageAndFail(assert.AnError)
	err = publisher.PublishOrder(NewOrderEvent(&models.Order{ID: "o2", RestaurantID: "r1"}))
	assert.Error(t, err)

	assert.NoError(t, publisher.Close())
}

func TestNoopPublisher(t *testing.T) {
	publisher := NoopPublisher{}
	assert.NoError(t, publisher.PublishOrder(OrderEvent{}))
	assert.NoError(t, publisher.Close())
}
