// Package events publishes order lifecycle changes to Kafka. The
// producer is optional; when disabled a no-op publisher stands in so
// callers never branch on configuration.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/deliverus/foodstore/internal/models"
)

type Publisher interface {
	PublishOrder(event OrderEvent) error
	Close() error
}

// OrderEvent is the wire payload for one lifecycle transition.
type OrderEvent struct {
	Type         string    `json:"type"`
	OrderID      string    `json:"orderId"`
	RestaurantID string    `json:"restaurantId"`
	UserID       string    `json:"userId"`
	Status       string    `json:"status"`
	Price        float64   `json:"price"`
	OccurredAt   time.Time `json:"occurredAt"`
}

const (
	EventOrderCreated   = "order.created"
	EventOrderConfirmed = "order.confirmed"
	EventOrderSent      = "order.sent"
	EventOrderDelivered = "order.delivered"
)

// NewOrderEvent derives the event type from the order's current
// lifecycle stage.
func NewOrderEvent(order *models.Order) OrderEvent {
	eventType := EventOrderCreated
	switch order.Status() {
	case models.OrderInProcess:
		eventType = EventOrderConfirmed
	case models.OrderSent:
		eventType = EventOrderSent
	case models.OrderDelivered:
		eventType = EventOrderDelivered
	}
	return OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		RestaurantID: order.RestaurantID,
		UserID:       order.UserID,
		Status:       string(order.Status()),
		Price:        order.Price,
		OccurredAt:   time.Now(),
	}
}

type SaramaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewSaramaPublisher(brokerList, topic string) (*SaramaPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokers := strings.Split(brokerList, ",")
	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Printf("Sarama producer created successfully with brokers %v", brokers)
	return &SaramaPublisher{producer: producer, topic: topic}, nil
}

func (p *SaramaPublisher) PublishOrder(event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding order event: %w", err)
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		log.Printf("Failed to send message to topic %s: %v", p.topic, err)
		return err
	}
	return nil
}

func (p *SaramaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NoopPublisher drops every event. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrder(OrderEvent) error { return nil }
func (NoopPublisher) Close() error                  { return nil }
