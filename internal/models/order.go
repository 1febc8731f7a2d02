package models

import "time"

// OrderStatus is never stored; it is derived from the lifecycle
// timestamps at read time.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderInProcess OrderStatus = "in process"
	OrderSent      OrderStatus = "sent"
	OrderDelivered OrderStatus = "delivered"
)

// OrderedProduct is an order line: a snapshot of the product at order
// time plus a reference to the originating product. UnityPrice is
// captured, not live-joined, so historical orders are immutable against
// later price changes.
type OrderedProduct struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Image      string  `json:"image,omitempty"`
	UnityPrice float64 `json:"unityPrice"`
	Quantity   int     `json:"quantity"`
}

type Order struct {
	ID            string           `json:"id"`
	CreatedAt     time.Time        `json:"createdAt"`
	StartedAt     *time.Time       `json:"startedAt"`
	SentAt        *time.Time       `json:"sentAt"`
	DeliveredAt   *time.Time       `json:"deliveredAt"`
	Price         float64          `json:"price"`
	Address       string           `json:"address"`
	ShippingCosts float64          `json:"shippingCosts"`
	RestaurantID  string           `json:"restaurantId"`
	UserID        string           `json:"userId"`
	Products      []OrderedProduct `json:"products"`
	Restaurant    *Restaurant      `json:"restaurant,omitempty"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

// Status derives the order state from timestamp presence:
// pending until started, in process until sent, sent until delivered.
func (o *Order) Status() OrderStatus {
	switch {
	case o.DeliveredAt != nil:
		return OrderDelivered
	case o.SentAt != nil:
		return OrderSent
	case o.StartedAt != nil:
		return OrderInProcess
	default:
		return OrderPending
	}
}

func (o *Order) Validate() error {
	if o.Address == "" {
		return &ValidationError{Entity: "order", Field: "address", Reason: "required"}
	}
	if o.Price < 0 {
		return &ValidationError{Entity: "order", Field: "price", Reason: "must be non-negative"}
	}
	if o.ShippingCosts < 0 {
		return &ValidationError{Entity: "order", Field: "shippingCosts", Reason: "must be non-negative"}
	}
	if o.RestaurantID == "" {
		return &ValidationError{Entity: "order", Field: "restaurantId", Reason: "required"}
	}
	if o.UserID == "" {
		return &ValidationError{Entity: "order", Field: "userId", Reason: "required"}
	}
	for _, line := range o.Products {
		if line.ProductID == "" {
			return &ValidationError{Entity: "order", Field: "products.productId", Reason: "required"}
		}
		if line.Quantity <= 0 {
			return &ValidationError{Entity: "order", Field: "products.quantity", Reason: "must be positive"}
		}
		if line.UnityPrice < 0 {
			return &ValidationError{Entity: "order", Field: "products.unityPrice", Reason: "must be non-negative"}
		}
	}
	return nil
}

// OrderPatch carries a partial update; nil fields are left untouched.
// A non-nil Products slice replaces the lines wholesale.
type OrderPatch struct {
	Address       *string          `json:"address,omitempty"`
	Price         *float64         `json:"price,omitempty"`
	ShippingCosts *float64         `json:"shippingCosts,omitempty"`
	StartedAt     *time.Time       `json:"startedAt,omitempty"`
	SentAt        *time.Time       `json:"sentAt,omitempty"`
	DeliveredAt   *time.Time       `json:"deliveredAt,omitempty"`
	Products      []OrderedProduct `json:"products,omitempty"`
}

func (p OrderPatch) Apply(o *Order) {
	if p.Address != nil {
		o.Address = *p.Address
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if p.ShippingCosts != nil {
		o.ShippingCosts = *p.ShippingCosts
	}
	if p.StartedAt != nil {
		o.StartedAt = p.StartedAt
	}
	if p.SentAt != nil {
		o.SentAt = p.SentAt
	}
	if p.DeliveredAt != nil {
		o.DeliveredAt = p.DeliveredAt
	}
	if p.Products != nil {
		o.Products = p.Products
	}
}

// OrderAnalytics holds the four daily facets for one restaurant. Every
// facet defaults to zero when no orders match.
type OrderAnalytics struct {
	RestaurantID            string  `json:"restaurantId"`
	NumYesterdayOrders      int64   `json:"numYesterdayOrders"`
	NumPendingOrders        int64   `json:"numPendingOrders"`
	NumDeliveredTodayOrders int64   `json:"numDeliveredTodayOrders"`
	InvoicedToday           float64 `json:"invoicedToday"`
}
