// Package mongodb realizes the storage contract over denormalized
// documents: products live embedded in their restaurant document and
// orders embed their lines. Internal doc types carry the bson shape;
// explicit projection functions translate to domain models at read
// time, so no driver types leak across the contract boundary.
package mongodb

import (
	"time"

	"github.com/deliverus/foodstore/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	restaurantsCollection        = "restaurants"
	ordersCollection             = "orders"
	restaurantCategoryCollection = "restaurantCategories"
	productCategoryCollection    = "productCategories"
)

type restaurantDoc struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty"`
	Name                  string             `bson:"name"`
	Description           string             `bson:"description,omitempty"`
	Address               string             `bson:"address"`
	PostalCode            string             `bson:"postalCode"`
	URL                   string             `bson:"url,omitempty"`
	ShippingCosts         float64            `bson:"shippingCosts"`
	AverageServiceMinutes *float64           `bson:"averageServiceMinutes,omitempty"`
	Email                 string             `bson:"email,omitempty"`
	Phone                 string             `bson:"phone,omitempty"`
	Logo                  string             `bson:"logo,omitempty"`
	HeroImage             string             `bson:"heroImage,omitempty"`
	Status                string             `bson:"status,omitempty"`
	RestaurantCategoryID  primitive.ObjectID `bson:"restaurantCategoryId"`
	UserID                string             `bson:"userId"`
	Products              []productDoc       `bson:"products"`
	CreatedAt             time.Time          `bson:"createdAt"`
	UpdatedAt             time.Time          `bson:"updatedAt"`
}

type productDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Name              string             `bson:"name"`
	Description       string             `bson:"description,omitempty"`
	Price             float64            `bson:"price"`
	Image             string             `bson:"image,omitempty"`
	DisplayOrder      int                `bson:"order"`
	Availability      bool               `bson:"availability"`
	ProductCategoryID primitive.ObjectID `bson:"productCategoryId"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

type orderDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt"`
	StartedAt     *time.Time         `bson:"startedAt,omitempty"`
	SentAt        *time.Time         `bson:"sentAt,omitempty"`
	DeliveredAt   *time.Time         `bson:"deliveredAt,omitempty"`
	Price         float64            `bson:"price"`
	Address       string             `bson:"address"`
	ShippingCosts float64            `bson:"shippingCosts"`
	RestaurantID  primitive.ObjectID `bson:"restaurantId"`
	UserID        string             `bson:"userId"`
	Products      []orderLineDoc     `bson:"products"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

type orderLineDoc struct {
	ProductID  primitive.ObjectID `bson:"productId"`
	Name       string             `bson:"name"`
	Image      string             `bson:"image,omitempty"`
	UnityPrice float64            `bson:"unityPrice"`
	Quantity   int                `bson:"quantity"`
}

type categoryDoc struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name"`
}

func (d *restaurantDoc) toModel() *models.Restaurant {
	restaurant := &models.Restaurant{
		ID:                    d.ID.Hex(),
		Name:                  d.Name,
		Description:           d.Description,
		Address:               d.Address,
		PostalCode:            d.PostalCode,
		URL:                   d.URL,
		ShippingCosts:         d.ShippingCosts,
		AverageServiceMinutes: d.AverageServiceMinutes,
		Email:                 d.Email,
		Phone:                 d.Phone,
		Logo:                  d.Logo,
		HeroImage:             d.HeroImage,
		Status:                models.RestaurantStatus(d.Status),
		RestaurantCategoryID:  d.RestaurantCategoryID.Hex(),
		UserID:                d.UserID,
		CreatedAt:             d.CreatedAt,
		UpdatedAt:             d.UpdatedAt,
	}
	for _, product := range d.Products {
		restaurant.Products = append(restaurant.Products, *product.toModel(d.ID))
	}
	return restaurant
}

func (d *productDoc) toModel(restaurantID primitive.ObjectID) *models.Product {
	return &models.Product{
		ID:                d.ID.Hex(),
		Name:              d.Name,
		Description:       d.Description,
		Price:             d.Price,
		Image:             d.Image,
		DisplayOrder:      d.DisplayOrder,
		Availability:      d.Availability,
		RestaurantID:      restaurantID.Hex(),
		ProductCategoryID: d.ProductCategoryID.Hex(),
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func (d *orderDoc) toModel() *models.Order {
	order := &models.Order{
		ID:            d.ID.Hex(),
		CreatedAt:     d.CreatedAt,
		StartedAt:     d.StartedAt,
		SentAt:        d.SentAt,
		DeliveredAt:   d.DeliveredAt,
		Price:         d.Price,
		Address:       d.Address,
		ShippingCosts: d.ShippingCosts,
		RestaurantID:  d.RestaurantID.Hex(),
		UserID:        d.UserID,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, line := range d.Products {
		order.Products = append(order.Products, models.OrderedProduct{
			ProductID:  line.ProductID.Hex(),
			Name:       line.Name,
			Image:      line.Image,
			UnityPrice: line.UnityPrice,
			Quantity:   line.Quantity,
		})
	}
	return order
}

func (d *categoryDoc) toModel() *models.Category {
	return &models.Category{ID: d.ID.Hex(), Name: d.Name}
}

func orderLinesFromModel(lines []models.OrderedProduct) ([]orderLineDoc, error) {
	docs := make([]orderLineDoc, 0, len(lines))
	for _, line := range lines {
		productID, err := primitive.ObjectIDFromHex(line.ProductID)
		if err != nil {
			return nil, &models.ValidationError{Entity: "order", Field: "products.productId", Reason: "malformed id"}
		}
		docs = append(docs, orderLineDoc{
			ProductID:  productID,
			Name:       line.Name,
			Image:      line.Image,
			UnityPrice: line.UnityPrice,
			Quantity:   line.Quantity,
		})
	}
	return docs, nil
}
