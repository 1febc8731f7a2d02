package models

import "time"

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	Price             float64   `json:"price"`
	Image             string    `json:"image,omitempty"`
	DisplayOrder      int       `json:"order"`
	Availability      bool      `json:"availability"`
	RestaurantID      string    `json:"restaurantId"`
	ProductCategoryID string    `json:"productCategoryId"`
	ProductCategory   *Category `json:"productCategory,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (p *Product) Validate() error {
	if p.Name == "" {
		return &ValidationError{Entity: "product", Field: "name", Reason: "required"}
	}
	if p.Price < 0 {
		return &ValidationError{Entity: "product", Field: "price", Reason: "must be non-negative"}
	}
	if p.RestaurantID == "" {
		return &ValidationError{Entity: "product", Field: "restaurantId", Reason: "required"}
	}
	if p.ProductCategoryID == "" {
		return &ValidationError{Entity: "product", Field: "productCategoryId", Reason: "required"}
	}
	return nil
}

type ProductPatch struct {
	Name              *string  `json:"name,omitempty"`
	Description       *string  `json:"description,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Image             *string  `json:"image,omitempty"`
	DisplayOrder      *int     `json:"order,omitempty"`
	Availability      *bool    `json:"availability,omitempty"`
	ProductCategoryID *string  `json:"productCategoryId,omitempty"`
}

func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.DisplayOrder != nil {
		p.DisplayOrder = *pp.DisplayOrder
	}
	if pp.Availability != nil {
		p.Availability = *pp.Availability
	}
	if pp.ProductCategoryID != nil {
		p.ProductCategoryID = *pp.ProductCategoryID
	}
}

// PopularProduct is a product decorated with its historical sold count
// and the restaurant it belongs to.
type PopularProduct struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Price              float64   `json:"price"`
	SoldProductCount   int64     `json:"soldProductCount"`
	Restaurant         EntityRef `json:"restaurant"`
	RestaurantCategory EntityRef `json:"restaurantCategory"`
}

// EntityRef is the id/name projection used when decorating analytics results.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
