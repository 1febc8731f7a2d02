package models

import "time"

type RestaurantStatus string

const (
	RestaurantOnline            RestaurantStatus = "online"
	RestaurantOffline           RestaurantStatus = "offline"
	RestaurantClosed            RestaurantStatus = "closed"
	RestaurantTemporarilyClosed RestaurantStatus = "temporarily closed"
)

func (s RestaurantStatus) Valid() bool {
	switch s {
	case RestaurantOnline, RestaurantOffline, RestaurantClosed, RestaurantTemporarilyClosed:
		return true
	}
	return false
}

type Restaurant struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	Description           string           `json:"description,omitempty"`
	Address               string           `json:"address"`
	PostalCode            string           `json:"postalCode"`
	URL                   string           `json:"url,omitempty"`
	ShippingCosts         float64          `json:"shippingCosts"`
	AverageServiceMinutes *float64         `json:"averageServiceMinutes"`
	Email                 string           `json:"email,omitempty"`
	Phone                 string           `json:"phone,omitempty"`
	Logo                  string           `json:"logo,omitempty"`
	HeroImage             string           `json:"heroImage,omitempty"`
	Status                RestaurantStatus `json:"status"`
	RestaurantCategoryID  string           `json:"restaurantCategoryId"`
	UserID                string           `json:"userId"`
	RestaurantCategory    *Category        `json:"restaurantCategory,omitempty"`
	Products              []Product        `json:"products,omitempty"`
	CreatedAt             time.Time        `json:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
}

// Validate checks the fields a restaurant cannot be persisted without.
func (r *Restaurant) Validate() error {
	if r.Name == "" {
		return &ValidationError{Entity: "restaurant", Field: "name", Reason: "required"}
	}
	if r.Address == "" {
		return &ValidationError{Entity: "restaurant", Field: "address", Reason: "required"}
	}
	if r.PostalCode == "" {
		return &ValidationError{Entity: "restaurant", Field: "postalCode", Reason: "required"}
	}
	if r.ShippingCosts < 0 {
		return &ValidationError{Entity: "restaurant", Field: "shippingCosts", Reason: "must be non-negative"}
	}
	if r.Status != "" && !r.Status.Valid() {
		return &ValidationError{Entity: "restaurant", Field: "status", Reason: "unknown status"}
	}
	if r.RestaurantCategoryID == "" {
		return &ValidationError{Entity: "restaurant", Field: "restaurantCategoryId", Reason: "required"}
	}
	if r.UserID == "" {
		return &ValidationError{Entity: "restaurant", Field: "userId", Reason: "required"}
	}
	if r.AverageServiceMinutes != nil && *r.AverageServiceMinutes < 0 {
		return &ValidationError{Entity: "restaurant", Field: "averageServiceMinutes", Reason: "must be non-negative"}
	}
	return nil
}

// RestaurantPatch carries a partial update; nil fields are left untouched.
type RestaurantPatch struct {
	Name                 *string           `json:"name,omitempty"`
	Description          *string           `json:"description,omitempty"`
	Address              *string           `json:"address,omitempty"`
	PostalCode           *string           `json:"postalCode,omitempty"`
	URL                  *string           `json:"url,omitempty"`
	ShippingCosts        *float64          `json:"shippingCosts,omitempty"`
	Email                *string           `json:"email,omitempty"`
	Phone                *string           `json:"phone,omitempty"`
	Logo                 *string           `json:"logo,omitempty"`
	HeroImage            *string           `json:"heroImage,omitempty"`
	Status               *RestaurantStatus `json:"status,omitempty"`
	RestaurantCategoryID *string           `json:"restaurantCategoryId,omitempty"`
}

// Apply merges the patch into the restaurant. AverageServiceMinutes is
// deliberately not patchable; only the analytics recomputation writes it.
func (p RestaurantPatch) Apply(r *Restaurant) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Address != nil {
		r.Address = *p.Address
	}
	if p.PostalCode != nil {
		r.PostalCode = *p.PostalCode
	}
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.ShippingCosts != nil {
		r.ShippingCosts = *p.ShippingCosts
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Logo != nil {
		r.Logo = *p.Logo
	}
	if p.HeroImage != nil {
		r.HeroImage = *p.HeroImage
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.RestaurantCategoryID != nil {
		r.RestaurantCategoryID = *p.RestaurantCategoryID
	}
}
