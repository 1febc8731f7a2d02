package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRestaurant() Restaurant {
	return Restaurant{
		Name:                 "Casa Felix",
		Address:              "1 Main St",
		PostalCode:           "41010",
		ShippingCosts:        2.5,
		Status:               RestaurantOnline,
		RestaurantCategoryID: "c1",
		UserID:               "owner-1",
	}
}

func TestRestaurantStatusValid(t *testing.T) {
	assert.True(t, RestaurantOnline.Valid())
	assert.True(t, RestaurantTemporarilyClosed.Valid())
	assert.False(t, RestaurantStatus("open").Valid())
	assert.False(t, RestaurantStatus("").Valid())
}

func TestRestaurantValidate(t *testing.T) {
	negative := -1.0

	tests := []struct {
		name   string
		mutate func(*Restaurant)
		field  string
	}{
		{"valid", func(r *Restaurant) {}, ""},
		{"empty status allowed", func(r *Restaurant) { r.Status = "" }, ""},
		{"missing name", func(r *Restaurant) { r.Name = "" }, "name"},
		{"missing address", func(r *Restaurant) { r.Address = "" }, "address"},
		{"missing postal code", func(r *Restaurant) { r.PostalCode = "" }, "postalCode"},
		{"negative shipping", func(r *Restaurant) { r.ShippingCosts = -1 }, "shippingCosts"},
		{"bogus status", func(r *Restaurant) { r.Status = "open" }, "status"},
		{"missing category", func(r *Restaurant) { r.RestaurantCategoryID = "" }, "restaurantCategoryId"},
		{"missing owner", func(r *Restaurant) { r.UserID = "" }, "userId"},
		{"negative average", func(r *Restaurant) { r.AverageServiceMinutes = &negative }, "averageServiceMinutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			restaurant := validRestaurant()
			tt.mutate(&restaurant)
			err := restaurant.Validate()
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

func TestRestaurantPatchApply(t *testing.T) {
	average := 32.0
	restaurant := validRestaurant()
	restaurant.AverageServiceMinutes = &average

	name := "Casa Felix II"
	status := RestaurantClosed
	RestaurantPatch{Name: &name, Status: &status}.Apply(&restaurant)

	assert.Equal(t, "Casa Felix II", restaurant.Name)
	assert.Equal(t, RestaurantClosed, restaurant.Status)
	assert.Equal(t, "1 Main St", restaurant.Address)
	// only the analytics recomputation may touch the average
	require.NotNil(t, restaurant.AverageServiceMinutes)
	assert.Equal(t, 32.0, *restaurant.AverageServiceMinutes)
}

func TestProductValidate(t *testing.T) {
	product := Product{Name: "Ramen", Price: 11.5, RestaurantID: "r1", ProductCategoryID: "c1"}
	assert.NoError(t, product.Validate())

	product.Price = -2
	var verr *ValidationError
	require.ErrorAs(t, product.Validate(), &verr)
	assert.Equal(t, "price", verr.Field)
}

func TestProductPatchApply(t *testing.T) {
	product := Product{Name: "Ramen", Price: 11.5, RestaurantID: "r1", ProductCategoryID: "c1", Availability: true}

	price := 12.0
	available := false
	ProductPatch{Price: &price, Availability: &available}.Apply(&product)

	assert.Equal(t, 12.0, product.Price)
	assert.False(t, product.Availability)
	assert.Equal(t, "Ramen", product.Name)
	assert.Equal(t, "r1", product.RestaurantID)
}
