// Package factories builds randomized domain entities for seeding and
// tests. IDs are left empty so the repository layer assigns them on
// insert.
package factories

import (
	"math/rand"

	"github.com/deliverus/foodstore/internal/models"
	"github.com/jaswdr/faker"
)

var fake = faker.New()

type RestaurantFactory struct{}

func (rf *RestaurantFactory) CreateRestaurant(categoryID, userID string) *models.Restaurant {
	person := fake.Person()
	return &models.Restaurant{
		Name:                 fake.Company().Name(),
		Description:          fake.Lorem().Sentence(8),
		Address:              fake.Address().StreetAddress(),
		PostalCode:           fake.Address().PostCode(),
		URL:                  fake.Internet().URL(),
		ShippingCosts:        fake.Float64(2, 0, 10),
		Email:                person.Contact().Email,
		Phone:                person.Contact().Phone,
		Logo:                 fake.Internet().URL() + "/logo.png",
		HeroImage:            fake.Internet().URL() + "/hero.jpg",
		Status:               randomStatus(),
		RestaurantCategoryID: categoryID,
		UserID:               userID,
	}
}

func randomStatus() models.RestaurantStatus {
	statuses := []models.RestaurantStatus{
		models.RestaurantOnline,
		models.RestaurantOnline,
		models.RestaurantOnline,
		models.RestaurantOffline,
		models.RestaurantClosed,
		models.RestaurantTemporarilyClosed,
	}
	return statuses[rand.Intn(len(statuses))]
}
