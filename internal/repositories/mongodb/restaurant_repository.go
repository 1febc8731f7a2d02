package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/deliverus/foodstore/internal/analytics"
	"github.com/deliverus/foodstore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RestaurantRepository struct {
	db *mongo.Database
}

func NewRestaurantRepository(db *mongo.Database) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// FindByID returns the restaurant with embedded products in display
// order and both category kinds resolved. Unknown and malformed ids
// both yield (nil, nil).
func (r *RestaurantRepository) FindByID(ctx context.Context, id string) (*models.Restaurant, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc restaurantDoc
	err = r.db.Collection(restaurantsCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	restaurants, err := r.populate(ctx, []restaurantDoc{doc}, true)
	if err != nil {
		return nil, err
	}
	return restaurants[0], nil
}

func (r *RestaurantRepository) FindAll(ctx context.Context) ([]*models.Restaurant, error) {
	return r.find(ctx, bson.M{})
}

func (r *RestaurantRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*models.Restaurant, error) {
	return r.find(ctx, bson.M{"userId": ownerID})
}

func (r *RestaurantRepository) find(ctx context.Context, filter bson.M) ([]*models.Restaurant, error) {
	cursor, err := r.db.Collection(restaurantsCollection).Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var docs []restaurantDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return r.populate(ctx, docs, false)
}

// populate sorts embedded products into display order and resolves the
// referenced categories, batched across the whole slice. Product
// categories are only attached on single-document reads.
func (r *RestaurantRepository) populate(ctx context.Context, docs []restaurantDoc, withProductCategories bool) ([]*models.Restaurant, error) {
	categoryIDs := make([]primitive.ObjectID, 0, len(docs))
	productCategoryIDs := make([]primitive.ObjectID, 0)
	for i := range docs {
		sort.SliceStable(docs[i].Products, func(a, b int) bool {
			return docs[i].Products[a].DisplayOrder < docs[i].Products[b].DisplayOrder
		})
		categoryIDs = append(categoryIDs, docs[i].RestaurantCategoryID)
		if withProductCategories {
			for _, product := range docs[i].Products {
				productCategoryIDs = append(productCategoryIDs, product.ProductCategoryID)
			}
		}
	}

	categories, err := categoriesByID(ctx, r.db, restaurantCategoryCollection, categoryIDs)
	if err != nil {
		return nil, err
	}
	var productCategories map[string]models.Category
	if withProductCategories {
		productCategories, err = categoriesByID(ctx, r.db, productCategoryCollection, productCategoryIDs)
		if err != nil {
			return nil, err
		}
	}

	restaurants := make([]*models.Restaurant, len(docs))
	for i := range docs {
		restaurant := docs[i].toModel()
		if category, ok := categories[restaurant.RestaurantCategoryID]; ok {
			restaurant.RestaurantCategory = &category
		}
		for j := range restaurant.Products {
			if category, ok := productCategories[restaurant.Products[j].ProductCategoryID]; ok {
				restaurant.Products[j].ProductCategory = &category
			}
		}
		restaurants[i] = restaurant
	}
	return restaurants, nil
}

func categoriesByID(ctx context.Context, db *mongo.Database, collection string, ids []primitive.ObjectID) (map[string]models.Category, error) {
	categories := make(map[string]models.Category)
	if len(ids) == 0 {
		return categories, nil
	}
	cursor, err := db.Collection(collection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		categories[doc.ID.Hex()] = *doc.toModel()
	}
	return categories, nil
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.docFromModel(ctx, restaurant)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.db.Collection(restaurantsCollection).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, doc.ID.Hex())
}

// docFromModel translates the domain model and verifies its references
// resolve; the document engine has no foreign keys, so the check
// happens here.
func (r *RestaurantRepository) docFromModel(ctx context.Context, restaurant *models.Restaurant) (*restaurantDoc, error) {
	categoryID, err := primitive.ObjectIDFromHex(restaurant.RestaurantCategoryID)
	if err != nil {
		return nil, &models.ReferenceError{Entity: "restaurant category", ID: restaurant.RestaurantCategoryID}
	}
	count, err := r.db.Collection(restaurantCategoryCollection).CountDocuments(ctx, bson.M{"_id": categoryID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &models.ReferenceError{Entity: "restaurant category", ID: restaurant.RestaurantCategoryID}
	}

	doc := &restaurantDoc{
		Name:                  restaurant.Name,
		Description:           restaurant.Description,
		Address:               restaurant.Address,
		PostalCode:            restaurant.PostalCode,
		URL:                   restaurant.URL,
		ShippingCosts:         restaurant.ShippingCosts,
		AverageServiceMinutes: restaurant.AverageServiceMinutes,
		Email:                 restaurant.Email,
		Phone:                 restaurant.Phone,
		Logo:                  restaurant.Logo,
		HeroImage:             restaurant.HeroImage,
		Status:                string(restaurant.Status),
		RestaurantCategoryID:  categoryID,
		UserID:                restaurant.UserID,
		Products:              []productDoc{},
		CreatedAt:             restaurant.CreatedAt,
		UpdatedAt:             restaurant.UpdatedAt,
	}
	for _, product := range restaurant.Products {
		productCategoryID, err := primitive.ObjectIDFromHex(product.ProductCategoryID)
		if err != nil {
			return nil, &models.ReferenceError{Entity: "product category", ID: product.ProductCategoryID}
		}
		embedded := productDoc{
			Name:              product.Name,
			Description:       product.Description,
			Price:             product.Price,
			Image:             product.Image,
			DisplayOrder:      product.DisplayOrder,
			Availability:      product.Availability,
			ProductCategoryID: productCategoryID,
			CreatedAt:         product.CreatedAt,
			UpdatedAt:         product.UpdatedAt,
		}
		if product.ID != "" {
			if embedded.ID, err = primitive.ObjectIDFromHex(product.ID); err != nil {
				return nil, &models.ReferenceError{Entity: "product", ID: product.ID}
			}
		} else {
			embedded.ID = primitive.NewObjectID()
		}
		doc.Products = append(doc.Products, embedded)
	}
	return doc, nil
}

func (r *RestaurantRepository) Update(ctx context.Context, id string, patch models.RestaurantPatch) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: id}
	}

	patch.Apply(restaurant)
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.docFromModel(ctx, restaurant)
	if err != nil {
		return nil, err
	}
	doc.ID, _ = primitive.ObjectIDFromHex(id)
	doc.CreatedAt = restaurant.CreatedAt
	doc.UpdatedAt = time.Now()

	_, err = r.db.Collection(restaurantsCollection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Destroy removes the restaurant document; its embedded products go
// with it. A restaurant with order history is not removable: the
// document engine has no foreign keys, so the dependency check runs
// here and surfaces as the same ConflictError the relational backend
// raises.
func (r *RestaurantRepository) Destroy(ctx context.Context, id string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	orders, err := r.db.Collection(ordersCollection).CountDocuments(ctx,
		bson.M{"restaurantId": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	if orders > 0 {
		return false, &models.ConflictError{Entity: "restaurant", ID: id}
	}
	result, err := r.db.Collection(restaurantsCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

// Save upserts by id: insert when absent, full replace when present.
func (r *RestaurantRepository) Save(ctx context.Context, restaurant *models.Restaurant) (*models.Restaurant, error) {
	if restaurant.ID == "" {
		return r.Create(ctx, restaurant)
	}
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	objectID, err := primitive.ObjectIDFromHex(restaurant.ID)
	if err != nil {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: restaurant.ID}
	}

	doc, err := r.docFromModel(ctx, restaurant)
	if err != nil {
		return nil, err
	}
	doc.ID = objectID
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(restaurantsCollection).ReplaceOne(ctx, bson.M{"_id": objectID}, doc, opts); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, restaurant.ID)
}

// AverageServiceTime reads only the timestamps of delivered orders and
// delegates the minute arithmetic to the shared analytics helpers, so
// both backends agree bit for bit.
func (r *RestaurantRepository) AverageServiceTime(ctx context.Context, id string) (*float64, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	filter := bson.M{"restaurantId": objectID, "deliveredAt": bson.M{"$ne": nil}}
	cursor, err := r.db.Collection(ordersCollection).Find(ctx, filter, options.Find().SetProjection(bson.M{"createdAt": 1, "deliveredAt": 1}))
	if err != nil {
		return nil, err
	}

	var docs []struct {
		CreatedAt   time.Time  `bson:"createdAt"`
		DeliveredAt *time.Time `bson:"deliveredAt"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	var minutes []int64
	for _, doc := range docs {
		if doc.DeliveredAt == nil {
			continue
		}
		minutes = append(minutes, analytics.ServiceMinutes(doc.CreatedAt, *doc.DeliveredAt))
	}
	return analytics.MeanServiceMinutes(minutes), nil
}

// UpdateAverageServiceTime recomputes and persists the average.
// Read-modify-write without a lock, same accepted race as the
// relational backend.
func (r *RestaurantRepository) UpdateAverageServiceTime(ctx context.Context, id string) (*models.Restaurant, error) {
	restaurant, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, nil
	}

	average, err := r.AverageServiceTime(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("recomputing average service time: %w", err)
	}

	objectID, _ := primitive.ObjectIDFromHex(id)
	update := bson.M{"$set": bson.M{"averageServiceMinutes": average, "updatedAt": time.Now()}}
	if _, err := r.db.Collection(restaurantsCollection).UpdateByID(ctx, objectID, update); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}
