package mongodb

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/deliverus/foodstore/internal/analytics"
	"github.com/deliverus/foodstore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductRepository operates on the product sub-documents embedded in
// restaurant documents; there is no standalone products collection.
type ProductRepository struct {
	db *mongo.Database
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc restaurantDoc
	err = r.db.Collection(restaurantsCollection).FindOne(ctx, bson.M{"products._id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for i := range doc.Products {
		if doc.Products[i].ID == objectID {
			product := doc.Products[i].toModel(doc.ID)
			categories, err := categoriesByID(ctx, r.db, productCategoryCollection, []primitive.ObjectID{doc.Products[i].ProductCategoryID})
			if err != nil {
				return nil, err
			}
			if category, ok := categories[product.ProductCategoryID]; ok {
				product.ProductCategory = &category
			}
			return product, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) FindByRestaurantID(ctx context.Context, restaurantID string) ([]*models.Product, error) {
	objectID, err := primitive.ObjectIDFromHex(restaurantID)
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

	restaurants, err := (&RestaurantRepository{db: r.db}).populate(ctx, []restaurantDoc{doc}, true)
	if err != nil {
		return nil, err
	}
	products := make([]*models.Product, len(restaurants[0].Products))
	for i := range restaurants[0].Products {
		products[i] = &restaurants[0].Products[i]
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := product.Validate(); err != nil {
		return nil, err
	}
	doc, restaurantID, err := r.docFromModel(ctx, product)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	result, err := r.db.Collection(restaurantsCollection).UpdateByID(ctx, restaurantID,
		bson.M{"$push": bson.M{"products": doc}})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: product.RestaurantID}
	}
	return r.FindByID(ctx, doc.ID.Hex())
}

func (r *ProductRepository) docFromModel(ctx context.Context, product *models.Product) (*productDoc, primitive.ObjectID, error) {
	restaurantID, err := primitive.ObjectIDFromHex(product.RestaurantID)
	if err != nil {
		return nil, primitive.NilObjectID, &models.ReferenceError{Entity: "restaurant", ID: product.RestaurantID}
	}
	categoryID, err := primitive.ObjectIDFromHex(product.ProductCategoryID)
	if err != nil {
		return nil, primitive.NilObjectID, &models.ReferenceError{Entity: "product category", ID: product.ProductCategoryID}
	}
	count, err := r.db.Collection(productCategoryCollection).CountDocuments(ctx, bson.M{"_id": categoryID})
	if err != nil {
		return nil, primitive.NilObjectID, err
	}
	if count == 0 {
		return nil, primitive.NilObjectID, &models.ReferenceError{Entity: "product category", ID: product.ProductCategoryID}
	}

	return &productDoc{
		Name:              product.Name,
		Description:       product.Description,
		Price:             product.Price,
		Image:             product.Image,
		DisplayOrder:      product.DisplayOrder,
		Availability:      product.Availability,
		ProductCategoryID: categoryID,
		CreatedAt:         product.CreatedAt,
		UpdatedAt:         product.UpdatedAt,
	}, restaurantID, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	product, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &models.ReferenceError{Entity: "product", ID: id}
	}

	patch.Apply(product)
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return r.replaceEmbedded(ctx, product)
}

func (r *ProductRepository) replaceEmbedded(ctx context.Context, product *models.Product) (*models.Product, error) {
	doc, _, err := r.docFromModel(ctx, product)
	if err != nil {
		return nil, err
	}
	doc.ID, _ = primitive.ObjectIDFromHex(product.ID)
	doc.CreatedAt = product.CreatedAt
	doc.UpdatedAt = time.Now()

	filter := bson.M{"products._id": doc.ID}
	update := bson.M{"$set": bson.M{"products.$": doc}}
	if _, err := r.db.Collection(restaurantsCollection).UpdateOne(ctx, filter, update); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, product.ID)
}

// Destroy pulls the product out of its restaurant's embedded array. A
// product referenced by order lines is not removable, matching the
// relational backend's foreign key.
func (r *ProductRepository) Destroy(ctx context.Context, id string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	ordered, err := r.HasBeenOrdered(ctx, id)
	if err != nil {
		return false, err
	}
	if ordered {
		return false, &models.ConflictError{Entity: "product", ID: id}
	}
	result, err := r.db.Collection(restaurantsCollection).UpdateOne(ctx,
		bson.M{"products._id": objectID},
		bson.M{"$pull": bson.M{"products": bson.M{"_id": objectID}}})
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// Save upserts the product within its restaurant: replace when the id
// is already embedded, push otherwise.
func (r *ProductRepository) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == "" {
		return r.Create(ctx, product)
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	existing, err := r.FindByID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return r.replaceEmbedded(ctx, product)
	}

	doc, restaurantID, err := r.docFromModel(ctx, product)
	if err != nil {
		return nil, err
	}
	if doc.ID, err = primitive.ObjectIDFromHex(product.ID); err != nil {
		return nil, &models.ReferenceError{Entity: "product", ID: product.ID}
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	result, err := r.db.Collection(restaurantsCollection).UpdateByID(ctx, restaurantID,
		bson.M{"$push": bson.M{"products": doc}})
	if err != nil {
		return nil, err
	}
	if result.MatchedCount == 0 {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: product.RestaurantID}
	}
	return r.FindByID(ctx, product.ID)
}

// Popular ranks order lines with an aggregation pipeline, then
// decorates the winners from the restaurant documents in a second
// pipeline, preserving rank order. Internal errors are logged and
// swallowed; the result is then empty.
func (r *ProductRepository) Popular(ctx context.Context) ([]models.PopularProduct, error) {
	ranks, err := r.rankProducts(ctx)
	if err != nil {
		log.Printf("Error fetching popular products: %v", err)
		return []models.PopularProduct{}, nil
	}
	if len(ranks) == 0 {
		return []models.PopularProduct{}, nil
	}

	details, err := r.productDetails(ctx, ranks)
	if err != nil {
		log.Printf("Error decorating popular products: %v", err)
		return []models.PopularProduct{}, nil
	}
	return analytics.DecorateInRankOrder(ranks, details), nil
}

func (r *ProductRepository) rankProducts(ctx context.Context) ([]analytics.ProductRank, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$products"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$products.productId"},
			{Key: "soldProductCount", Value: bson.D{{Key: "$sum", Value: "$products.quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "soldProductCount", Value: -1}}}},
		{{Key: "$limit", Value: analytics.PopularLimit}},
	}
	opts := options.Aggregate().SetMaxTime(analytics.RankingTimeout)
	cursor, err := r.db.Collection(ordersCollection).Aggregate(ctx, pipeline, opts)
	if err != nil {
		if mongo.IsTimeout(err) {
			return nil, models.ErrQueryTimeout
		}
		return nil, err
	}

	var rows []struct {
		ProductID        primitive.ObjectID `bson:"_id"`
		SoldProductCount int64              `bson:"soldProductCount"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		if mongo.IsTimeout(err) {
			return nil, models.ErrQueryTimeout
		}
		return nil, err
	}

	ranks := make([]analytics.ProductRank, len(rows))
	for i, row := range rows {
		ranks[i] = analytics.ProductRank{ProductID: row.ProductID.Hex(), SoldProductCount: row.SoldProductCount}
	}
	return ranks, nil
}

func (r *ProductRepository) productDetails(ctx context.Context, ranks []analytics.ProductRank) (map[string]models.PopularProduct, error) {
	ids := make([]primitive.ObjectID, 0, len(ranks))
	for _, rank := range ranks {
		objectID, err := primitive.ObjectIDFromHex(rank.ProductID)
		if err != nil {
			continue
		}
		ids = append(ids, objectID)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$products"}},
		{{Key: "$match", Value: bson.D{{Key: "products._id", Value: bson.D{{Key: "$in", Value: ids}}}}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: restaurantCategoryCollection},
			{Key: "localField", Value: "restaurantCategoryId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "restaurantCategory"},
		}}},
		{{Key: "$unwind", Value: "$restaurantCategory"}},
		{{Key: "$project", Value: bson.D{
			{Key: "productId", Value: "$products._id"},
			{Key: "productName", Value: "$products.name"},
			{Key: "productPrice", Value: "$products.price"},
			{Key: "restaurantName", Value: "$name"},
			{Key: "categoryId", Value: "$restaurantCategory._id"},
			{Key: "categoryName", Value: "$restaurantCategory.name"},
		}}},
	}
	cursor, err := r.db.Collection(restaurantsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		RestaurantID   primitive.ObjectID `bson:"_id"`
		ProductID      primitive.ObjectID `bson:"productId"`
		ProductName    string             `bson:"productName"`
		ProductPrice   float64            `bson:"productPrice"`
		RestaurantName string             `bson:"restaurantName"`
		CategoryID     primitive.ObjectID `bson:"categoryId"`
		CategoryName   string             `bson:"categoryName"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	details := make(map[string]models.PopularProduct)
	for _, row := range rows {
		details[row.ProductID.Hex()] = models.PopularProduct{
			ID:                 row.ProductID.Hex(),
			Name:               row.ProductName,
			Price:              row.ProductPrice,
			Restaurant:         models.EntityRef{ID: row.RestaurantID.Hex(), Name: row.RestaurantName},
			RestaurantCategory: models.EntityRef{ID: row.CategoryID.Hex(), Name: row.CategoryName},
		}
	}
	return details, nil
}

func (r *ProductRepository) HasBeenOrdered(ctx context.Context, productID string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(productID)
	if err != nil {
		return false, nil
	}
	count, err := r.db.Collection(ordersCollection).CountDocuments(ctx,
		bson.M{"products.productId": objectID}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
