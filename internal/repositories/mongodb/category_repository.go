package mongodb

import (
	"context"

	"github.com/deliverus/foodstore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CategoryRepository struct {
	db *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) RestaurantCategories(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, restaurantCategoryCollection)
}

func (r *CategoryRepository) ProductCategories(ctx context.Context) ([]models.Category, error) {
	return r.list(ctx, productCategoryCollection)
}

func (r *CategoryRepository) list(ctx context.Context, collection string) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	categories := make([]models.Category, len(docs))
	for i := range docs {
		categories[i] = *docs[i].toModel()
	}
	return categories, nil
}

func (r *CategoryRepository) CreateRestaurantCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	return r.create(ctx, restaurantCategoryCollection, category)
}

func (r *CategoryRepository) CreateProductCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	return r.create(ctx, productCategoryCollection, category)
}

func (r *CategoryRepository) create(ctx context.Context, collection string, category *models.Category) (*models.Category, error) {
	if err := category.Validate(); err != nil {
		return nil, err
	}
	doc := categoryDoc{ID: primitive.NewObjectID(), Name: category.Name}
	if _, err := r.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}
