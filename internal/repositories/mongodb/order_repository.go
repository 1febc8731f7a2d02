package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/deliverus/foodstore/internal/analytics"
	"github.com/deliverus/foodstore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

type OrderRepository struct {
	db *mongo.Database
}

func NewOrderRepository(db *mongo.Database) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc orderDoc
	err = r.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

// FindByRestaurantID lists a restaurant's orders newest first. When
// pagination is requested, the count and the page run concurrently.
func (r *OrderRepository) FindByRestaurantID(ctx context.Context, restaurantID string, opts models.FindOptions) (*models.OrderPage, error) {
	objectID, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return &models.OrderPage{Items: []*models.Order{}}, nil
	}
	filter := bson.M{"restaurantId": objectID}
	if opts.OwnerID != "" {
		filter["userId"] = opts.OwnerID
	}

	if !opts.Paginated {
		orders, err := r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
		if err != nil {
			return nil, err
		}
		return &models.OrderPage{Items: orders}, nil
	}

	opts = opts.Normalize()
	return r.paginate(ctx, filter, opts.Page, opts.Limit, false)
}

// FindByCustomerID pages through one customer's history newest first,
// with each order's restaurant populated.
func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID string, page, limit int) (*models.OrderPage, error) {
	opts := models.FindOptions{Paginated: true, Page: page, Limit: limit}.Normalize()
	return r.paginate(ctx, bson.M{"userId": customerID}, opts.Page, opts.Limit, true)
}

func (r *OrderRepository) paginate(ctx context.Context, filter bson.M, page, limit int, withRestaurants bool) (*models.OrderPage, error) {
	var (
		total  int64
		orders []*models.Order
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		total, err = r.db.Collection(ordersCollection).CountDocuments(groupCtx, filter)
		return err
	})
	group.Go(func() error {
		findOpts := options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetSkip(int64((page - 1) * limit)).
			SetLimit(int64(limit))
		var err error
		orders, err = r.find(groupCtx, filter, findOpts)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if withRestaurants {
		if err := r.attachRestaurants(ctx, orders); err != nil {
			return nil, err
		}
	}
	return &models.OrderPage{
		Items:      orders,
		Pagination: models.NewPagination(total, page, limit),
	}, nil
}

func (r *OrderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]*models.Order, error) {
	cursor, err := r.db.Collection(ordersCollection).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]*models.Order, len(docs))
	for i := range docs {
		orders[i] = docs[i].toModel()
	}
	return orders, nil
}

func (r *OrderRepository) attachRestaurants(ctx context.Context, orders []*models.Order) error {
	ids := make([]primitive.ObjectID, 0, len(orders))
	seen := make(map[string]bool, len(orders))
	for _, order := range orders {
		if seen[order.RestaurantID] {
			continue
		}
		seen[order.RestaurantID] = true
		objectID, err := primitive.ObjectIDFromHex(order.RestaurantID)
		if err != nil {
			continue
		}
		ids = append(ids, objectID)
	}
	if len(ids) == 0 {
		return nil
	}

	cursor, err := r.db.Collection(restaurantsCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return err
	}
	var docs []restaurantDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return err
	}
	restaurants := make(map[string]*models.Restaurant, len(docs))
	for i := range docs {
		restaurant := docs[i].toModel()
		restaurant.Products = nil
		restaurants[restaurant.ID] = restaurant
	}
	for _, order := range orders {
		order.Restaurant = restaurants[order.RestaurantID]
	}
	return nil
}

func (r *OrderRepository) docFromModel(ctx context.Context, order *models.Order) (*orderDoc, error) {
	restaurantID, err := primitive.ObjectIDFromHex(order.RestaurantID)
	if err != nil {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: order.RestaurantID}
	}
	count, err := r.db.Collection(restaurantsCollection).CountDocuments(ctx, bson.M{"_id": restaurantID})
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &models.ReferenceError{Entity: "restaurant", ID: order.RestaurantID}
	}

	lines, err := orderLinesFromModel(order.Products)
	if err != nil {
		return nil, err
	}
	return &orderDoc{
		CreatedAt:     order.CreatedAt,
		StartedAt:     order.StartedAt,
		SentAt:        order.SentAt,
		DeliveredAt:   order.DeliveredAt,
		Price:         order.Price,
		Address:       order.Address,
		ShippingCosts: order.ShippingCosts,
		RestaurantID:  restaurantID,
		UserID:        order.UserID,
		Products:      lines,
		UpdatedAt:     order.UpdatedAt,
	}, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.docFromModel(ctx, order)
	if err != nil {
		return nil, err
	}
	doc.ID = primitive.NewObjectID()
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if _, err := r.db.Collection(ordersCollection).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, doc.ID.Hex())
}

func (r *OrderRepository) Update(ctx context.Context, id string, patch models.OrderPatch) (*models.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, &models.ReferenceError{Entity: "order", ID: id}
	}

	patch.Apply(order)
	if err := order.Validate(); err != nil {
		return nil, err
	}
	doc, err := r.docFromModel(ctx, order)
	if err != nil {
		return nil, err
	}
	doc.ID, _ = primitive.ObjectIDFromHex(id)
	doc.CreatedAt = order.CreatedAt
	doc.UpdatedAt = time.Now()

	if _, err := r.db.Collection(ordersCollection).ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) Destroy(ctx context.Context, id string) (bool, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	result, err := r.db.Collection(ordersCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}

// Save upserts by id: insert when absent, full replace when present.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == "" {
		return r.Create(ctx, order)
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	objectID, err := primitive.ObjectIDFromHex(order.ID)
	if err != nil {
		return nil, &models.ReferenceError{Entity: "order", ID: order.ID}
	}

	doc, err := r.docFromModel(ctx, order)
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
	if _, err := r.db.Collection(ordersCollection).ReplaceOne(ctx, bson.M{"_id": objectID}, doc, opts); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, order.ID)
}

// Analytics computes all four daily facets in a single $facet
// aggregation, so the restaurant's orders are scanned once.
func (r *OrderRepository) Analytics(ctx context.Context, restaurantID string) (*models.OrderAnalytics, error) {
	objectID, err := primitive.ObjectIDFromHex(restaurantID)
	if err != nil {
		return &models.OrderAnalytics{RestaurantID: restaurantID}, nil
	}
	window := analytics.NewDayWindow(time.Now())

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "restaurantId", Value: objectID}}}},
		{{Key: "$facet", Value: bson.D{
			{Key: "numYesterdayOrders", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "createdAt", Value: bson.D{
					{Key: "$gte", Value: window.YesterdayStart},
					{Key: "$lt", Value: window.TodayStart},
				}}}}},
				bson.D{{Key: "$count", Value: "value"}},
			}},
			{Key: "numPendingOrders", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "startedAt", Value: nil}}}},
				bson.D{{Key: "$count", Value: "value"}},
			}},
			{Key: "numDeliveredTodayOrders", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "deliveredAt", Value: bson.D{
					{Key: "$gte", Value: window.TodayStart},
					{Key: "$lt", Value: window.TomorrowStart},
				}}}}},
				bson.D{{Key: "$count", Value: "value"}},
			}},
			{Key: "invoicedToday", Value: bson.A{
				bson.D{{Key: "$match", Value: bson.D{{Key: "startedAt", Value: bson.D{
					{Key: "$gte", Value: window.TodayStart},
					{Key: "$lt", Value: window.TomorrowStart},
				}}}}},
				bson.D{{Key: "$group", Value: bson.D{
					{Key: "_id", Value: nil},
					{Key: "value", Value: bson.D{{Key: "$sum", Value: "$price"}}},
				}}},
			}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "numYesterdayOrders", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$numYesterdayOrders.value", 0}}}, 0,
			}}}},
			{Key: "numPendingOrders", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$numPendingOrders.value", 0}}}, 0,
			}}}},
			{Key: "numDeliveredTodayOrders", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$numDeliveredTodayOrders.value", 0}}}, 0,
			}}}},
			{Key: "invoicedToday", Value: bson.D{{Key: "$ifNull", Value: bson.A{
				bson.D{{Key: "$arrayElemAt", Value: bson.A{"$invoicedToday.value", 0}}}, 0,
			}}}},
		}}},
	}
	cursor, err := r.db.Collection(ordersCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		NumYesterdayOrders      int64   `bson:"numYesterdayOrders"`
		NumPendingOrders        int64   `bson:"numPendingOrders"`
		NumDeliveredTodayOrders int64   `bson:"numDeliveredTodayOrders"`
		InvoicedToday           float64 `bson:"invoicedToday"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	result := &models.OrderAnalytics{RestaurantID: restaurantID}
	if len(rows) > 0 {
		result.NumYesterdayOrders = rows[0].NumYesterdayOrders
		result.NumPendingOrders = rows[0].NumPendingOrders
		result.NumDeliveredTodayOrders = rows[0].NumDeliveredTodayOrders
		result.InvoicedToday = rows[0].InvoicedToday
	}
	return result, nil
}
