package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/deliverus/foodstore/internal/models"
	"github.com/deliverus/foodstore/internal/repositories"
	"github.com/deliverus/foodstore/internal/repositories/mongodb"
	"github.com/deliverus/foodstore/internal/repositories/postgres"
)

// openStore connects the configured backend, bootstraps its schema or
// indexes, and returns the store with a cleanup func.
func openStore(ctx context.Context, cfg *models.Config) (*repositories.Store, func(), error) {
	switch cfg.Backend {
	case models.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to MongoDB: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		cleanup := func() { client.Disconnect(context.Background()) }
		return repositories.NewMongo(db), cleanup, nil

	case models.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to PostgreSQL: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repositories.NewPostgres(pool), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}
