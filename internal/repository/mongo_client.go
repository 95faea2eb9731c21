package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const connectTimeout = 10 * time.Second

// ConnectMongo dials and pings cfg.URI. When traced is set every command is
// recorded as an OTEL span.
func ConnectMongo(ctx context.Context, cfg config.MongoDBConfig, traced bool) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	if traced {
		opts.SetMonitor(otelmongo.NewMonitor())
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

// OpenStorage builds the configured backend. The returned close func releases
// the connection and is safe to call for the memory backend.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, func(), error) {
	if cfg.App.StorageBackend == config.StorageMemory {
		return NewMemoryStorage(), func() {}, nil
	}

	client, err := ConnectMongo(ctx, cfg.MongoDB, cfg.OTEL.Enabled)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		_ = client.Disconnect(context.Background())
	}
	return NewMongoStorage(client, client.Database(cfg.MongoDB.Database)), closeFn, nil
}
