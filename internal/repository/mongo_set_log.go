package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSetLogRepository struct {
	collection *mongo.Collection
}

func NewMongoSetLogRepository(db *mongo.Database) *MongoSetLogRepository {
	coll := db.Collection("set_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "log_id", Value: 1},
			{Key: "plan_item_id", Value: 1},
			{Key: "set_number", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return &MongoSetLogRepository{
		collection: coll,
	}
}

func (r *MongoSetLogRepository) Create(ctx context.Context, setLog *domain.SetLog) error {
	setLog.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, setLog)
	if err != nil {
		return fmt.Errorf("failed to create set log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		setLog.ID = oid.Hex()
	}
	return nil
}

func (r *MongoSetLogRepository) ListByLogID(ctx context.Context, logID string) ([]*domain.SetLog, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "item_order", Value: 1},
		{Key: "set_number", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"log_id": logID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	setLogs := []*domain.SetLog{}
	if err := cursor.All(ctx, &setLogs); err != nil {
		return nil, err
	}
	return setLogs, nil
}

func (r *MongoSetLogRepository) DeleteByLogID(ctx context.Context, logID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"log_id": logID})
	return err
}
