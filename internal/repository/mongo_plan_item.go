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

// MongoPlanItemRepository implements domain.PlanItemRepository
type MongoPlanItemRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanItemRepository(db *mongo.Database) *MongoPlanItemRepository {
	coll := db.Collection("plan_items")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "plan_id", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "exercise_id", Value: 1}}},
	})

	return &MongoPlanItemRepository{collection: coll}
}

func (r *MongoPlanItemRepository) Create(ctx context.Context, item *domain.PlanItem) error {
	result, err := r.collection.InsertOne(ctx, item)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateItemOrder
		}
		return fmt.Errorf("failed to create plan item: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid.Hex()
	}
	return nil
}

func (r *MongoPlanItemRepository) ListByPlanID(ctx context.Context, planID string) ([]*domain.PlanItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"plan_id": planID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list plan items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []*domain.PlanItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode plan items: %w", err)
	}
	return items, nil
}

func (r *MongoPlanItemRepository) DeleteByPlanID(ctx context.Context, planID string) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"plan_id": planID}); err != nil {
		return fmt.Errorf("failed to delete plan items: %w", err)
	}
	return nil
}

func (r *MongoPlanItemRepository) CountByExerciseID(ctx context.Context, exerciseID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"exercise_id": exerciseID})
}
