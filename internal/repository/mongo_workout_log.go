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

// MongoWorkoutLogRepository implements domain.WorkoutLogRepository
type MongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutLogRepository(db *mongo.Database) *MongoWorkoutLogRepository {
	coll := db.Collection("workout_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "plan_id", Value: 1}}},
	})

	return &MongoWorkoutLogRepository{collection: coll}
}

func (r *MongoWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) error {
	log.SubmittedAt = time.Now()
	log.UpdatedAt = log.SubmittedAt

	result, err := r.collection.InsertOne(ctx, log)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateWorkoutLog
		}
		return fmt.Errorf("failed to create workout log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		log.ID = oid.Hex()
	}
	return nil
}

func (r *MongoWorkoutLogRepository) GetByUserAndPlan(ctx context.Context, userID, planID string) (*domain.WorkoutLog, error) {
	var log domain.WorkoutLog
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID, "plan_id": planID}).Decode(&log)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrWorkoutLogNotFound
		}
		return nil, fmt.Errorf("failed to get workout log: %w", err)
	}
	return &log, nil
}

func (r *MongoWorkoutLogRepository) UpdateComment(ctx context.Context, id string, comment string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	update := bson.M{
		"$set": bson.M{
			"general_comment": comment,
			"updated_at":      time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update workout log: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrWorkoutLogNotFound
	}
	return nil
}

func (r *MongoWorkoutLogRepository) CountByPlanID(ctx context.Context, planID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"plan_id": planID})
}
