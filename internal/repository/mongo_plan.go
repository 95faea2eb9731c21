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

// MongoWorkoutPlanRepository implements domain.WorkoutPlanRepository
type MongoWorkoutPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutPlanRepository(db *mongo.Database) *MongoWorkoutPlanRepository {
	coll := db.Collection("workout_plans")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// One plan per calendar date
	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoWorkoutPlanRepository{collection: coll}
}

func (r *MongoWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) error {
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicatePlanDate
		}
		return fmt.Errorf("failed to create workout plan: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		plan.ID = oid.Hex()
	}
	return nil
}

func (r *MongoWorkoutPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoWorkoutPlanRepository) GetByDate(ctx context.Context, date string) (*domain.WorkoutPlan, error) {
	return r.findOne(ctx, bson.M{"date": date})
}

func (r *MongoWorkoutPlanRepository) findOne(ctx context.Context, filter bson.M) (*domain.WorkoutPlan, error) {
	var plan domain.WorkoutPlan
	if err := r.collection.FindOne(ctx, filter).Decode(&plan); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get workout plan: %w", err)
	}
	return &plan, nil
}

func (r *MongoWorkoutPlanRepository) List(ctx context.Context) ([]*domain.WorkoutPlan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list workout plans: %w", err)
	}
	defer cursor.Close(ctx)

	plans := []*domain.WorkoutPlan{}
	if err := cursor.All(ctx, &plans); err != nil {
		return nil, fmt.Errorf("failed to decode workout plans: %w", err)
	}
	return plans, nil
}

func (r *MongoWorkoutPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	oid, err := primitive.ObjectIDFromHex(plan.ID)
	if err != nil {
		return domain.ErrInvalidID
	}
	plan.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"date":       plan.Date,
			"title":      plan.Title,
			"updated_at": plan.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicatePlanDate
		}
		return fmt.Errorf("failed to update workout plan: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}

func (r *MongoWorkoutPlanRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete workout plan: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrPlanNotFound
	}
	return nil
}
