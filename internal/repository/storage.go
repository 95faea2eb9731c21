package repository

import (
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
)

// Storage bundles the repositories of one backend with its transactor
type Storage struct {
	Transactor  domain.Transactor
	Exercises   domain.ExerciseRepository
	Plans       domain.WorkoutPlanRepository
	PlanItems   domain.PlanItemRepository
	WorkoutLogs domain.WorkoutLogRepository
	SetLogs     domain.SetLogRepository
	Users       domain.UserRepository
}

// NewMongoStorage wires every Mongo repository against db
func NewMongoStorage(client *mongo.Client, db *mongo.Database) *Storage {
	return &Storage{
		Transactor:  NewMongoTransactor(client),
		Exercises:   NewMongoExerciseRepository(db),
		Plans:       NewMongoWorkoutPlanRepository(db),
		PlanItems:   NewMongoPlanItemRepository(db),
		WorkoutLogs: NewMongoWorkoutLogRepository(db),
		SetLogs:     NewMongoSetLogRepository(db),
		Users:       NewMongoUserRepository(db),
	}
}

// NewMemoryStorage returns a fresh, empty in-process store
func NewMemoryStorage() *Storage {
	store := NewMemoryStore()
	return &Storage{
		Transactor:  store,
		Exercises:   store.Exercises(),
		Plans:       store.Plans(),
		PlanItems:   store.PlanItems(),
		WorkoutLogs: store.WorkoutLogs(),
		SetLogs:     store.SetLogs(),
		Users:       store.Users(),
	}
}

// WithPlanCache swaps Plans for a Redis-cached decorator
func (s *Storage) WithPlanCache(cache *RedisCacheRepository) *Storage {
	s.Plans = NewCachedPlanRepository(s.Plans, cache)
	return s
}
