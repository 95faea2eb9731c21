package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDuplicateExercise = errors.New("exercise name already exists")
	ErrExerciseInUse     = errors.New("exercise is referenced by a workout plan")
	ErrExerciseNameEmpty = errors.New("exercise name is required")
)

// Exercise represents a move in the catalog
type Exercise struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"` // Unique Index, case-sensitive
	VideoURL  string    `json:"video_url" bson:"video_url"`
	Notes     string    `json:"notes" bson:"notes"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	// GetByName is an exact, case-sensitive match
	GetByName(ctx context.Context, name string) (*Exercise, error)
	List(ctx context.Context, filter map[string]interface{}) ([]*Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	UpdateVideoURL(ctx context.Context, id string, videoURL string) error
	Delete(ctx context.Context, id string) error
}
