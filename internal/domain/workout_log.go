package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrWorkoutLogNotFound  = errors.New("workout log not found")
	ErrDuplicateWorkoutLog = errors.New("user already has a log for this plan")
)

// WorkoutLog is a user's submission for one plan. One per (user, plan).
type WorkoutLog struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	UserID         string    `json:"user_id" bson:"user_id"`
	PlanID         string    `json:"plan_id" bson:"plan_id"`
	GeneralComment string    `json:"general_comment" bson:"general_comment"`
	SubmittedAt    time.Time `json:"submitted_at" bson:"submitted_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

type WorkoutLogRepository interface {
	Create(ctx context.Context, log *WorkoutLog) error
	GetByUserAndPlan(ctx context.Context, userID, planID string) (*WorkoutLog, error)
	UpdateComment(ctx context.Context, id string, comment string) error
	CountByPlanID(ctx context.Context, planID string) (int64, error)
}

// ErrNoPlanToday is returned when no plan exists for the current date
var ErrNoPlanToday = errors.New("no workout planned for today")

// InvalidRepsError rejects a whole submission because one set's reps is not a whole number
type InvalidRepsError struct {
	Exercise  string
	SetNumber int
	Value     string
}

func (e *InvalidRepsError) Error() string {
	return fmt.Sprintf("Invalid reps/time value '%s' for %s set %d. Please enter a whole number (e.g., 10 or 60).",
		e.Value, e.Exercise, e.SetNumber)
}
