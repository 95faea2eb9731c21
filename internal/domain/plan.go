package domain

import (
	"context"
	"errors"
	"time"
)

// PlanDateLayout is the calendar date format plans are keyed by
const PlanDateLayout = "2006-01-02"

var (
	ErrPlanNotFound      = errors.New("workout plan not found")
	ErrDuplicatePlanDate = errors.New("a workout plan already exists for this date")
	ErrInvalidPlanDate   = errors.New("plan date must be YYYY-MM-DD")
	ErrPlanHasLogs       = errors.New("workout plan has submitted logs")
)

// WorkoutPlan is the workout scheduled for one calendar date
type WorkoutPlan struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Date      string    `json:"date" bson:"date"` // YYYY-MM-DD, unique
	Title     string    `json:"title" bson:"title"`
	CreatedBy string    `json:"created_by" bson:"created_by"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayTitle mirrors how plans are labelled in admin listings
func (p *WorkoutPlan) DisplayTitle() string {
	if p.Title == "" {
		return p.Date + " - Workout"
	}
	return p.Date + " - " + p.Title
}

// ParsePlanDate validates a YYYY-MM-DD string and returns it normalized
func ParsePlanDate(s string) (string, error) {
	t, err := time.Parse(PlanDateLayout, s)
	if err != nil {
		return "", ErrInvalidPlanDate
	}
	return t.Format(PlanDateLayout), nil
}

type WorkoutPlanRepository interface {
	Create(ctx context.Context, plan *WorkoutPlan) error
	GetByID(ctx context.Context, id string) (*WorkoutPlan, error)
	GetByDate(ctx context.Context, date string) (*WorkoutPlan, error)
	// List returns plans newest date first
	List(ctx context.Context) ([]*WorkoutPlan, error)
	Update(ctx context.Context, plan *WorkoutPlan) error
	Delete(ctx context.Context, id string) error
}
