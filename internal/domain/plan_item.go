package domain

import (
	"context"
	"errors"
)

// DefaultPrescribedReps is used when a prescription leaves reps blank
const DefaultPrescribedReps = "10"

var (
	ErrPlanItemNotFound   = errors.New("plan item not found")
	ErrDuplicateItemOrder = errors.New("plan already has an item at this order")
)

// PlanItem is one exercise's prescription within a plan
type PlanItem struct {
	ID             string `json:"id" bson:"_id,omitempty"`
	PlanID         string `json:"plan_id" bson:"plan_id"`
	ExerciseID     string `json:"exercise_id" bson:"exercise_id"`
	Order          int    `json:"order" bson:"order"` // 1-based, unique per plan
	PrescribedSets int    `json:"prescribed_sets" bson:"prescribed_sets"`
	PrescribedReps string `json:"prescribed_reps" bson:"prescribed_reps"` // "10", "AMRAP", "45"
	RestSeconds    int    `json:"rest_seconds" bson:"rest_seconds"`
}

// PlanItemDetail is a plan item joined with its exercise for display
type PlanItemDetail struct {
	*PlanItem
	Exercise *Exercise `json:"exercise"`
}

// PlanItemRepository stores the ordered item list of each plan
type PlanItemRepository interface {
	Create(ctx context.Context, item *PlanItem) error
	// ListByPlanID returns items in ascending order
	ListByPlanID(ctx context.Context, planID string) ([]*PlanItem, error)
	DeleteByPlanID(ctx context.Context, planID string) error
	// CountByExerciseID reports how many items reference an exercise
	CountByExerciseID(ctx context.Context, exerciseID string) (int64, error)
}
