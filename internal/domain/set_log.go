package domain

import (
	"context"
	"time"
)

// SetLog is a single performed set. One per (log, plan item, set number).
type SetLog struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	LogID      string    `json:"log_id" bson:"log_id"`
	PlanItemID string    `json:"plan_item_id" bson:"plan_item_id"`
	ItemOrder  int       `json:"item_order" bson:"item_order"` // Denormalized for ordering
	SetNumber  int       `json:"set_number" bson:"set_number"` // 1-based
	RepsDone   int       `json:"reps_done" bson:"reps_done"`   // Seconds for timed exercises
	Comment    string    `json:"comment" bson:"comment"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// SetLogRepository handles the set_logs collection
type SetLogRepository interface {
	// Create adds a new set log document
	Create(ctx context.Context, setLog *SetLog) error
	// ListByLogID returns set logs ordered by item order then set number
	ListByLogID(ctx context.Context, logID string) ([]*SetLog, error)
	// DeleteByLogID removes all set logs of a workout log
	DeleteByLogID(ctx context.Context, logID string) error
}
