package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/mansoorceksport/workoutlog/internal/domain"
)

// ExerciseService manages the exercise catalog outside of imports
type ExerciseService struct {
	exerciseRepo domain.ExerciseRepository
	itemRepo     domain.PlanItemRepository
}

func NewExerciseService(exerciseRepo domain.ExerciseRepository, itemRepo domain.PlanItemRepository) *ExerciseService {
	return &ExerciseService{
		exerciseRepo: exerciseRepo,
		itemRepo:     itemRepo,
	}
}

func (s *ExerciseService) List(ctx context.Context, name string) ([]*domain.Exercise, error) {
	return s.exerciseRepo.List(ctx, map[string]interface{}{"name": strings.TrimSpace(name)})
}

func (s *ExerciseService) Create(ctx context.Context, ex *domain.Exercise) error {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return domain.ErrExerciseNameEmpty
	}
	ex.VideoURL = strings.TrimSpace(ex.VideoURL)
	return s.exerciseRepo.Create(ctx, ex)
}

func (s *ExerciseService) Update(ctx context.Context, ex *domain.Exercise) error {
	ex.Name = strings.TrimSpace(ex.Name)
	if ex.Name == "" {
		return domain.ErrExerciseNameEmpty
	}
	ex.VideoURL = strings.TrimSpace(ex.VideoURL)
	return s.exerciseRepo.Update(ctx, ex)
}

// Delete refuses exercises still referenced by a plan item
func (s *ExerciseService) Delete(ctx context.Context, id string) error {
	n, err := s.itemRepo.CountByExerciseID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count plan items: %w", err)
	}
	if n > 0 {
		return domain.ErrExerciseInUse
	}
	return s.exerciseRepo.Delete(ctx, id)
}
