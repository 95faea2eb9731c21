package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mansoorceksport/workoutlog/internal/domain"
)

// PlanService handles plan administration
type PlanService struct {
	tx           domain.Transactor
	planRepo     domain.WorkoutPlanRepository
	itemRepo     domain.PlanItemRepository
	exerciseRepo domain.ExerciseRepository
	logRepo      domain.WorkoutLogRepository
}

func NewPlanService(
	tx domain.Transactor,
	planRepo domain.WorkoutPlanRepository,
	itemRepo domain.PlanItemRepository,
	exerciseRepo domain.ExerciseRepository,
	logRepo domain.WorkoutLogRepository,
) *PlanService {
	return &PlanService{
		tx:           tx,
		planRepo:     planRepo,
		itemRepo:     itemRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
	}
}

// PlanDetail is a plan with its ordered items
type PlanDetail struct {
	*domain.WorkoutPlan
	Items []*domain.PlanItemDetail `json:"items"`
}

func (s *PlanService) CreatePlan(ctx context.Context, date, title, createdBy string) (*domain.WorkoutPlan, error) {
	normalized, err := domain.ParsePlanDate(strings.TrimSpace(date))
	if err != nil {
		return nil, err
	}

	plan := &domain.WorkoutPlan{
		Date:      normalized,
		Title:     strings.TrimSpace(title),
		CreatedBy: createdBy,
	}
	if err := s.planRepo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) ListPlans(ctx context.Context) ([]*domain.WorkoutPlan, error) {
	return s.planRepo.List(ctx)
}

// GetPlan returns the plan with items joined to their exercises
func (s *PlanService) GetPlan(ctx context.Context, id string) (*PlanDetail, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := loadItemDetails(ctx, s.itemRepo, s.exerciseRepo, plan.ID)
	if err != nil {
		return nil, err
	}
	return &PlanDetail{WorkoutPlan: plan, Items: items}, nil
}

func (s *PlanService) UpdatePlan(ctx context.Context, id, date, title string) (*domain.WorkoutPlan, error) {
	plan, err := s.planRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if date != "" {
		normalized, err := domain.ParsePlanDate(strings.TrimSpace(date))
		if err != nil {
			return nil, err
		}
		plan.Date = normalized
	}
	plan.Title = strings.TrimSpace(title)

	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan removes a plan and its items. Plans with submitted logs are kept.
func (s *PlanService) DeletePlan(ctx context.Context, id string) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		plan, err := s.planRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		logs, err := s.logRepo.CountByPlanID(ctx, plan.ID)
		if err != nil {
			return fmt.Errorf("failed to count workout logs: %w", err)
		}
		if logs > 0 {
			return domain.ErrPlanHasLogs
		}

		if err := s.itemRepo.DeleteByPlanID(ctx, plan.ID); err != nil {
			return err
		}
		return s.planRepo.Delete(ctx, plan.ID)
	})
}

// loadItemDetails lists a plan's items in order, each joined with its exercise
func loadItemDetails(ctx context.Context, itemRepo domain.PlanItemRepository, exerciseRepo domain.ExerciseRepository, planID string) ([]*domain.PlanItemDetail, error) {
	items, err := itemRepo.ListByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	exercises := make(map[string]*domain.Exercise)
	details := make([]*domain.PlanItemDetail, 0, len(items))
	for _, item := range items {
		ex, ok := exercises[item.ExerciseID]
		if !ok {
			ex, err = exerciseRepo.GetByID(ctx, item.ExerciseID)
			if err != nil && !errors.Is(err, domain.ErrExerciseNotFound) {
				return nil, fmt.Errorf("failed to load exercise %s: %w", item.ExerciseID, err)
			}
			exercises[item.ExerciseID] = ex
		}
		details = append(details, &domain.PlanItemDetail{PlanItem: item, Exercise: ex})
	}
	return details, nil
}
