package service

import (
	"context"
	"strings"
	"testing"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanService(storage *repository.Storage) *PlanService {
	return NewPlanService(storage.Transactor, storage.Plans, storage.PlanItems, storage.Exercises, storage.WorkoutLogs)
}

func TestPlanService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	svc := newPlanService(repository.NewMemoryStorage())

	_, err := svc.CreatePlan(ctx, "2024-03-01", "Legs", "admin-1")
	require.NoError(t, err)
	_, err = svc.CreatePlan(ctx, "2024-03-05", "", "admin-1")
	require.NoError(t, err)

	_, err = svc.CreatePlan(ctx, "2024-03-01", "Again", "admin-1")
	assert.ErrorIs(t, err, domain.ErrDuplicatePlanDate)

	_, err = svc.CreatePlan(ctx, "03/01/2024", "", "admin-1")
	assert.ErrorIs(t, err, domain.ErrInvalidPlanDate)

	plans, err := svc.ListPlans(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "2024-03-05 - Workout", plans[0].DisplayTitle())
	assert.Equal(t, "2024-03-01 - Legs", plans[1].DisplayTitle())
}

func TestPlanService_GetPlanIncludesItems(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()
	svc := newPlanService(storage)

	plan, err := svc.CreatePlan(ctx, "2024-03-01", "Legs", "admin-1")
	require.NoError(t, err)

	importer := NewPlanImportService(storage.Transactor, storage.Plans, storage.Exercises, storage.PlanItems, nil, logger.NewNop())
	_, err = importer.Import(ctx, plan.ID, strings.NewReader(planHeader+"Squat,3,,,\nLunge,2,,,\n"))
	require.NoError(t, err)

	detail, err := svc.GetPlan(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, detail.Items, 2)
	assert.Equal(t, "Squat", detail.Items[0].Exercise.Name)
	assert.Equal(t, "Lunge", detail.Items[1].Exercise.Name)
}

func TestPlanService_UpdatePlan(t *testing.T) {
	ctx := context.Background()
	svc := newPlanService(repository.NewMemoryStorage())

	plan, err := svc.CreatePlan(ctx, "2024-03-01", "Legs", "admin-1")
	require.NoError(t, err)

	updated, err := svc.UpdatePlan(ctx, plan.ID, "", "Lower body")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", updated.Date)
	assert.Equal(t, "Lower body", updated.Title)

	updated, err = svc.UpdatePlan(ctx, plan.ID, "2024-03-08", "Lower body")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-08", updated.Date)

	_, err = svc.UpdatePlan(ctx, "missing", "", "x")
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
}

func TestPlanService_DeletePlan(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()
	svc := newPlanService(storage)

	plan, err := svc.CreatePlan(ctx, "2024-03-01", "", "admin-1")
	require.NoError(t, err)
	require.NoError(t, storage.PlanItems.Create(ctx, &domain.PlanItem{PlanID: plan.ID, ExerciseID: "e", Order: 1}))

	require.NoError(t, svc.DeletePlan(ctx, plan.ID))

	_, err = storage.Plans.GetByID(ctx, plan.ID)
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)
	n, err := storage.PlanItems.CountByExerciseID(ctx, "e")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPlanService_DeletePlanWithLogsIsRefused(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()
	svc := newPlanService(storage)

	plan, err := svc.CreatePlan(ctx, "2024-03-01", "", "admin-1")
	require.NoError(t, err)
	require.NoError(t, storage.PlanItems.Create(ctx, &domain.PlanItem{PlanID: plan.ID, ExerciseID: "e", Order: 1}))
	require.NoError(t, storage.WorkoutLogs.Create(ctx, &domain.WorkoutLog{UserID: "u", PlanID: plan.ID}))

	assert.ErrorIs(t, svc.DeletePlan(ctx, plan.ID), domain.ErrPlanHasLogs)

	items, err := storage.PlanItems.ListByPlanID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestExerciseService_DeleteInUse(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()
	svc := NewExerciseService(storage.Exercises, storage.PlanItems)

	used := &domain.Exercise{Name: "Squat"}
	unused := &domain.Exercise{Name: " Lunge "}
	require.NoError(t, svc.Create(ctx, used))
	require.NoError(t, svc.Create(ctx, unused))
	assert.Equal(t, "Lunge", unused.Name)
	require.NoError(t, storage.PlanItems.Create(ctx, &domain.PlanItem{PlanID: "p", ExerciseID: used.ID, Order: 1}))

	assert.ErrorIs(t, svc.Delete(ctx, used.ID), domain.ErrExerciseInUse)
	assert.NoError(t, svc.Delete(ctx, unused.ID))
	assert.ErrorIs(t, svc.Create(ctx, &domain.Exercise{Name: "  "}), domain.ErrExerciseNameEmpty)

	list, err := svc.List(ctx, "squ")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Squat", list[0].Name)
}
