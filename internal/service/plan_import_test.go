package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingArchive struct {
	keys []string
	err  error
}

func (a *recordingArchive) Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.keys = append(a.keys, filename)
	return "s3://archive/" + filename, nil
}

type importFixture struct {
	storage *repository.Storage
	archive *recordingArchive
	svc     *PlanImportService
	plan    *domain.WorkoutPlan
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	storage := repository.NewMemoryStorage()
	archive := &recordingArchive{}

	plan := &domain.WorkoutPlan{Date: "2024-03-01", Title: "Legs"}
	require.NoError(t, storage.Plans.Create(context.Background(), plan))

	svc := NewPlanImportService(storage.Transactor, storage.Plans, storage.Exercises, storage.PlanItems, archive, logger.NewNop())
	return &importFixture{storage: storage, archive: archive, svc: svc, plan: plan}
}

func (f *importFixture) items(t *testing.T) []*domain.PlanItem {
	t.Helper()
	items, err := f.storage.PlanItems.ListByPlanID(context.Background(), f.plan.ID)
	require.NoError(t, err)
	return items
}

func (f *importFixture) exercise(t *testing.T, name string) *domain.Exercise {
	t.Helper()
	ex, err := f.storage.Exercises.GetByName(context.Background(), name)
	require.NoError(t, err)
	return ex
}

func TestImport_CreatesItemsInOrder(t *testing.T) {
	f := newImportFixture(t)
	csv := planHeader +
		"Squat,3,12,90,https://youtu.be/squat\n" +
		",,,,\n" +
		"Push Up,1-2,AMRAP,,\n" +
		"Plank,,45,30,\n"

	summary, err := f.svc.Import(context.Background(), f.plan.ID, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.CreatedExercises)
	assert.Equal(t, 0, summary.UpdatedExercises)
	assert.Equal(t, 3, summary.CreatedItems)
	assert.Equal(t, "2024-03-01", summary.PlanDate)
	assert.Equal(t, f.plan.ID, summary.PlanID)
	assert.Len(t, summary.RunID, 26)
	assert.Equal(t, "Imported 3 items into 2024-03-01. Exercises created: 3, updated: 0.", summary.Message())

	items := f.items(t)
	require.Len(t, items, 3)
	assert.Equal(t, f.exercise(t, "Squat").ID, items[0].ExerciseID)
	assert.Equal(t, f.exercise(t, "Push Up").ID, items[1].ExerciseID)
	assert.Equal(t, f.exercise(t, "Plank").ID, items[2].ExerciseID)

	assert.Equal(t, 1, items[0].Order)
	assert.Equal(t, 2, items[1].Order)
	assert.Equal(t, 3, items[2].Order)

	assert.Equal(t, 3, items[0].PrescribedSets)
	assert.Equal(t, "12", items[0].PrescribedReps)
	assert.Equal(t, 90, items[0].RestSeconds)
	assert.Equal(t, 2, items[1].PrescribedSets)
	assert.Equal(t, "AMRAP", items[1].PrescribedReps)
	assert.Equal(t, 0, items[1].RestSeconds)
	assert.Equal(t, 1, items[2].PrescribedSets)

	assert.Equal(t, []string{"imports/2024-03-01/" + summary.RunID + ".csv"}, f.archive.keys)
}

func TestImport_IsIdempotent(t *testing.T) {
	f := newImportFixture(t)
	csv := planHeader + "Squat,3,12,90,https://youtu.be/squat\nLunge,2,10,60,\n"
	ctx := context.Background()

	_, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(csv))
	require.NoError(t, err)
	first := f.items(t)

	summary, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CreatedExercises)
	assert.Equal(t, 0, summary.UpdatedExercises)
	assert.Equal(t, 2, summary.CreatedItems)

	second := f.items(t)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ExerciseID, second[i].ExerciseID)
		assert.Equal(t, first[i].Order, second[i].Order)
		assert.Equal(t, first[i].PrescribedSets, second[i].PrescribedSets)
		assert.Equal(t, first[i].PrescribedReps, second[i].PrescribedReps)
		assert.Equal(t, first[i].RestSeconds, second[i].RestSeconds)
	}

	exercises, err := f.storage.Exercises.List(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, exercises, 2)
}

func TestImport_ReplacesPreviousItems(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Squat,3,,,\nLunge,3,,,\nRow,3,,,\n"))
	require.NoError(t, err)

	_, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Deadlift,5,5,180,\n"))
	require.NoError(t, err)

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, f.exercise(t, "Deadlift").ID, items[0].ExerciseID)
	assert.Equal(t, 1, items[0].Order)

	// Exercises from the first import stay in the catalog
	f.exercise(t, "Row")
}

func TestImport_RollsBackOnRowError(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Squat,3,,,\nLunge,3,,,\n"))
	require.NoError(t, err)
	before := f.items(t)

	_, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Deadlift,5,5,180,\nBurpee,abc,10,,\n"))

	var rowErr *domain.RowParseError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 2, rowErr.Row)
	assert.Equal(t, "Sets", rowErr.Field)

	after := f.items(t)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
	}
	_, err = f.storage.Exercises.GetByName(ctx, "Deadlift")
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
	assert.Len(t, f.archive.keys, 1)
}

func TestImport_UpsertsVideoURL(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	summary, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Burpee,3,10,30,https://youtu.be/v1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CreatedExercises)
	id := f.exercise(t, "Burpee").ID

	summary, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Burpee,3,10,30,https://youtu.be/v2\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CreatedExercises)
	assert.Equal(t, 1, summary.UpdatedExercises)
	assert.Equal(t, "https://youtu.be/v2", f.exercise(t, "Burpee").VideoURL)

	summary, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Burpee,3,10,30,\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.CreatedExercises)
	assert.Equal(t, 0, summary.UpdatedExercises)

	ex := f.exercise(t, "Burpee")
	assert.Equal(t, id, ex.ID)
	assert.Equal(t, "https://youtu.be/v2", ex.VideoURL)
}

func TestImport_SameExerciseTwiceInOneFile(t *testing.T) {
	f := newImportFixture(t)

	summary, err := f.svc.Import(context.Background(), f.plan.ID, strings.NewReader(
		planHeader+"Squat,3,10,60,https://youtu.be/a\nSquat,2,5,90,https://youtu.be/b\n"))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.CreatedExercises)
	assert.Equal(t, 1, summary.UpdatedExercises)
	assert.Equal(t, 2, summary.CreatedItems)
	assert.Equal(t, "https://youtu.be/b", f.exercise(t, "Squat").VideoURL)
}

func TestImport_MissingColumnMutatesNothing(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Squat,3,,,\n"))
	require.NoError(t, err)

	_, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader("Exercise,Sets,Reps_or_Time,YouTube_URL\nLunge,3,10,\n"))

	var structural *domain.StructuralValidationError
	require.True(t, errors.As(err, &structural))
	assert.Contains(t, err.Error(), "Rest_Seconds")

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, f.exercise(t, "Squat").ID, items[0].ExerciseID)
	_, err = f.storage.Exercises.GetByName(ctx, "Lunge")
	assert.ErrorIs(t, err, domain.ErrExerciseNotFound)
}

func TestImport_InvalidUTF8MutatesNothing(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Lunge,3,,,\n"))
	require.NoError(t, err)

	_, err = f.svc.Import(ctx, f.plan.ID, strings.NewReader(planHeader+"Squat\xff\xfe,3,10,60,\n"))

	var malformed *domain.MalformedCSVError
	require.True(t, errors.As(err, &malformed))
	assert.ErrorIs(t, err, domain.ErrInvalidEncoding)
	assert.Equal(t, "structural_error", importOutcome(err))

	exercises, err := f.storage.Exercises.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, exercises, 1)
	assert.Equal(t, "Lunge", exercises[0].Name)

	items := f.items(t)
	require.Len(t, items, 1)
	assert.Equal(t, exercises[0].ID, items[0].ExerciseID)
	assert.Len(t, f.archive.keys, 1)
}

func TestImport_InchMarkInExerciseName(t *testing.T) {
	f := newImportFixture(t)

	summary, err := f.svc.Import(context.Background(), f.plan.ID, strings.NewReader(planHeader+"Box Jump 24\",3,5,60,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CreatedExercises)
	assert.Equal(t, "Box Jump 24\"", f.exercise(t, "Box Jump 24\"").Name)
}

func TestImport_BOMMatchesPlain(t *testing.T) {
	csv := planHeader + "Squat,3,12,90,https://youtu.be/squat\n"

	plain := newImportFixture(t)
	plainSummary, err := plain.svc.Import(context.Background(), plain.plan.ID, strings.NewReader(csv))
	require.NoError(t, err)

	bom := newImportFixture(t)
	bomSummary, err := bom.svc.Import(context.Background(), bom.plan.ID, strings.NewReader("\ufeff"+csv))
	require.NoError(t, err)

	assert.Equal(t, plainSummary.CreatedItems, bomSummary.CreatedItems)
	assert.Equal(t, plainSummary.CreatedExercises, bomSummary.CreatedExercises)
	assert.Equal(t, "https://youtu.be/squat", bom.exercise(t, "Squat").VideoURL)
}

func TestImport_UnknownPlan(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, "000000000000000000000000", strings.NewReader(planHeader+"Squat,3,,,\n"))

	var refErr *domain.ReferenceError
	require.True(t, errors.As(err, &refErr))
	assert.ErrorIs(t, err, domain.ErrPlanNotFound)

	exercises, err := f.storage.Exercises.List(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, exercises)
	assert.Empty(t, f.archive.keys)
}

func TestImport_ArchiveFailureDoesNotFailImport(t *testing.T) {
	f := newImportFixture(t)
	f.archive.err = errors.New("bucket unavailable")

	summary, err := f.svc.Import(context.Background(), f.plan.ID, strings.NewReader(planHeader+"Squat,3,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CreatedItems)
	assert.Len(t, f.items(t), 1)
}

func TestImport_WithoutArchive(t *testing.T) {
	storage := repository.NewMemoryStorage()
	plan := &domain.WorkoutPlan{Date: "2024-03-02"}
	require.NoError(t, storage.Plans.Create(context.Background(), plan))

	svc := NewPlanImportService(storage.Transactor, storage.Plans, storage.Exercises, storage.PlanItems, nil, logger.NewNop())
	summary, err := svc.Import(context.Background(), plan.ID, strings.NewReader(planHeader+"Squat,3,,,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.CreatedItems)
}

// conflictingExercises simulates another writer creating the same name first
type conflictingExercises struct {
	domain.ExerciseRepository
}

func (c conflictingExercises) Create(ctx context.Context, ex *domain.Exercise) error {
	return domain.ErrDuplicateExercise
}

func TestImport_DuplicateNameRaceIsConflict(t *testing.T) {
	f := newImportFixture(t)
	svc := NewPlanImportService(f.storage.Transactor, f.storage.Plans, conflictingExercises{f.storage.Exercises}, f.storage.PlanItems, nil, logger.NewNop())

	_, err := svc.Import(context.Background(), f.plan.ID, strings.NewReader(planHeader+"Squat,3,,,\n"))

	var conflict *domain.StorageConflictError
	require.True(t, errors.As(err, &conflict))
	assert.ErrorIs(t, err, domain.ErrDuplicateExercise)
	assert.Empty(t, f.items(t))
}

func TestImportOutcome(t *testing.T) {
	assert.Equal(t, "success", importOutcome(nil))
	assert.Equal(t, "structural_error", importOutcome(&domain.StructuralValidationError{}))
	assert.Equal(t, "structural_error", importOutcome(&domain.MalformedCSVError{Err: domain.ErrInvalidEncoding}))
	assert.Equal(t, "row_error", importOutcome(&domain.RowParseError{Err: errors.New("x")}))
	assert.Equal(t, "reference_error", importOutcome(&domain.ReferenceError{Err: domain.ErrPlanNotFound}))
	assert.Equal(t, "conflict", importOutcome(&domain.StorageConflictError{Err: domain.ErrDuplicateExercise}))
	assert.Equal(t, "error", importOutcome(errors.New("disk on fire")))
}
