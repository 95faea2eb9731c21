package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mansoorceksport/workoutlog/internal/service"

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

type exerciseOutcome int

const (
	exerciseUnchanged exerciseOutcome = iota
	exerciseCreated
	exerciseUpdated
)

// PlanImportService replaces a plan's item list from an uploaded CSV
type PlanImportService struct {
	tx           domain.Transactor
	planRepo     domain.WorkoutPlanRepository
	exerciseRepo domain.ExerciseRepository
	itemRepo     domain.PlanItemRepository
	archive      domain.FileRepository // optional
	logger       *logger.Logger
	tracer       trace.Tracer
	imports      metric.Int64Counter
}

func NewPlanImportService(
	tx domain.Transactor,
	planRepo domain.WorkoutPlanRepository,
	exerciseRepo domain.ExerciseRepository,
	itemRepo domain.PlanItemRepository,
	archive domain.FileRepository,
	log *logger.Logger,
) *PlanImportService {
	imports, err := otel.Meter(instrumentationName).Int64Counter(
		"plan_imports_total",
		metric.WithDescription("CSV plan imports by outcome"),
	)
	if err != nil {
		log.Warn("failed to create plan import counter", "error", err)
	}

	return &PlanImportService{
		tx:           tx,
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
		itemRepo:     itemRepo,
		archive:      archive,
		logger:       log,
		tracer:       otel.Tracer(instrumentationName),
		imports:      imports,
	}
}

// Import parses file and atomically replaces every item of the plan with the
// rows it contains. On any error the plan's previous items are left untouched.
func (s *PlanImportService) Import(ctx context.Context, planID string, file io.Reader) (summary *domain.ImportSummary, err error) {
	runID := generateULID()
	log := s.logger.With("run_id", runID, "plan_id", planID)

	ctx, span := s.tracer.Start(ctx, "PlanImport.Import", trace.WithAttributes(
		attribute.String("plan.id", planID),
		attribute.String("import.run_id", runID),
	))
	defer func() {
		outcome := importOutcome(err)
		if s.imports != nil {
			s.imports.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
			log.Warn("plan import failed", "outcome", outcome, "error", err)
		}
		span.End()
	}()

	// Read the whole upload up front: the transaction may run more than once
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return nil, &domain.ReferenceError{PlanID: planID, Err: err}
		}
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	rows, err := parsePlanCSV(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		result, err := s.replaceItems(ctx, plan.ID, rows)
		if err != nil {
			return err
		}
		summary = result
		return nil
	})
	if err != nil {
		return nil, err
	}

	summary.RunID = runID
	summary.PlanID = plan.ID
	summary.PlanDate = plan.Date

	span.SetAttributes(
		attribute.Int("import.created_exercises", summary.CreatedExercises),
		attribute.Int("import.updated_exercises", summary.UpdatedExercises),
		attribute.Int("import.created_items", summary.CreatedItems),
	)
	log.Info("plan import committed",
		"plan_date", plan.Date,
		"created_exercises", summary.CreatedExercises,
		"updated_exercises", summary.UpdatedExercises,
		"created_items", summary.CreatedItems,
	)

	s.archiveUpload(ctx, log, plan, runID, raw)
	return summary, nil
}

// replaceItems runs inside the transaction. It must not keep state between
// calls since the transaction can be retried.
func (s *PlanImportService) replaceItems(ctx context.Context, planID string, rows []planRow) (*domain.ImportSummary, error) {
	summary := &domain.ImportSummary{}

	if err := s.itemRepo.DeleteByPlanID(ctx, planID); err != nil {
		return nil, fmt.Errorf("failed to clear plan items: %w", err)
	}

	order := 1
	for _, row := range rows {
		exercise, outcome, err := s.resolveExercise(ctx, row)
		if err != nil {
			return nil, err
		}
		switch outcome {
		case exerciseCreated:
			summary.CreatedExercises++
		case exerciseUpdated:
			summary.UpdatedExercises++
		}

		item := &domain.PlanItem{
			PlanID:         planID,
			ExerciseID:     exercise.ID,
			Order:          order,
			PrescribedSets: row.sets,
			PrescribedReps: row.reps,
			RestSeconds:    row.restSeconds,
		}
		if err := s.itemRepo.Create(ctx, item); err != nil {
			return nil, storageError(fmt.Sprintf("row %d: failed to create plan item", row.line), err)
		}
		summary.CreatedItems++
		order++
	}

	return summary, nil
}

// resolveExercise finds the row's exercise by exact name, creating it when
// unseen and refreshing its video URL when the row carries a different one.
func (s *PlanImportService) resolveExercise(ctx context.Context, row planRow) (*domain.Exercise, exerciseOutcome, error) {
	exercise, err := s.exerciseRepo.GetByName(ctx, row.exercise)
	if err != nil && !errors.Is(err, domain.ErrExerciseNotFound) {
		return nil, exerciseUnchanged, fmt.Errorf("row %d: failed to look up exercise %q: %w", row.line, row.exercise, err)
	}

	if exercise == nil {
		exercise = &domain.Exercise{Name: row.exercise, VideoURL: row.videoURL}
		if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
			return nil, exerciseUnchanged, storageError(fmt.Sprintf("row %d: failed to create exercise %q", row.line, row.exercise), err)
		}
		return exercise, exerciseCreated, nil
	}

	if row.videoURL != "" && exercise.VideoURL != row.videoURL {
		if err := s.exerciseRepo.UpdateVideoURL(ctx, exercise.ID, row.videoURL); err != nil {
			return nil, exerciseUnchanged, storageError(fmt.Sprintf("row %d: failed to update exercise %q", row.line, row.exercise), err)
		}
		exercise.VideoURL = row.videoURL
		return exercise, exerciseUpdated, nil
	}

	return exercise, exerciseUnchanged, nil
}

func (s *PlanImportService) archiveUpload(ctx context.Context, log *logger.Logger, plan *domain.WorkoutPlan, runID string, raw []byte) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("imports/%s/%s.csv", plan.Date, runID)
	url, err := s.archive.Upload(ctx, raw, key, "text/csv")
	if err != nil {
		log.Warn("failed to archive plan upload", "key", key, "error", err)
		return
	}
	log.Debug("plan upload archived", "url", url)
}

func storageError(msg string, err error) error {
	if errors.Is(err, domain.ErrDuplicateExercise) || errors.Is(err, domain.ErrDuplicateItemOrder) {
		return &domain.StorageConflictError{Err: fmt.Errorf("%s: %w", msg, err)}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func importOutcome(err error) string {
	var (
		structural *domain.StructuralValidationError
		malformed  *domain.MalformedCSVError
		rowErr     *domain.RowParseError
		refErr     *domain.ReferenceError
		conflict   *domain.StorageConflictError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &structural), errors.As(err, &malformed):
		return "structural_error"
	case errors.As(err, &rowErr):
		return "row_error"
	case errors.As(err, &refErr):
		return "reference_error"
	case errors.As(err, &conflict):
		return "conflict"
	default:
		return "error"
	}
}
