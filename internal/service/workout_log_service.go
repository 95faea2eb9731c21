package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"golang.org/x/sync/errgroup"
)

// WorkoutLogService records what a user actually did for today's plan
type WorkoutLogService struct {
	tx           domain.Transactor
	planRepo     domain.WorkoutPlanRepository
	itemRepo     domain.PlanItemRepository
	exerciseRepo domain.ExerciseRepository
	logRepo      domain.WorkoutLogRepository
	setLogRepo   domain.SetLogRepository
	location     *time.Location
	now          func() time.Time
}

func NewWorkoutLogService(
	tx domain.Transactor,
	planRepo domain.WorkoutPlanRepository,
	itemRepo domain.PlanItemRepository,
	exerciseRepo domain.ExerciseRepository,
	logRepo domain.WorkoutLogRepository,
	setLogRepo domain.SetLogRepository,
	location *time.Location,
) *WorkoutLogService {
	if location == nil {
		location = time.UTC
	}
	return &WorkoutLogService{
		tx:           tx,
		planRepo:     planRepo,
		itemRepo:     itemRepo,
		exerciseRepo: exerciseRepo,
		logRepo:      logRepo,
		setLogRepo:   setLogRepo,
		location:     location,
		now:          time.Now,
	}
}

// TodayWorkout is everything the daily view renders
type TodayWorkout struct {
	Date    string                   `json:"date"`
	Plan    *domain.WorkoutPlan      `json:"plan"`
	Items   []*domain.PlanItemDetail `json:"items"`
	Log     *domain.WorkoutLog       `json:"log,omitempty"`
	SetLogs []*domain.SetLog         `json:"set_logs"`
}

// SetEntry is the raw form input for one set
type SetEntry struct {
	PlanItemID string `json:"plan_item_id"`
	SetNumber  int    `json:"set_number"`
	Reps       string `json:"reps"`
	Comment    string `json:"comment"`
}

// LogSubmission is a user's full submission for today's plan
type LogSubmission struct {
	GeneralComment string     `json:"general_comment"`
	Sets           []SetEntry `json:"sets"`
}

type setKey struct {
	itemID    string
	setNumber int
}

// Today returns today's plan with items and the user's saved entries.
// Returns domain.ErrNoPlanToday when nothing is scheduled.
func (s *WorkoutLogService) Today(ctx context.Context, userID string) (*TodayWorkout, error) {
	date := s.today()
	plan, err := s.planRepo.GetByDate(ctx, date)
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return nil, domain.ErrNoPlanToday
		}
		return nil, fmt.Errorf("failed to load today's plan: %w", err)
	}

	view := &TodayWorkout{Date: date, Plan: plan, SetLogs: []*domain.SetLog{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		items, err := loadItemDetails(gctx, s.itemRepo, s.exerciseRepo, plan.ID)
		if err != nil {
			return err
		}
		view.Items = items
		return nil
	})
	g.Go(func() error {
		log, err := s.logRepo.GetByUserAndPlan(gctx, userID, plan.ID)
		if errors.Is(err, domain.ErrWorkoutLogNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		setLogs, err := s.setLogRepo.ListByLogID(gctx, log.ID)
		if err != nil {
			return err
		}
		view.Log = log
		view.SetLogs = setLogs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

// Submit validates every entry first and then replaces the user's set logs for
// today's plan in one transaction. An invalid reps value saves nothing.
func (s *WorkoutLogService) Submit(ctx context.Context, userID string, sub LogSubmission) (*TodayWorkout, error) {
	plan, err := s.planRepo.GetByDate(ctx, s.today())
	if err != nil {
		if errors.Is(err, domain.ErrPlanNotFound) {
			return nil, domain.ErrNoPlanToday
		}
		return nil, fmt.Errorf("failed to load today's plan: %w", err)
	}

	items, err := loadItemDetails(ctx, s.itemRepo, s.exerciseRepo, plan.ID)
	if err != nil {
		return nil, err
	}

	entries := make(map[setKey]SetEntry, len(sub.Sets))
	for _, e := range sub.Sets {
		entries[setKey{e.PlanItemID, e.SetNumber}] = e
	}

	var setLogs []*domain.SetLog
	for _, item := range items {
		for set := 1; set <= item.PrescribedSets; set++ {
			entry, ok := entries[setKey{item.ID, set}]
			if !ok {
				continue
			}
			reps := strings.TrimSpace(entry.Reps)
			if reps == "" {
				continue
			}
			n, err := strconv.Atoi(reps)
			if err != nil || n < 0 {
				return nil, &domain.InvalidRepsError{Exercise: exerciseName(item), SetNumber: set, Value: reps}
			}
			setLogs = append(setLogs, &domain.SetLog{
				PlanItemID: item.ID,
				ItemOrder:  item.Order,
				SetNumber:  set,
				RepsDone:   n,
				Comment:    strings.TrimSpace(entry.Comment),
			})
		}
	}

	comment := strings.TrimSpace(sub.GeneralComment)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		log, err := s.logRepo.GetByUserAndPlan(ctx, userID, plan.ID)
		switch {
		case errors.Is(err, domain.ErrWorkoutLogNotFound):
			log = &domain.WorkoutLog{UserID: userID, PlanID: plan.ID, GeneralComment: comment}
			if err := s.logRepo.Create(ctx, log); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := s.logRepo.UpdateComment(ctx, log.ID, comment); err != nil {
				return err
			}
		}

		if err := s.setLogRepo.DeleteByLogID(ctx, log.ID); err != nil {
			return fmt.Errorf("failed to clear set logs: %w", err)
		}
		for _, sl := range setLogs {
			sl.ID = ""
			sl.LogID = log.ID
			if err := s.setLogRepo.Create(ctx, sl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Today(ctx, userID)
}

func (s *WorkoutLogService) today() string {
	return s.now().In(s.location).Format(domain.PlanDateLayout)
}

func exerciseName(item *domain.PlanItemDetail) string {
	if item.Exercise != nil {
		return item.Exercise.Name
	}
	return "exercise #" + strconv.Itoa(item.Order)
}
