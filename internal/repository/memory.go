package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memoryTxKey struct{}

// memoryState is one consistent snapshot of every collection
type memoryState struct {
	exercises map[string]domain.Exercise
	plans     map[string]domain.WorkoutPlan
	items     map[string]domain.PlanItem
	logs      map[string]domain.WorkoutLog
	setLogs   map[string]domain.SetLog
	users     map[string]domain.User
}

func newMemoryState() *memoryState {
	return &memoryState{
		exercises: map[string]domain.Exercise{},
		plans:     map[string]domain.WorkoutPlan{},
		items:     map[string]domain.PlanItem{},
		logs:      map[string]domain.WorkoutLog{},
		setLogs:   map[string]domain.SetLog{},
		users:     map[string]domain.User{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.exercises {
		c.exercises[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = v
	}
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.logs {
		c.logs[k] = v
	}
	for k, v := range s.setLogs {
		c.setLogs[k] = v
	}
	for k, v := range s.users {
		v.Roles = append([]string(nil), v.Roles...)
		c.users[k] = v
	}
	return c
}

// MemoryStore keeps every collection in process memory. Transactions work on
// a private copy that replaces the live state only on commit, and are
// serialized with every other access. Used for tests and STORAGE_BACKEND=memory.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

// WithinTransaction implements domain.Transactor. Nested calls join the
// outer transaction.
func (s *MemoryStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(memoryTxKey{}).(*memoryState); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(context.WithValue(ctx, memoryTxKey{}, working)); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (s *MemoryStore) run(ctx context.Context, fn func(st *memoryState) error) error {
	if st, ok := ctx.Value(memoryTxKey{}).(*memoryState); ok {
		return fn(st)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.state)
}

func newMemoryID() string {
	return primitive.NewObjectID().Hex()
}

func (s *MemoryStore) Exercises() *MemoryExerciseRepository {
	return &MemoryExerciseRepository{store: s}
}

func (s *MemoryStore) Plans() *MemoryWorkoutPlanRepository {
	return &MemoryWorkoutPlanRepository{store: s}
}

func (s *MemoryStore) PlanItems() *MemoryPlanItemRepository {
	return &MemoryPlanItemRepository{store: s}
}

func (s *MemoryStore) WorkoutLogs() *MemoryWorkoutLogRepository {
	return &MemoryWorkoutLogRepository{store: s}
}

func (s *MemoryStore) SetLogs() *MemorySetLogRepository {
	return &MemorySetLogRepository{store: s}
}

func (s *MemoryStore) Users() *MemoryUserRepository {
	return &MemoryUserRepository{store: s}
}

// MemoryExerciseRepository implements domain.ExerciseRepository
type MemoryExerciseRepository struct {
	store *MemoryStore
}

func (r *MemoryExerciseRepository) Create(ctx context.Context, ex *domain.Exercise) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for _, existing := range st.exercises {
			if existing.Name == ex.Name {
				return domain.ErrDuplicateExercise
			}
		}
		ex.ID = newMemoryID()
		ex.CreatedAt = time.Now()
		ex.UpdatedAt = ex.CreatedAt
		st.exercises[ex.ID] = *ex
		return nil
	})
}

func (r *MemoryExerciseRepository) GetByID(ctx context.Context, id string) (*domain.Exercise, error) {
	var out *domain.Exercise
	err := r.store.run(ctx, func(st *memoryState) error {
		ex, ok := st.exercises[id]
		if !ok {
			return domain.ErrExerciseNotFound
		}
		out = &ex
		return nil
	})
	return out, err
}

func (r *MemoryExerciseRepository) GetByName(ctx context.Context, name string) (*domain.Exercise, error) {
	var out *domain.Exercise
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, ex := range st.exercises {
			if ex.Name == name {
				ex := ex
				out = &ex
				return nil
			}
		}
		return domain.ErrExerciseNotFound
	})
	return out, err
}

func (r *MemoryExerciseRepository) List(ctx context.Context, filter map[string]interface{}) ([]*domain.Exercise, error) {
	needle, _ := filter["name"].(string)
	needle = strings.ToLower(needle)

	out := []*domain.Exercise{}
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, ex := range st.exercises {
			if needle != "" && !strings.Contains(strings.ToLower(ex.Name), needle) {
				continue
			}
			ex := ex
			out = append(out, &ex)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r *MemoryExerciseRepository) Update(ctx context.Context, ex *domain.Exercise) error {
	return r.store.run(ctx, func(st *memoryState) error {
		current, ok := st.exercises[ex.ID]
		if !ok {
			return domain.ErrExerciseNotFound
		}
		for id, other := range st.exercises {
			if id != ex.ID && other.Name == ex.Name {
				return domain.ErrDuplicateExercise
			}
		}
		ex.CreatedAt = current.CreatedAt
		ex.UpdatedAt = time.Now()
		st.exercises[ex.ID] = *ex
		return nil
	})
}

func (r *MemoryExerciseRepository) UpdateVideoURL(ctx context.Context, id string, videoURL string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		ex, ok := st.exercises[id]
		if !ok {
			return domain.ErrExerciseNotFound
		}
		ex.VideoURL = videoURL
		ex.UpdatedAt = time.Now()
		st.exercises[id] = ex
		return nil
	})
}

func (r *MemoryExerciseRepository) Delete(ctx context.Context, id string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		if _, ok := st.exercises[id]; !ok {
			return domain.ErrExerciseNotFound
		}
		delete(st.exercises, id)
		return nil
	})
}

// MemoryWorkoutPlanRepository implements domain.WorkoutPlanRepository
type MemoryWorkoutPlanRepository struct {
	store *MemoryStore
}

func (r *MemoryWorkoutPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for _, existing := range st.plans {
			if existing.Date == plan.Date {
				return domain.ErrDuplicatePlanDate
			}
		}
		plan.ID = newMemoryID()
		plan.CreatedAt = time.Now()
		plan.UpdatedAt = plan.CreatedAt
		st.plans[plan.ID] = *plan
		return nil
	})
}

func (r *MemoryWorkoutPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	var out *domain.WorkoutPlan
	err := r.store.run(ctx, func(st *memoryState) error {
		plan, ok := st.plans[id]
		if !ok {
			return domain.ErrPlanNotFound
		}
		out = &plan
		return nil
	})
	return out, err
}

func (r *MemoryWorkoutPlanRepository) GetByDate(ctx context.Context, date string) (*domain.WorkoutPlan, error) {
	var out *domain.WorkoutPlan
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, plan := range st.plans {
			if plan.Date == date {
				plan := plan
				out = &plan
				return nil
			}
		}
		return domain.ErrPlanNotFound
	})
	return out, err
}

func (r *MemoryWorkoutPlanRepository) List(ctx context.Context) ([]*domain.WorkoutPlan, error) {
	out := []*domain.WorkoutPlan{}
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, plan := range st.plans {
			plan := plan
			out = append(out, &plan)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, err
}

func (r *MemoryWorkoutPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	return r.store.run(ctx, func(st *memoryState) error {
		current, ok := st.plans[plan.ID]
		if !ok {
			return domain.ErrPlanNotFound
		}
		for id, other := range st.plans {
			if id != plan.ID && other.Date == plan.Date {
				return domain.ErrDuplicatePlanDate
			}
		}
		current.Date = plan.Date
		current.Title = plan.Title
		current.UpdatedAt = time.Now()
		st.plans[plan.ID] = current
		plan.UpdatedAt = current.UpdatedAt
		return nil
	})
}

func (r *MemoryWorkoutPlanRepository) Delete(ctx context.Context, id string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		if _, ok := st.plans[id]; !ok {
			return domain.ErrPlanNotFound
		}
		delete(st.plans, id)
		return nil
	})
}

// MemoryPlanItemRepository implements domain.PlanItemRepository
type MemoryPlanItemRepository struct {
	store *MemoryStore
}

func (r *MemoryPlanItemRepository) Create(ctx context.Context, item *domain.PlanItem) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for _, existing := range st.items {
			if existing.PlanID == item.PlanID && existing.Order == item.Order {
				return domain.ErrDuplicateItemOrder
			}
		}
		item.ID = newMemoryID()
		st.items[item.ID] = *item
		return nil
	})
}

func (r *MemoryPlanItemRepository) ListByPlanID(ctx context.Context, planID string) ([]*domain.PlanItem, error) {
	out := []*domain.PlanItem{}
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, item := range st.items {
			if item.PlanID == planID {
				item := item
				out = append(out, &item)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, err
}

func (r *MemoryPlanItemRepository) DeleteByPlanID(ctx context.Context, planID string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for id, item := range st.items {
			if item.PlanID == planID {
				delete(st.items, id)
			}
		}
		return nil
	})
}

func (r *MemoryPlanItemRepository) CountByExerciseID(ctx context.Context, exerciseID string) (int64, error) {
	var n int64
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, item := range st.items {
			if item.ExerciseID == exerciseID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// MemoryWorkoutLogRepository implements domain.WorkoutLogRepository
type MemoryWorkoutLogRepository struct {
	store *MemoryStore
}

func (r *MemoryWorkoutLogRepository) Create(ctx context.Context, log *domain.WorkoutLog) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for _, existing := range st.logs {
			if existing.UserID == log.UserID && existing.PlanID == log.PlanID {
				return domain.ErrDuplicateWorkoutLog
			}
		}
		log.ID = newMemoryID()
		log.SubmittedAt = time.Now()
		log.UpdatedAt = log.SubmittedAt
		st.logs[log.ID] = *log
		return nil
	})
}

func (r *MemoryWorkoutLogRepository) GetByUserAndPlan(ctx context.Context, userID, planID string) (*domain.WorkoutLog, error) {
	var out *domain.WorkoutLog
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, log := range st.logs {
			if log.UserID == userID && log.PlanID == planID {
				log := log
				out = &log
				return nil
			}
		}
		return domain.ErrWorkoutLogNotFound
	})
	return out, err
}

func (r *MemoryWorkoutLogRepository) UpdateComment(ctx context.Context, id string, comment string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		log, ok := st.logs[id]
		if !ok {
			return domain.ErrWorkoutLogNotFound
		}
		log.GeneralComment = comment
		log.UpdatedAt = time.Now()
		st.logs[id] = log
		return nil
	})
}

func (r *MemoryWorkoutLogRepository) CountByPlanID(ctx context.Context, planID string) (int64, error) {
	var n int64
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, log := range st.logs {
			if log.PlanID == planID {
				n++
			}
		}
		return nil
	})
	return n, err
}

// MemorySetLogRepository implements domain.SetLogRepository
type MemorySetLogRepository struct {
	store *MemoryStore
}

func (r *MemorySetLogRepository) Create(ctx context.Context, setLog *domain.SetLog) error {
	return r.store.run(ctx, func(st *memoryState) error {
		setLog.ID = newMemoryID()
		setLog.CreatedAt = time.Now()
		st.setLogs[setLog.ID] = *setLog
		return nil
	})
}

func (r *MemorySetLogRepository) ListByLogID(ctx context.Context, logID string) ([]*domain.SetLog, error) {
	out := []*domain.SetLog{}
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, sl := range st.setLogs {
			if sl.LogID == logID {
				sl := sl
				out = append(out, &sl)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ItemOrder != out[j].ItemOrder {
			return out[i].ItemOrder < out[j].ItemOrder
		}
		return out[i].SetNumber < out[j].SetNumber
	})
	return out, err
}

func (r *MemorySetLogRepository) DeleteByLogID(ctx context.Context, logID string) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for id, sl := range st.setLogs {
			if sl.LogID == logID {
				delete(st.setLogs, id)
			}
		}
		return nil
	})
}

// MemoryUserRepository implements domain.UserRepository
type MemoryUserRepository struct {
	store *MemoryStore
}

func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.store.run(ctx, func(st *memoryState) error {
		for _, existing := range st.users {
			if existing.Username == user.Username {
				return domain.ErrDuplicateUser
			}
		}
		user.ID = newMemoryID()
		user.CreatedAt = time.Now()
		user.UpdatedAt = user.CreatedAt
		stored := *user
		stored.Roles = append([]string(nil), user.Roles...)
		st.users[user.ID] = stored
		return nil
	})
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var out *domain.User
	err := r.store.run(ctx, func(st *memoryState) error {
		user, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		out = &user
		return nil
	})
	return out, err
}

func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var out *domain.User
	err := r.store.run(ctx, func(st *memoryState) error {
		for _, user := range st.users {
			if user.Username == username {
				user := user
				out = &user
				return nil
			}
		}
		return domain.ErrUserNotFound
	})
	return out, err
}
