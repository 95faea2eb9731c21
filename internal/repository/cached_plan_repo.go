package repository

import (
	"context"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/domain"
)

const (
	planByIDKeyPrefix   = "plan:id:"
	planByDateKeyPrefix = "plan:date:"
	planCacheTTL        = 5 * time.Minute
)

// CachedPlanRepository wraps a WorkoutPlanRepository with Redis caching of
// single-plan lookups. Listing always goes to the store.
type CachedPlanRepository struct {
	store domain.WorkoutPlanRepository
	cache *RedisCacheRepository
}

// NewCachedPlanRepository creates a new cached plan repository
func NewCachedPlanRepository(store domain.WorkoutPlanRepository, cache *RedisCacheRepository) *CachedPlanRepository {
	return &CachedPlanRepository{
		store: store,
		cache: cache,
	}
}

// GetByID retrieves a plan by ID with caching
func (r *CachedPlanRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutPlan, error) {
	return r.cached(ctx, planByIDKeyPrefix+id, func() (*domain.WorkoutPlan, error) {
		return r.store.GetByID(ctx, id)
	})
}

// GetByDate retrieves the plan of a calendar date with caching
func (r *CachedPlanRepository) GetByDate(ctx context.Context, date string) (*domain.WorkoutPlan, error) {
	return r.cached(ctx, planByDateKeyPrefix+date, func() (*domain.WorkoutPlan, error) {
		return r.store.GetByDate(ctx, date)
	})
}

func (r *CachedPlanRepository) cached(ctx context.Context, key string, load func() (*domain.WorkoutPlan, error)) (*domain.WorkoutPlan, error) {
	// Try cache first
	var plan domain.WorkoutPlan
	if err := r.cache.Get(ctx, key, &plan); err == nil {
		return &plan, nil
	}

	// Cache miss - fetch from store. Not-found results are not cached.
	result, err := load()
	if err != nil {
		return nil, err
	}

	// Store in cache (ignore cache errors)
	_ = r.cache.Set(ctx, key, result, planCacheTTL)

	return result, nil
}

// Create passes through; nothing is cached for a plan that did not exist
func (r *CachedPlanRepository) Create(ctx context.Context, plan *domain.WorkoutPlan) error {
	return r.store.Create(ctx, plan)
}

// List is not cached
func (r *CachedPlanRepository) List(ctx context.Context) ([]*domain.WorkoutPlan, error) {
	return r.store.List(ctx)
}

// Update updates a plan and drops every cached plan entry, since the date key may have moved
func (r *CachedPlanRepository) Update(ctx context.Context, plan *domain.WorkoutPlan) error {
	if err := r.store.Update(ctx, plan); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Delete deletes a plan and invalidates cached entries
func (r *CachedPlanRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CachedPlanRepository) invalidate(ctx context.Context) {
	_ = r.cache.DeleteByPattern(ctx, "plan:*")
}
