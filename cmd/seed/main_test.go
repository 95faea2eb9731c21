package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mansoorceksport/workoutlog/internal/config"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/mansoorceksport/workoutlog/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAdmin(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()
	auth := service.NewAuthService(storage.Users, config.JWTConfig{Secret: "secret", TokenExpiry: time.Hour})

	created, err := seedAdmin(ctx, auth, "coach", "coach-pw")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = seedAdmin(ctx, auth, "coach", "other-pw")
	require.NoError(t, err)
	assert.False(t, created)

	// the second run must not overwrite the first password
	resp, err := auth.Login(ctx, service.LoginRequest{Username: "coach", Password: "coach-pw"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{domain.RoleAdmin, domain.RoleMember}, resp.User.Roles)

	_, err = seedAdmin(ctx, auth, "", "pw")
	assert.Error(t, err)
}

func TestSeedExercisesIsRepeatable(t *testing.T) {
	ctx := context.Background()
	storage := repository.NewMemoryStorage()

	created, skipped, err := seedExercises(ctx, storage.Exercises, starterCatalog)
	require.NoError(t, err)
	assert.Equal(t, len(starterCatalog), created)
	assert.Zero(t, skipped)

	created, skipped, err = seedExercises(ctx, storage.Exercises, starterCatalog)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, len(starterCatalog), skipped)

	squat, err := storage.Exercises.GetByName(ctx, "Barbell Squat")
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/watch?v=SW_C1A-rejs", squat.VideoURL)
}

type failingExercises struct {
	domain.ExerciseRepository
}

func (failingExercises) Create(ctx context.Context, ex *domain.Exercise) error {
	if ex.Name == "Plank" {
		return errors.New("write refused")
	}
	return nil
}

func TestSeedExercisesContinuesPastFailures(t *testing.T) {
	catalog := []domain.Exercise{{Name: "Plank"}, {Name: "Dead Bug"}}

	created, skipped, err := seedExercises(context.Background(), failingExercises{}, catalog)
	assert.Equal(t, 1, created)
	assert.Zero(t, skipped)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Plank: write refused")
}
