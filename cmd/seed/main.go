package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"

	"github.com/mansoorceksport/workoutlog/internal/config"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/mansoorceksport/workoutlog/internal/service"
)

// starterCatalog is written once; existing names are left alone
var starterCatalog = []domain.Exercise{
	// Legs
	{Name: "Barbell Squat", Notes: "Legs", VideoURL: "https://www.youtube.com/watch?v=SW_C1A-rejs"},
	{Name: "Leg Press", Notes: "Legs", VideoURL: "https://www.youtube.com/watch?v=IZxyjW7MPJQ"},
	{Name: "Walking Lunge", Notes: "Legs", VideoURL: "https://www.youtube.com/watch?v=D7KaRcUTQeE"},
	{Name: "Romanian Deadlift", Notes: "Hamstrings", VideoURL: "https://www.youtube.com/watch?v=JCXUYuzwZ_M"},
	{Name: "Calf Raise", Notes: "Calves", VideoURL: "https://www.youtube.com/watch?v=3UWi44yN-wM"},
	{Name: "Glute Bridge", Notes: "Glutes", VideoURL: "https://www.youtube.com/watch?v=vOvRFsGMMqo"},

	// Chest
	{Name: "Barbell Bench Press", Notes: "Chest", VideoURL: "https://www.youtube.com/watch?v=EUjh50tLlBo"},
	{Name: "Incline Dumbbell Press", Notes: "Chest", VideoURL: "https://www.youtube.com/watch?v=8iPEnn-ltC8"},
	{Name: "Push Up", Notes: "Chest", VideoURL: "https://www.youtube.com/watch?v=IODxDxX7oi4"},
	{Name: "Dips", Notes: "Chest/Triceps", VideoURL: "https://www.youtube.com/watch?v=SwDers3SMZ4"},

	// Back
	{Name: "Pull Up", Notes: "Back", VideoURL: "https://www.youtube.com/watch?v=eGo4IYlbE5g"},
	{Name: "Lat Pulldown", Notes: "Back", VideoURL: "https://www.youtube.com/watch?v=CAwf7n6Luuc"},
	{Name: "Barbell Row", Notes: "Back", VideoURL: "https://www.youtube.com/watch?v=DgyslsszCQ0"},
	{Name: "Seated Cable Row", Notes: "Back", VideoURL: "https://www.youtube.com/watch?v=GZbfZ033f74"},
	{Name: "Deadlift", Notes: "Back/Legs", VideoURL: "https://www.youtube.com/watch?v=U1H1VG9Uh50"},
	{Name: "Face Pull", Notes: "Rear Delts", VideoURL: "https://www.youtube.com/watch?v=ntBwG1E3Pzs"},

	// Core
	{Name: "Plank", Notes: "Core, hold for time"},
	{Name: "Dead Bug", Notes: "Core"},
}

func main() {
	adminUser := flag.String("admin-user", "", "username of the admin account to create")
	adminPassword := flag.String("admin-password", "", "password of the admin account")
	skipCatalog := flag.Bool("skip-exercises", false, "do not seed the starter exercise catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.App.LogMode)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync()

	ctx := context.Background()

	storage, closeStorage, err := repository.OpenStorage(ctx, cfg)
	if err != nil {
		appLog.Fatal("failed to open storage", "error", err)
	}
	defer closeStorage()

	if *adminUser != "" {
		created, err := seedAdmin(ctx, service.NewAuthService(storage.Users, cfg.JWT), *adminUser, *adminPassword)
		switch {
		case err != nil:
			appLog.Fatal("failed to create admin", "username", *adminUser, "error", err)
		case created:
			appLog.Info("admin created", "username", *adminUser)
		default:
			appLog.Info("admin already exists", "username", *adminUser)
		}
	}

	if *skipCatalog {
		return
	}

	created, skipped, err := seedExercises(ctx, storage.Exercises, starterCatalog)
	if err != nil {
		appLog.Error("exercise catalog incomplete", "error", err)
	}
	appLog.Info("exercise catalog seeded", "created", created, "skipped", skipped)
}

// seedAdmin creates an account holding both roles. An existing username is
// left untouched and reported as not created.
func seedAdmin(ctx context.Context, auth *service.AuthService, username, password string) (bool, error) {
	_, err := auth.CreateUser(ctx, username, password, []string{domain.RoleAdmin, domain.RoleMember})
	if errors.Is(err, domain.ErrDuplicateUser) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// seedExercises inserts every catalog entry whose name is not taken yet. It
// keeps going past failures and returns them joined.
func seedExercises(ctx context.Context, repo domain.ExerciseRepository, catalog []domain.Exercise) (created, skipped int, err error) {
	var errs []error
	for i := range catalog {
		ex := catalog[i]
		if createErr := repo.Create(ctx, &ex); createErr != nil {
			if errors.Is(createErr, domain.ErrDuplicateExercise) {
				skipped++
				continue
			}
			errs = append(errs, fmt.Errorf("%s: %w", ex.Name, createErr))
			continue
		}
		created++
	}
	return created, skipped, errors.Join(errs...)
}
