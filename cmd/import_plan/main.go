package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mansoorceksport/workoutlog/internal/config"
	"github.com/mansoorceksport/workoutlog/internal/domain"
	"github.com/mansoorceksport/workoutlog/internal/logger"
	"github.com/mansoorceksport/workoutlog/internal/repository"
	"github.com/mansoorceksport/workoutlog/internal/service"
)

type options struct {
	date   string
	file   string
	create bool
	title  string
}

func main() {
	var opts options
	flag.StringVar(&opts.date, "date", "", "plan date, YYYY-MM-DD")
	flag.StringVar(&opts.file, "file", "", "path to the plan CSV")
	flag.BoolVar(&opts.create, "create", false, "create the plan for -date when it does not exist")
	flag.StringVar(&opts.title, "title", "", "title used with -create")
	flag.Parse()

	if opts.date == "" || opts.file == "" {
		flag.Usage()
		os.Exit(2)
	}

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

	var archive domain.FileRepository
	if cfg.S3.Enabled() {
		if s3Archive, err := repository.NewS3ArchiveRepository(ctx, cfg.S3); err != nil {
			appLog.Warn("import archive disabled", "error", err)
		} else {
			archive = s3Archive
		}
	}

	summary, err := run(ctx, storage, archive, appLog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CSV import failed: %v\n", err)
		closeStorage()
		os.Exit(1)
	}

	fmt.Println(summary.Message())
}

// run resolves the plan for opts.date and imports opts.file into it
func run(ctx context.Context, storage *repository.Storage, archive domain.FileRepository, log *logger.Logger, opts options) (*domain.ImportSummary, error) {
	plan, err := findPlan(ctx, storage, opts.date, opts.create, opts.title)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(opts.file)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	importer := service.NewPlanImportService(storage.Transactor, storage.Plans, storage.Exercises, storage.PlanItems, archive, log)
	return importer.Import(ctx, plan.ID, file)
}

func findPlan(ctx context.Context, storage *repository.Storage, date string, create bool, title string) (*domain.WorkoutPlan, error) {
	normalized, err := domain.ParsePlanDate(date)
	if err != nil {
		return nil, err
	}

	plan, err := storage.Plans.GetByDate(ctx, normalized)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, domain.ErrPlanNotFound) || !create {
		return nil, fmt.Errorf("no plan for %s: %w", normalized, err)
	}

	plans := service.NewPlanService(storage.Transactor, storage.Plans, storage.PlanItems, storage.Exercises, storage.WorkoutLogs)
	return plans.CreatePlan(ctx, normalized, title, "cli")
}
