package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yigit/courseatlas/internal/app/migrations"
	"github.com/yigit/courseatlas/internal/app/repositories"
	"github.com/yigit/courseatlas/internal/app/services"
	"github.com/yigit/courseatlas/internal/config"
	"github.com/yigit/courseatlas/internal/db"
	"github.com/yigit/courseatlas/internal/pkg/aggregator"
	"github.com/yigit/courseatlas/internal/pkg/catalog"
	"github.com/yigit/courseatlas/internal/pkg/checkpoint"
	"github.com/yigit/courseatlas/internal/pkg/fetch"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// reviewSourceName labels imported review rows (reviews.source).
const reviewSourceName = "aggregator"

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "path to config file")
		termsFlag      = flag.String("terms", "", "comma-separated source term ids to sync (required)")
		subjectsFlag   = flag.String("subjects", "", "comma-separated subject codes to sync (required)")
		skipReviews    = flag.Bool("skip-reviews", false, "skip the review aggregator phase")
		jobs           = flag.Int("jobs", 0, "detail worker count (overrides config)")
		checkpointPath = flag.String("checkpoint", "", "checkpoint file path (overrides config)")
	)
	flag.Parse()

	if err := run(*configPath, *termsFlag, *subjectsFlag, *skipReviews, *jobs, *checkpointPath); err != nil {
		logger.Error().Err(err).Msg("sync failed")
		os.Exit(1)
	}
}

func run(configPath, termsFlag, subjectsFlag string, skipReviews bool, jobs int, checkpointPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.Logging.Level),
		Pretty: cfg.Logging.Format == "pretty",
	})

	terms := splitList(termsFlag)
	subjects := splitList(subjectsFlag)
	if len(terms) == 0 || len(subjects) == 0 {
		return fmt.Errorf("-terms and -subjects are required")
	}
	if jobs > 0 {
		cfg.Sync.Workers = jobs
	}
	if checkpointPath != "" {
		cfg.Sync.CheckpointPath = checkpointPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := migrations.NewMigrator(database.Pool).MigrateDir(ctx, cfg.Sync.MigrationsDir); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}

	catalogClient, err := catalog.NewClient(catalog.Options{
		BaseURL:    cfg.Catalog.BaseURL,
		SearchPath: cfg.Catalog.SearchPath,
		DetailPath: cfg.Catalog.DetailPath,
		Fetch: fetch.Options{
			Name:              "catalog",
			Timeout:           cfg.Catalog.Timeout,
			MaxAttempts:       cfg.Catalog.MaxAttempts,
			InterRequestDelay: cfg.Catalog.InterRequestDelay,
			RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		},
	})
	if err != nil {
		return err
	}

	var teacherSource services.TeacherLister
	var reviewSource services.ReviewSource
	if !skipReviews {
		aggClient, err := aggregator.NewClient(aggregator.Options{
			GraphQLURL: cfg.Aggregator.GraphQLURL,
			AuthToken:  cfg.Aggregator.AuthToken,
			PageSize:   cfg.Aggregator.PageSize,
			Fetch: fetch.Options{
				Name:              "aggregator",
				Timeout:           cfg.Aggregator.Timeout,
				MaxAttempts:       cfg.Aggregator.MaxAttempts,
				InterRequestDelay: cfg.Aggregator.InterRequestDelay,
			},
		})
		if err != nil {
			return err
		}
		teacherSource = aggClient
		reviewSource = aggClient
	}

	repos := repositories.NewRepositories(database.Pool)
	cp := checkpoint.Load(cfg.Sync.CheckpointPath)

	resolver := services.NewInstructorResolver(repos.Instructors)
	sectionService := services.NewSectionService(repos.Departments, repos.Courses, repos.Sections, resolver)
	importer := services.NewReviewImporter(
		reviewSource,
		repos.Courses,
		repos.Sections,
		repos.Instructors,
		repos.Departments,
		repos.Reviews,
		cp,
		reviewSourceName,
	)

	pipeline := services.NewPipeline(services.PipelineOptions{
		Collector:   catalog.NewCollector(catalogClient, cfg.Catalog.MaxPages),
		Details:     catalogClient,
		Teachers:    teacherSource,
		Sections:    sectionService,
		Deactivator: repos.Sections,
		Importer:    importer,
		Rollups:     services.NewRollupService(repos.Ratings),
		Checkpoint:  cp,
		ReviewCount: repos.Reviews,
		ReviewSrc:   reviewSourceName,
		SchoolName:  cfg.Aggregator.SchoolName,
		Workers:     cfg.Sync.Workers,
	})

	_, err = pipeline.Run(ctx, services.RunOptions{
		Terms:       terms,
		Subjects:    subjects,
		SkipReviews: skipReviews,
	})
	return err
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
