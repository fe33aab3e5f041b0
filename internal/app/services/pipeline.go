package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/aggregator"
	"github.com/yigit/courseatlas/internal/pkg/catalog"
	"github.com/yigit/courseatlas/internal/pkg/checkpoint"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// RowCollector drains paginated catalog searches.
type RowCollector interface {
	Collect(ctx context.Context, srcdb string, criteria []catalog.Criterion) ([]catalog.SearchRow, error)
}

// DetailFetcher fetches one section's rich record.
type DetailFetcher interface {
	Detail(ctx context.Context, group, key, srcdb string) (*catalog.SectionDetail, error)
}

// TeacherLister walks the aggregator's professor listing.
type TeacherLister interface {
	SchoolID(ctx context.Context, name string) (string, error)
	TeacherPage(ctx context.Context, schoolID, cursor string) ([]aggregator.Teacher, string, bool, error)
}

// SectionDeactivator flips unobserved sections inactive after a clean sweep.
type SectionDeactivator interface {
	DeactivateUnseen(ctx context.Context, termCodes []string, runStart time.Time) (int64, error)
}

// ProfessorImporter processes one aggregator teacher.
type ProfessorImporter interface {
	ImportProfessor(ctx context.Context, teacher aggregator.Teacher) (ImportStats, error)
}

// ReviewCounter reports how many reviews a source has on record.
type ReviewCounter interface {
	CountBySource(ctx context.Context, source string) (int, error)
}

// Pipeline runs one full sync: catalog sweep, staleness pass, review import,
// rollup recompute.
type Pipeline struct {
	collector   RowCollector
	details     DetailFetcher
	teachers    TeacherLister
	sections    *SectionService
	deactivator SectionDeactivator
	importer    ProfessorImporter
	rollups     *RollupService
	checkpoint  *checkpoint.Store
	reviewCount ReviewCounter
	reviewSrc   string
	schoolName  string
	workers     int
	log         zerolog.Logger
}

// PipelineOptions wires a Pipeline.
type PipelineOptions struct {
	Collector   RowCollector
	Details     DetailFetcher
	Teachers    TeacherLister
	Sections    *SectionService
	Deactivator SectionDeactivator
	Importer    ProfessorImporter
	Rollups     *RollupService
	Checkpoint  *checkpoint.Store
	ReviewCount ReviewCounter
	ReviewSrc   string
	SchoolName  string
	Workers     int
}

// NewPipeline builds a pipeline. Workers bounds the detail-fetch pool; values
// below 1 become 1.
func NewPipeline(opts PipelineOptions) *Pipeline {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		collector:   opts.Collector,
		details:     opts.Details,
		teachers:    opts.Teachers,
		sections:    opts.Sections,
		deactivator: opts.Deactivator,
		importer:    opts.Importer,
		rollups:     opts.Rollups,
		checkpoint:  opts.Checkpoint,
		reviewCount: opts.ReviewCount,
		reviewSrc:   opts.ReviewSrc,
		schoolName:  opts.SchoolName,
		workers:     workers,
		log:         logger.WithComponent("pipeline"),
	}
}

// RunOptions selects the work for one run.
type RunOptions struct {
	Terms       []string
	Subjects    []string
	SkipReviews bool
}

// Summary is the outcome report of one run.
type Summary struct {
	RunID    string
	Started  time.Time
	Duration time.Duration

	SectionsSeen        int
	SectionsErrored     int
	SectionsDeactivated int64
	FailedSubjects      []string

	Reviews ImportStats
}

// Run executes the pipeline. Per-unit failures (one section, one professor)
// are counted and skipped; only setup-level failures (school lookup, rollup
// transaction) abort the run.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.New().String(),
		Started: time.Now().UTC(),
	}
	runLog := p.log.With().Str("run_id", summary.RunID).Logger()
	runLog.Info().
		Strs("terms", opts.Terms).
		Strs("subjects", opts.Subjects).
		Bool("skip_reviews", opts.SkipReviews).
		Msg("sync run starting")

	for _, term := range opts.Terms {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		p.sweepTerm(ctx, runLog, term, opts.Subjects, summary)
	}

	// A failed subject means its sections were never observed this run;
	// deactivating on partial data would mass-expire live sections.
	if len(summary.FailedSubjects) == 0 && len(opts.Terms) > 0 {
		deactivated, err := p.deactivator.DeactivateUnseen(ctx, opts.Terms, summary.Started)
		if err != nil {
			return summary, err
		}
		summary.SectionsDeactivated = deactivated
		if deactivated > 0 {
			runLog.Info().Int64("count", deactivated).Msg("unseen sections deactivated")
		}
	} else if len(summary.FailedSubjects) > 0 {
		runLog.Warn().
			Strs("failed_subjects", summary.FailedSubjects).
			Msg("skipping deactivation after partial sweep")
	}

	if !opts.SkipReviews {
		if err := p.importReviews(ctx, runLog, summary); err != nil {
			return summary, err
		}
		if p.reviewCount != nil {
			if total, err := p.reviewCount.CountBySource(ctx, p.reviewSrc); err == nil {
				runLog.Info().Str("source", p.reviewSrc).Int("total", total).Msg("reviews on record")
			}
		}
	}

	if err := p.rollups.Recompute(ctx); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(summary.Started)
	runLog.Info().
		Int("sections_seen", summary.SectionsSeen).
		Int("sections_errored", summary.SectionsErrored).
		Int64("sections_deactivated", summary.SectionsDeactivated).
		Int("professors_matched", summary.Reviews.Matched).
		Int("professors_unmatched", summary.Reviews.Unmatched).
		Int("reviews_imported", summary.Reviews.Imported).
		Int("reviews_skipped", summary.Reviews.Skipped).
		Int("reviews_errored", summary.Reviews.Errored).
		Dur("elapsed", summary.Duration).
		Msg("sync run finished")
	return summary, nil
}

// sweepTerm syncs one term's subjects: thin rows first, then a bounded
// worker pool for detail enrichment.
func (p *Pipeline) sweepTerm(ctx context.Context, runLog zerolog.Logger, term string, subjects []string, summary *Summary) {
	if models.TermRank(term) < 0 {
		runLog.Warn().Str("term", term).Msg("unrecognized term code format")
	}

	for _, subject := range subjects {
		if ctx.Err() != nil {
			return
		}

		rows, err := p.collector.Collect(ctx, term, []catalog.Criterion{{Field: "subject", Value: subject}})
		if err != nil {
			runLog.Error().Err(err).Str("term", term).Str("subject", subject).Msg("subject sweep failed")
			summary.FailedSubjects = append(summary.FailedSubjects, term+"/"+subject)
			continue
		}

		var errored atomic.Int64
		tasks := make([]catalog.SearchRow, 0, len(rows))
		for _, row := range rows {
			if row.IsCancelled == "1" {
				continue
			}
			if _, err := p.sections.SyncSearchRow(ctx, term, row); err != nil {
				runLog.Error().Err(err).Str("crn", row.CRN).Str("term", term).Msg("section upsert failed")
				errored.Add(1)
				continue
			}
			tasks = append(tasks, row)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)
		for _, row := range tasks {
			if gctx.Err() != nil {
				// Cancellation stops scheduling; in-flight units finish.
				break
			}
			row := row
			g.Go(func() error {
				detail, err := p.details.Detail(gctx, "code:"+row.Code, "crn:"+row.CRN, term)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return nil
					}
					runLog.Error().Err(err).Str("crn", row.CRN).Str("term", term).Msg("detail fetch failed")
					errored.Add(1)
					return nil
				}
				if err := p.sections.EnrichSection(gctx, term, detail); err != nil {
					runLog.Error().Err(err).Str("crn", row.CRN).Str("term", term).Msg("section enrichment failed")
					errored.Add(1)
				}
				return nil
			})
		}
		_ = g.Wait()

		summary.SectionsSeen += len(tasks)
		summary.SectionsErrored += int(errored.Load())
		runLog.Info().
			Str("term", term).
			Str("subject", subject).
			Int("sections", len(tasks)).
			Int64("errored", errored.Load()).
			Msg("subject swept")
	}
}

// importReviews walks the aggregator's professor listing for the configured
// school and imports each one's reviews. Professors are processed
// sequentially; the aggregator tolerates far less concurrency than the
// catalog.
func (p *Pipeline) importReviews(ctx context.Context, runLog zerolog.Logger, summary *Summary) error {
	schoolID, err := p.teachers.SchoolID(ctx, p.schoolName)
	if err != nil {
		return err
	}
	runLog.Info().
		Str("school_id", schoolID).
		Int("checkpointed", p.checkpoint.Count()).
		Msg("review import starting")

	cursor := ""
	for {
		teachers, next, hasNext, err := p.teachers.TeacherPage(ctx, schoolID, cursor)
		if err != nil {
			return err
		}

		for _, teacher := range teachers {
			if err := ctx.Err(); err != nil {
				// Stop scheduling new professors; completed ones are already
				// checkpointed.
				return err
			}
			stats, err := p.importer.ImportProfessor(ctx, teacher)
			summary.Reviews.Add(stats)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				runLog.Error().Err(err).
					Str("teacher_id", teacher.ID).
					Str("teacher", teacher.FirstName+" "+teacher.LastName).
					Msg("professor import failed")
				summary.Reviews.Errored++
			}
		}

		if !hasNext {
			return nil
		}
		cursor = next
	}
}
