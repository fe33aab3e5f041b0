package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/courseatlas/internal/app/models"
)

// ReviewRepository handles database operations for imported reviews
type ReviewRepository struct {
	db *pgxpool.Pool
}

// NewReviewRepository creates a new review repository
func NewReviewRepository(db *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{
		db: db,
	}
}

// Upsert inserts or updates a review on its external_id identity key.
// Replays never duplicate a row; section and term mapping only ever improve
// (COALESCE keeps an earlier successful attribution when a later run maps
// more weakly), while ratings and comment follow the latest observation.
func (r *ReviewRepository) Upsert(ctx context.Context, review *models.Review) error {
	query := `
		INSERT INTO reviews (
			user_id, course_id, instructor_id, section_id, term_code,
			rating_quality, rating_difficulty, comment, tags,
			reported_grade, grade_points, source, external_id, posted_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (external_id) DO UPDATE
		SET course_id         = EXCLUDED.course_id,
			instructor_id     = EXCLUDED.instructor_id,
			section_id        = COALESCE(EXCLUDED.section_id, reviews.section_id),
			term_code         = COALESCE(EXCLUDED.term_code, reviews.term_code),
			rating_quality    = EXCLUDED.rating_quality,
			rating_difficulty = EXCLUDED.rating_difficulty,
			comment           = COALESCE(EXCLUDED.comment, reviews.comment),
			tags              = COALESCE(EXCLUDED.tags, reviews.tags),
			reported_grade    = COALESCE(EXCLUDED.reported_grade, reviews.reported_grade),
			grade_points      = COALESCE(EXCLUDED.grade_points, reviews.grade_points)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		review.UserID, review.CourseID, review.InstructorID, review.SectionID, review.TermCode,
		review.RatingQuality, review.RatingDifficulty, review.Comment, review.Tags,
		review.ReportedGrade, review.GradePoints, review.Source, review.ExternalID, review.PostedAt,
	).Scan(&review.ID)
	if err != nil {
		return fmt.Errorf("error upserting review %s: %w", review.ExternalID, err)
	}

	return nil
}

// CountBySource returns how many reviews a source has contributed, used in
// the run summary.
func (r *ReviewRepository) CountBySource(ctx context.Context, source string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT count(*) FROM reviews WHERE source = $1`, source).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting reviews: %w", err)
	}
	return count, nil
}
