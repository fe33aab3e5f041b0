package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RatingRepository maintains the derived rollup tables. Rollups are
// recomputed wholesale from reviews each run inside one transaction, which
// also removes rows whose backing review set became empty.
type RatingRepository struct {
	db *pgxpool.Pool
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *pgxpool.Pool) *RatingRepository {
	return &RatingRepository{
		db: db,
	}
}

var rollupStatements = []struct {
	table string
	sql   string
}{
	{
		table: "course_ratings",
		sql: `INSERT INTO course_ratings (course_id, avg_quality, avg_difficulty, review_count)
			SELECT course_id, avg(rating_quality), avg(rating_difficulty), count(*)
			FROM reviews
			GROUP BY course_id`,
	},
	{
		table: "course_instructor_ratings",
		sql: `INSERT INTO course_instructor_ratings (course_id, instructor_id, avg_quality, avg_difficulty, review_count)
			SELECT course_id, instructor_id, avg(rating_quality), avg(rating_difficulty), count(*)
			FROM reviews
			GROUP BY course_id, instructor_id`,
	},
	{
		table: "instructor_ratings",
		sql: `INSERT INTO instructor_ratings (instructor_id, avg_quality, avg_difficulty, avg_grade_points, review_count)
			SELECT instructor_id, avg(rating_quality), avg(rating_difficulty), avg(grade_points), count(*)
			FROM reviews
			GROUP BY instructor_id`,
	},
	{
		table: "section_ratings",
		sql: `INSERT INTO section_ratings (section_id, avg_quality, avg_difficulty, review_count)
			SELECT section_id, avg(rating_quality), avg(rating_difficulty), count(*)
			FROM reviews
			WHERE section_id IS NOT NULL
			GROUP BY section_id`,
	},
}

// RecomputeAll rebuilds every rollup table from the review corpus.
func (r *RatingRepository) RecomputeAll(ctx context.Context) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rollup transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range rollupStatements {
		if _, err := tx.Exec(ctx, "DELETE FROM "+stmt.table); err != nil {
			return fmt.Errorf("error clearing %s: %w", stmt.table, err)
		}
		if _, err := tx.Exec(ctx, stmt.sql); err != nil {
			return fmt.Errorf("error recomputing %s: %w", stmt.table, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit rollup transaction: %w", err)
	}

	return nil
}
