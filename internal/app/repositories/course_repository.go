package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	db *pgxpool.Pool
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{
		db: db,
	}
}

// ResolveAlias redirects a legacy course code to its canonical modern code.
// Codes without an alias entry pass through unchanged.
func (r *CourseRepository) ResolveAlias(ctx context.Context, code string) (string, error) {
	var canonical string
	err := r.db.QueryRow(ctx,
		`SELECT canonical_code FROM course_aliases WHERE legacy_code = $1`,
		code).Scan(&canonical)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return code, nil
		}
		return "", fmt.Errorf("error resolving course alias for %q: %w", code, err)
	}

	return canonical, nil
}

// Upsert inserts or updates a course on its (code, title) identity key.
// Department ownership follows the latest observation; enrichment fields
// coalesce so a thinner payload never erases a richer earlier value.
func (r *CourseRepository) Upsert(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (department_id, code, title, description, class_notes, attributes, grade_mode, credits)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code, title) DO UPDATE
		SET department_id = EXCLUDED.department_id,
			description   = COALESCE(EXCLUDED.description, courses.description),
			class_notes   = COALESCE(EXCLUDED.class_notes, courses.class_notes),
			attributes    = COALESCE(EXCLUDED.attributes, courses.attributes),
			grade_mode    = COALESCE(EXCLUDED.grade_mode, courses.grade_mode),
			credits       = COALESCE(EXCLUDED.credits, courses.credits)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		course.DepartmentID,
		course.Code,
		course.Title,
		course.Description,
		course.ClassNotes,
		course.Attributes,
		course.GradeMode,
		course.Credits,
	).Scan(&course.ID)
	if err != nil {
		return fmt.Errorf("error upserting course %q %q: %w", course.Code, course.Title, err)
	}

	return nil
}

// GetByCodeAndTitle retrieves a course by its identity key
func (r *CourseRepository) GetByCodeAndTitle(ctx context.Context, code, title string) (*models.Course, error) {
	query := `
		SELECT id, department_id, code, title, description, class_notes, attributes, grade_mode, credits
		FROM courses
		WHERE code = $1 AND title = $2
	`

	var course models.Course
	err := r.db.QueryRow(ctx, query, code, title).Scan(
		&course.ID,
		&course.DepartmentID,
		&course.Code,
		&course.Title,
		&course.Description,
		&course.ClassNotes,
		&course.Attributes,
		&course.GradeMode,
		&course.Credits,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}

	return &course, nil
}

// FindByCode retrieves every course sharing a code. Multiple titles can
// share one code over a catalog's history.
func (r *CourseRepository) FindByCode(ctx context.Context, code string) ([]*models.Course, error) {
	query := `
		SELECT id, department_id, code, title, description, class_notes, attributes, grade_mode, credits
		FROM courses
		WHERE code = $1
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("error querying courses by code: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.DepartmentID,
			&course.Code,
			&course.Title,
			&course.Description,
			&course.ClassNotes,
			&course.Attributes,
			&course.GradeMode,
			&course.Credits,
		); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}

// FindBySubjectPrefix retrieves courses whose code starts with the subject
// prefix, used when a review's class label only carries a course number.
func (r *CourseRepository) FindBySubjectPrefix(ctx context.Context, subject string) ([]*models.Course, error) {
	query := `
		SELECT id, department_id, code, title, description, class_notes, attributes, grade_mode, credits
		FROM courses
		WHERE code LIKE $1 || ' %'
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, subject)
	if err != nil {
		return nil, fmt.Errorf("error querying courses by subject: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		var course models.Course
		if err := rows.Scan(
			&course.ID,
			&course.DepartmentID,
			&course.Code,
			&course.Title,
			&course.Description,
			&course.ClassNotes,
			&course.Attributes,
			&course.GradeMode,
			&course.Credits,
		); err != nil {
			return nil, fmt.Errorf("error scanning course: %w", err)
		}
		courses = append(courses, &course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courses: %w", err)
	}

	return courses, nil
}
