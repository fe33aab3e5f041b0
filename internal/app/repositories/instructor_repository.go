package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// InstructorRepository handles instructor database operations
type InstructorRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewInstructorRepository creates a new InstructorRepository
func NewInstructorRepository(db *pgxpool.Pool) *InstructorRepository {
	return &InstructorRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const instructorColumns = "id, name, email, department_id"

func scanInstructor(row pgx.Row) (*models.Instructor, error) {
	var instructor models.Instructor
	err := row.Scan(
		&instructor.ID,
		&instructor.Name,
		&instructor.Email,
		&instructor.DepartmentID,
	)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Create inserts a new instructor row and fills in its id.
func (r *InstructorRepository) Create(ctx context.Context, instructor *models.Instructor) error {
	sql, args, err := r.sb.Insert("instructors").
		Columns("name", "email", "department_id").
		Values(instructor.Name, instructor.Email, instructor.DepartmentID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create instructor query: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&instructor.ID); err != nil {
		logger.Error().Err(err).Str("name", instructor.Name).Msg("Error executing create instructor query")
		return fmt.Errorf("error creating instructor: %w", err)
	}

	return nil
}

// GetByID retrieves an instructor by id.
func (r *InstructorRepository) GetByID(ctx context.Context, id int64) (*models.Instructor, error) {
	sql, args, err := r.sb.Select(instructorColumns).
		From("instructors").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get instructor query: %w", err)
	}

	instructor, err := scanInstructor(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInstructorNotFound
		}
		return nil, fmt.Errorf("error retrieving instructor: %w", err)
	}

	return instructor, nil
}

// FindByNormalizedNameOrEmail retrieves every instructor whose whitespace-
// collapsed, case-folded name equals normName, or whose email equals email
// when one is given. Rows come back ordered by id so callers can apply the
// lowest-id tie-break deterministically.
func (r *InstructorRepository) FindByNormalizedNameOrEmail(ctx context.Context, normName, email string) ([]*models.Instructor, error) {
	query := `
		SELECT ` + instructorColumns + `
		FROM instructors
		WHERE lower(btrim(regexp_replace(name, '\s+', ' ', 'g'))) = $1
		   OR ($2 <> '' AND lower(email) = lower($2))
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, normName, email)
	if err != nil {
		return nil, fmt.Errorf("error querying instructors by name or email: %w", err)
	}
	defer rows.Close()

	return collectInstructors(rows)
}

// SearchBySurname retrieves instructors whose name contains the surname,
// case-insensitively. The abbreviation expander narrows the result in
// memory.
func (r *InstructorRepository) SearchBySurname(ctx context.Context, surname string) ([]*models.Instructor, error) {
	sql, args, err := r.sb.Select(instructorColumns).
		From("instructors").
		Where(squirrel.ILike{"name": "%" + surname + "%"}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build surname search query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error searching instructors by surname: %w", err)
	}
	defer rows.Close()

	return collectInstructors(rows)
}

// FindByNameParts retrieves instructors matching a first and last name,
// case-insensitively, for cross-source professor matching.
func (r *InstructorRepository) FindByNameParts(ctx context.Context, firstName, lastName string) ([]*models.Instructor, error) {
	query := `
		SELECT ` + instructorColumns + `
		FROM instructors
		WHERE name ILIKE '%' || $2 || '%'
		  AND name ILIKE '%' || $1 || '%'
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query, firstName, lastName)
	if err != nil {
		return nil, fmt.Errorf("error querying instructors by name parts: %w", err)
	}
	defer rows.Close()

	return collectInstructors(rows)
}

// BackfillEmail sets the instructor's email only when none is recorded yet.
func (r *InstructorRepository) BackfillEmail(ctx context.Context, id int64, email string) error {
	sql, args, err := r.sb.Update("instructors").
		Set("email", email).
		Where(squirrel.Eq{"id": id}).
		Where("email IS NULL").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build backfill email query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error backfilling instructor email: %w", err)
	}

	return nil
}

// HasTaughtInDepartment reports whether any section the instructor taught
// belongs to a course in the department. Teaching evidence outranks the
// assigned department when disambiguating abbreviated names.
func (r *InstructorRepository) HasTaughtInDepartment(ctx context.Context, instructorID, departmentID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1
			FROM sections s
			JOIN courses c ON s.course_id = c.id
			WHERE s.instructor_id = $1 AND c.department_id = $2
		)`,
		instructorID, departmentID).Scan(&exists)

	if err != nil {
		return false, fmt.Errorf("error checking department teaching evidence: %w", err)
	}

	return exists, nil
}

// CourseIDsTaught returns the distinct courses the instructor has a section
// for.
func (r *InstructorRepository) CourseIDsTaught(ctx context.Context, instructorID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT course_id FROM sections WHERE instructor_id = $1`,
		instructorID)
	if err != nil {
		return nil, fmt.Errorf("error querying courses taught: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning course id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating course ids: %w", err)
	}

	return ids, nil
}

func collectInstructors(rows pgx.Rows) ([]*models.Instructor, error) {
	var instructors []*models.Instructor
	for rows.Next() {
		instructor, err := scanInstructor(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning instructor: %w", err)
		}
		instructors = append(instructors, instructor)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instructors: %w", err)
	}

	return instructors, nil
}
