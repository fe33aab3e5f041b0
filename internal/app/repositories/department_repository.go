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

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	db *pgxpool.Pool
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{
		db: db,
	}
}

// EnsureByCode creates the department on first sighting of a subject code
// and returns the canonical row. When the stored name is still the
// placeholder (equal to the code) and a real name arrives, the name is
// backfilled in place. Departments are never deleted.
func (r *DepartmentRepository) EnsureByCode(ctx context.Context, code, name string) (*models.Department, error) {
	query := `
		INSERT INTO departments (code, name)
		VALUES ($1, COALESCE(NULLIF($2, ''), $1))
		ON CONFLICT (code) DO UPDATE
		SET name = CASE
			WHEN departments.name = departments.code AND EXCLUDED.name <> EXCLUDED.code
				THEN EXCLUDED.name
			ELSE departments.name
		END
		RETURNING id, code, name
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, code, name).Scan(
		&department.ID,
		&department.Code,
		&department.Name,
	)
	if err != nil {
		return nil, fmt.Errorf("error ensuring department %q: %w", code, err)
	}

	return &department, nil
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	query := `
		SELECT id, code, name
		FROM departments
		WHERE id = $1
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, id).Scan(
		&department.ID,
		&department.Code,
		&department.Name,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &department, nil
}

// GetByCode retrieves a department by its subject code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*models.Department, error) {
	query := `
		SELECT id, code, name
		FROM departments
		WHERE code = $1
	`

	var department models.Department
	err := r.db.QueryRow(ctx, query, code).Scan(
		&department.ID,
		&department.Code,
		&department.Name,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department by code: %w", err)
	}

	return &department, nil
}
