package models

// Instructor represents a canonical instructor row. Identity is fuzzy: the
// same person matches by normalized name or by email, with email outranking
// name when both are present.
type Instructor struct {
	ID           int64   `json:"id" db:"id"`
	Name         string  `json:"name" db:"name"`
	Email        *string `json:"email,omitempty" db:"email"`
	DepartmentID *int64  `json:"departmentId,omitempty" db:"department_id"`
}
