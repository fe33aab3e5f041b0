package models

// Course represents a course offered by a department.
// Identity key is (code, title); enrichment fields are updated in place.
type Course struct {
	ID           int64   `json:"id" db:"id"`
	DepartmentID int64   `json:"departmentId" db:"department_id"`
	Code         string  `json:"code" db:"code"`
	Title        string  `json:"title" db:"title"`
	Description  *string `json:"description,omitempty" db:"description"`
	ClassNotes   *string `json:"classNotes,omitempty" db:"class_notes"`
	Attributes   *string `json:"attributes,omitempty" db:"attributes"`
	GradeMode    *string `json:"gradeMode,omitempty" db:"grade_mode"`
	Credits      *string `json:"credits,omitempty" db:"credits"`

	// Relations (populated when needed)
	Department *Department `json:"department,omitempty"`
}
