// Package repositories contains the database access layer for the canonical
// tables. Writes are natural-key upserts so repeated and overlapping sync
// runs are idempotent.
package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories bundles every repository for dependency wiring.
type Repositories struct {
	Departments *DepartmentRepository
	Courses     *CourseRepository
	Instructors *InstructorRepository
	Sections    *SectionRepository
	Reviews     *ReviewRepository
	Ratings     *RatingRepository
}

// NewRepositories wires all repositories onto one connection pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Departments: NewDepartmentRepository(pool),
		Courses:     NewCourseRepository(pool),
		Instructors: NewInstructorRepository(pool),
		Sections:    NewSectionRepository(pool),
		Reviews:     NewReviewRepository(pool),
		Ratings:     NewRatingRepository(pool),
	}
}
