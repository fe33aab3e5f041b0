package apperrors

import "errors"

// Resolution errors
var (
	// ErrAmbiguousMatch marks a lookup where multiple canonical rows match an
	// external record and no tie-break produced a unique winner. This is an
	// explicit abstention, not a failure: the caller skips the record.
	ErrAmbiguousMatch = errors.New("ambiguous match, refusing to guess")

	// ErrConflictingDepartments marks an instructor whose evidence points at
	// more than one department. Likely a mover; flagged rather than silently
	// resolved.
	ErrConflictingDepartments = errors.New("conflicting department evidence")
)

// Entity errors
var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrSectionNotFound    = errors.New("section not found")
	ErrInstructorNotFound = errors.New("instructor not found")
)

// External source errors
var (
	// ErrMalformedPayload marks a response body that could not be parsed as
	// JSON even after the single allowed re-fetch.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrAttemptsExhausted wraps the last transient error once the retry
	// budget for a call is spent.
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")

	// ErrSchoolNotFound is returned when the aggregator does not know the
	// configured school name.
	ErrSchoolNotFound = errors.New("school not found on aggregator")
)
