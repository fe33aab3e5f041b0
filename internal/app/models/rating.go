package models

// Rollup rows are fully derived from reviews and recomputed wholesale each
// run. Rows whose backing review set became empty are deleted.

// CourseRating aggregates all reviews of a course.
type CourseRating struct {
	CourseID      int64   `json:"courseId" db:"course_id"`
	AvgQuality    float64 `json:"avgQuality" db:"avg_quality"`
	AvgDifficulty float64 `json:"avgDifficulty" db:"avg_difficulty"`
	ReviewCount   int     `json:"reviewCount" db:"review_count"`
}

// CourseInstructorRating aggregates reviews of a course under one instructor.
type CourseInstructorRating struct {
	CourseID      int64   `json:"courseId" db:"course_id"`
	InstructorID  int64   `json:"instructorId" db:"instructor_id"`
	AvgQuality    float64 `json:"avgQuality" db:"avg_quality"`
	AvgDifficulty float64 `json:"avgDifficulty" db:"avg_difficulty"`
	ReviewCount   int     `json:"reviewCount" db:"review_count"`
}

// InstructorRating aggregates all reviews of an instructor.
type InstructorRating struct {
	InstructorID   int64    `json:"instructorId" db:"instructor_id"`
	AvgQuality     float64  `json:"avgQuality" db:"avg_quality"`
	AvgDifficulty  float64  `json:"avgDifficulty" db:"avg_difficulty"`
	AvgGradePoints *float64 `json:"avgGradePoints,omitempty" db:"avg_grade_points"`
	ReviewCount    int      `json:"reviewCount" db:"review_count"`
}

// SectionRating aggregates reviews attributed to a specific section.
type SectionRating struct {
	SectionID     int64   `json:"sectionId" db:"section_id"`
	AvgQuality    float64 `json:"avgQuality" db:"avg_quality"`
	AvgDifficulty float64 `json:"avgDifficulty" db:"avg_difficulty"`
	ReviewCount   int     `json:"reviewCount" db:"review_count"`
}
