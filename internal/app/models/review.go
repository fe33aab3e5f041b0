package models

import "time"

// Review represents an imported aggregator review attributed to a canonical
// course and instructor. Identity key is ExternalID, a deterministic hash of
// (source teacher id, post date, ordinal index), so replays never duplicate.
type Review struct {
	ID           int64   `json:"id" db:"id"`
	UserID       *int64  `json:"userId,omitempty" db:"user_id"`
	CourseID     int64   `json:"courseId" db:"course_id"`
	InstructorID int64   `json:"instructorId" db:"instructor_id"`
	SectionID    *int64  `json:"sectionId,omitempty" db:"section_id"`
	TermCode     *string `json:"termCode,omitempty" db:"term_code"`

	RatingQuality    float64 `json:"ratingQuality" db:"rating_quality"`
	RatingDifficulty float64 `json:"ratingDifficulty" db:"rating_difficulty"`

	Comment       *string  `json:"comment,omitempty" db:"comment"`
	Tags          []string `json:"tags,omitempty" db:"tags"`
	ReportedGrade *string  `json:"reportedGrade,omitempty" db:"reported_grade"`
	GradePoints   *float64 `json:"gradePoints,omitempty" db:"grade_points"`

	Source     string    `json:"source" db:"source"`
	ExternalID string    `json:"externalId" db:"external_id"`
	PostedAt   time.Time `json:"postedAt" db:"posted_at"`
}

// GradePoints maps a reported letter grade to a 4.0-scale value.
// Unknown or non-letter grades ("Not sure yet", "Audit") return no value.
func GradePoints(grade string) (float64, bool) {
	points, ok := gradeScale[grade]
	return points, ok
}

var gradeScale = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
}
