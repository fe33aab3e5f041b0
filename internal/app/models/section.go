package models

import "time"

// Section represents one offering of a course in a term.
// Identity key is (crn, termCode). Unobserved rows are deactivated via
// IsActive/LastSeenAt, never deleted.
type Section struct {
	ID            int64   `json:"id" db:"id"`
	CourseID      int64   `json:"courseId" db:"course_id"`
	TermCode      string  `json:"termCode" db:"term_code"`
	CRN           string  `json:"crn" db:"crn"`
	AtlasKey      *string `json:"atlasKey,omitempty" db:"atlas_key"`
	SectionNumber *string `json:"sectionNumber,omitempty" db:"section_number"`
	InstructorID  *int64  `json:"instructorId,omitempty" db:"instructor_id"`

	ComponentType     *string `json:"componentType,omitempty" db:"component_type"`
	InstructionMethod *string `json:"instructionMethod,omitempty" db:"instruction_method"`
	Campus            *string `json:"campus,omitempty" db:"campus"`
	Session           *string `json:"session,omitempty" db:"session"`
	EnrollmentStatus  *string `json:"enrollmentStatus,omitempty" db:"enrollment_status"`
	Meetings          *string `json:"meetings,omitempty" db:"meetings"`

	StartDate *time.Time `json:"startDate,omitempty" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`

	EnrollmentCap *int `json:"enrollmentCap,omitempty" db:"enrollment_cap"`
	SeatsAvail    *int `json:"seatsAvail,omitempty" db:"seats_avail"`
	WaitlistCount *int `json:"waitlistCount,omitempty" db:"waitlist_count"`
	WaitlistCap   *int `json:"waitlistCap,omitempty" db:"waitlist_cap"`

	GERDesignation           *string  `json:"gerDesignation,omitempty" db:"ger_designation"`
	GERCodes                 []string `json:"gerCodes,omitempty" db:"ger_codes"`
	RegistrationRestrictions *string  `json:"registrationRestrictions,omitempty" db:"registration_restrictions"`
	SectionDescription       *string  `json:"sectionDescription,omitempty" db:"section_description"`
	ClassNotes               *string  `json:"classNotes,omitempty" db:"class_notes"`

	IsActive   bool      `json:"isActive" db:"is_active"`
	LastSeenAt time.Time `json:"lastSeenAt" db:"last_seen_at"`
}

// SectionInstructor is one roster entry for a section. Exactly one entry per
// section is chosen primary and mirrored onto Section.InstructorID.
type SectionInstructor struct {
	SectionID    int64   `json:"sectionId" db:"section_id"`
	InstructorID int64   `json:"instructorId" db:"instructor_id"`
	Role         *string `json:"role,omitempty" db:"role"`
	SortOrder    int     `json:"sortOrder" db:"sort_order"`
}
