package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/dberrors"
)

// SectionRepository handles database operations for sections and rosters
type SectionRepository struct {
	db *pgxpool.Pool
}

// NewSectionRepository creates a new section repository
func NewSectionRepository(db *pgxpool.Pool) *SectionRepository {
	return &SectionRepository{
		db: db,
	}
}

const sectionColumns = `id, course_id, term_code, crn, atlas_key, section_number, instructor_id,
	component_type, instruction_method, campus, session, enrollment_status, meetings,
	start_date, end_date, enrollment_cap, seats_avail, waitlist_count, waitlist_cap,
	ger_designation, ger_codes, registration_restrictions, section_description, class_notes,
	is_active, last_seen_at`

func scanSection(row pgx.Row) (*models.Section, error) {
	var s models.Section
	err := row.Scan(
		&s.ID, &s.CourseID, &s.TermCode, &s.CRN, &s.AtlasKey, &s.SectionNumber, &s.InstructorID,
		&s.ComponentType, &s.InstructionMethod, &s.Campus, &s.Session, &s.EnrollmentStatus, &s.Meetings,
		&s.StartDate, &s.EndDate, &s.EnrollmentCap, &s.SeatsAvail, &s.WaitlistCount, &s.WaitlistCap,
		&s.GERDesignation, &s.GERCodes, &s.RegistrationRestrictions, &s.SectionDescription, &s.ClassNotes,
		&s.IsActive, &s.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert inserts or updates a section on its (crn, term_code) natural key.
//
// Every nullable field uses COALESCE(new, existing) so a thinner payload
// never erases a previously captured richer value; a fresh non-null
// observation still wins. The row is marked active and stamped seen.
func (r *SectionRepository) Upsert(ctx context.Context, section *models.Section) error {
	if section.LastSeenAt.IsZero() {
		section.LastSeenAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sections (
			course_id, term_code, crn, atlas_key, section_number, instructor_id,
			component_type, instruction_method, campus, session, enrollment_status, meetings,
			start_date, end_date, enrollment_cap, seats_avail, waitlist_count, waitlist_cap,
			ger_designation, ger_codes, registration_restrictions, section_description, class_notes,
			is_active, last_seen_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, TRUE, $24)
		ON CONFLICT (crn, term_code) DO UPDATE
		SET course_id                 = EXCLUDED.course_id,
			atlas_key                 = COALESCE(EXCLUDED.atlas_key, sections.atlas_key),
			section_number            = COALESCE(EXCLUDED.section_number, sections.section_number),
			instructor_id             = COALESCE(EXCLUDED.instructor_id, sections.instructor_id),
			component_type            = COALESCE(EXCLUDED.component_type, sections.component_type),
			instruction_method        = COALESCE(EXCLUDED.instruction_method, sections.instruction_method),
			campus                    = COALESCE(EXCLUDED.campus, sections.campus),
			session                   = COALESCE(EXCLUDED.session, sections.session),
			enrollment_status         = COALESCE(EXCLUDED.enrollment_status, sections.enrollment_status),
			meetings                  = COALESCE(EXCLUDED.meetings, sections.meetings),
			start_date                = COALESCE(EXCLUDED.start_date, sections.start_date),
			end_date                  = COALESCE(EXCLUDED.end_date, sections.end_date),
			enrollment_cap            = COALESCE(EXCLUDED.enrollment_cap, sections.enrollment_cap),
			seats_avail               = COALESCE(EXCLUDED.seats_avail, sections.seats_avail),
			waitlist_count            = COALESCE(EXCLUDED.waitlist_count, sections.waitlist_count),
			waitlist_cap              = COALESCE(EXCLUDED.waitlist_cap, sections.waitlist_cap),
			ger_designation           = COALESCE(EXCLUDED.ger_designation, sections.ger_designation),
			ger_codes                 = COALESCE(EXCLUDED.ger_codes, sections.ger_codes),
			registration_restrictions = COALESCE(EXCLUDED.registration_restrictions, sections.registration_restrictions),
			section_description       = COALESCE(EXCLUDED.section_description, sections.section_description),
			class_notes               = COALESCE(EXCLUDED.class_notes, sections.class_notes),
			is_active                 = TRUE,
			last_seen_at              = EXCLUDED.last_seen_at
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		section.CourseID, section.TermCode, section.CRN, section.AtlasKey, section.SectionNumber, section.InstructorID,
		section.ComponentType, section.InstructionMethod, section.Campus, section.Session, section.EnrollmentStatus, section.Meetings,
		section.StartDate, section.EndDate, section.EnrollmentCap, section.SeatsAvail, section.WaitlistCount, section.WaitlistCap,
		section.GERDesignation, section.GERCodes, section.RegistrationRestrictions, section.SectionDescription, section.ClassNotes,
		section.LastSeenAt,
	).Scan(&section.ID)
	if err != nil {
		return fmt.Errorf("error upserting section crn=%s term=%s: %w", section.CRN, section.TermCode, err)
	}

	return nil
}

// GetByCRNAndTerm retrieves a section by its natural key.
func (r *SectionRepository) GetByCRNAndTerm(ctx context.Context, crn, termCode string) (*models.Section, error) {
	query := `SELECT ` + sectionColumns + ` FROM sections WHERE crn = $1 AND term_code = $2`

	section, err := scanSection(r.db.QueryRow(ctx, query, crn, termCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSectionNotFound
		}
		return nil, fmt.Errorf("error retrieving section: %w", err)
	}

	return section, nil
}

// SetPrimaryInstructor mirrors the roster's top entry onto the section row.
func (r *SectionRepository) SetPrimaryInstructor(ctx context.Context, sectionID, instructorID int64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE sections SET instructor_id = $2 WHERE id = $1`,
		sectionID, instructorID)
	if err != nil {
		return fmt.Errorf("error setting primary instructor: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrSectionNotFound
	}

	return nil
}

// RosterTableExists probes for the optional section_instructors table.
// The full roster persists only when the table is present.
func (r *SectionRepository) RosterTableExists(ctx context.Context) (bool, error) {
	_, err := r.db.Exec(ctx, `SELECT 1 FROM section_instructors LIMIT 1`)
	if err != nil {
		if dberrors.IsUndefinedTable(err) {
			return false, nil
		}
		return false, fmt.Errorf("error probing roster table: %w", err)
	}
	return true, nil
}

// ReplaceRoster swaps the section's roster entries in one transaction.
func (r *SectionRepository) ReplaceRoster(ctx context.Context, sectionID int64, entries []models.SectionInstructor) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin roster transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM section_instructors WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("error clearing roster: %w", err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO section_instructors (section_id, instructor_id, role, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (section_id, instructor_id) DO UPDATE
			SET role = EXCLUDED.role, sort_order = EXCLUDED.sort_order`,
			sectionID, entry.InstructorID, entry.Role, entry.SortOrder)
		if err != nil {
			return fmt.Errorf("error inserting roster entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit roster transaction: %w", err)
	}

	return nil
}

// SectionsTaught returns the sections of a course taught by the instructor,
// ordered by term rank then id, for review-to-section assignment.
func (r *SectionRepository) SectionsTaught(ctx context.Context, instructorID, courseID int64) ([]*models.Section, error) {
	query := `SELECT ` + sectionColumns + `
		FROM sections
		WHERE instructor_id = $1 AND course_id = $2
		ORDER BY term_code, id`

	rows, err := r.db.Query(ctx, query, instructorID, courseID)
	if err != nil {
		return nil, fmt.Errorf("error querying sections taught: %w", err)
	}
	defer rows.Close()

	var sections []*models.Section
	for rows.Next() {
		section, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning section: %w", err)
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sections: %w", err)
	}

	return sections, nil
}

// DeactivateUnseen flips is_active off for sections in the synced terms that
// the run did not observe. Rows are never deleted. Callers must invoke this
// only after a fully-successful sweep; a failed subject suppresses it so an
// outage cannot mass-deactivate real sections.
func (r *SectionRepository) DeactivateUnseen(ctx context.Context, termCodes []string, runStart time.Time) (int64, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE sections
		SET is_active = FALSE
		WHERE term_code = ANY($1)
		  AND last_seen_at < $2
		  AND is_active`,
		termCodes, runStart)
	if err != nil {
		return 0, fmt.Errorf("error deactivating unseen sections: %w", err)
	}

	return cmdTag.RowsAffected(), nil
}
