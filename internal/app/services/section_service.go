package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/catalog"
	"github.com/yigit/courseatlas/internal/pkg/htmltext"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// DepartmentStore is the department repository surface the section service
// uses.
type DepartmentStore interface {
	EnsureByCode(ctx context.Context, code, name string) (*models.Department, error)
}

// CourseStore is the course repository surface the section service uses.
type CourseStore interface {
	ResolveAlias(ctx context.Context, code string) (string, error)
	Upsert(ctx context.Context, course *models.Course) error
}

// SectionStore is the section repository surface the section service uses.
type SectionStore interface {
	Upsert(ctx context.Context, section *models.Section) error
	SetPrimaryInstructor(ctx context.Context, sectionID, instructorID int64) error
	RosterTableExists(ctx context.Context) (bool, error)
	ReplaceRoster(ctx context.Context, sectionID int64, entries []models.SectionInstructor) error
}

// SectionService turns catalog search rows and detail payloads into
// department, course and section rows.
type SectionService struct {
	departments DepartmentStore
	courses     CourseStore
	sections    SectionStore
	resolver    *InstructorResolver
	log         zerolog.Logger

	rosterProbe   sync.Once
	rosterPresent bool
}

// NewSectionService wires a section service.
func NewSectionService(departments DepartmentStore, courses CourseStore, sections SectionStore, resolver *InstructorResolver) *SectionService {
	return &SectionService{
		departments: departments,
		courses:     courses,
		sections:    sections,
		resolver:    resolver,
		log:         logger.WithComponent("section_service"),
	}
}

// SyncSearchRow upserts the thin record a search page carries: department,
// course shell, and a section with only search-level fields. Abbreviated
// instructor names are not inserted here; the detail roster carries the full
// name and email.
func (s *SectionService) SyncSearchRow(ctx context.Context, termCode string, row catalog.SearchRow) (*models.Section, error) {
	department, err := s.departments.EnsureByCode(ctx, row.Subject(), "")
	if err != nil {
		return nil, err
	}

	code, err := s.courses.ResolveAlias(ctx, row.Code)
	if err != nil {
		return nil, err
	}

	course := &models.Course{
		DepartmentID: department.ID,
		Code:         code,
		Title:        htmltext.Clean(row.Title),
	}
	if err := s.courses.Upsert(ctx, course); err != nil {
		return nil, err
	}

	section := &models.Section{
		CourseID: course.ID,
		TermCode: termCode,
		CRN:      row.CRN,
	}
	if row.Key != "" {
		section.AtlasKey = &row.Key
	}
	if row.Number != "" {
		section.SectionNumber = &row.Number
	}
	if meets := htmltext.Clean(row.Meets); meets != "" {
		section.Meetings = &meets
	}
	section.StartDate = parseISODate(row.StartDate)
	section.EndDate = parseISODate(row.EndDate)
	if status := htmltext.EnrollmentStatusLetter(row.Status); status != "" {
		section.EnrollmentStatus = &status
	}

	if row.Instructor != "" {
		instructorID, ok, err := s.resolver.Resolve(ctx, row.Instructor, "", &department.ID, false)
		if err != nil {
			return nil, err
		}
		if ok {
			section.InstructorID = &instructorID
		}
	}

	if err := s.sections.Upsert(ctx, section); err != nil {
		return nil, err
	}
	return section, nil
}

// EnrichSection folds a detail payload into the course and section rows:
// cleaned description and notes, seat counts, date range, GER codes, and the
// full instructor roster. Roster names here carry emails, so new instructors
// may be inserted even from abbreviated forms.
func (s *SectionService) EnrichSection(ctx context.Context, termCode string, detail *catalog.SectionDetail) error {
	department, err := s.departments.EnsureByCode(ctx, subjectOf(detail.Code), "")
	if err != nil {
		return err
	}

	code, err := s.courses.ResolveAlias(ctx, detail.Code)
	if err != nil {
		return err
	}

	course := &models.Course{
		DepartmentID: department.ID,
		Code:         code,
		Title:        htmltext.Clean(detail.Title),
		Description:  cleanPtr(detail.Description),
		ClassNotes:   cleanPtr(detail.ClassNotes),
		Attributes:   cleanPtr(detail.Attributes),
		GradeMode:    cleanPtr(detail.GradeMode),
		Credits:      cleanPtr(detail.Credits),
	}
	if err := s.courses.Upsert(ctx, course); err != nil {
		return err
	}

	section := &models.Section{
		CourseID: course.ID,
		TermCode: termCode,
		CRN:      detail.CRN,
	}
	if detail.Key != "" {
		section.AtlasKey = &detail.Key
	}
	if detail.Number != "" {
		section.SectionNumber = &detail.Number
	}
	section.ComponentType = cleanPtr(detail.Components)
	section.InstructionMethod = cleanPtr(detail.InstMethod)
	section.Campus = cleanPtr(detail.Campus)
	section.Session = cleanPtr(detail.Session)
	section.Meetings = cleanPtr(detail.MeetingTimes)
	section.SectionDescription = cleanPtr(detail.Description)
	section.ClassNotes = cleanPtr(detail.ClassNotes)
	section.RegistrationRestrictions = cleanPtr(detail.RestrictionsHTML)

	if status := htmltext.EnrollmentStatusLetter(detail.StatusText); status != "" {
		section.EnrollmentStatus = &status
	}

	seats := htmltext.ExtractSeats(detail.SeatsHTML)
	section.EnrollmentCap = seats.EnrollmentCap
	section.SeatsAvail = seats.SeatsAvail
	section.WaitlistCount = seats.WaitlistCount
	section.WaitlistCap = seats.WaitlistCap

	section.StartDate, section.EndDate = htmltext.ExtractDateRange(detail.DatesHTML)

	if ger := htmltext.Clean(detail.Attributes); ger != "" {
		section.GERDesignation = &ger
	}
	section.GERCodes = htmltext.ExtractGERCodes(detail.Attributes)

	roster := MergeRoster(htmltext.ParseRoster(detail.InstructorHTML))

	resolved := make([]models.SectionInstructor, 0, len(roster))
	for i, entry := range roster {
		instructorID, ok, err := s.resolver.Resolve(ctx, entry.Name, entry.Email, &department.ID, true)
		if err != nil {
			return err
		}
		if !ok {
			s.log.Warn().
				Str("crn", detail.CRN).
				Str("name", entry.Name).
				Msg("roster instructor unresolved")
			continue
		}
		ri := models.SectionInstructor{
			InstructorID: instructorID,
			SortOrder:    i,
		}
		if entry.Role != "" {
			role := entry.Role
			ri.Role = &role
		}
		resolved = append(resolved, ri)
	}
	if len(resolved) > 0 {
		section.InstructorID = &resolved[0].InstructorID
	}

	if err := s.sections.Upsert(ctx, section); err != nil {
		return err
	}

	// The upsert coalesces instructor_id, which keeps a stale primary when
	// the roster changed; mirror the roster's top entry explicitly.
	if len(resolved) > 0 {
		if err := s.sections.SetPrimaryInstructor(ctx, section.ID, resolved[0].InstructorID); err != nil {
			return err
		}
	}

	if len(resolved) > 0 && s.rosterAvailable(ctx) {
		for i := range resolved {
			resolved[i].SectionID = section.ID
		}
		if err := s.sections.ReplaceRoster(ctx, section.ID, resolved); err != nil {
			return err
		}
	}

	return nil
}

// rosterAvailable probes for the roster table once per run.
func (s *SectionService) rosterAvailable(ctx context.Context) bool {
	s.rosterProbe.Do(func() {
		present, err := s.sections.RosterTableExists(ctx)
		if err != nil {
			s.log.Warn().Err(err).Msg("roster table probe failed; skipping roster persistence")
			return
		}
		s.rosterPresent = present
	})
	return s.rosterPresent
}

// MergeRoster deduplicates roster entries and orders them by role priority:
// primary instructor, instructor, professor, unspecified, then assistants.
// Ties keep the source order. The first entry of the result is the primary.
func MergeRoster(entries []htmltext.RosterEntry) []htmltext.RosterEntry {
	merged := make([]htmltext.RosterEntry, 0, len(entries))
	index := make(map[string]int)
	for _, entry := range entries {
		key := rosterIdentity(entry)
		if at, dup := index[key]; dup {
			if rolePriority(entry.Role) > rolePriority(merged[at].Role) {
				merged[at].Role = entry.Role
			}
			if merged[at].Email == "" {
				merged[at].Email = entry.Email
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, entry)
	}

	// Insertion sort keeps the source order stable within equal priority.
	for i := 1; i < len(merged); i++ {
		for j := i; j > 0 && rolePriority(merged[j].Role) > rolePriority(merged[j-1].Role); j-- {
			merged[j], merged[j-1] = merged[j-1], merged[j]
		}
	}
	return merged
}

func rosterIdentity(entry htmltext.RosterEntry) string {
	if entry.Email != "" {
		return "e:" + strings.ToLower(entry.Email)
	}
	return "n:" + NormalizeName(entry.Name)
}

func rolePriority(role string) int {
	r := strings.ToLower(strings.TrimSpace(role))
	switch {
	case strings.Contains(r, "primary"):
		return 5
	case strings.Contains(r, "teaching assistant"):
		return 1
	case strings.Contains(r, "instructor"):
		return 4
	case strings.Contains(r, "professor"):
		return 3
	case strings.Contains(r, "assistant"):
		return 1
	default:
		return 2
	}
}

func subjectOf(code string) string {
	if i := strings.IndexByte(code, ' '); i > 0 {
		return code[:i]
	}
	return code
}

func cleanPtr(raw string) *string {
	text := htmltext.Clean(raw)
	if text == "" {
		return nil
	}
	return &text
}

func parseISODate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
