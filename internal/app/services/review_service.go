package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/aggregator"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/checkpoint"
	"github.com/yigit/courseatlas/internal/pkg/dberrors"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// ReviewSource is the review aggregator surface the importer uses.
type ReviewSource interface {
	AllRatings(ctx context.Context, teacherID string) ([]aggregator.Rating, error)
}

// CourseFinder is the course repository surface the importer uses.
type CourseFinder interface {
	ResolveAlias(ctx context.Context, code string) (string, error)
	FindByCode(ctx context.Context, code string) ([]*models.Course, error)
	FindBySubjectPrefix(ctx context.Context, subject string) ([]*models.Course, error)
}

// SectionFinder is the section repository surface the importer uses.
type SectionFinder interface {
	SectionsTaught(ctx context.Context, instructorID, courseID int64) ([]*models.Section, error)
}

// InstructorFinder is the instructor repository surface the importer uses.
type InstructorFinder interface {
	FindByNameParts(ctx context.Context, firstName, lastName string) ([]*models.Instructor, error)
	CourseIDsTaught(ctx context.Context, instructorID int64) ([]int64, error)
}

// DepartmentFinder resolves department names for the disambiguation
// baseline.
type DepartmentFinder interface {
	GetByID(ctx context.Context, id int64) (*models.Department, error)
}

// ReviewStore is the review repository surface the importer uses.
type ReviewStore interface {
	Upsert(ctx context.Context, review *models.Review) error
}

// ImportStats counts the outcomes of a review import.
type ImportStats struct {
	Matched   int
	Unmatched int
	Imported  int
	Skipped   int
	Errored   int
}

// Add accumulates another batch of counts.
func (s *ImportStats) Add(other ImportStats) {
	s.Matched += other.Matched
	s.Unmatched += other.Unmatched
	s.Imported += other.Imported
	s.Skipped += other.Skipped
	s.Errored += other.Errored
}

// ReviewImporter matches aggregator professors to canonical instructors and
// imports their reviews.
type ReviewImporter struct {
	source      ReviewSource
	courses     CourseFinder
	sections    SectionFinder
	instructors InstructorFinder
	departments DepartmentFinder
	reviews     ReviewStore
	checkpoint  *checkpoint.Store
	sourceName  string
	log         zerolog.Logger
}

// NewReviewImporter wires a review importer. sourceName labels imported rows
// (reviews.source).
func NewReviewImporter(
	source ReviewSource,
	courses CourseFinder,
	sections SectionFinder,
	instructors InstructorFinder,
	departments DepartmentFinder,
	reviews ReviewStore,
	cp *checkpoint.Store,
	sourceName string,
) *ReviewImporter {
	return &ReviewImporter{
		source:      source,
		courses:     courses,
		sections:    sections,
		instructors: instructors,
		departments: departments,
		reviews:     reviews,
		checkpoint:  cp,
		sourceName:  sourceName,
		log:         logger.WithComponent("review_importer"),
	}
}

// ImportProfessor processes one aggregator teacher: match to a canonical
// instructor, map each review's class label to a course, assign a section,
// and upsert. The teacher id is checkpointed once processing finishes so an
// interrupted run resumes where it left off.
func (im *ReviewImporter) ImportProfessor(ctx context.Context, teacher aggregator.Teacher) (ImportStats, error) {
	var stats ImportStats

	if im.checkpoint.Seen(teacher.ID) {
		stats.Skipped++
		return stats, nil
	}

	candidates, err := im.matchCandidates(ctx, teacher)
	if err != nil {
		return stats, err
	}
	if len(candidates) == 0 {
		im.log.Debug().
			Str("teacher", teacher.FirstName+" "+teacher.LastName).
			Msg("no local instructor for aggregator professor")
		stats.Unmatched++
		return stats, im.checkpoint.Mark(teacher.ID)
	}

	ratings, err := im.source.AllRatings(ctx, teacher.ID)
	if err != nil {
		return stats, err
	}

	courseCache := make(map[string]*labelMatch)

	winnerID, ok, err := im.pickInstructor(ctx, teacher, candidates, ratings, courseCache)
	if err != nil {
		return stats, err
	}
	if !ok {
		im.log.Info().
			Err(apperrors.ErrAmbiguousMatch).
			Str("teacher", teacher.FirstName+" "+teacher.LastName).
			Int("candidates", len(candidates)).
			Msg("ambiguous professor match; skipping")
		stats.Skipped++
		return stats, im.checkpoint.Mark(teacher.ID)
	}
	stats.Matched++

	taughtCache := make(map[int64][]*models.Section)
	for i, rating := range ratings {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		imported, err := im.importRating(ctx, teacher, winnerID, rating, i, courseCache, taughtCache)
		if err != nil {
			// Integrity violations skip the review, they never fail the unit.
			if dberrors.IsConstraintViolation(err) {
				msg := "review rejected by constraint; skipping"
				if dberrors.IsForeignKeyViolation(err) {
					msg = "review references a missing row; skipping"
				}
				im.log.Warn().Err(err).Str("teacher_id", teacher.ID).Int("ordinal", i).Msg(msg)
				stats.Skipped++
				continue
			}
			return stats, err
		}
		if imported {
			stats.Imported++
		} else {
			stats.Skipped++
		}
	}

	return stats, im.checkpoint.Mark(teacher.ID)
}

func (im *ReviewImporter) importRating(
	ctx context.Context,
	teacher aggregator.Teacher,
	instructorID int64,
	rating aggregator.Rating,
	ordinal int,
	courseCache map[string]*labelMatch,
	taughtCache map[int64][]*models.Section,
) (bool, error) {
	match, err := im.courseForLabel(ctx, rating.Class, courseCache)
	if err != nil {
		return false, err
	}
	if match.course == nil {
		// A review cannot be stored without a canonical course.
		return false, nil
	}

	postedAt, err := aggregator.ParseRatingDate(rating.Date)
	if err != nil {
		im.log.Warn().Str("date", rating.Date).Msg("unparseable review date")
		return false, nil
	}

	taught, cached := taughtCache[match.course.ID]
	if !cached {
		taught, err = im.sections.SectionsTaught(ctx, instructorID, match.course.ID)
		if err != nil {
			return false, err
		}
		taughtCache[match.course.ID] = taught
	}
	sectionID, termCode := AssignSection(taught, postedAt)

	review := &models.Review{
		CourseID:         match.course.ID,
		InstructorID:     instructorID,
		SectionID:        sectionID,
		RatingQuality:    rating.Quality,
		RatingDifficulty: rating.Difficulty,
		Tags:             rating.Tags,
		Source:           im.sourceName,
		ExternalID:       ReviewExternalID(teacher.ID, rating.Date, ordinal),
		PostedAt:         postedAt,
	}
	if termCode != "" {
		review.TermCode = &termCode
	}
	if comment := strings.TrimSpace(rating.Comment); comment != "" {
		review.Comment = &comment
	}
	if grade := strings.TrimSpace(rating.Grade); grade != "" {
		review.ReportedGrade = &grade
		if points, ok := models.GradePoints(grade); ok {
			review.GradePoints = &points
		}
	}

	if err := im.reviews.Upsert(ctx, review); err != nil {
		return false, err
	}
	return true, nil
}

// matchCandidates finds local instructors plausibly matching the teacher's
// name. The repository search is a broad ILIKE; the name-part comparison
// here does the strict filtering.
func (im *ReviewImporter) matchCandidates(ctx context.Context, teacher aggregator.Teacher) ([]*models.Instructor, error) {
	found, err := im.instructors.FindByNameParts(ctx, teacher.FirstName, teacher.LastName)
	if err != nil {
		return nil, err
	}

	var candidates []*models.Instructor
	for _, c := range found {
		if nameMatchesTeacher(c.Name, teacher.FirstName, teacher.LastName) {
			candidates = append(candidates, c)
		}
	}
	return candidates, nil
}

// nameMatchesTeacher accepts a candidate whose surname equals the teacher's
// and whose first name equals, starts with, or abbreviates the teacher's
// first name.
func nameMatchesTeacher(candidateName, firstName, lastName string) bool {
	candFirst, candLast := SplitFirstLast(candidateName)
	if !strings.EqualFold(candLast, strings.TrimSpace(lastName)) {
		return false
	}
	first := strings.TrimSpace(firstName)
	if first == "" || candFirst == "" {
		return true
	}
	if strings.EqualFold(candFirst, first) {
		return true
	}
	candTokens := strings.Fields(candFirst)
	if len(candTokens) > 0 && strings.EqualFold(candTokens[0], first) {
		return true
	}
	if IsAbbreviatedName(candidateName) && FirstInitial(candidateName) == FirstInitial(first+" "+lastName) {
		return true
	}
	return false
}

// pickInstructor selects among multiple same-name candidates using the
// teacher's review corpus as evidence.
func (im *ReviewImporter) pickInstructor(
	ctx context.Context,
	teacher aggregator.Teacher,
	candidates []*models.Instructor,
	ratings []aggregator.Rating,
	courseCache map[string]*labelMatch,
) (int64, bool, error) {
	if len(candidates) == 1 {
		return candidates[0].ID, true, nil
	}

	signals := make([]ClassSignal, 0, len(ratings))
	signalDates := make(map[int64][]string)
	for _, rating := range ratings {
		match, err := im.courseForLabel(ctx, rating.Class, courseCache)
		if err != nil {
			return 0, false, err
		}
		sig := ClassSignal{NumberOnly: match.numberOnly}
		if match.course != nil {
			sig.CourseID = match.course.ID
			signalDates[sig.CourseID] = append(signalDates[sig.CourseID], rating.Date)
		}
		signals = append(signals, sig)
	}

	scored := make([]ProfessorCandidate, 0, len(candidates))
	for _, c := range candidates {
		pc := ProfessorCandidate{
			InstructorID:   c.ID,
			TaughtCourses:  make(map[int64]bool),
			SectionCourses: make(map[int64]bool),
		}

		if c.DepartmentID != nil && teacher.Department != "" {
			dept, err := im.departments.GetByID(ctx, *c.DepartmentID)
			if err == nil && departmentNameMatches(dept.Name, dept.Code, teacher.Department) {
				pc.DepartmentMatch = true
			}
		}

		courseIDs, err := im.instructors.CourseIDsTaught(ctx, c.ID)
		if err != nil {
			return 0, false, err
		}
		for _, id := range courseIDs {
			pc.TaughtCourses[id] = true
		}

		for courseID, dates := range signalDates {
			if !pc.TaughtCourses[courseID] {
				continue
			}
			taught, err := im.sections.SectionsTaught(ctx, c.ID, courseID)
			if err != nil {
				return 0, false, err
			}
			if hasConsistentSection(taught, dates) {
				pc.SectionCourses[courseID] = true
			}
		}

		scored = append(scored, pc)
	}

	id, ok := PickProfessor(scored, signals, len(ratings))
	return id, ok, nil
}

// hasConsistentSection reports whether any taught section sits at or before
// the prior term inferred from at least one review date.
func hasConsistentSection(taught []*models.Section, dates []string) bool {
	for _, raw := range dates {
		postedAt, err := aggregator.ParseRatingDate(raw)
		if err != nil {
			continue
		}
		priorRank := models.TermRank(models.PriorTermCode(postedAt))
		for _, s := range taught {
			rank := models.TermRank(s.TermCode)
			if rank > 0 && rank <= priorRank {
				return true
			}
		}
	}
	return false
}

func departmentNameMatches(deptName, deptCode, teacherDept string) bool {
	t := strings.TrimSpace(teacherDept)
	return strings.EqualFold(deptName, t) || strings.EqualFold(deptCode, t)
}

type labelMatch struct {
	course     *models.Course
	numberOnly bool
}

var (
	classLabelRe = regexp.MustCompile(`(?i)^([a-z]{2,8})[\s_-]*(\d{2,4}[a-z]{0,2})$`)
	bareNumberRe = regexp.MustCompile(`^\d{2,4}[a-z]?$`)
)

// courseForLabel maps a free-text class label ("CS170", "cs 170") to a
// canonical course through the alias table. Bare numbers ("170") resolve to
// no course but still count as weak signals. Results are cached per teacher
// since labels repeat across reviews.
func (im *ReviewImporter) courseForLabel(ctx context.Context, label string, cache map[string]*labelMatch) (*labelMatch, error) {
	key := strings.ToLower(strings.TrimSpace(label))
	if match, hit := cache[key]; hit {
		return match, nil
	}

	match := &labelMatch{}
	cache[key] = match

	if key == "" {
		return match, nil
	}
	if bareNumberRe.MatchString(key) {
		match.numberOnly = true
		return match, nil
	}

	m := classLabelRe.FindStringSubmatch(key)
	if m == nil {
		return match, nil
	}

	code := strings.ToUpper(m[1]) + " " + strings.ToUpper(m[2])
	canonical, err := im.courses.ResolveAlias(ctx, code)
	if err != nil {
		return nil, err
	}

	courses, err := im.courses.FindByCode(ctx, canonical)
	if err != nil {
		return nil, err
	}
	if len(courses) > 0 {
		// FindByCode orders by id; the oldest row wins when cross-listed.
		match.course = courses[0]
		return match, nil
	}

	// No course under that exact code. Renumbered catalogs sometimes keep
	// the number and change only padding ("CS 253" vs "CS 2530"); fall back
	// to a unique number match within the subject.
	subject := strings.ToUpper(m[1])
	number := strings.ToUpper(m[2])
	inSubject, err := im.courses.FindBySubjectPrefix(ctx, subject)
	if err != nil {
		return nil, err
	}
	var numbered []*models.Course
	for _, c := range inSubject {
		if i := strings.IndexByte(c.Code, ' '); i > 0 && strings.HasPrefix(c.Code[i+1:], number) {
			numbered = append(numbered, c)
		}
	}
	if len(numbered) == 1 {
		match.course = numbered[0]
	}
	return match, nil
}

// ReviewExternalID derives the stable identity of one review from the
// aggregator teacher id, the raw posted date, and the review's ordinal
// position in that teacher's feed.
func ReviewExternalID(teacherID, rawDate string, ordinal int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", teacherID, rawDate, ordinal)))
	return hex.EncodeToString(sum[:])
}
