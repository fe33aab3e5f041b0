package services

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/aggregator"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/checkpoint"
)

func TestReviewExternalIDStable(t *testing.T) {
	a := ReviewExternalID("teacher-1", "2025-03-10 00:00:00 +0000 UTC", 0)
	b := ReviewExternalID("teacher-1", "2025-03-10 00:00:00 +0000 UTC", 0)
	if a != b {
		t.Error("same inputs produced different ids")
	}
	if len(a) != 64 {
		t.Errorf("id length = %d, want 64 hex chars", len(a))
	}
}

func TestReviewExternalIDDistinguishesInputs(t *testing.T) {
	base := ReviewExternalID("teacher-1", "2025-03-10", 0)
	variants := []string{
		ReviewExternalID("teacher-2", "2025-03-10", 0),
		ReviewExternalID("teacher-1", "2025-03-11", 0),
		ReviewExternalID("teacher-1", "2025-03-10", 1),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d collided with base", i)
		}
	}
}

func TestNameMatchesTeacher(t *testing.T) {
	tests := []struct {
		candidate string
		first     string
		last      string
		want      bool
	}{
		{"Amanda Kays", "Amanda", "Kays", true},
		{"Amanda B. Kays", "Amanda", "Kays", true},
		{"A. Kays", "Amanda", "Kays", true},
		{"Amanda Kays", "Aaron", "Kays", false},
		{"Amanda Kays", "Amanda", "Ortiz", false},
		{"Kays, Amanda", "Amanda", "Kays", true},
	}
	for _, tt := range tests {
		got := nameMatchesTeacher(tt.candidate, tt.first, tt.last)
		if got != tt.want {
			t.Errorf("nameMatchesTeacher(%q, %q, %q) = %t, want %t",
				tt.candidate, tt.first, tt.last, got, tt.want)
		}
	}
}

// fakeCourses resolves aliases from a map and serves a fixed course list.
type fakeCourses struct {
	aliases map[string]string
	courses map[string]*models.Course
	lookups int
}

func (f *fakeCourses) ResolveAlias(ctx context.Context, code string) (string, error) {
	if canonical, ok := f.aliases[code]; ok {
		return canonical, nil
	}
	return code, nil
}

func (f *fakeCourses) FindByCode(ctx context.Context, code string) ([]*models.Course, error) {
	f.lookups++
	if c, ok := f.courses[code]; ok {
		return []*models.Course{c}, nil
	}
	return nil, nil
}

func (f *fakeCourses) FindBySubjectPrefix(ctx context.Context, subject string) ([]*models.Course, error) {
	var out []*models.Course
	for _, c := range f.courses {
		if strings.HasPrefix(c.Code, subject+" ") {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func TestCourseForLabel(t *testing.T) {
	courses := &fakeCourses{
		aliases: map[string]string{"CS 153": "CS 253"},
		courses: map[string]*models.Course{
			"CS 253": {ID: 10, Code: "CS 253"},
		},
	}
	im := &ReviewImporter{courses: courses}
	cache := make(map[string]*labelMatch)

	t.Run("compact label through alias", func(t *testing.T) {
		match, err := im.courseForLabel(context.Background(), "CS153", cache)
		if err != nil {
			t.Fatal(err)
		}
		if match.course == nil || match.course.ID != 10 {
			t.Errorf("match = %+v, want course 10", match)
		}
	})

	t.Run("spaced lowercase label", func(t *testing.T) {
		match, err := im.courseForLabel(context.Background(), "cs 153", cache)
		if err != nil {
			t.Fatal(err)
		}
		if match.course == nil || match.course.ID != 10 {
			t.Errorf("match = %+v, want course 10", match)
		}
	})

	t.Run("bare number is a weak signal", func(t *testing.T) {
		match, err := im.courseForLabel(context.Background(), "153", cache)
		if err != nil {
			t.Fatal(err)
		}
		if match.course != nil || !match.numberOnly {
			t.Errorf("match = %+v, want number-only", match)
		}
	})

	t.Run("number match within subject", func(t *testing.T) {
		// "CHEM 141" has no alias and no exact row, but CHEM has exactly
		// one course numbered 141x.
		courses.courses["CHEM 1410"] = &models.Course{ID: 20, Code: "CHEM 1410"}
		match, err := im.courseForLabel(context.Background(), "CHEM 141", cache)
		if err != nil {
			t.Fatal(err)
		}
		if match.course == nil || match.course.ID != 20 {
			t.Errorf("match = %+v, want course 20", match)
		}
	})

	t.Run("free text maps to nothing", func(t *testing.T) {
		match, err := im.courseForLabel(context.Background(), "intro to computing", cache)
		if err != nil {
			t.Fatal(err)
		}
		if match.course != nil || match.numberOnly {
			t.Errorf("match = %+v, want no signal", match)
		}
	})

	t.Run("repeat labels hit the cache", func(t *testing.T) {
		before := courses.lookups
		if _, err := im.courseForLabel(context.Background(), "CS153", cache); err != nil {
			t.Fatal(err)
		}
		if courses.lookups != before {
			t.Errorf("lookups grew to %d; repeated label should be cached", courses.lookups)
		}
	})
}

type fakeRatingSource struct {
	ratings []aggregator.Rating
}

func (f *fakeRatingSource) AllRatings(ctx context.Context, teacherID string) ([]aggregator.Rating, error) {
	return f.ratings, nil
}

type fakeSectionFinder struct{}

func (f *fakeSectionFinder) SectionsTaught(ctx context.Context, instructorID, courseID int64) ([]*models.Section, error) {
	return nil, nil
}

type fakeInstructorFinder struct {
	instructors []*models.Instructor
}

func (f *fakeInstructorFinder) FindByNameParts(ctx context.Context, firstName, lastName string) ([]*models.Instructor, error) {
	return f.instructors, nil
}

func (f *fakeInstructorFinder) CourseIDsTaught(ctx context.Context, instructorID int64) ([]int64, error) {
	return nil, nil
}

type fakeDepartmentFinder struct{}

func (f *fakeDepartmentFinder) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	return nil, apperrors.ErrDepartmentNotFound
}

type failingReviewStore struct {
	err      error
	attempts int
}

func (f *failingReviewStore) Upsert(ctx context.Context, review *models.Review) error {
	f.attempts++
	return f.err
}

func TestImportProfessorConstraintViolationCountsAsSkip(t *testing.T) {
	courses := &fakeCourses{
		courses: map[string]*models.Course{"CS 253": {ID: 10, Code: "CS 253"}},
	}
	store := &failingReviewStore{
		err: fmt.Errorf("error upserting review: %w", &pgconn.PgError{Code: "23503"}),
	}
	cp := checkpoint.Load(filepath.Join(t.TempDir(), "checkpoint.json"))
	im := NewReviewImporter(
		&fakeRatingSource{ratings: []aggregator.Rating{
			{Class: "CS 253", Date: "2025-03-10", Quality: 4, Difficulty: 2},
		}},
		courses,
		&fakeSectionFinder{},
		&fakeInstructorFinder{instructors: []*models.Instructor{{ID: 1, Name: "Amanda Kays"}}},
		&fakeDepartmentFinder{},
		store,
		cp,
		"aggregator",
	)

	stats, err := im.ImportProfessor(context.Background(), aggregator.Teacher{
		ID: "t-1", FirstName: "Amanda", LastName: "Kays",
	})
	if err != nil {
		t.Fatal(err)
	}
	if store.attempts != 1 {
		t.Fatalf("upsert attempts = %d, want 1", store.attempts)
	}
	if stats.Skipped != 1 || stats.Errored != 0 || stats.Imported != 0 {
		t.Errorf("stats = %+v, want the rejected review counted as a skip", stats)
	}
	if !cp.Seen("t-1") {
		t.Error("teacher not checkpointed after the skipped review")
	}
}
