package services

import "testing"

func TestPickProfessorSingleCandidate(t *testing.T) {
	id, ok := PickProfessor([]ProfessorCandidate{{InstructorID: 42}}, nil, 0)
	if !ok || id != 42 {
		t.Errorf("PickProfessor = (%d, %t), want (42, true)", id, ok)
	}
}

func TestPickProfessorNoCandidates(t *testing.T) {
	if _, ok := PickProfessor(nil, nil, 0); ok {
		t.Error("PickProfessor accepted with no candidates")
	}
}

func TestPickProfessorClearWinner(t *testing.T) {
	candidates := []ProfessorCandidate{
		{
			InstructorID:    1,
			DepartmentMatch: true,
			TaughtCourses:   map[int64]bool{10: true, 11: true},
			SectionCourses:  map[int64]bool{10: true},
		},
		{
			InstructorID:   2,
			TaughtCourses:  map[int64]bool{},
			SectionCourses: map[int64]bool{},
		},
	}
	signals := []ClassSignal{
		{CourseID: 10},
		{CourseID: 11},
		{CourseID: 10},
	}

	id, ok := PickProfessor(candidates, signals, 3)
	if !ok || id != 1 {
		t.Errorf("PickProfessor = (%d, %t), want (1, true)", id, ok)
	}
}

func TestPickProfessorAbstainsOnThinMargin(t *testing.T) {
	// Both candidates taught the reviewed course; nothing separates them.
	evidence := map[int64]bool{10: true}
	candidates := []ProfessorCandidate{
		{InstructorID: 1, TaughtCourses: evidence, SectionCourses: map[int64]bool{}},
		{InstructorID: 2, TaughtCourses: evidence, SectionCourses: map[int64]bool{}},
	}
	signals := []ClassSignal{{CourseID: 10}, {CourseID: 10}}

	if _, ok := PickProfessor(candidates, signals, 2); ok {
		t.Error("PickProfessor guessed between evenly-scored candidates")
	}
}

func TestPickProfessorAbstainsBelowScoreFloor(t *testing.T) {
	candidates := []ProfessorCandidate{
		{InstructorID: 1, DepartmentMatch: true, TaughtCourses: map[int64]bool{}, SectionCourses: map[int64]bool{}},
		{InstructorID: 2, TaughtCourses: map[int64]bool{}, SectionCourses: map[int64]bool{}},
	}
	// Only a bare course number: too weak to pin identity.
	signals := []ClassSignal{{NumberOnly: true}}

	if _, ok := PickProfessor(candidates, signals, 1); ok {
		t.Error("PickProfessor accepted on number-only evidence")
	}
}

func TestPickProfessorAbstainsOnLowCoverage(t *testing.T) {
	candidates := []ProfessorCandidate{
		{
			InstructorID:    1,
			DepartmentMatch: true,
			TaughtCourses:   map[int64]bool{10: true},
			SectionCourses:  map[int64]bool{10: true},
		},
		{InstructorID: 2, TaughtCourses: map[int64]bool{}, SectionCourses: map[int64]bool{}},
	}
	// One review out of ten maps to a course the candidate taught.
	signals := make([]ClassSignal, 10)
	signals[0] = ClassSignal{CourseID: 10}

	if _, ok := PickProfessor(candidates, signals, 10); ok {
		t.Error("PickProfessor accepted with 10% review coverage")
	}
}
