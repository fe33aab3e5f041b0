package services

import "sort"

// Professor disambiguation: when several local instructors share an
// aggregator teacher's name, each candidate is scored against the teacher's
// review corpus and the winner is accepted only when the evidence clears
// fixed thresholds. Anything short of that abstains; a skipped professor is
// recoverable, a misattributed review corpus is not.

const (
	// Signal weights.
	scoreSectionCourse = 4 // reviewed course with a term-consistent taught section
	scoreTaughtCourse  = 3 // reviewed course the candidate taught in any term
	scoreNumberOnly    = 1 // bare course-number label, no course resolved
	scoreDeptBaseline  = 2 // aggregator department matches candidate's

	// Acceptance thresholds.
	minWinningScore = 5
	minScoreMargin  = 2
)

// minMatchCoverage is the fraction of the teacher's reviews that must map to
// courses the winner taught.
const minMatchCoverage = 0.25

// ClassSignal is the evidence one review contributes: the course its class
// label resolved to (0 when only a bare number was present), and whether the
// candidate has a term-consistent section for it.
type ClassSignal struct {
	CourseID   int64
	NumberOnly bool
}

// ProfessorCandidate is one local instructor sharing the teacher's name,
// with the teaching evidence gathered for scoring.
type ProfessorCandidate struct {
	InstructorID    int64
	DepartmentMatch bool
	TaughtCourses   map[int64]bool
	SectionCourses  map[int64]bool
}

type candidateScore struct {
	id             int64
	score          int
	matchedReviews int
	courseSignals  int
	deptMatch      bool
}

// PickProfessor scores each candidate against the review signals and returns
// the winning instructor id, or ok=false when no candidate is convincingly
// ahead.
func PickProfessor(candidates []ProfessorCandidate, signals []ClassSignal, totalReviews int) (int64, bool) {
	if len(candidates) == 0 {
		return 0, false
	}
	if len(candidates) == 1 {
		return candidates[0].InstructorID, true
	}

	scores := make([]candidateScore, 0, len(candidates))
	for _, c := range candidates {
		cs := candidateScore{id: c.InstructorID, deptMatch: c.DepartmentMatch}
		if c.DepartmentMatch {
			cs.score += scoreDeptBaseline
		}
		for _, sig := range signals {
			switch {
			case sig.CourseID != 0 && c.SectionCourses[sig.CourseID]:
				cs.score += scoreSectionCourse
				cs.matchedReviews++
				cs.courseSignals++
			case sig.CourseID != 0 && c.TaughtCourses[sig.CourseID]:
				cs.score += scoreTaughtCourse
				cs.matchedReviews++
				cs.courseSignals++
			case sig.NumberOnly:
				cs.score += scoreNumberOnly
				cs.courseSignals++
			}
		}
		scores = append(scores, cs)
	}

	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.matchedReviews != b.matchedReviews {
			return a.matchedReviews > b.matchedReviews
		}
		if a.courseSignals != b.courseSignals {
			return a.courseSignals > b.courseSignals
		}
		if a.deptMatch != b.deptMatch {
			return a.deptMatch
		}
		return a.id > b.id
	})

	top := scores[0]
	if top.score < minWinningScore {
		return 0, false
	}
	if top.score-scores[1].score < minScoreMargin {
		return 0, false
	}
	if totalReviews > 0 {
		coverage := float64(top.matchedReviews) / float64(totalReviews)
		if coverage < minMatchCoverage {
			return 0, false
		}
	}
	return top.id, true
}
