package services

import (
	"time"

	"github.com/yigit/courseatlas/internal/app/models"
)

// AssignSection picks the taught section a review posted at postedAt most
// plausibly refers to, and the term label to record with it.
//
// The inferred prior term caps the search: among the instructor's sections of
// the course at or before that term, the one whose anchor date is nearest
// wins, lowest id on ties. When the instructor only taught the course in
// later terms the oldest known section stands in. With no taught sections at
// all the review keeps the inferred term label and no section.
func AssignSection(taught []*models.Section, postedAt time.Time) (*int64, string) {
	prior := models.PriorTermCode(postedAt)
	if len(taught) == 0 {
		return nil, prior
	}

	priorRank := models.TermRank(prior)
	priorAnchor, _ := models.TermAnchor(prior)

	var best *models.Section
	var bestDist time.Duration
	for _, s := range taught {
		rank := models.TermRank(s.TermCode)
		if rank < 0 || rank > priorRank {
			continue
		}
		anchor, ok := models.TermAnchor(s.TermCode)
		if !ok {
			continue
		}
		dist := priorAnchor.Sub(anchor)
		if best == nil || dist < bestDist || (dist == bestDist && s.ID < best.ID) {
			best = s
			bestDist = dist
		}
	}

	if best == nil {
		best = oldestSection(taught)
	}
	if best == nil {
		return nil, prior
	}
	return &best.ID, best.TermCode
}

func oldestSection(taught []*models.Section) *models.Section {
	var best *models.Section
	bestRank := 0
	for _, s := range taught {
		rank := models.TermRank(s.TermCode)
		if rank < 0 {
			continue
		}
		if best == nil || rank < bestRank || (rank == bestRank && s.ID < best.ID) {
			best = s
			bestRank = rank
		}
	}
	return best
}
