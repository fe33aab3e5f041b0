package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yigit/courseatlas/internal/app/models"
	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/dberrors"
	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// InstructorDirectory is the slice of the instructor repository the resolver
// uses.
type InstructorDirectory interface {
	Create(ctx context.Context, instructor *models.Instructor) error
	FindByNormalizedNameOrEmail(ctx context.Context, normName, email string) ([]*models.Instructor, error)
	SearchBySurname(ctx context.Context, surname string) ([]*models.Instructor, error)
	BackfillEmail(ctx context.Context, id int64, email string) error
	HasTaughtInDepartment(ctx context.Context, instructorID, departmentID int64) (bool, error)
}

// InstructorResolver maps external instructor names and emails to canonical
// instructor ids. Results are cached for the run, and concurrent lookups for
// the same identity are coalesced through singleflight so two workers seeing
// the same new instructor produce exactly one row.
type InstructorResolver struct {
	directory InstructorDirectory
	log       zerolog.Logger

	mu    sync.Mutex
	cache map[string]int64

	flight singleflight.Group
}

// NewInstructorResolver creates a resolver with an empty per-run cache.
func NewInstructorResolver(directory InstructorDirectory) *InstructorResolver {
	return &InstructorResolver{
		directory: directory,
		log:       logger.WithComponent("instructor_resolver"),
		cache:     make(map[string]int64),
	}
}

type resolution struct {
	id int64
	ok bool
}

// Resolve returns the canonical instructor id for a raw name and optional
// email, creating a row when no existing instructor matches.
//
// The decision chain, in order:
//  1. per-run cache hit
//  2. exact match on normalized name or email (email-exact beats any-email
//     beats lowest id; a missing email is backfilled from the input)
//  3. abbreviation expansion: "A. Kays" resolves to an existing "Amanda
//     Kays" only when exactly one candidate survives surname, initial and
//     department narrowing
//  4. insert, unless the name is abbreviated and allowAbbreviatedInsert is
//     false (thin search rows wait for the richer detail roster)
//
// ok is false when the name could not be resolved without guessing.
func (r *InstructorResolver) Resolve(ctx context.Context, name, email string, departmentID *int64, allowAbbreviatedInsert bool) (id int64, ok bool, err error) {
	name = DisplayName(name)
	if name == "" {
		return 0, false, nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	key := resolveKey(name, email, departmentID, allowAbbreviatedInsert)

	r.mu.Lock()
	if cached, hit := r.cache[key]; hit {
		r.mu.Unlock()
		return cached, true, nil
	}
	r.mu.Unlock()

	v, err, _ := r.flight.Do(key, func() (interface{}, error) {
		res, err := r.resolveUncached(ctx, name, email, departmentID, allowAbbreviatedInsert)
		if err != nil {
			return nil, err
		}
		if res.ok {
			r.mu.Lock()
			r.cache[key] = res.id
			r.mu.Unlock()
		}
		return res, nil
	})
	if err != nil {
		return 0, false, err
	}

	res := v.(resolution)
	return res.id, res.ok, nil
}

func (r *InstructorResolver) resolveUncached(ctx context.Context, name, email string, departmentID *int64, allowAbbreviatedInsert bool) (resolution, error) {
	candidates, err := r.directory.FindByNormalizedNameOrEmail(ctx, NormalizeName(name), email)
	if err != nil {
		return resolution{}, err
	}
	if len(candidates) > 0 {
		winner := pickExactWinner(candidates, email)
		if err := r.maybeBackfillEmail(ctx, winner, email); err != nil {
			return resolution{}, err
		}
		return resolution{id: winner.ID, ok: true}, nil
	}

	if IsAbbreviatedName(name) {
		winner, err := r.expandAbbreviated(ctx, name, departmentID)
		if err != nil {
			return resolution{}, err
		}
		if winner != nil {
			if err := r.maybeBackfillEmail(ctx, winner, email); err != nil {
				return resolution{}, err
			}
			r.log.Debug().
				Str("input", name).
				Str("resolved", winner.Name).
				Int64("id", winner.ID).
				Msg("expanded abbreviated instructor name")
			return resolution{id: winner.ID, ok: true}, nil
		}
		if !allowAbbreviatedInsert {
			return resolution{}, nil
		}
	}

	return r.insert(ctx, name, email, departmentID)
}

func (r *InstructorResolver) insert(ctx context.Context, name, email string, departmentID *int64) (resolution, error) {
	instructor := &models.Instructor{
		Name:         name,
		DepartmentID: departmentID,
	}
	if email != "" {
		instructor.Email = &email
	}

	if err := r.directory.Create(ctx, instructor); err != nil {
		// Another process may have inserted the same identity between our
		// lookup and the create; re-read instead of failing the unit.
		if dberrors.IsDuplicateKeyError(err) {
			candidates, findErr := r.directory.FindByNormalizedNameOrEmail(ctx, NormalizeName(name), email)
			if findErr == nil && len(candidates) > 0 {
				winner := pickExactWinner(candidates, email)
				return resolution{id: winner.ID, ok: true}, nil
			}
		}
		return resolution{}, err
	}

	r.log.Debug().Str("name", name).Int64("id", instructor.ID).Msg("created instructor")
	return resolution{id: instructor.ID, ok: true}, nil
}

// expandAbbreviated narrows the surname candidates down to the one full name
// an abbreviated input must refer to. It returns nil when zero or more than
// one candidate survives; the resolver never guesses between peers.
func (r *InstructorResolver) expandAbbreviated(ctx context.Context, name string, departmentID *int64) (*models.Instructor, error) {
	surname := SurnameOf(name)
	if surname == "" {
		return nil, nil
	}

	candidates, err := r.directory.SearchBySurname(ctx, surname)
	if err != nil {
		return nil, err
	}

	narrowed := narrowByInitial(name, candidates)
	if len(narrowed) > 1 && departmentID != nil {
		narrowed, err = r.narrowByDepartment(ctx, narrowed, *departmentID)
		if err != nil {
			return nil, err
		}
	}
	narrowed = preferFullNames(narrowed)

	if len(narrowed) != 1 {
		if len(narrowed) > 1 {
			r.log.Debug().
				Err(apperrors.ErrAmbiguousMatch).
				Str("input", name).
				Int("candidates", len(narrowed)).
				Msg("abbreviated name still ambiguous after narrowing")
		}
		return nil, nil
	}
	return narrowed[0], nil
}

// narrowByDepartment keeps candidates with teaching evidence in the
// department; when none have any, it falls back to the merely-assigned
// department, and failing that returns the input unchanged. A candidate
// teaching outside their assigned department is flagged but not reassigned.
func (r *InstructorResolver) narrowByDepartment(ctx context.Context, candidates []*models.Instructor, departmentID int64) ([]*models.Instructor, error) {
	var taught, assigned []*models.Instructor
	for _, c := range candidates {
		ok, err := r.directory.HasTaughtInDepartment(ctx, c.ID, departmentID)
		if err != nil {
			return nil, err
		}
		if ok {
			taught = append(taught, c)
			if c.DepartmentID != nil && *c.DepartmentID != departmentID {
				r.log.Warn().
					Err(apperrors.ErrConflictingDepartments).
					Int64("instructor_id", c.ID).
					Str("name", c.Name).
					Int64("assigned_department_id", *c.DepartmentID).
					Int64("teaching_department_id", departmentID).
					Msg("instructor teaches outside assigned department")
			}
		}
		if c.DepartmentID != nil && *c.DepartmentID == departmentID {
			assigned = append(assigned, c)
		}
	}
	if len(taught) > 0 {
		return taught, nil
	}
	if len(assigned) > 0 {
		return assigned, nil
	}
	return candidates, nil
}

func (r *InstructorResolver) maybeBackfillEmail(ctx context.Context, instructor *models.Instructor, email string) error {
	if email == "" || instructor.Email != nil {
		return nil
	}
	if err := r.directory.BackfillEmail(ctx, instructor.ID, email); err != nil {
		return err
	}
	instructor.Email = &email
	return nil
}

// pickExactWinner applies the exact-match tie-break: email-exact first, then
// any candidate carrying an email, then the lowest id. Candidates arrive
// ordered by id.
func pickExactWinner(candidates []*models.Instructor, email string) *models.Instructor {
	if email != "" {
		for _, c := range candidates {
			if c.Email != nil && strings.EqualFold(*c.Email, email) {
				return c
			}
		}
	}
	for _, c := range candidates {
		if c.Email != nil {
			return c
		}
	}
	return candidates[0]
}

// narrowByInitial keeps candidates whose surname matches exactly and whose
// first initial agrees with the abbreviated input.
func narrowByInitial(name string, candidates []*models.Instructor) []*models.Instructor {
	surname := SurnameOf(name)
	initial := FirstInitial(name)

	var narrowed []*models.Instructor
	for _, c := range candidates {
		if !strings.EqualFold(SurnameOf(c.Name), surname) {
			continue
		}
		if initial != 0 && FirstInitial(c.Name) != initial {
			continue
		}
		narrowed = append(narrowed, c)
	}
	return narrowed
}

// preferFullNames drops abbreviated candidate rows when at least one full
// name is present, so "A. Kays" does not resolve to another "A. Kays" row
// while "Amanda Kays" exists.
func preferFullNames(candidates []*models.Instructor) []*models.Instructor {
	var full []*models.Instructor
	for _, c := range candidates {
		if !IsAbbreviatedName(c.Name) {
			full = append(full, c)
		}
	}
	if len(full) > 0 {
		return full
	}
	return candidates
}

func resolveKey(name, email string, departmentID *int64, allowAbbreviatedInsert bool) string {
	dept := int64(0)
	if departmentID != nil {
		dept = *departmentID
	}
	return fmt.Sprintf("%s|%s|%d|%t", NormalizeName(name), email, dept, allowAbbreviatedInsert)
}
