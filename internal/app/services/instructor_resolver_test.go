package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/yigit/courseatlas/internal/app/models"
)

// fakeDirectory is an in-memory InstructorDirectory.
type fakeDirectory struct {
	mu          sync.Mutex
	nextID      int64
	instructors []*models.Instructor
	taught      map[int64]map[int64]bool // instructor id -> department ids with sections
	creates     int
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{taught: make(map[int64]map[int64]bool)}
}

func (d *fakeDirectory) add(name string, email *string, departmentID *int64) *models.Instructor {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	i := &models.Instructor{ID: d.nextID, Name: name, Email: email, DepartmentID: departmentID}
	d.instructors = append(d.instructors, i)
	return i
}

func (d *fakeDirectory) teaches(instructorID, departmentID int64) {
	if d.taught[instructorID] == nil {
		d.taught[instructorID] = make(map[int64]bool)
	}
	d.taught[instructorID][departmentID] = true
}

func (d *fakeDirectory) Create(ctx context.Context, instructor *models.Instructor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.creates++
	d.nextID++
	instructor.ID = d.nextID
	d.instructors = append(d.instructors, instructor)
	return nil
}

func (d *fakeDirectory) FindByNormalizedNameOrEmail(ctx context.Context, normName, email string) ([]*models.Instructor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*models.Instructor
	for _, i := range d.instructors {
		if NormalizeName(i.Name) == normName {
			out = append(out, i)
			continue
		}
		if email != "" && i.Email != nil && strings.EqualFold(*i.Email, email) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (d *fakeDirectory) SearchBySurname(ctx context.Context, surname string) ([]*models.Instructor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*models.Instructor
	for _, i := range d.instructors {
		if strings.Contains(strings.ToLower(i.Name), strings.ToLower(surname)) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (d *fakeDirectory) BackfillEmail(ctx context.Context, id int64, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, i := range d.instructors {
		if i.ID == id && i.Email == nil {
			e := email
			i.Email = &e
		}
	}
	return nil
}

func (d *fakeDirectory) HasTaughtInDepartment(ctx context.Context, instructorID, departmentID int64) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.taught[instructorID][departmentID], nil
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestResolveExactMatch(t *testing.T) {
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, nil)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "  amanda   KAYS ", "", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != amanda.ID {
		t.Errorf("Resolve = (%d, %t), want (%d, true)", id, ok, amanda.ID)
	}
	if dir.creates != 0 {
		t.Errorf("creates = %d, want 0", dir.creates)
	}
}

func TestResolveEmailOutranksNameTie(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("Amanda Kays", nil, nil)
	withEmail := dir.add("Amanda Kays", strPtr("akays@univ.edu"), nil)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "Amanda Kays", "AKAYS@univ.edu", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != withEmail.ID {
		t.Errorf("Resolve = (%d, %t), want email-exact candidate %d", id, ok, withEmail.ID)
	}
}

func TestResolveBackfillsEmail(t *testing.T) {
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, nil)
	resolver := NewInstructorResolver(dir)

	if _, _, err := resolver.Resolve(context.Background(), "Amanda Kays", "akays@univ.edu", nil, true); err != nil {
		t.Fatal(err)
	}
	if amanda.Email == nil || *amanda.Email != "akays@univ.edu" {
		t.Errorf("email = %v, want backfilled", amanda.Email)
	}
}

func TestResolveExpandsAbbreviatedName(t *testing.T) {
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, nil)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "A. Kays", "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != amanda.ID {
		t.Errorf("Resolve = (%d, %t), want (%d, true)", id, ok, amanda.ID)
	}
	if dir.creates != 0 {
		t.Errorf("creates = %d, want 0 (no duplicate row for abbreviation)", dir.creates)
	}
}

func TestResolveAbbreviatedAmbiguityAbstains(t *testing.T) {
	dir := newFakeDirectory()
	dir.add("Amanda Kays", nil, nil)
	dir.add("Aaron Kays", nil, nil)
	resolver := NewInstructorResolver(dir)

	_, ok, err := resolver.Resolve(context.Background(), "A. Kays", "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("Resolve guessed between two matching candidates")
	}
	if dir.creates != 0 {
		t.Errorf("creates = %d, want 0", dir.creates)
	}
}

func TestResolveTeachingEvidenceBreaksAbbreviatedTie(t *testing.T) {
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, nil)
	dir.add("Aaron Kays", nil, int64Ptr(7)) // assigned but never taught there
	dir.teaches(amanda.ID, 7)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "A. Kays", "", int64Ptr(7), false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != amanda.ID {
		t.Errorf("Resolve = (%d, %t), want teaching-evidence candidate %d", id, ok, amanda.ID)
	}
}

func TestResolveKeepsAssignedDepartmentForMovers(t *testing.T) {
	// Amanda is assigned to department 3 but the teaching evidence is in 7.
	// The mover is flagged in the log, never reassigned, and still wins the
	// abbreviated tie over the candidate with no evidence at all.
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, int64Ptr(3))
	dir.add("Aaron Kays", nil, nil)
	dir.teaches(amanda.ID, 7)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "A. Kays", "", int64Ptr(7), false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != amanda.ID {
		t.Errorf("Resolve = (%d, %t), want (%d, true)", id, ok, amanda.ID)
	}
	if amanda.DepartmentID == nil || *amanda.DepartmentID != 3 {
		t.Errorf("assigned department = %v, want untouched 3", amanda.DepartmentID)
	}
}

func TestResolveCreatesOnceAndCaches(t *testing.T) {
	dir := newFakeDirectory()
	resolver := NewInstructorResolver(dir)

	id1, ok, err := resolver.Resolve(context.Background(), "Jorge Ortiz", "jortiz@univ.edu", int64Ptr(3), true)
	if err != nil || !ok {
		t.Fatalf("first Resolve = (%d, %t, %v)", id1, ok, err)
	}
	id2, ok, err := resolver.Resolve(context.Background(), "Jorge Ortiz", "jortiz@univ.edu", int64Ptr(3), true)
	if err != nil || !ok {
		t.Fatalf("second Resolve = (%d, %t, %v)", id2, ok, err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}
	if dir.creates != 1 {
		t.Errorf("creates = %d, want 1", dir.creates)
	}
}

func TestResolveAbbreviatedInsertGate(t *testing.T) {
	dir := newFakeDirectory()
	resolver := NewInstructorResolver(dir)

	_, ok, err := resolver.Resolve(context.Background(), "Q. Zhou", "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if ok || dir.creates != 0 {
		t.Errorf("abbreviated insert happened with the gate closed: ok=%t creates=%d", ok, dir.creates)
	}

	id, ok, err := resolver.Resolve(context.Background(), "Q. Zhou", "qzhou@univ.edu", nil, true)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id == 0 {
		t.Errorf("Resolve with open gate = (%d, %t), want a new row", id, ok)
	}
	if dir.creates != 1 {
		t.Errorf("creates = %d, want 1", dir.creates)
	}
}

func TestResolveNormalizesCommaNames(t *testing.T) {
	dir := newFakeDirectory()
	amanda := dir.add("Amanda Kays", nil, nil)
	resolver := NewInstructorResolver(dir)

	id, ok, err := resolver.Resolve(context.Background(), "Kays, Amanda", "", nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || id != amanda.ID {
		t.Errorf("Resolve = (%d, %t), want (%d, true)", id, ok, amanda.ID)
	}
}
