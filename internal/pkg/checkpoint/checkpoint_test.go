package checkpoint

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileStartsFresh(t *testing.T) {
	s := Load(filepath.Join(t.TempDir(), "nope.json"))
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
	if s.Seen("anything") {
		t.Error("Seen returned true on a fresh store")
	}
}

func TestLoadCorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	if err := os.WriteFile(path, []byte(`{"processedInstructorIds": [truncated`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Load(path)
	if s.Count() != 0 {
		t.Errorf("Count = %d, want 0", s.Count())
	}
}

func TestMarkSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	s := Load(path)
	for _, id := range []string{"t-1", "t-2", "t-3"} {
		if err := s.Mark(id); err != nil {
			t.Fatalf("Mark(%s): %v", id, err)
		}
	}

	reloaded := Load(path)
	if reloaded.Count() != 3 {
		t.Fatalf("reloaded Count = %d, want 3", reloaded.Count())
	}
	if !reloaded.Seen("t-2") {
		t.Error("t-2 lost across reload")
	}
	if reloaded.Seen("t-4") {
		t.Error("t-4 reported seen")
	}
}

func TestMarkIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")

	s := Load(path)
	if err := s.Mark("t-1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Mark("t-1"); err != nil {
		t.Fatal(err)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}
