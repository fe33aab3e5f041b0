package htmltext

import "testing"

func TestParseRosterMailtoBlocks(t *testing.T) {
	raw := `<div class="instructor">
		<a href="mailto:akays@univ.edu">Amanda Kays</a> Primary Instructor<br>
		<a href="mailto:jortiz@univ.edu?subject=course">Jorge Ortiz</a> Teaching Assistant<br>
	</div>`

	entries := ParseRoster(raw)
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(entries))
	}

	if entries[0].Name != "Amanda Kays" || entries[0].Email != "akays@univ.edu" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[0].Role != "Primary Instructor" {
		t.Errorf("first role = %q, want %q", entries[0].Role, "Primary Instructor")
	}
	if entries[1].Name != "Jorge Ortiz" || entries[1].Role != "Teaching Assistant" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestParseRosterDedupesByEmail(t *testing.T) {
	raw := `<a href="mailto:akays@univ.edu">Amanda Kays</a> Instructor
		<a href="mailto:akays@univ.edu">A. Kays</a> Instructor`

	entries := ParseRoster(raw)
	if len(entries) != 1 {
		t.Fatalf("parsed %d entries, want 1", len(entries))
	}
	if entries[0].Name != "Amanda Kays" {
		t.Errorf("kept name = %q, want first spelling", entries[0].Name)
	}
}

func TestParseRosterPlainFallback(t *testing.T) {
	entries := ParseRoster("Kays, Amanda (Primary Instructor); Ortiz, Jorge")
	if len(entries) != 2 {
		t.Fatalf("parsed %d entries, want 2", len(entries))
	}
	if entries[0].Name != "Kays, Amanda" || entries[0].Role != "Primary Instructor" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Name != "Ortiz, Jorge" || entries[1].Role != "" {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestParseRosterEmpty(t *testing.T) {
	if entries := ParseRoster(""); len(entries) != 0 {
		t.Errorf("parsed %d entries from empty input", len(entries))
	}
}
