package htmltext

import (
	"testing"
	"time"
)

func TestExtractSeats(t *testing.T) {
	raw := `<div><b>Maximum Enrollment:</b> 30<br>Seats Avail: 4<br>
		Waitlist Total: 2 / Waitlist Cap: 10</div>`

	seats := ExtractSeats(raw)
	if seats.EnrollmentCap == nil || *seats.EnrollmentCap != 30 {
		t.Errorf("EnrollmentCap = %v, want 30", seats.EnrollmentCap)
	}
	if seats.SeatsAvail == nil || *seats.SeatsAvail != 4 {
		t.Errorf("SeatsAvail = %v, want 4", seats.SeatsAvail)
	}
	if seats.WaitlistCount == nil || *seats.WaitlistCount != 2 {
		t.Errorf("WaitlistCount = %v, want 2", seats.WaitlistCount)
	}
	if seats.WaitlistCap == nil || *seats.WaitlistCap != 10 {
		t.Errorf("WaitlistCap = %v, want 10", seats.WaitlistCap)
	}
}

func TestExtractSeatsMissingLabels(t *testing.T) {
	seats := ExtractSeats("Enrollment Cap: 25")
	if seats.EnrollmentCap == nil || *seats.EnrollmentCap != 25 {
		t.Errorf("EnrollmentCap = %v, want 25", seats.EnrollmentCap)
	}
	if seats.SeatsAvail != nil || seats.WaitlistCount != nil || seats.WaitlistCap != nil {
		t.Errorf("absent labels should stay nil: %+v", seats)
	}
}

func TestExtractDateRange(t *testing.T) {
	start, end := ExtractDateRange("<b>Meets:</b> 2025-08-27 through 2025-12-09")
	if start == nil || end == nil {
		t.Fatal("expected both dates")
	}
	if !start.Equal(time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2025, 12, 9, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}

	if s, e := ExtractDateRange("no dates here"); s != nil || e != nil {
		t.Error("expected nils for text without a range")
	}
}

func TestEnrollmentStatusLetter(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Open", "O"},
		{"Closed", "C"},
		{"Waitlisted", "W"},
		{"Open - Waitlist", "W"},
		{"CLOSED", "C"},
		{"unknown wording", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EnrollmentStatusLetter(tt.in); got != tt.want {
			t.Errorf("EnrollmentStatusLetter(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtractGERCodes(t *testing.T) {
	raw := "Satisfies: Continuing Writing; also counts toward Quantitative Reasoning and continuing writing"
	got := ExtractGERCodes(raw)
	want := []string{"CW", "QR"}
	if len(got) != len(want) {
		t.Fatalf("codes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("codes = %v, want %v", got, want)
		}
	}

	if got := ExtractGERCodes("nothing relevant"); got != nil {
		t.Errorf("codes = %v, want nil", got)
	}
}
