package models

import (
	"testing"
	"time"
)

func TestTermCodeRoundTrip(t *testing.T) {
	tests := []struct {
		year   int
		season Season
		code   string
	}{
		{2025, SeasonSpring, "5251"},
		{2025, SeasonSummer, "5256"},
		{2024, SeasonFall, "5249"},
		{2005, SeasonSpring, "5051"},
	}

	for _, tt := range tests {
		if got := TermCode(tt.year, tt.season); got != tt.code {
			t.Errorf("TermCode(%d, %v) = %q, want %q", tt.year, tt.season, got, tt.code)
		}
		year, season, ok := ParseTermCode(tt.code)
		if !ok || year != tt.year || season != tt.season {
			t.Errorf("ParseTermCode(%q) = (%d, %v, %t), want (%d, %v, true)",
				tt.code, year, season, ok, tt.year, tt.season)
		}
	}
}

func TestParseTermCodeRejectsGarbage(t *testing.T) {
	for _, code := range []string{"", "525", "52511", "6251", "5253", "52x1"} {
		if _, _, ok := ParseTermCode(code); ok {
			t.Errorf("ParseTermCode(%q) accepted", code)
		}
	}
}

func TestTermRankOrdersChronologically(t *testing.T) {
	codes := []string{"5249", "5251", "5256", "5259"}
	for i := 1; i < len(codes); i++ {
		if TermRank(codes[i-1]) >= TermRank(codes[i]) {
			t.Errorf("TermRank(%s) >= TermRank(%s)", codes[i-1], codes[i])
		}
	}
	if TermRank("garbage") != -1 {
		t.Errorf("TermRank(garbage) = %d, want -1", TermRank("garbage"))
	}
}

func TestPriorTermCode(t *testing.T) {
	tests := []struct {
		posted string
		want   string
	}{
		// Jan-Apr reviews look back at the previous Fall.
		{"2025-03-10", "5249"},
		{"2025-01-02", "5249"},
		{"2025-04-30", "5249"},
		// May onward, that year's Spring has ended.
		{"2025-05-15", "5251"},
		{"2025-09-01", "5251"},
		{"2025-12-31", "5251"},
	}

	for _, tt := range tests {
		posted, err := time.Parse("2006-01-02", tt.posted)
		if err != nil {
			t.Fatal(err)
		}
		if got := PriorTermCode(posted); got != tt.want {
			t.Errorf("PriorTermCode(%s) = %q, want %q", tt.posted, got, tt.want)
		}
	}
}

func TestTermAnchor(t *testing.T) {
	anchor, ok := TermAnchor("5251")
	if !ok {
		t.Fatal("TermAnchor rejected a valid code")
	}
	if anchor.Month() != time.March || anchor.Day() != 15 || anchor.Year() != 2025 {
		t.Errorf("spring anchor = %v", anchor)
	}
	if _, ok := TermAnchor("nope"); ok {
		t.Error("TermAnchor accepted garbage")
	}
}

func TestGradePoints(t *testing.T) {
	if points, ok := GradePoints("A-"); !ok || points != 3.7 {
		t.Errorf("GradePoints(A-) = (%v, %t)", points, ok)
	}
	if _, ok := GradePoints("Not sure yet"); ok {
		t.Error("non-letter grade mapped to points")
	}
}
