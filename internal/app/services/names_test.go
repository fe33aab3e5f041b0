package services

import "testing"

func TestDisplayName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Amanda Kays", "Amanda Kays"},
		{"Kays, Amanda", "Amanda Kays"},
		{"  Kays ,  Amanda  ", "Amanda Kays"},
		{"Kays,", "Kays"},
		{"  spaced   out  ", "spaced out"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.in); got != tt.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsAbbreviatedName(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"A. Kays", true},
		{"A Kays", true},
		{"A.B. Kays", true},
		{"Amanda Kays", false},
		{"Amanda B. Kays", false},
		{"Al Green", false},
		{"Kays, A.", true},
		{"Kays", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAbbreviatedName(tt.in); got != tt.want {
			t.Errorf("IsAbbreviatedName(%q) = %t, want %t", tt.in, got, tt.want)
		}
	}
}

func TestSplitFirstLast(t *testing.T) {
	tests := []struct {
		in    string
		first string
		last  string
	}{
		{"Amanda Kays", "Amanda", "Kays"},
		{"Amanda B. Kays", "Amanda B.", "Kays"},
		{"Kays, Amanda", "Amanda", "Kays"},
		{"Kays", "", "Kays"},
		{"", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitFirstLast(tt.in)
		if first != tt.first || last != tt.last {
			t.Errorf("SplitFirstLast(%q) = (%q, %q), want (%q, %q)", tt.in, first, last, tt.first, tt.last)
		}
	}
}

func TestSurnameAndInitial(t *testing.T) {
	if got := SurnameOf("Kays, Amanda"); got != "Kays" {
		t.Errorf("SurnameOf = %q, want Kays", got)
	}
	if got := FirstInitial("Amanda Kays"); got != 'a' {
		t.Errorf("FirstInitial = %q, want 'a'", got)
	}
	if got := FirstInitial(""); got != 0 {
		t.Errorf("FirstInitial(empty) = %q, want 0", got)
	}
}
