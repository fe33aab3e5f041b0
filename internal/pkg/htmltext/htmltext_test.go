package htmltext

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "Hello world", "Hello world"},
		{"tags stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"entities decoded", "Fish &amp; Chips &ndash; daily", "Fish & Chips – daily"},
		{"whitespace collapsed", "  a\n\t b   c ", "a b c"},
		{"script dropped", `<script>alert("x")</script>visible`, "visible"},
		{"style dropped", "<style>.a{color:red}</style>visible", "visible"},
		{"space between blocks", "<div>one</div><div>two</div>", "one two"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
