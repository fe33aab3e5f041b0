package services

import (
	"strings"
	"unicode"
)

// DisplayName canonicalizes an external name into "First Last" display
// form: "Smith, John" becomes "John Smith", whitespace is collapsed.
func DisplayName(name string) string {
	name = collapseSpaces(name)
	if i := strings.IndexByte(name, ','); i >= 0 {
		last := strings.TrimSpace(name[:i])
		first := strings.TrimSpace(name[i+1:])
		if first == "" {
			return last
		}
		return first + " " + last
	}
	return name
}

// NormalizeName folds a display name for case/whitespace-insensitive
// matching.
func NormalizeName(name string) string {
	return strings.ToLower(DisplayName(name))
}

// IsAbbreviatedName reports whether the first token looks like an initial
// ("A. Kays", "A Kays", "A.B. Kays") rather than a full first name.
func IsAbbreviatedName(name string) bool {
	tokens := strings.Fields(DisplayName(name))
	if len(tokens) < 2 {
		return false
	}
	first := strings.ReplaceAll(tokens[0], ".", "")
	if first == "" {
		return true
	}
	// "AB" style double initials are abbreviations; "Al" is a name.
	if len(first) == 1 {
		return true
	}
	return len(first) <= 3 && strings.Count(tokens[0], ".") >= 2
}

// SurnameOf returns the last token of the display form.
func SurnameOf(name string) string {
	tokens := strings.Fields(DisplayName(name))
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}

// FirstInitial returns the lowercased first letter of the first token, or 0
// when the name is empty.
func FirstInitial(name string) rune {
	for _, r := range DisplayName(name) {
		return unicode.ToLower(r)
	}
	return 0
}

// SplitFirstLast splits a display name into its first and last parts.
// Middle tokens join the first part.
func SplitFirstLast(name string) (first, last string) {
	tokens := strings.Fields(DisplayName(name))
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return "", tokens[0]
	default:
		return strings.Join(tokens[:len(tokens)-1], " "), tokens[len(tokens)-1]
	}
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
