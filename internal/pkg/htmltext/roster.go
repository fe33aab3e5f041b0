package htmltext

import (
	"regexp"
	"strings"
)

// RosterEntry is one instructor parsed from a section's instructor blob.
type RosterEntry struct {
	Name  string
	Email string
	Role  string
}

var (
	// mailtoAnchorRe matches the name anchor the catalog emits per
	// instructor. Each anchor starts a block that runs to the next anchor.
	mailtoAnchorRe = regexp.MustCompile(`(?is)<a[^>]*href\s*=\s*"mailto:([^"?]+)[^"]*"[^>]*>(.*?)</a>`)

	// plainEntryRe is the fallback for payloads with no mailto anchors:
	// "Lastname, Firstname (Role)" items separated by semicolons.
	plainEntryRe = regexp.MustCompile(`([^();]+?)\s*(?:\(([^)]*)\))?\s*(?:;|$)`)

	roleTrimRe = regexp.MustCompile(`^[\s,;:–-]+|[\s,;:–-]+$`)
)

// ParseRoster extracts an ordered, deduplicated instructor roster from the
// catalog's repeated name/role/email blocks. A block's extent is bounded by
// the next name anchor; its role text is whatever plain text remains after
// the matched name and email are stripped out.
func ParseRoster(raw string) []RosterEntry {
	matches := mailtoAnchorRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return parsePlainRoster(raw)
	}

	var entries []RosterEntry
	seen := make(map[string]struct{})
	for i, m := range matches {
		email := strings.TrimSpace(raw[m[2]:m[3]])
		name := Clean(raw[m[4]:m[5]])
		if name == "" {
			continue
		}

		blockEnd := len(raw)
		if i+1 < len(matches) {
			blockEnd = matches[i+1][0]
		}
		block := Clean(raw[m[0]:blockEnd])

		role := block
		role = strings.Replace(role, name, "", 1)
		if email != "" {
			role = strings.ReplaceAll(role, email, "")
		}
		role = roleTrimRe.ReplaceAllString(role, "")

		key := dedupKey(name, email)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, RosterEntry{Name: name, Email: email, Role: role})
	}
	return entries
}

func parsePlainRoster(raw string) []RosterEntry {
	text := Clean(raw)
	if text == "" {
		return nil
	}

	var entries []RosterEntry
	seen := make(map[string]struct{})
	for _, m := range plainEntryRe.FindAllStringSubmatch(text, -1) {
		name := strings.TrimSpace(m[1])
		if name == "" {
			continue
		}
		role := strings.TrimSpace(m[2])
		key := dedupKey(name, "")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, RosterEntry{Name: name, Role: role})
	}
	return entries
}

// dedupKey prefers email identity; two blocks with the same address are the
// same person regardless of how the name was spelled.
func dedupKey(name, email string) string {
	if email != "" {
		return "e:" + strings.ToLower(email)
	}
	return "n:" + strings.ToLower(CollapseWhitespace(name))
}
