// Package htmltext turns the catalog's HTML-ish free-text fields into typed
// values. Everything here is a pure function so extraction can be tested
// without a database or network.
package htmltext

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// DecodeEntities replaces HTML entities with their literal characters.
func DecodeEntities(s string) string {
	return html.UnescapeString(s)
}

// StripTags removes markup and returns the concatenated text content.
// Text inside <script> and <style> elements is dropped.
func StripTags(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return DecodeEntities(s)
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			} else {
				// Block-ish tags become separators so adjacent cells don't fuse.
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				if skip > 0 {
					skip--
				}
			} else {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// CollapseWhitespace trims the string and folds internal whitespace runs
// into single spaces.
func CollapseWhitespace(s string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Clean is the standard normalization chain: entity decode, tag strip,
// whitespace collapse.
func Clean(s string) string {
	return CollapseWhitespace(StripTags(s))
}
