package htmltext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SeatInfo holds the labeled counts extracted from a seats blob.
type SeatInfo struct {
	EnrollmentCap *int
	SeatsAvail    *int
	WaitlistCount *int
	WaitlistCap   *int
}

var (
	enrollmentCapRe = regexp.MustCompile(`(?i)(?:maximum enrollment|enrollment cap(?:acity)?|class capacity)\s*:?\s*(-?\d+)`)
	seatsAvailRe    = regexp.MustCompile(`(?i)seats? avail(?:able)?\s*:?\s*(-?\d+)`)
	waitlistTotRe   = regexp.MustCompile(`(?i)wait\s?list total\s*:?\s*(-?\d+)`)
	waitlistCapRe   = regexp.MustCompile(`(?i)wait\s?list cap(?:acity)?\s*:?\s*(-?\d+)`)
)

// ExtractSeats pulls enrollment capacity, available seats and waitlist
// counts out of a seats HTML fragment. Labels the source does not emit are
// left nil.
func ExtractSeats(raw string) SeatInfo {
	text := Clean(raw)
	return SeatInfo{
		EnrollmentCap: matchInt(enrollmentCapRe, text),
		SeatsAvail:    matchInt(seatsAvailRe, text),
		WaitlistCount: matchInt(waitlistTotRe, text),
		WaitlistCap:   matchInt(waitlistCapRe, text),
	}
}

func matchInt(re *regexp.Regexp, text string) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}

var dateRangeRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:through|thru|to|–|-)\s*(\d{4}-\d{2}-\d{2})`)

// ExtractDateRange finds an ISO start/end date pair in the text.
func ExtractDateRange(raw string) (start, end *time.Time) {
	m := dateRangeRe.FindStringSubmatch(Clean(raw))
	if m == nil {
		return nil, nil
	}
	s, err := time.Parse("2006-01-02", m[1])
	if err != nil {
		return nil, nil
	}
	e, err := time.Parse("2006-01-02", m[2])
	if err != nil {
		return nil, nil
	}
	return &s, &e
}

// EnrollmentStatusLetter maps free-text status to a single letter:
// W (waitlisted), O (open), C (closed). Unknown statuses return "".
// Waitlist wins over open/closed because statuses like "Open - Waitlist"
// mean seats are only reachable through the waitlist.
func EnrollmentStatusLetter(raw string) string {
	text := strings.ToLower(Clean(raw))
	switch {
	case strings.Contains(text, "wait"):
		return "W"
	case strings.Contains(text, "open"):
		return "O"
	case strings.Contains(text, "clos"):
		return "C"
	}
	return ""
}

// gerVocabulary maps normalized trigger phrases to GER codes. Order matters:
// codes are emitted in vocabulary order so output is deterministic.
var gerVocabulary = []struct {
	phrase string
	code   string
}{
	{"first-year seminar", "FS"},
	{"first year seminar", "FS"},
	{"first-year writing", "FW"},
	{"first year writing", "FW"},
	{"continuing writing", "CW"},
	{"continued writing", "CW"},
	{"quantitative reasoning", "QR"},
	{"math and quantitative reasoning", "QR"},
	{"natural science", "SNT"},
	{"science, nature, technology", "SNT"},
	{"history, society, cultures", "HSC"},
	{"humanities, arts, performance", "HAP"},
	{"humanities and arts", "HAP"},
	{"intercultural communication", "IC"},
	{"race and ethnicity", "RE"},
	{"physical education", "PED"},
	{"personal health", "PED"},
}

// ExtractGERCodes scans normalized text for the fixed GER phrase vocabulary
// and returns the matched codes, deduplicated, in vocabulary order.
func ExtractGERCodes(raw string) []string {
	text := strings.ToLower(Clean(raw))
	if text == "" {
		return nil
	}
	var codes []string
	seen := make(map[string]struct{})
	for _, entry := range gerVocabulary {
		if !strings.Contains(text, entry.phrase) {
			continue
		}
		if _, dup := seen[entry.code]; dup {
			continue
		}
		seen[entry.code] = struct{}{}
		codes = append(codes, entry.code)
	}
	return codes
}
