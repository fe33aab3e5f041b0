package models

import (
	"fmt"
	"strconv"
	"time"
)

// Term codes are four digits: a constant leading 5, the last two digits of
// the calendar year, and a season digit (1 Spring, 6 Summer, 9 Fall).
// Numeric comparison of codes therefore orders terms chronologically.

// Season is the academic season of a term.
type Season int

const (
	SeasonUnknown Season = iota
	SeasonSpring
	SeasonSummer
	SeasonFall
)

func (s Season) String() string {
	switch s {
	case SeasonSpring:
		return "Spring"
	case SeasonSummer:
		return "Summer"
	case SeasonFall:
		return "Fall"
	}
	return "Unknown"
}

// ParseTermCode splits a term code into calendar year and season.
func ParseTermCode(code string) (year int, season Season, ok bool) {
	if len(code) != 4 || code[0] != '5' {
		return 0, SeasonUnknown, false
	}
	yy, err := strconv.Atoi(code[1:3])
	if err != nil {
		return 0, SeasonUnknown, false
	}
	switch code[3] {
	case '1':
		season = SeasonSpring
	case '6':
		season = SeasonSummer
	case '9':
		season = SeasonFall
	default:
		return 0, SeasonUnknown, false
	}
	return 2000 + yy, season, true
}

// TermCode builds the code for a year and season.
func TermCode(year int, season Season) string {
	var digit byte
	switch season {
	case SeasonSpring:
		digit = '1'
	case SeasonSummer:
		digit = '6'
	case SeasonFall:
		digit = '9'
	default:
		return ""
	}
	return fmt.Sprintf("5%02d%c", year%100, digit)
}

// TermRank returns a sortable rank for a term code, or -1 if unparseable.
func TermRank(code string) int {
	if _, _, ok := ParseTermCode(code); !ok {
		return -1
	}
	n, _ := strconv.Atoi(code)
	return n
}

// TermAnchor returns the mid-period anchor date of a term: Mar 15 for
// Spring, Jul 1 for Summer, Oct 15 for Fall.
func TermAnchor(code string) (time.Time, bool) {
	year, season, ok := ParseTermCode(code)
	if !ok {
		return time.Time{}, false
	}
	switch season {
	case SeasonSpring:
		return time.Date(year, time.March, 15, 0, 0, 0, 0, time.UTC), true
	case SeasonSummer:
		return time.Date(year, time.July, 1, 0, 0, 0, 0, time.UTC), true
	default:
		return time.Date(year, time.October, 15, 0, 0, 0, 0, time.UTC), true
	}
}

// PriorTermCode infers the academic term a review posted at the given date
// most plausibly refers to. Reviews post after the term ends: Jan-Apr points
// at the previous Fall, May-Aug at that year's Spring, and Sep-Dec still at
// that year's Spring because Fall has not ended yet.
func PriorTermCode(postedAt time.Time) string {
	month := postedAt.Month()
	year := postedAt.Year()
	switch {
	case month <= time.April:
		return TermCode(year-1, SeasonFall)
	default:
		return TermCode(year, SeasonSpring)
	}
}
