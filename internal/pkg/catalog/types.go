// Package catalog is the read-only client for the institutional course
// catalog search and detail API. Responses carry HTML-ish free-text fields
// that internal/pkg/htmltext turns into typed values.
package catalog

import "strings"

// Criterion is one search filter, e.g. {Field: "subject", Value: "CS"}.
type Criterion struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// searchRequest is the wire shape of the search endpoint.
type searchRequest struct {
	Other    searchOther `json:"other"`
	Criteria []Criterion `json:"criteria"`
	Offset   int         `json:"offset"`
}

type searchOther struct {
	Srcdb string `json:"srcdb"`
}

// SearchResponse is one page of search results.
type SearchResponse struct {
	Count   int         `json:"count"`
	Results []SearchRow `json:"results"`
}

// SearchRow is the thin per-section record the search endpoint returns.
type SearchRow struct {
	Key         string `json:"key"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	CRN         string `json:"crn"`
	Number      string `json:"no"`
	Srcdb       string `json:"srcdb"`
	Instructor  string `json:"instr"`
	Meets       string `json:"meets"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Status      string `json:"stat"`
	IsCancelled string `json:"isCancelled"`
}

// NaturalKey identifies a row across pages. The catalog occasionally repeats
// pages under an advancing offset; dedup by this key detects that.
func (r SearchRow) NaturalKey() string {
	if r.CRN != "" {
		return r.CRN
	}
	return r.Code + "|" + r.Number
}

// Subject returns the subject prefix of the course code ("CS 170" -> "CS").
func (r SearchRow) Subject() string {
	if i := strings.IndexByte(r.Code, ' '); i > 0 {
		return r.Code[:i]
	}
	return r.Code
}

// detailRequest is the wire shape of the details endpoint.
type detailRequest struct {
	Group string `json:"group"`
	Key   string `json:"key"`
	Srcdb string `json:"srcdb"`
}

// SectionDetail is the rich per-section record from the details endpoint.
// The *_html fields are raw markup.
type SectionDetail struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	CRN        string `json:"crn"`
	Srcdb      string `json:"srcdb"`
	Number     string `json:"no"`
	Key        string `json:"key"`
	Components string `json:"components"`

	Description  string `json:"description"`
	ClassNotes   string `json:"clssnotes"`
	Attributes   string `json:"attributes"`
	GradeMode    string `json:"grademode"`
	Credits      string `json:"hours"`
	Campus       string `json:"campus"`
	Session      string `json:"session"`
	InstMethod   string `json:"instmethod"`
	MeetingTimes string `json:"meeting_html"`

	SeatsHTML        string `json:"seats"`
	RestrictionsHTML string `json:"registration_restrictions"`
	InstructorHTML   string `json:"instructordetail_html"`
	DatesHTML        string `json:"dates_html"`
	StatusText       string `json:"enrollment_status"`
}
