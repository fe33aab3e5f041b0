package catalog

import (
	"context"
	"testing"
)

// pagedClient serves a fixed script of pages regardless of offset until the
// script runs out, then empty pages.
type pagedClient struct {
	pages []SearchResponse
	calls int
}

func (c *pagedClient) Search(ctx context.Context, srcdb string, criteria []Criterion, offset int) (*SearchResponse, error) {
	c.calls++
	if len(c.pages) == 0 {
		return &SearchResponse{}, nil
	}
	page := c.pages[0]
	c.pages = c.pages[1:]
	return &page, nil
}

func row(crn string) SearchRow {
	return SearchRow{CRN: crn, Code: "CS 1710", Number: "1"}
}

func TestCollectDrainsAllPages(t *testing.T) {
	client := &pagedClient{pages: []SearchResponse{
		{Count: 3, Results: []SearchRow{row("100"), row("101")}},
		{Count: 3, Results: []SearchRow{row("102")}},
	}}

	rows, err := NewCollector(client, 0).Collect(context.Background(), "5259", nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("collected %d rows, want 3", len(rows))
	}
	if rows[2].CRN != "102" {
		t.Errorf("rows out of order: last CRN = %s", rows[2].CRN)
	}
	if client.calls != 2 {
		t.Errorf("client saw %d calls, want 2", client.calls)
	}
}

func TestCollectHaltsOnNonAdvancingPage(t *testing.T) {
	// Server ignores the offset and keeps returning the same page while
	// claiming many more records exist.
	same := SearchResponse{Count: 100, Results: []SearchRow{row("100"), row("101")}}
	client := &pagedClient{pages: []SearchResponse{same, same, same, same}}

	rows, err := NewCollector(client, 0).Collect(context.Background(), "5259", nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("collected %d rows, want 2", len(rows))
	}
	if client.calls != 2 {
		t.Errorf("client saw %d calls, want 2 (halt on first repeated page)", client.calls)
	}
}

func TestCollectStopsOnEmptyPage(t *testing.T) {
	client := &pagedClient{pages: []SearchResponse{
		{Count: 0, Results: []SearchRow{row("100")}},
	}}

	rows, err := NewCollector(client, 0).Collect(context.Background(), "5259", nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("collected %d rows, want 1", len(rows))
	}
}

func TestCollectRespectsPageCeiling(t *testing.T) {
	pages := make([]SearchResponse, 10)
	for i := range pages {
		pages[i] = SearchResponse{Count: 1000, Results: []SearchRow{row(string(rune('a' + i)))}}
	}
	client := &pagedClient{pages: pages}

	rows, err := NewCollector(client, 3).Collect(context.Background(), "5259", nil)
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("collected %d rows, want 3", len(rows))
	}
}

func TestNaturalKeyFallsBackToCodeAndNumber(t *testing.T) {
	withCRN := SearchRow{CRN: "123", Code: "CS 1710", Number: "1"}
	if got := withCRN.NaturalKey(); got != "123" {
		t.Errorf("NaturalKey = %q, want %q", got, "123")
	}
	noCRN := SearchRow{Code: "CS 1710", Number: "2"}
	if got := noCRN.NaturalKey(); got != "CS 1710|2" {
		t.Errorf("NaturalKey = %q, want %q", got, "CS 1710|2")
	}
}
