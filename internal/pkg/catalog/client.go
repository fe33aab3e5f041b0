package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/courseatlas/internal/pkg/fetch"
)

// Client calls the catalog search and detail endpoints.
type Client struct {
	fetcher    *fetch.Client
	searchURL  string
	detailURL  string
}

// Options configures a catalog Client.
type Options struct {
	BaseURL    string
	SearchPath string
	DetailPath string
	Fetch      fetch.Options
}

// NewClient builds a catalog client on top of the resilient fetcher.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("catalog base URL is required")
	}
	if opts.SearchPath == "" {
		opts.SearchPath = "/api/search"
	}
	if opts.DetailPath == "" {
		opts.DetailPath = "/api/details"
	}
	if opts.Fetch.Name == "" {
		opts.Fetch.Name = "catalog"
	}

	return &Client{
		fetcher:   fetch.New(opts.Fetch),
		searchURL: base + opts.SearchPath,
		detailURL: base + opts.DetailPath,
	}, nil
}

// Search fetches one page of sections for a source term id and criteria.
func (c *Client) Search(ctx context.Context, srcdb string, criteria []Criterion, offset int) (*SearchResponse, error) {
	req := searchRequest{
		Other:    searchOther{Srcdb: srcdb},
		Criteria: criteria,
		Offset:   offset,
	}

	var resp SearchResponse
	if err := c.fetcher.PostJSON(ctx, c.searchURL, req, &resp); err != nil {
		return nil, fmt.Errorf("catalog search (srcdb=%s offset=%d): %w", srcdb, offset, err)
	}
	return &resp, nil
}

// Detail fetches the rich record for one section.
func (c *Client) Detail(ctx context.Context, group, key, srcdb string) (*SectionDetail, error) {
	req := detailRequest{Group: group, Key: key, Srcdb: srcdb}

	var resp SectionDetail
	if err := c.fetcher.PostJSON(ctx, c.detailURL, req, &resp); err != nil {
		return nil, fmt.Errorf("catalog detail (key=%s srcdb=%s): %w", key, srcdb, err)
	}
	return &resp, nil
}
