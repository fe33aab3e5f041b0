package aggregator

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/yigit/courseatlas/internal/pkg/apperrors"
	"github.com/yigit/courseatlas/internal/pkg/fetch"
)

const schoolQuery = `query SchoolSearch($text: String!) {
  newSearch {
    schools(query: {text: $text}) {
      edges { node { id name } }
    }
  }
}`

const teacherQuery = `query TeacherSearch($schoolID: ID!, $count: Int!, $cursor: String) {
  newSearch {
    teachers(query: {schoolID: $schoolID}, first: $count, after: $cursor) {
      edges {
        cursor
        node { id firstName lastName department numRatings }
      }
      pageInfo { hasNextPage endCursor }
    }
  }
}`

const ratingsQuery = `query TeacherRatings($id: ID!, $count: Int!, $cursor: String) {
  node(id: $id) {
    ... on Teacher {
      ratings(first: $count, after: $cursor) {
        edges {
          node { class comment date grade clarityRating difficultyRating ratingTags }
        }
        pageInfo { hasNextPage endCursor }
      }
    }
  }
}`

// Client calls the aggregator's GraphQL endpoint.
type Client struct {
	fetcher  *fetch.Client
	url      string
	pageSize int
}

// Options configures an aggregator Client.
type Options struct {
	GraphQLURL string
	AuthToken  string
	PageSize   int
	Fetch      fetch.Options
}

// NewClient builds an aggregator client on top of the resilient fetcher.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.GraphQLURL) == "" {
		return nil, fmt.Errorf("aggregator GraphQL URL is required")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Fetch.Name == "" {
		opts.Fetch.Name = "aggregator"
	}
	if opts.AuthToken != "" {
		if opts.Fetch.Headers == nil {
			opts.Fetch.Headers = make(map[string]string)
		}
		opts.Fetch.Headers["Authorization"] = "Basic " + opts.AuthToken
	}

	return &Client{
		fetcher:  fetch.New(opts.Fetch),
		url:      strings.TrimSpace(opts.GraphQLURL),
		pageSize: opts.PageSize,
	}, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	var resp graphqlResponse
	req := graphqlRequest{Query: query, Variables: variables}
	if err := c.fetcher.PostJSON(ctx, c.url, req, &resp); err != nil {
		return err
	}
	if len(resp.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", resp.Errors[0].Message)
	}
	if len(resp.Data) == 0 {
		return fmt.Errorf("%w: empty data", apperrors.ErrMalformedPayload)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMalformedPayload, err)
	}
	return nil
}

// SchoolID resolves the configured school name to the aggregator's id.
// An exact case-insensitive name match is preferred; otherwise the first
// result wins.
func (c *Client) SchoolID(ctx context.Context, name string) (string, error) {
	var data schoolSearchData
	if err := c.query(ctx, schoolQuery, map[string]any{"text": name}, &data); err != nil {
		return "", fmt.Errorf("school lookup %q: %w", name, err)
	}

	edges := data.NewSearch.Schools.Edges
	if len(edges) == 0 {
		return "", fmt.Errorf("%q: %w", name, apperrors.ErrSchoolNotFound)
	}
	for _, e := range edges {
		if strings.EqualFold(strings.TrimSpace(e.Node.Name), strings.TrimSpace(name)) {
			return e.Node.ID, nil
		}
	}
	return edges[0].Node.ID, nil
}

// TeacherPage returns one page of the school's teachers plus the cursor for
// the next page.
func (c *Client) TeacherPage(ctx context.Context, schoolID, cursor string) ([]Teacher, string, bool, error) {
	vars := map[string]any{"schoolID": schoolID, "count": c.pageSize}
	if cursor != "" {
		vars["cursor"] = cursor
	}

	var data teacherSearchData
	if err := c.query(ctx, teacherQuery, vars, &data); err != nil {
		return nil, "", false, fmt.Errorf("teacher page (cursor=%q): %w", cursor, err)
	}

	conn := data.NewSearch.Teachers
	teachers := make([]Teacher, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		teachers = append(teachers, Teacher{
			ID:         e.Node.ID,
			FirstName:  strings.TrimSpace(e.Node.FirstName),
			LastName:   strings.TrimSpace(e.Node.LastName),
			Department: strings.TrimSpace(e.Node.Department),
			NumRatings: e.Node.NumRatings,
		})
	}
	return teachers, conn.PageInfo.EndCursor, conn.PageInfo.HasNextPage, nil
}

// RatingsPage returns one page of a teacher's ratings plus the next cursor.
func (c *Client) RatingsPage(ctx context.Context, teacherID, cursor string) ([]Rating, string, bool, error) {
	vars := map[string]any{"id": teacherID, "count": c.pageSize}
	if cursor != "" {
		vars["cursor"] = cursor
	}

	var data ratingsData
	if err := c.query(ctx, ratingsQuery, vars, &data); err != nil {
		return nil, "", false, fmt.Errorf("ratings page (teacher=%s cursor=%q): %w", teacherID, cursor, err)
	}

	conn := data.Node.Ratings
	ratings := make([]Rating, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		ratings = append(ratings, Rating{
			Class:      strings.TrimSpace(e.Node.Class),
			Comment:    e.Node.Comment,
			Date:       e.Node.Date,
			Grade:      strings.TrimSpace(e.Node.Grade),
			Quality:    e.Node.ClarityRating,
			Difficulty: e.Node.DifficultyRating,
			Tags:       splitTags(e.Node.RatingTags),
		})
	}
	return ratings, conn.PageInfo.EndCursor, conn.PageInfo.HasNextPage, nil
}

// AllRatings drains every ratings page for a teacher. Used by the
// disambiguator, which needs the full corpus at once.
func (c *Client) AllRatings(ctx context.Context, teacherID string) ([]Rating, error) {
	var (
		all    []Rating
		cursor string
	)
	for {
		page, next, hasMore, err := c.RatingsPage(ctx, teacherID, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if !hasMore || next == "" || next == cursor {
			break
		}
		cursor = next
	}
	return all, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, "--")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// ParseRatingDate parses the aggregator's timestamp formats.
func ParseRatingDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 +0000 UTC",
		time.RFC3339,
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized rating date %q", s)
}
