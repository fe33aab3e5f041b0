package catalog

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/courseatlas/internal/pkg/logger"
)

// SearchClient is the slice of Client the collector needs.
type SearchClient interface {
	Search(ctx context.Context, srcdb string, criteria []Criterion, offset int) (*SearchResponse, error)
}

// Collector drives paginated searches to exhaustion with dedup guarding
// against servers that ignore the offset parameter.
type Collector struct {
	client   SearchClient
	maxPages int
	log      zerolog.Logger
}

// NewCollector builds a Collector. maxPages is a hard ceiling against
// infinite pagination; 0 means the default of 200.
func NewCollector(client SearchClient, maxPages int) *Collector {
	if maxPages <= 0 {
		maxPages = 200
	}
	return &Collector{
		client:   client,
		maxPages: maxPages,
		log:      logger.WithComponent("collector"),
	}
}

// Collect fetches every page for the term and criteria and returns the
// unique rows in first-seen order.
//
// Termination conditions, in order of precedence: an empty page, a page
// contributing zero new natural keys (offset-ignoring server), the declared
// total reached, or the hard page ceiling. The ceiling and a declared total
// short of the collected uniques are logged, not fatal.
func (c *Collector) Collect(ctx context.Context, srcdb string, criteria []Criterion) ([]SearchRow, error) {
	var (
		rows   []SearchRow
		seen   = make(map[string]struct{})
		offset int
	)

	for page := 1; ; page++ {
		if page > c.maxPages {
			c.log.Warn().
				Str("srcdb", srcdb).
				Int("maxPages", c.maxPages).
				Int("collected", len(rows)).
				Msg("page ceiling reached, stopping pagination")
			break
		}

		resp, err := c.client.Search(ctx, srcdb, criteria, offset)
		if err != nil {
			return nil, fmt.Errorf("collecting page %d: %w", page, err)
		}

		if len(resp.Results) == 0 {
			break
		}

		fresh := 0
		for _, row := range resp.Results {
			key := row.NaturalKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			rows = append(rows, row)
			fresh++
		}

		if fresh == 0 {
			// Every record on this page was already seen: the server is not
			// honoring the offset. Halt even if it claims more remain.
			c.log.Warn().
				Str("srcdb", srcdb).
				Int("page", page).
				Int("offset", offset).
				Msg("non-advancing page, halting pagination")
			break
		}

		offset += len(resp.Results)

		if resp.Count > 0 && len(rows) >= resp.Count {
			if len(rows) > resp.Count {
				c.log.Warn().
					Str("srcdb", srcdb).
					Int("declared", resp.Count).
					Int("collected", len(rows)).
					Msg("source declared fewer records than collected")
			}
			break
		}
	}

	return rows, nil
}
