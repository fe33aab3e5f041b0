// Package aggregator is the read-only client for the crowd-sourced review
// aggregator's GraphQL API: school lookup, cursor-paginated teacher listing,
// and cursor-paginated per-teacher ratings, all in edge/node shape.
package aggregator

import (
	json "github.com/goccy/go-json"
)

// Teacher is one professor as the aggregator knows them.
type Teacher struct {
	ID         string
	FirstName  string
	LastName   string
	Department string
	NumRatings int
}

// Rating is one review of a teacher. Class is an unstructured free-text
// label ("CS170", "cs 170", "intro to computing"); mapping it to a local
// course is the importer's job.
type Rating struct {
	Class      string
	Comment    string
	Date       string
	Grade      string
	Quality    float64
	Difficulty float64
	Tags       []string
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type schoolSearchData struct {
	NewSearch struct {
		Schools struct {
			Edges []struct {
				Node struct {
					ID   string `json:"id"`
					Name string `json:"name"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"schools"`
	} `json:"newSearch"`
}

type teacherSearchData struct {
	NewSearch struct {
		Teachers struct {
			Edges []struct {
				Cursor string `json:"cursor"`
				Node   struct {
					ID         string `json:"id"`
					FirstName  string `json:"firstName"`
					LastName   string `json:"lastName"`
					Department string `json:"department"`
					NumRatings int    `json:"numRatings"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo pageInfo `json:"pageInfo"`
		} `json:"teachers"`
	} `json:"newSearch"`
}

type ratingsData struct {
	Node struct {
		Ratings struct {
			Edges []struct {
				Node struct {
					Class            string  `json:"class"`
					Comment          string  `json:"comment"`
					Date             string  `json:"date"`
					Grade            string  `json:"grade"`
					ClarityRating    float64 `json:"clarityRating"`
					DifficultyRating float64 `json:"difficultyRating"`
					RatingTags       string  `json:"ratingTags"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo pageInfo `json:"pageInfo"`
		} `json:"ratings"`
	} `json:"node"`
}
