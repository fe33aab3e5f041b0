package models

// Department represents an academic department. Created on first sighting of
// a subject code and never deleted.
type Department struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}
