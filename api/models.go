package api

import (
	"errors"
	"time"
)

// A Thought represents a persisted thought.
type Thought struct {
	ID        string    `json:"_id"`
	Message   string    `json:"message"`
	Hearts    int       `json:"hearts"`
	CreatedAt time.Time `json:"createdAt"`
}

// A Filter restricts the thoughts returned by a listing. A nil Hearts matches
// every thought.
type Filter struct {
	Hearts *int
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Thought) bool {
	return f.Hearts == nil || t.Hearts == *f.Hearts
}

var (
	// ErrNotFound is returned by a DB when no thought has the requested id.
	ErrNotFound = errors.New("thought not found")

	// ErrInvalidThought is returned by a DB when the store's own schema
	// rejects a thought.
	ErrInvalidThought = errors.New("invalid thought")
)
