// Package fixture holds the bundled seed thoughts shared by the static
// service and database seeding.
package fixture

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/technigo/happy-thoughts-api/api"
)

//go:embed data.json
var data []byte

// A Thought is a fixture record as it appears in data.json.
type Thought struct {
	ID        string    `json:"_id"`
	Message   string    `json:"message"`
	Hearts    int       `json:"hearts"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int       `json:"__v"`
}

// APIThought converts the record for insertion into a DB.
func (t Thought) APIThought() api.Thought {
	return api.Thought{
		ID:        t.ID,
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
	}
}

// Load decodes the bundled fixture. Records keep their file order.
func Load() ([]Thought, error) {
	var thoughts []Thought
	if err := json.Unmarshal(data, &thoughts); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return thoughts, nil
}

// Seeds returns the fixture as thoughts ready to be inserted into a DB.
func Seeds() ([]api.Thought, error) {
	thoughts, err := Load()
	if err != nil {
		return nil, err
	}
	out := make([]api.Thought, len(thoughts))
	for i, t := range thoughts {
		out[i] = t.APIThought()
	}
	return out, nil
}
