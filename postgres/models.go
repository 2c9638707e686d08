package postgres

import (
	"time"

	"github.com/technigo/happy-thoughts-api/api"
)

// A thought represents a thought in the database.
type thought struct {
	ID        string    `bun:",pk,nullzero,type:uuid,default:gen_random_uuid()"`
	Message   string    `bun:"message,notnull"`
	Hearts    int       `bun:",notnull,default:0"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:now()"`
}

func newThought(t api.Thought) *thought {
	return &thought{
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
	}
}

func (t thought) APIThought() api.Thought {
	return api.Thought{
		ID:        t.ID,
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
	}
}
