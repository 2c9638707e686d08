package mongo

import (
	"time"

	"github.com/technigo/happy-thoughts-api/api"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// A thought represents a thought document in the collection.
type thought struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Message   string             `bson:"message"`
	Hearts    int                `bson:"hearts"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// newThought builds a document from t. It keeps t.ID when it is a valid
// ObjectID and generates a fresh one otherwise.
func newThought(t api.Thought) thought {
	id, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		id = primitive.NewObjectID()
	}
	createdAt := t.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return thought{
		ID:        id,
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: createdAt.UTC().Truncate(time.Millisecond),
	}
}

func (t thought) APIThought() api.Thought {
	return api.Thought{
		ID:        t.ID.Hex(),
		Message:   t.Message,
		Hearts:    t.Hearts,
		CreatedAt: t.CreatedAt,
	}
}
