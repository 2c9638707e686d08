package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/technigo/happy-thoughts-api/api"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"
)

// IDTag is the validator tag matching the ids this store hands out.
const IDTag = "mongodb"

const (
	defaultDatabase = "happy-thoughts"
	collectionName  = "thoughts"

	codeNamespaceExists    = 48
	codeDocumentValidation = 121
)

// Mongo provides storage in MongoDB.
type Mongo struct {
	cli  *mongo.Client
	coll *mongo.Collection
}

// Connect creates a client for uri. The driver connects lazily, so an
// unreachable server is only reported by Ping or by later operations. The
// database is taken from the uri path and defaults to happy-thoughts.
func Connect(ctx context.Context, uri string) (*Mongo, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse uri: %w", err)
	}
	dbName := cs.Database
	if dbName == "" {
		dbName = defaultDatabase
	}

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Mongo{
		cli:  cli,
		coll: cli.Database(dbName).Collection(collectionName),
	}, nil
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	if err := m.cli.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("ping mongo: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.cli.Disconnect(ctx)
}

// EnsureSchema creates the thoughts collection with a $jsonSchema validator
// requiring a non-empty message. An existing collection is left untouched.
func (m *Mongo) EnsureSchema(ctx context.Context) error {
	schema := bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"message", "hearts", "createdAt"},
			"properties": bson.M{
				"message":   bson.M{"bsonType": "string", "minLength": 1},
				"hearts":    bson.M{"bsonType": bson.A{"int", "long"}},
				"createdAt": bson.M{"bsonType": "date"},
			},
		},
	}

	err := m.coll.Database().CreateCollection(ctx, m.coll.Name(), options.CreateCollection().SetValidator(schema))
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

// ListThoughts returns the thoughts matching f, newest first.
func (m *Mongo) ListThoughts(ctx context.Context, f api.Filter) ([]api.Thought, error) {
	filter := bson.M{}
	if f.Hearts != nil {
		filter["hearts"] = *f.Hearts
	}

	cur, err := m.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find: %w", err)
	}
	var docs []thought
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]api.Thought, len(docs))
	for i, d := range docs {
		out[i] = d.APIThought()
	}
	return out, nil
}

// GetThought returns the thought with the given id.
func (m *Mongo) GetThought(ctx context.Context, id string) (api.Thought, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return api.Thought{}, fmt.Errorf("%w: %v", api.ErrNotFound, err)
	}

	var doc thought
	err = m.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return api.Thought{}, api.ErrNotFound
	}
	if err != nil {
		return api.Thought{}, fmt.Errorf("find one: %w", err)
	}
	return doc.APIThought(), nil
}

// InsertThought inserts t and returns it with its generated id. A document
// rejected by the collection validator yields api.ErrInvalidThought.
func (m *Mongo) InsertThought(ctx context.Context, t api.Thought) (api.Thought, error) {
	t.ID = ""
	doc := newThought(t)
	if _, err := m.coll.InsertOne(ctx, doc); err != nil {
		if isValidationError(err) {
			return api.Thought{}, fmt.Errorf("%w: %v", api.ErrInvalidThought, err)
		}
		return api.Thought{}, fmt.Errorf("insert: %w", err)
	}
	return doc.APIThought(), nil
}

// DeleteThought removes the thought with the given id.
func (m *Mongo) DeleteThought(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %v", api.ErrNotFound, err)
	}

	err = m.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return api.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("find one and delete: %w", err)
	}
	return nil
}

// Reset deletes every thought and inserts thoughts, keeping their ids when
// they are valid ObjectIDs.
func (m *Mongo) Reset(ctx context.Context, thoughts []api.Thought) error {
	if _, err := m.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("delete many: %w", err)
	}
	if len(thoughts) == 0 {
		return nil
	}

	docs := make([]any, len(thoughts))
	for i, t := range thoughts {
		docs[i] = newThought(t)
	}
	if _, err := m.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert many: %w", err)
	}
	return nil
}

func isValidationError(err error) bool {
	var we mongo.WriteException
	if !errors.As(err, &we) {
		return false
	}
	for _, e := range we.WriteErrors {
		if e.Code == codeDocumentValidation {
			return true
		}
	}
	return false
}
