package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const treesCollection = "trees"

// MongoStore implements Store on MongoDB.
type MongoStore struct {
	client *mongo.Client
	trees  *mongo.Collection
}

// NewMongoStore connects to Mongo and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		trees:  client.Database(database).Collection(treesCollection),
	}, nil
}

// Put inserts or replaces a tree by ID. The stored created_at survives
// replacement; updated_at always advances.
func (s *MongoStore) Put(ctx context.Context, t Tree) error {
	opts := options.Update().SetUpsert(true)
	if _, err := s.trees.UpdateOne(ctx, bson.M{"_id": t.ID}, putUpdate(t, time.Now().UTC()), opts); err != nil {
		return fmt.Errorf("put tree %s: %w", t.ID, err)
	}
	return nil
}

// putUpdate builds the upsert document for Put. created_at is written only
// on insert, so replacing a tree keeps its original creation time - the
// same semantics MemoryStore.Put implements in process.
func putUpdate(t Tree, now time.Time) bson.M {
	created := t.CreatedAt
	if created.IsZero() {
		created = now
	}
	return bson.M{
		"$set": bson.M{
			"name":       t.Name,
			"persons":    t.Persons,
			"options":    t.Options,
			"layout":     t.Layout,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": created},
	}
}

// Get returns the tree with the given ID, or ErrNotFound.
func (s *MongoStore) Get(ctx context.Context, id string) (Tree, error) {
	var t Tree
	err := s.trees.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Tree{}, ErrNotFound
	}
	if err != nil {
		return Tree{}, fmt.Errorf("get tree %s: %w", id, err)
	}
	return t, nil
}

// List returns all stored trees, newest first, as summaries: the layout and
// person payloads are projected away to keep listings cheap.
func (s *MongoStore) List(ctx context.Context) ([]Tree, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"persons": 0, "layout": 0})

	cur, err := s.trees.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}
	defer cur.Close(ctx)

	var trees []Tree
	if err := cur.All(ctx, &trees); err != nil {
		return nil, fmt.Errorf("decode trees: %w", err)
	}
	return trees, nil
}

// Delete removes a tree. Deleting a missing ID returns ErrNotFound.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.trees.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete tree %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects the Mongo client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
