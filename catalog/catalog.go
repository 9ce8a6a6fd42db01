// Package catalog provides optional, purely additive enrichment of
// ingested tracks (tags, source URL, free-form notes) backed by MongoDB.
// A track with no catalog entry is not an error anywhere in the system;
// catalog is a side store, never the engine's source of truth.
package catalog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"soundtrace/engine"
)

// Entry is the enrichment record for a single track.
type Entry struct {
	TrackID   engine.TrackID `bson:"trackId"`
	Tags      []string       `bson:"tags,omitempty"`
	SourceURL string         `bson:"sourceUrl,omitempty"`
	Notes     string         `bson:"notes,omitempty"`
}

// Catalog wraps a MongoDB collection of Entry documents.
type Catalog struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect dials uri and returns a Catalog backed by the "entries"
// collection in the "soundtrace" database. Connection failures here are
// meant to be tolerated by the caller: catalog enrichment is optional.
func Connect(ctx context.Context, uri string) (*Catalog, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database("soundtrace").Collection("entries")
	return &Catalog{client: client, coll: coll}, nil
}

// Close disconnects the underlying client.
func (c *Catalog) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// Upsert writes entry, replacing any existing document for the same
// TrackID.
func (c *Catalog) Upsert(ctx context.Context, entry Entry) error {
	filter := bson.M{"trackId": entry.TrackID}
	update := bson.M{"$set": entry}
	opts := options.Update().SetUpsert(true)

	if _, err := c.coll.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert catalog entry for track %d: %w", entry.TrackID, err)
	}
	return nil
}

// Get returns the enrichment entry for id, or (Entry{}, false) if none
// has been recorded.
func (c *Catalog) Get(ctx context.Context, id engine.TrackID) (Entry, bool, error) {
	var entry Entry
	err := c.coll.FindOne(ctx, bson.M{"trackId": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to load catalog entry for track %d: %w", id, err)
	}
	return entry, true, nil
}

// Delete removes the enrichment entry for id, if any.
func (c *Catalog) Delete(ctx context.Context, id engine.TrackID) error {
	if _, err := c.coll.DeleteOne(ctx, bson.M{"trackId": id}); err != nil {
		return fmt.Errorf("failed to delete catalog entry for track %d: %w", id, err)
	}
	return nil
}
