// Package index provides storage and retrieval of route utterance
// vectors against a vector database.
//
// An [Index] stores embedding vectors together with the route and
// utterance text they were produced from, and answers top-k nearest
// neighbor queries with the matched routes' names and scores.
//
// Implementations:
//
//   - [Memory] — brute-force in-memory index for testing and small sets.
//   - [Badger] — persistent local index backed by BadgerDB.
//   - [Pinecone] — remote index wrapping the Pinecone HTTP API.
package index

import (
	"context"
	"encoding/hex"

	"github.com/google/uuid"
)

// Record is one stored utterance vector.
type Record struct {
	// ID is the unique record identifier, "utt_<hex>" by default.
	ID string `json:"id" msgpack:"id"`

	// Values is the embedding vector.
	Values []float32 `json:"values" msgpack:"values"`

	// Route is the route name this utterance belongs to.
	Route string `json:"route" msgpack:"route"`

	// Utterance is the original text.
	Utterance string `json:"utterance" msgpack:"utterance"`
}

// NewRecordID returns a fresh record identifier.
func NewRecordID() string {
	u := uuid.New()
	return "utt_" + hex.EncodeToString(u[:])
}

// Stats describes an index.
type Stats struct {
	Type       string `json:"type"`
	Dimensions int    `json:"dimensions"`
	Vectors    int    `json:"vectors"`
}

// Index is the interface for vector storage and retrieval.
type Index interface {
	// Add stores one record per (vector, route, utterance) triple.
	// The three slices must have the same length.
	Add(ctx context.Context, vectors [][]float32, routes, utterances []string) error

	// Query returns the scores and route names of the topK nearest
	// records, best match first.
	Query(ctx context.Context, vector []float32, topK int) (scores []float64, routes []string, err error)

	// Delete removes records by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// DeleteAll removes every record.
	DeleteAll(ctx context.Context) error

	// Describe returns index statistics.
	Describe(ctx context.Context) (Stats, error)

	// Close releases resources held by the index.
	Close() error
}
