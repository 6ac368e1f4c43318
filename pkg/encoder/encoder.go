// Package encoder provides a text encoding interface and remote API
// implementations.
//
// An Encoder converts a batch of documents into dense vector
// representations suitable for similarity comparison. Splitting
// strategies consume whole batches at once, so the interface is
// batch-first.
//
// # Implementations
//
//   - [OpenAI] — OpenAI text-embedding-3-small / text-embedding-3-large
//   - [Gemini] — Google gemini-embedding-001
//
// # Quick Start
//
//	enc := encoder.NewOpenAI("sk-xxx", encoder.WithModel(encoder.ModelOpenAI3Small))
//	vecs, err := enc.Encode(ctx, []string{"hello", "world"})
package encoder

import (
	"context"
	"errors"
)

// Encoder converts documents into dense float32 vectors, one per document.
type Encoder interface {
	// Encode returns one embedding vector per input document, in input
	// order. Implementations may split large batches into several API
	// calls transparently.
	Encode(ctx context.Context, docs []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}

// Common errors.
var (
	// ErrEmptyInput is returned when the document list is empty.
	ErrEmptyInput = errors.New("encoder: empty input")
)

// float64sToFloat32s narrows an API response vector to float32.
func float64sToFloat32s(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
