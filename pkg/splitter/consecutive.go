package splitter

import (
	"context"
	"fmt"

	"github.com/dwmorris11/semantic-router/pkg/encoder"
)

// DefaultThreshold is the similarity threshold used when none is given.
const DefaultThreshold = 0.5

// Consecutive implements [Splitter] by comparing each document against
// its immediate predecessor. The whole batch is encoded in one call.
type Consecutive struct {
	enc       encoder.Encoder
	threshold float64
}

var _ Splitter = (*Consecutive)(nil)

// NewConsecutive creates a consecutive-similarity splitter.
// A threshold <= 0 falls back to [DefaultThreshold].
func NewConsecutive(enc encoder.Encoder, threshold float64) *Consecutive {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Consecutive{enc: enc, threshold: threshold}
}

// Split clusters docs by pairwise-consecutive similarity. A new group
// opens before doc i when cos(doc[i-1], doc[i]) < threshold.
func (s *Consecutive) Split(ctx context.Context, docs []string) ([]Split, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []Split{{Docs: append([]string(nil), docs...)}}, nil
	}

	vecs, err := s.enc.Encode(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("splitter: encode %d docs: %w", len(docs), err)
	}

	var splits []Split
	start := 0
	for i := 1; i < len(docs); i++ {
		score := cosine(vecs[i-1], vecs[i])
		if score < s.threshold {
			splits = append(splits, Split{
				Docs:      append([]string(nil), docs[start:i]...),
				Triggered: true,
				Score:     score,
			})
			start = i
		}
	}
	splits = append(splits, Split{Docs: append([]string(nil), docs[start:]...)})
	return splits, nil
}
