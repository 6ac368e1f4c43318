package splitter

import (
	"context"
	"fmt"
	"strings"

	"github.com/dwmorris11/semantic-router/pkg/encoder"
)

// Cumulative implements [Splitter] by comparing each candidate document
// against the joined text of the current group so far. This tracks
// gradual topic drift better than pairwise comparison but costs one
// encoder call per boundary check.
type Cumulative struct {
	enc       encoder.Encoder
	threshold float64
}

var _ Splitter = (*Cumulative)(nil)

// NewCumulative creates a cumulative-similarity splitter.
// A threshold <= 0 falls back to [DefaultThreshold].
func NewCumulative(enc encoder.Encoder, threshold float64) *Cumulative {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Cumulative{enc: enc, threshold: threshold}
}

// Split clusters docs by cumulative similarity. The current group's
// documents are joined with newlines and encoded as one text; a new
// group opens after doc i when cos(group, doc[i+1]) < threshold.
func (s *Cumulative) Split(ctx context.Context, docs []string) ([]Split, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	if len(docs) == 1 {
		return []Split{{Docs: append([]string(nil), docs...)}}, nil
	}

	var splits []Split
	start := 0
	for i := 0; i+1 < len(docs); i++ {
		group := strings.Join(docs[start:i+1], "\n")
		vecs, err := s.enc.Encode(ctx, []string{group, docs[i+1]})
		if err != nil {
			return nil, fmt.Errorf("splitter: encode group at %d: %w", i, err)
		}

		score := cosine(vecs[0], vecs[1])
		if score < s.threshold {
			splits = append(splits, Split{
				Docs:      append([]string(nil), docs[start:i+1]...),
				Triggered: true,
				Score:     score,
			})
			start = i + 1
		}
	}
	splits = append(splits, Split{Docs: append([]string(nil), docs[start:]...)})
	return splits, nil
}
