// Package splitter partitions an ordered batch of documents into
// topic-coherent groups using similarity between encoded representations.
//
// Two strategies are provided:
//
//   - [Consecutive] — compares each document against its predecessor;
//     a boundary opens where pairwise similarity drops below the threshold.
//   - [Cumulative] — compares each candidate document against the joined
//     text of the current group so far; more stable for drifting topics,
//     at the cost of one encoder call per comparison.
//
// Both draw output documents verbatim from the input and preserve input
// ordering across groups.
package splitter

import "context"

// Split is one group of documents judged to belong to a single topic.
type Split struct {
	// Docs are the documents in this group, in input order.
	Docs []string `json:"docs" yaml:"docs"`

	// Triggered reports whether this group was closed by a similarity
	// drop (as opposed to being the trailing remainder).
	Triggered bool `json:"is_triggered,omitempty" yaml:"is_triggered,omitempty"`

	// Score is the similarity score that closed this group. Only
	// meaningful when Triggered is true.
	Score float64 `json:"triggered_score,omitempty" yaml:"triggered_score,omitempty"`
}

// Splitter partitions an ordered document batch into topic groups.
type Splitter interface {
	// Split clusters docs into ordered groups. Encoder failures
	// propagate unchanged.
	Split(ctx context.Context, docs []string) ([]Split, error)
}
