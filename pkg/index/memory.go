package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-memory [Index] using brute-force cosine similarity.
// Intended for testing and small-scale use.
//
// It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
	dim     int
}

var _ Index = (*Memory)(nil)

// NewMemory creates an empty in-memory index.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Add(_ context.Context, vectors [][]float32, routes, utterances []string) error {
	if len(vectors) != len(routes) || len(routes) != len(utterances) {
		return fmt.Errorf("index: mismatched lengths: %d vectors, %d routes, %d utterances",
			len(vectors), len(routes), len(utterances))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, vec := range vectors {
		cp := make([]float32, len(vec))
		copy(cp, vec)
		rec := Record{
			ID:        NewRecordID(),
			Values:    cp,
			Route:     routes[i],
			Utterance: utterances[i],
		}
		m.records[rec.ID] = rec
		if m.dim == 0 {
			m.dim = len(cp)
		}
	}
	return nil
}

func (m *Memory) Query(_ context.Context, vector []float32, topK int) ([]float64, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.records) == 0 || topK <= 0 {
		return nil, nil, nil
	}

	type scored struct {
		score float64
		route string
	}
	results := make([]scored, 0, len(m.records))
	for _, rec := range m.records {
		results = append(results, scored{
			score: cosineSimilarity(vector, rec.Values),
			route: rec.Route,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > topK {
		results = results[:topK]
	}

	scores := make([]float64, len(results))
	routes := make([]string, len(results))
	for i, r := range results {
		scores[i] = r.score
		routes[i] = r.route
	}
	return scores, routes, nil
}

func (m *Memory) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

func (m *Memory) DeleteAll(context.Context) error {
	m.mu.Lock()
	m.records = make(map[string]Record)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Describe(context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{Type: "memory", Dimensions: m.dim, Vectors: len(m.records)}, nil
}

// Records returns all stored records, ordered by ID. Useful for
// inspection and for discovering the IDs that Add generated.
func (m *Memory) Records() []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records
}

func (m *Memory) Close() error {
	return nil
}
