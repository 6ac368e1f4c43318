package index

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// recordPrefix keys all stored records.
var recordPrefix = []byte("rec:")

// Badger is a persistent local [Index] backed by BadgerDB. Records are
// msgpack-encoded and keyed by record ID; queries scan and score all
// records, which is fine for the hundreds-to-thousands of utterances a
// router typically holds.
type Badger struct {
	db *badger.DB
}

var _ Index = (*Badger)(nil)

// BadgerOptions configures a Badger index.
type BadgerOptions struct {
	// Dir is the directory for BadgerDB data files. Required unless
	// InMemory is set.
	Dir string

	// InMemory runs BadgerDB in memory-only mode (no disk persistence).
	// Useful for testing with a real badger engine.
	InMemory bool

	// Logger sets the badger logger. If nil, a quiet logger that only
	// reports warnings and errors is used.
	Logger badger.Logger
}

// NewBadger opens (or creates) a Badger-backed index.
func NewBadger(opts BadgerOptions) (*Badger, error) {
	if !opts.InMemory && opts.Dir == "" {
		return nil, errors.New("index: BadgerOptions.Dir is required for on-disk mode")
	}
	dbOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		dbOpts = dbOpts.WithInMemory(true)
	}
	if opts.Logger != nil {
		dbOpts = dbOpts.WithLogger(opts.Logger)
	} else {
		dbOpts = dbOpts.WithLogger(quietLogger{})
	}
	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("index: open badger: %w", err)
	}
	return &Badger{db: db}, nil
}

func recordKey(id string) []byte {
	return append(append([]byte(nil), recordPrefix...), id...)
}

func (b *Badger) Add(_ context.Context, vectors [][]float32, routes, utterances []string) error {
	if len(vectors) != len(routes) || len(routes) != len(utterances) {
		return fmt.Errorf("index: mismatched lengths: %d vectors, %d routes, %d utterances",
			len(vectors), len(routes), len(utterances))
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for i, vec := range vectors {
		rec := Record{
			ID:        NewRecordID(),
			Values:    vec,
			Route:     routes[i],
			Utterance: utterances[i],
		}
		data, err := msgpack.Marshal(rec)
		if err != nil {
			return fmt.Errorf("index: encode record: %w", err)
		}
		if err := wb.Set(recordKey(rec.ID), data); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) Query(ctx context.Context, vector []float32, topK int) ([]float64, []string, error) {
	if topK <= 0 {
		return nil, nil, nil
	}

	records, err := b.scan(ctx)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	type scored struct {
		score float64
		route string
	}
	results := make([]scored, 0, len(records))
	for _, rec := range records {
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

func (b *Badger) Delete(_ context.Context, ids []string) error {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, id := range ids {
		if err := wb.Delete(recordKey(id)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

func (b *Badger) DeleteAll(context.Context) error {
	return b.db.DropPrefix(recordPrefix)
}

func (b *Badger) Describe(ctx context.Context) (Stats, error) {
	records, err := b.scan(ctx)
	if err != nil {
		return Stats{}, err
	}
	dim := 0
	if len(records) > 0 {
		dim = len(records[0].Values)
	}
	return Stats{Type: "badger", Dimensions: dim, Vectors: len(records)}, nil
}

// Records returns all stored records, ordered by ID. Useful for
// inspection and for discovering the IDs that Add generated.
func (b *Badger) Records(ctx context.Context) ([]Record, error) {
	return b.scan(ctx)
}

func (b *Badger) Close() error {
	return b.db.Close()
}

func (b *Badger) scan(_ context.Context) ([]Record, error) {
	var records []Record
	err := b.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = recordPrefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(recordPrefix); it.ValidForPrefix(recordPrefix); it.Next() {
			val, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			var rec Record
			if err := msgpack.Unmarshal(val, &rec); err != nil {
				continue // skip malformed entries
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index: scan records: %w", err)
	}
	return records, nil
}

// quietLogger suppresses badger's debug and info output.
type quietLogger struct{}

func (quietLogger) Errorf(f string, v ...interface{})   { log.Printf("[badger] ERROR: "+f, v...) }
func (quietLogger) Warningf(f string, v ...interface{}) { log.Printf("[badger] WARN: "+f, v...) }
func (quietLogger) Infof(string, ...interface{})        {}
func (quietLogger) Debugf(string, ...interface{})       {}
