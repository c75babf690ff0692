// Package index maintains the in-memory document corpus and answers
// nearest-neighbor queries over its embedding space.
package index

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Embedder maps a text string to a fixed-dimensionality vector. Identical
// input must produce an identical vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// Record is one indexed document. Text, metadata, and vector live in a single
// struct so they cannot fall out of step with each other.
type Record struct {
	Name      string
	Path      string
	Text      string
	Embedding []float32
}

// SearchResult is a Record match with its relevance score. Higher is more
// relevant; the score can be negative for very distant matches.
type SearchResult struct {
	Name  string
	Path  string
	Text  string
	Score float64
}

// Index owns the corpus records. The record snapshot is immutable once
// published; Build assembles a new snapshot offline and swaps it in, so
// concurrent searches never observe a half-built corpus.
type Index struct {
	embedder Embedder
	loader   *CorpusLoader
	log      *zap.Logger

	mu      sync.RWMutex
	records []Record
}

func New(embedder Embedder, loader *CorpusLoader, log *zap.Logger) *Index {
	return &Index{
		embedder: embedder,
		loader:   loader,
		log:      log,
	}
}

// Build loads the corpus, embeds every document, and replaces the current
// snapshot. Calling it again rebuilds from scratch. Files whose extraction
// yielded no text are dropped here rather than indexed as empty records.
func (ix *Index) Build(ctx context.Context) error {
	docs := ix.loader.Load(ctx)
	if err := ctx.Err(); err != nil {
		// Load stops early on cancellation; never publish a partial corpus.
		return fmt.Errorf("load corpus interrupted: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		if doc.Text == "" {
			ix.log.Warn("skipping document with no extractable text", zap.String("name", doc.Name))
			continue
		}
		emb, err := ix.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return fmt.Errorf("embed document %q failed: %w", doc.Name, err)
		}
		if len(emb) != ix.embedder.Dimension() {
			return fmt.Errorf("embedding for %q has dimension %d, want %d", doc.Name, len(emb), ix.embedder.Dimension())
		}
		records = append(records, Record{
			Name:      doc.Name,
			Path:      doc.Path,
			Text:      doc.Text,
			Embedding: emb,
		})
	}

	ix.mu.Lock()
	ix.records = records
	ix.mu.Unlock()

	ix.log.Info("document index built", zap.Int("documents", len(records)))
	return nil
}

// Size returns the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

// Search encodes the query and returns the topK nearest documents ordered by
// non-increasing score, where score = 1 - squared L2 distance. Ties keep
// insertion order. An empty index yields an empty result without embedding.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	ix.mu.RLock()
	records := ix.records
	ix.mu.RUnlock()

	if len(records) == 0 || topK <= 0 {
		return nil, nil
	}

	queryEmb, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	results := make([]SearchResult, len(records))
	for i := range records {
		results[i] = SearchResult{
			Name:  records[i].Name,
			Path:  records[i].Path,
			Text:  records[i].Text,
			Score: 1 - squaredL2(queryEmb, records[i].Embedding),
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if topK > len(results) {
		topK = len(results)
	}
	return results[:topK], nil
}

func squaredL2(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
