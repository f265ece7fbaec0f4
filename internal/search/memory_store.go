package search

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// MemoryStore is an in-process vectorstores.VectorStore that ranks by cosine
// similarity. It is not safe for concurrent use.
type MemoryStore struct {
	embedder embeddings.Embedder
	docs     []schema.Document
	vectors  [][]float32
}

var _ vectorstores.VectorStore = (*MemoryStore)(nil)

func NewMemoryStore(embedder embeddings.Embedder) *MemoryStore {
	return &MemoryStore{embedder: embedder}
}

// Len returns the number of indexed documents.
func (s *MemoryStore) Len() int {
	return len(s.docs)
}

func (s *MemoryStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	opts := s.options(options)

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}
	vectors, err := opts.Embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed documents failed: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, ErrEmbeddingCount
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = strconv.Itoa(len(s.docs))
		s.docs = append(s.docs, doc)
		s.vectors = append(s.vectors, vectors[i])
	}
	return ids, nil
}

// SimilaritySearch returns up to numDocuments documents, best first. Scores
// below the ScoreThreshold option are dropped.
func (s *MemoryStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if numDocuments <= 0 || len(s.docs) == 0 {
		return nil, nil
	}
	opts := s.options(options)

	queryVector, err := opts.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query failed: %w", err)
	}

	scored := make([]schema.Document, 0, len(s.docs))
	for i, doc := range s.docs {
		score := cosineSimilarity(queryVector, s.vectors[i])
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		doc.Score = score
		scored = append(scored, doc)
	}

	// Stable so equal scores keep insertion order.
	slices.SortStableFunc(scored, func(a, b schema.Document) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if len(scored) > numDocuments {
		scored = scored[:numDocuments]
	}
	return scored, nil
}

func (s *MemoryStore) options(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	if opts.Embedder == nil {
		opts.Embedder = s.embedder
	}
	return opts
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
