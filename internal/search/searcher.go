package search

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"

	"articlesearch/internal/model"
)

// DefaultTopK is how many re-ranked articles a search returns unless
// configured otherwise.
const DefaultTopK = 4

// DefaultChunkSize is the longest text, in runes, sent to the embedder in
// one piece. It stays well under the 8191 token input limit of OpenAI
// embedding models.
const DefaultChunkSize = 8000

const (
	metadataIndex = "candidate_index"
	chunkOverlap  = 200
)

// ArticleFinder is the substring filter over stored articles.
type ArticleFinder interface {
	SearchByContent(ctx context.Context, query string) ([]model.Article, error)
}

// Result is one re-ranked article.
type Result struct {
	Article model.Article `json:"article"`
	Score   float32       `json:"score"`
}

// Searcher runs the substring filter followed by the similarity re-rank.
type Searcher struct {
	finder         ArticleFinder
	embedder       embeddings.Embedder
	topK           int
	chunkSize      int
	scoreThreshold float32
	logger         *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithTopK sets how many results are kept. Non-positive values keep the default.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k > 0 {
			s.topK = k
		}
		return nil
	}
}

// WithChunkSize sets the longest text embedded in one piece. Non-positive
// values keep the default.
func WithChunkSize(runes int) Option {
	return func(s *Searcher) error {
		if runes > 0 {
			s.chunkSize = runes
		}
		return nil
	}
}

// WithScoreThreshold drops results whose similarity is below threshold.
func WithScoreThreshold(threshold float32) Option {
	return func(s *Searcher) error {
		s.scoreThreshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

func NewSearcher(finder ArticleFinder, embedder embeddings.Embedder, opts ...Option) (*Searcher, error) {
	if finder == nil {
		return nil, ErrFinderRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		finder:    finder,
		embedder:  embedder,
		topK:      DefaultTopK,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default().With("component", "searcher"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Search returns the articles containing query, re-ranked by similarity to
// it. No candidates means an empty result and a nil error.
func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	candidates, err := s.finder.SearchByContent(ctx, query)
	if err != nil {
		s.logger.Error("fetch candidate articles failed", "query", query, "err", err)
		return nil, err
	}
	if len(candidates) == 0 {
		s.logger.Debug("no candidate articles", "query", query)
		return nil, nil
	}

	docs, err := s.chunkDocuments(candidates)
	if err != nil {
		s.logger.Error("split candidate articles failed", "err", err)
		return nil, err
	}

	store := NewMemoryStore(s.embedder)
	if _, err := store.AddDocuments(ctx, docs); err != nil {
		s.logger.Error("index candidate articles failed", "count", len(docs), "err", err)
		return nil, err
	}

	var searchOpts []vectorstores.Option
	if s.scoreThreshold > 0 {
		searchOpts = append(searchOpts, vectorstores.WithScoreThreshold(s.scoreThreshold))
	}
	// Every chunk is ranked so each article can be scored by its best chunk.
	ranked, err := store.SimilaritySearch(ctx, query, len(docs), searchOpts...)
	if err != nil {
		s.logger.Error("similarity search failed", "query", query, "err", err)
		return nil, err
	}

	seen := make(map[int]struct{}, len(candidates))
	results := make([]Result, 0, min(s.topK, len(candidates)))
	for _, doc := range ranked {
		if len(results) == s.topK {
			break
		}
		idx, ok := doc.Metadata[metadataIndex].(int)
		if !ok || idx < 0 || idx >= len(candidates) {
			continue
		}
		if _, dup := seen[idx]; dup {
			continue
		}
		seen[idx] = struct{}{}
		results = append(results, Result{Article: candidates[idx], Score: doc.Score})
	}

	s.logger.Debug("search complete",
		"query", query,
		"candidates", len(candidates),
		"results", len(results))
	return results, nil
}

// chunkDocuments turns candidates into documents small enough to embed.
// Short articles stay whole; longer ones are split with overlap.
func (s *Searcher) chunkDocuments(candidates []model.Article) ([]schema.Document, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(min(chunkOverlap, s.chunkSize/4)),
	)

	docs := make([]schema.Document, 0, len(candidates))
	for i, article := range candidates {
		pieces := []string{article.PageContent}
		if utf8.RuneCountInString(article.PageContent) > s.chunkSize {
			split, err := splitter.SplitText(article.PageContent)
			if err != nil {
				return nil, fmt.Errorf("split article %d failed: %w", article.ID, err)
			}
			if len(split) > 0 {
				pieces = split
			}
		}
		for _, piece := range pieces {
			docs = append(docs, schema.Document{
				PageContent: piece,
				Metadata: map[string]any{
					metadataIndex: i,
					"id":          article.ID,
					"source":      article.Source,
				},
			})
		}
	}
	return docs, nil
}
