package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"articlesearch/internal/ai/mock"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	docs := []schema.Document{
		{PageContent: "cats purr and chase mice"},
		{PageContent: "the stock market fell sharply"},
		{PageContent: "cats sleep most of the day"},
	}

	t.Run("ranks by similarity", func(t *testing.T) {
		store := NewMemoryStore(mock.NewMockEmbedder())
		ids, err := store.AddDocuments(ctx, docs)
		require.NoError(t, err)
		assert.Equal(t, []string{"0", "1", "2"}, ids)
		assert.Equal(t, 3, store.Len())

		got, err := store.SimilaritySearch(ctx, "stock market", 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "the stock market fell sharply", got[0].PageContent)
		assert.Greater(t, got[0].Score, float32(0))
	})

	t.Run("returns at most numDocuments best first", func(t *testing.T) {
		store := NewMemoryStore(mock.NewMockEmbedder())
		_, err := store.AddDocuments(ctx, docs)
		require.NoError(t, err)

		got, err := store.SimilaritySearch(ctx, "cats", 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		for _, doc := range got {
			assert.Contains(t, doc.PageContent, "cats")
		}
		assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
	})

	t.Run("score threshold drops weak matches", func(t *testing.T) {
		store := NewMemoryStore(mock.NewMockEmbedder())
		_, err := store.AddDocuments(ctx, docs)
		require.NoError(t, err)

		got, err := store.SimilaritySearch(ctx, "stock market", 10, vectorstores.WithScoreThreshold(0.3))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "the stock market fell sharply", got[0].PageContent)
	})

	t.Run("empty store", func(t *testing.T) {
		store := NewMemoryStore(mock.NewMockEmbedder())
		got, err := store.SimilaritySearch(ctx, "anything", 4)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("embedder failure", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedDocumentsFunc = func(context.Context, []string) ([][]float32, error) {
			return nil, errors.New("rate limited")
		}
		store := NewMemoryStore(embedder)
		_, err := store.AddDocuments(ctx, docs)
		assert.Error(t, err)
	})

	t.Run("short embedding batch", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedDocumentsFunc = func(context.Context, []string) ([][]float32, error) {
			return [][]float32{{1}}, nil
		}
		store := NewMemoryStore(embedder)
		_, err := store.AddDocuments(ctx, docs)
		assert.ErrorIs(t, err, ErrEmbeddingCount)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-6)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}
