package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlesearch/internal/ai/mock"
	"articlesearch/internal/model"
)

func TestTool(t *testing.T) {
	ctx := context.Background()

	t.Run("metadata", func(t *testing.T) {
		tool := NewTool(nil)
		assert.Equal(t, "semantic_search", tool.Name())
		assert.Contains(t, tool.Description(), "search for articles")
	})

	t.Run("renders results", func(t *testing.T) {
		finder := &substringFinder{articles: sampleArticles()[:1]}
		s, err := NewSearcher(finder, mock.NewMockEmbedder())
		require.NoError(t, err)

		out, err := NewTool(s).Call(ctx, ` "sky"`+"\n")
		require.NoError(t, err)
		assert.Equal(t, "\nSemantic Search Results:\n- The sky is blue (Source: wiki)\n", out)
		assert.Equal(t, []string{"sky"}, finder.queries)
	})

	t.Run("no matches", func(t *testing.T) {
		s, err := NewSearcher(&substringFinder{articles: sampleArticles()}, mock.NewMockEmbedder())
		require.NoError(t, err)

		out, err := NewTool(s).Call(ctx, "ocean floor")
		require.NoError(t, err)
		assert.Equal(t, NoMatchesMessage, out)
	})

	t.Run("storage failure is an error, not an empty answer", func(t *testing.T) {
		s, err := NewSearcher(&substringFinder{err: errors.New("db down")}, mock.NewMockEmbedder())
		require.NoError(t, err)

		_, err = NewTool(s).Call(ctx, "sky")
		assert.Error(t, err)
	})
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{
		{Article: model.Article{PageContent: "a", Source: "x"}},
		{Article: model.Article{PageContent: "b", Source: "y"}},
	})
	assert.Equal(t, "\nSemantic Search Results:\n- a (Source: x)\n- b (Source: y)\n", out)
	assert.Equal(t, NoMatchesMessage, FormatResults(nil))
}
