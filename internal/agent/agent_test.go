package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlesearch/internal/ai/mock"
	"articlesearch/internal/model"
	"articlesearch/internal/search"
)

type staticFinder struct {
	articles []model.Article
	calls    int
}

func (f *staticFinder) SearchByContent(_ context.Context, query string) ([]model.Article, error) {
	f.calls++
	var out []model.Article
	for _, a := range f.articles {
		if strings.Contains(a.PageContent, query) {
			out = append(out, a)
		}
	}
	return out, nil
}

func newSearchTool(t *testing.T, finder search.ArticleFinder) *search.Tool {
	t.Helper()
	s, err := search.NewSearcher(finder, mock.NewMockEmbedder())
	require.NoError(t, err)
	return search.NewTool(s)
}

func TestNew(t *testing.T) {
	tool := newSearchTool(t, &staticFinder{})

	t.Run("nil model", func(t *testing.T) {
		_, err := New(nil, tool)
		assert.Equal(t, ErrModelRequired, err)
	})

	t.Run("nil tool", func(t *testing.T) {
		_, err := New(mock.NewMockModel(), nil)
		assert.Equal(t, ErrToolRequired, err)
	})
}

func TestAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("answers directly", func(t *testing.T) {
		finder := &staticFinder{}
		model := mock.NewMockModel("Thought: I can answer this myself.\nFinal Answer: Hello there!")
		a, err := New(model, newSearchTool(t, finder))
		require.NoError(t, err)

		out, err := a.Ask(ctx, "say hello")
		require.NoError(t, err)
		assert.Equal(t, "Hello there!", out)
		assert.Zero(t, finder.calls)

		prompts := model.Prompts()
		require.Len(t, prompts, 1)
		assert.Contains(t, prompts[0], "semantic_search")
		assert.Contains(t, prompts[0], "say hello")
	})

	t.Run("uses the search tool before answering", func(t *testing.T) {
		finder := &staticFinder{articles: []model.Article{{ID: 1, PageContent: "The sky is blue", Source: "wiki"}}}
		model := mock.NewMockModel(
			"Thought: I should look this up.\nAction: semantic_search\nAction Input: sky",
			"Thought: I now know the final answer.\nFinal Answer: The sky is blue.",
		)
		a, err := New(model, newSearchTool(t, finder), WithMaxIterations(3), WithTemperature(0))
		require.NoError(t, err)

		out, err := a.Ask(ctx, "what colour is the sky?")
		require.NoError(t, err)
		assert.Equal(t, "The sky is blue.", out)
		assert.Equal(t, 1, finder.calls)

		prompts := model.Prompts()
		require.Len(t, prompts, 2)
		assert.Contains(t, prompts[1], "The sky is blue (Source: wiki)")
	})

	t.Run("empty query", func(t *testing.T) {
		a, err := New(mock.NewMockModel(), newSearchTool(t, &staticFinder{}))
		require.NoError(t, err)

		_, err = a.Ask(ctx, "   ")
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("model failure", func(t *testing.T) {
		model := mock.NewMockModel()
		model.Err = errors.New("401 unauthorized")
		a, err := New(model, newSearchTool(t, &staticFinder{}))
		require.NoError(t, err)

		_, err = a.Ask(ctx, "anything")
		assert.Error(t, err)
	})
}
