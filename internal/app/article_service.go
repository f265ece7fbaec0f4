package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"articlesearch/internal/model"
	"articlesearch/internal/pkg/pdfextract"
	"articlesearch/internal/search"
)

type ArticleStore interface {
	Create(ctx context.Context, article *model.Article) error
	ListAll(ctx context.Context) ([]model.Article, error)
}

// ArticleSearcher is the substring filter plus re-rank pipeline.
type ArticleSearcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

type ArticleService struct {
	store    ArticleStore
	searcher ArticleSearcher
}

type AddArticleInput struct {
	PageContent string
	Source      string
}

func NewArticleService(store ArticleStore, searcher ArticleSearcher) *ArticleService {
	return &ArticleService{
		store:    store,
		searcher: searcher,
	}
}

func (s *ArticleService) Add(ctx context.Context, input AddArticleInput) (*model.Article, error) {
	content := strings.TrimSpace(input.PageContent)
	if content == "" {
		return nil, ErrInvalidInput
	}
	if len(content) > MaxContentBytes {
		return nil, ErrContentTooLong
	}
	source := strings.TrimSpace(input.Source)
	if utf8.RuneCountInString(source) > MaxSourceChars {
		return nil, ErrSourceTooLong
	}

	article := &model.Article{
		PageContent: content,
		Source:      source,
	}
	if err := s.store.Create(ctx, article); err != nil {
		return nil, err
	}
	return article, nil
}

func (s *ArticleService) List(ctx context.Context) ([]model.Article, error) {
	return s.store.ListAll(ctx)
}

// Search runs retrieval and re-ranking without involving the agent.
func (s *ArticleService) Search(ctx context.Context, query string) ([]search.Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryEmpty
	}
	return s.searcher.Search(ctx, query)
}

// ImportFile stores the text of a .pdf, .txt or .md file as one article.
// The source defaults to the file name.
func (s *ArticleService) ImportFile(ctx context.Context, path, source string) (*model.Article, error) {
	var text string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		extracted, err := pdfextract.ExtractFile(path)
		if err != nil {
			return nil, fmt.Errorf("import %s failed: %w", path, err)
		}
		text = extracted
	case ".txt", ".md", "":
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s failed: %w", path, err)
		}
		text = string(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}

	if strings.TrimSpace(source) == "" {
		source = filepath.Base(path)
	}
	return s.Add(ctx, AddArticleInput{PageContent: text, Source: source})
}
