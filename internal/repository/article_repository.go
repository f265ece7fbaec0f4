package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"articlesearch/internal/model"
)

// likeEscaper makes LIKE wildcards in user input match literally. '!' is used
// as the escape character because MySQL and SQLite disagree on backslashes.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type ArticleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) Create(ctx context.Context, article *model.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return fmt.Errorf("create article failed: %w", err)
	}
	return nil
}

// SearchByContent returns articles whose page content contains query.
func (r *ArticleRepository) SearchByContent(ctx context.Context, query string) ([]model.Article, error) {
	pattern := "%" + likeEscaper.Replace(query) + "%"

	var articles []model.Article
	if err := r.db.WithContext(ctx).
		Where("page_content LIKE ? ESCAPE '!'", pattern).
		Order("id ASC").
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("search articles failed: %w", err)
	}
	return articles, nil
}

func (r *ArticleRepository) ListAll(ctx context.Context) ([]model.Article, error) {
	var articles []model.Article
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("list articles failed: %w", err)
	}
	return articles, nil
}
