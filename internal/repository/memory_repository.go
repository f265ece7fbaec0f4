package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"articlesearch/internal/model"
)

type MemoryRepository struct {
	db *gorm.DB
}

func NewMemoryRepository(db *gorm.DB) *MemoryRepository {
	return &MemoryRepository{db: db}
}

func (r *MemoryRepository) Create(ctx context.Context, record *model.MemoryRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("create memory record failed: %w", err)
	}
	return nil
}

// ListBySessionID returns a session's exchanges oldest first.
func (r *MemoryRepository) ListBySessionID(ctx context.Context, sessionID string) ([]model.MemoryRecord, error) {
	var records []model.MemoryRecord
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list memory records failed: %w", err)
	}
	return records, nil
}

// ListSessionIDs returns every distinct session id in order of first use.
func (r *MemoryRepository) ListSessionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&model.MemoryRecord{}).
		Group("session_id").
		Order("MIN(id) ASC").
		Pluck("session_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return ids, nil
}
