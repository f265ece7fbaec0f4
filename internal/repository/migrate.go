package repository

import (
	"fmt"

	"gorm.io/gorm"

	"articlesearch/internal/model"
)

// Migrate creates the Articles and Memory tables when they are missing.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Article{}, &model.MemoryRecord{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}
