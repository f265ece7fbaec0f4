package model

import "time"

// MemoryRecord is one query/response exchange logged under a session.
type MemoryRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID string    `gorm:"size:255;not null;index" json:"session_id"`
	Query     string    `gorm:"type:text;not null" json:"query"`
	Response  string    `gorm:"type:text;not null" json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

func (MemoryRecord) TableName() string {
	return "Memory"
}
