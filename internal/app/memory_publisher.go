package app

import (
	"context"

	"articlesearch/internal/model"
)

type MemoryWriter interface {
	Create(ctx context.Context, record *model.MemoryRecord) error
}

// DirectPublisher writes memory records straight to storage.
type DirectPublisher struct {
	writer MemoryWriter
}

func NewDirectPublisher(writer MemoryWriter) *DirectPublisher {
	return &DirectPublisher{writer: writer}
}

func (p *DirectPublisher) Publish(ctx context.Context, record model.MemoryRecord) error {
	return p.writer.Create(ctx, &record)
}
