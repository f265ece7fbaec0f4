package search

import "errors"

var (
	ErrFinderRequired   = errors.New("article finder is required")
	ErrEmbedderRequired = errors.New("embedder is required")
	ErrEmbeddingCount   = errors.New("embedding count does not match document count")
)
