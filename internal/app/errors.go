package app

import (
	"errors"
	"fmt"
)

const (
	// MaxContentBytes is the capacity of the page_content TEXT column.
	MaxContentBytes = 65535
	// MaxSourceChars is the capacity of the source VARCHAR(255) column.
	MaxSourceChars = 255
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrQueryEmpty        = errors.New("query is empty")
	ErrMemoryNotRecorded = errors.New("memory record was not stored")
	ErrUnsupportedFile   = errors.New("unsupported file type")

	ErrContentTooLong = fmt.Errorf("%w: article content is longer than %d bytes", ErrInvalidInput, MaxContentBytes)
	ErrSourceTooLong  = fmt.Errorf("%w: article source is longer than %d characters", ErrInvalidInput, MaxSourceChars)
)
