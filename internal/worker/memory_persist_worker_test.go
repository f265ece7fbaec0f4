package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlesearch/internal/model"
)

type recordingStore struct {
	records []model.MemoryRecord
	err     error
}

func (s *recordingStore) Create(_ context.Context, record *model.MemoryRecord) error {
	if s.err != nil {
		return s.err
	}
	s.records = append(s.records, *record)
	return nil
}

func TestMemoryPersistWorkerHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("persists decoded record", func(t *testing.T) {
		store := &recordingStore{}
		w := NewMemoryPersistWorker(nil, store, "q")

		created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
		body, err := json.Marshal(model.MemoryRecord{ID: 9, SessionID: "session_1", Query: "hello", Response: "hi there", CreatedAt: created})
		require.NoError(t, err)

		require.NoError(t, w.handle(ctx, body))
		require.Len(t, store.records, 1)
		got := store.records[0]
		assert.Zero(t, got.ID)
		assert.Equal(t, "session_1", got.SessionID)
		assert.Equal(t, "hello", got.Query)
		assert.Equal(t, "hi there", got.Response)
		assert.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("rejects malformed payload", func(t *testing.T) {
		store := &recordingStore{}
		w := NewMemoryPersistWorker(nil, store, "q")
		assert.Error(t, w.handle(ctx, []byte("{not json")))
		assert.Empty(t, store.records)
	})

	t.Run("rejects record without session", func(t *testing.T) {
		store := &recordingStore{}
		w := NewMemoryPersistWorker(nil, store, "q")
		assert.ErrorIs(t, w.handle(ctx, []byte(`{"query":"q","response":"r"}`)), ErrMissingSessionID)
		assert.Empty(t, store.records)
	})

	t.Run("surfaces store failure", func(t *testing.T) {
		store := &recordingStore{err: errors.New("db down")}
		w := NewMemoryPersistWorker(nil, store, "q")
		assert.Error(t, w.handle(ctx, []byte(`{"session_id":"s","query":"q","response":"r"}`)))
	})

	t.Run("close without start is a no-op", func(t *testing.T) {
		w := NewMemoryPersistWorker(nil, &recordingStore{}, "q")
		w.Close()
	})
}
