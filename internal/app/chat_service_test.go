package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"articlesearch/internal/model"
)

type fakeMemoryStore struct {
	records []model.MemoryRecord
	reads   int
	err     error
}

func (f *fakeMemoryStore) Create(_ context.Context, record *model.MemoryRecord) error {
	if f.err != nil {
		return f.err
	}
	record.ID = uint(len(f.records) + 1)
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeMemoryStore) ListBySessionID(_ context.Context, sessionID string) ([]model.MemoryRecord, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	var out []model.MemoryRecord
	for _, r := range f.records {
		if r.SessionID == sessionID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeMemoryStore) ListSessionIDs(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	seen := map[string]bool{}
	var ids []string
	for _, r := range f.records {
		if !seen[r.SessionID] {
			seen[r.SessionID] = true
			ids = append(ids, r.SessionID)
		}
	}
	return ids, nil
}

type fakeAsker struct {
	answer string
	err    error
	asked  []string
}

func (f *fakeAsker) Ask(_ context.Context, query string) (string, error) {
	f.asked = append(f.asked, query)
	return f.answer, f.err
}

type fakeHistoryCache struct {
	entries map[string][]model.MemoryRecord
	dirty   map[string]bool
}

func newFakeHistoryCache() *fakeHistoryCache {
	return &fakeHistoryCache{
		entries: map[string][]model.MemoryRecord{},
		dirty:   map[string]bool{},
	}
}

func (f *fakeHistoryCache) GetHistory(_ context.Context, id string) ([]model.MemoryRecord, bool, error) {
	r, ok := f.entries[id]
	return r, ok, nil
}

func (f *fakeHistoryCache) SetHistory(_ context.Context, id string, records []model.MemoryRecord) error {
	f.entries[id] = records
	return nil
}

func (f *fakeHistoryCache) DeleteHistory(_ context.Context, id string) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeHistoryCache) MarkDirty(_ context.Context, id string) error {
	f.dirty[id] = true
	return nil
}

func (f *fakeHistoryCache) IsDirty(_ context.Context, id string) (bool, error) {
	return f.dirty[id], nil
}

func TestNewSessionID(t *testing.T) {
	svc := NewChatService(&fakeMemoryStore{}, nil, nil, &fakeAsker{}, "")

	assert.Equal(t, "session_1", svc.NewSessionID(nil))
	assert.Equal(t, "session_3", svc.NewSessionID([]string{"session_1", "session_2"}))
	assert.Equal(t, "session_4", svc.NewSessionID([]string{"session_3", "other", "session_2"}),
		"taken names are skipped")

	uuidSvc := svc.WithSessionNaming(SessionNamingUUID)
	a := uuidSvc.NewSessionID(nil)
	b := uuidSvc.NewSessionID(nil)
	assert.True(t, strings.HasPrefix(a, "session_"))
	assert.NotEqual(t, a, b)
	assert.Equal(t, "session_1", svc.NewSessionID(nil), "the receiver keeps its scheme")
}

func TestChatServiceAskRecordsMemory(t *testing.T) {
	ctx := context.Background()
	store := &fakeMemoryStore{}
	asker := &fakeAsker{answer: "hi there"}
	svc := NewChatService(store, NewDirectPublisher(store), nil, asker, SessionNamingSequential)

	id, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session_1", id)

	before := time.Now()
	res, err := svc.Ask(ctx, AskInput{SessionID: id, Query: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Response)
	require.Len(t, store.records, 1)
	stamped := store.records[0].CreatedAt
	assert.False(t, stamped.Before(before), "created_at is stamped when the answer arrives")
	assert.False(t, stamped.After(time.Now()))

	asker.answer = "goodbye"
	_, err = svc.Ask(ctx, AskInput{SessionID: id, Query: "bye"})
	require.NoError(t, err)

	history, err := svc.History(ctx, id)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Query)
	assert.Equal(t, "hi there", history[0].Response)
	assert.Equal(t, "bye", history[1].Query)

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"session_1"}, sessions)

	next, err := svc.StartSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session_2", next)
}

func TestChatServiceAskValidation(t *testing.T) {
	svc := NewChatService(&fakeMemoryStore{}, nil, nil, &fakeAsker{}, "")

	_, err := svc.Ask(context.Background(), AskInput{Query: "q"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Ask(context.Background(), AskInput{SessionID: "s", Query: "  "})
	assert.ErrorIs(t, err, ErrQueryEmpty)
}

func TestChatServiceAskErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("agent failure records nothing", func(t *testing.T) {
		store := &fakeMemoryStore{}
		boom := errors.New("llm down")
		svc := NewChatService(store, NewDirectPublisher(store), nil, &fakeAsker{err: boom}, "")

		_, err := svc.Ask(ctx, AskInput{SessionID: "s", Query: "q"})
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, store.records)
	})

	t.Run("answer kept when recording fails", func(t *testing.T) {
		store := &fakeMemoryStore{err: errors.New("db gone")}
		svc := NewChatService(store, NewDirectPublisher(store), nil, &fakeAsker{answer: "a"}, "")

		res, err := svc.Ask(ctx, AskInput{SessionID: "s", Query: "q"})
		assert.ErrorIs(t, err, ErrMemoryNotRecorded)
		require.NotNil(t, res)
		assert.Equal(t, "a", res.Response)
	})
}

func TestChatServiceHistoryCache(t *testing.T) {
	ctx := context.Background()
	store := &fakeMemoryStore{records: []model.MemoryRecord{
		{ID: 1, SessionID: "s1", Query: "hello", Response: "hi there"},
	}}
	cache := newFakeHistoryCache()
	svc := NewChatService(store, NewDirectPublisher(store), cache, &fakeAsker{answer: "goodbye"}, "")

	first, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, store.reads)

	_, err = svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads, "second read served from cache")

	_, err = svc.Ask(ctx, AskInput{SessionID: "s1", Query: "bye"})
	require.NoError(t, err)
	assert.True(t, cache.dirty["s1"])

	after, err := svc.History(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.Equal(t, 2, store.reads)
	_, cached := cache.entries["s1"]
	assert.False(t, cached, "dirty sessions are not re-cached")
}

func TestChatServiceHistoryRejectsEmptyID(t *testing.T) {
	svc := NewChatService(&fakeMemoryStore{}, nil, nil, &fakeAsker{}, "")
	_, err := svc.History(context.Background(), " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
