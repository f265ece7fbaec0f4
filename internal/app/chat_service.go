package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"articlesearch/internal/model"
)

const (
	SessionNamingSequential = "sequential"
	SessionNamingUUID       = "uuid"

	sessionPrefix = "session_"
)

type MemoryStore interface {
	ListBySessionID(ctx context.Context, sessionID string) ([]model.MemoryRecord, error)
	ListSessionIDs(ctx context.Context) ([]string, error)
}

// MemoryPublisher hands a finished exchange to whatever persists it.
type MemoryPublisher interface {
	Publish(ctx context.Context, record model.MemoryRecord) error
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.MemoryRecord, bool, error)
	SetHistory(ctx context.Context, sessionID string, records []model.MemoryRecord) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// Asker produces the agent's answer to a query.
type Asker interface {
	Ask(ctx context.Context, query string) (string, error)
}

type ChatService struct {
	store         MemoryStore
	publisher     MemoryPublisher
	historyCache  HistoryCache
	asker         Asker
	sessionNaming string
	logger        *slog.Logger
}

type AskInput struct {
	SessionID string
	Query     string
}

type AskResult struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Response  string `json:"response"`
}

// NewChatService wires session memory around the agent. historyCache may be nil.
func NewChatService(
	store MemoryStore,
	publisher MemoryPublisher,
	historyCache HistoryCache,
	asker Asker,
	sessionNaming string,
) *ChatService {
	if sessionNaming == "" {
		sessionNaming = SessionNamingSequential
	}
	return &ChatService{
		store:         store,
		publisher:     publisher,
		historyCache:  historyCache,
		asker:         asker,
		sessionNaming: sessionNaming,
		logger:        slog.Default().With("component", "chat-service"),
	}
}

// WithSessionNaming returns a copy of the service that names new sessions
// with the given scheme.
func (s *ChatService) WithSessionNaming(naming string) *ChatService {
	clone := *s
	clone.sessionNaming = naming
	return &clone
}

func (s *ChatService) ListSessions(ctx context.Context) ([]string, error) {
	return s.store.ListSessionIDs(ctx)
}

// NewSessionID names a session that is not in existing.
//
// Sequential naming counts existing sessions, which is only unique for a
// single user; collisions with a surviving name are skipped. The uuid scheme
// is safe under concurrent use.
func (s *ChatService) NewSessionID(existing []string) string {
	if s.sessionNaming == SessionNamingUUID {
		return sessionPrefix + uuid.NewString()
	}

	taken := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		taken[id] = struct{}{}
	}
	for n := len(existing) + 1; ; n++ {
		id := fmt.Sprintf("%s%d", sessionPrefix, n)
		if _, ok := taken[id]; !ok {
			return id
		}
	}
}

// StartSession lists current sessions and names a new one.
func (s *ChatService) StartSession(ctx context.Context) (string, error) {
	existing, err := s.store.ListSessionIDs(ctx)
	if err != nil {
		return "", err
	}
	return s.NewSessionID(existing), nil
}

// History returns a session's exchanges oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.MemoryRecord, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}

	if s.historyCache != nil {
		dirty, err := s.historyCache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.historyCache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	records, err := s.store.ListBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.historyCache != nil {
		if dirty, dirtyErr := s.historyCache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			if err := s.historyCache.SetHistory(ctx, sessionID, records); err != nil {
				s.logger.Warn("cache session history failed", "session_id", sessionID, "err", err)
			}
		}
	}
	return records, nil
}

// Ask sends the query to the agent and logs the exchange under the session.
// If the answer was produced but could not be logged, the result is returned
// together with an error wrapping ErrMemoryNotRecorded.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	sessionID := strings.TrimSpace(input.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidInput
	}
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, ErrQueryEmpty
	}

	response, err := s.asker.Ask(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &AskResult{
		SessionID: sessionID,
		Query:     query,
		Response:  response,
	}

	if s.historyCache != nil {
		_ = s.historyCache.MarkDirty(ctx, sessionID)
		_ = s.historyCache.DeleteHistory(ctx, sessionID)
	}
	// Stamped here rather than on insert so records that travel through the
	// queue keep the order they were asked in.
	record := model.MemoryRecord{
		SessionID: sessionID,
		Query:     query,
		Response:  response,
		CreatedAt: time.Now(),
	}
	if err := s.publisher.Publish(ctx, record); err != nil {
		s.logger.Error("store memory failed", "session_id", sessionID, "err", err)
		return result, fmt.Errorf("%w: %w", ErrMemoryNotRecorded, err)
	}
	return result, nil
}
