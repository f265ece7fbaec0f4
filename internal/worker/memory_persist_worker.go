package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"articlesearch/internal/model"
	"articlesearch/internal/platform/rabbitmq"
)

var ErrMissingSessionID = errors.New("memory record without session id")

// MemoryStore is where consumed records end up.
type MemoryStore interface {
	Create(ctx context.Context, record *model.MemoryRecord) error
}

// MemoryPersistWorker drains the memory persist queue into the Memory table.
type MemoryPersistWorker struct {
	conn      *amqp.Connection
	store     MemoryStore
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMemoryPersistWorker(conn *amqp.Connection, store MemoryStore, queueName string) *MemoryPersistWorker {
	return &MemoryPersistWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		logger:    slog.Default().With("component", "memory-worker", "queue", queueName),
	}
}

func (w *MemoryPersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.Error("persist memory record failed", "err", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.logger.Info("memory worker started")
	return nil
}

func (w *MemoryPersistWorker) handle(ctx context.Context, body []byte) error {
	var record model.MemoryRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return fmt.Errorf("decode memory record failed: %w", err)
	}
	if record.SessionID == "" {
		return ErrMissingSessionID
	}
	// The database assigns ids; a stale id from the producer must not collide.
	record.ID = 0
	return w.store.Create(ctx, &record)
}

func (w *MemoryPersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
