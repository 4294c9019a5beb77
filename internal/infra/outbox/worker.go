// Package outbox drains queued reservation events to the message broker.
package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

var ErrWorkerNotConfigured = errors.New("outbox: worker missing queue or producer")

const (
	StateNew     = "NEW"
	StateClaimed = "CLAIMED"
	StateSent    = "SENT"
	StateFailed  = "FAILED"
)

// Document is a queued event as the worker sees it.
type Document struct {
	ID          string
	Name        string
	Payload     []byte
	OccurredAt  time.Time
	Aggregate   string
	Headers     map[string]string
	State       string
	Attempts    int
	NextAttempt time.Time
	LastError   string
}

// Queue is the claim/ack surface implemented by the memory and mongo
// stores. Claim returns (nil, nil) when nothing is due.
type Queue interface {
	Claim(ctx context.Context, workerID string) (*Document, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
}

type Producer interface {
	Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error
}

type Worker struct {
	Queue       Queue
	Producer    Producer
	Interval    time.Duration
	TopicPrefix string
	Source      string
	ID          string
	Backoff     []time.Duration
	Logger      *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	if w.Queue == nil || w.Producer == nil {
		return ErrWorkerNotConfigured
	}
	ticker := time.NewTicker(w.interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			err := w.processOnce(ctx)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				// Transient store errors must not kill the drain loop.
				if w.Logger != nil {
					w.Logger.Error("outbox pass failed", "error", err)
				}
			}
		}
	}
}

func (w *Worker) processOnce(ctx context.Context) error {
	doc, err := w.Queue.Claim(ctx, w.workerID())
	if err != nil || doc == nil {
		return err
	}
	payload, err := w.envelope(doc)
	if err != nil {
		return w.Queue.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	topic := w.TopicPrefix + doc.Name
	if err := w.Producer.Publish(ctx, topic, doc.Aggregate, payload, doc.Headers); err != nil {
		if w.Logger != nil {
			w.Logger.Warn("outbox publish failed", "event_id", doc.ID, "topic", topic, "error", err)
		}
		return w.Queue.MarkFailed(ctx, doc.ID, w.nextRetry(doc.Attempts), err.Error())
	}
	return w.Queue.MarkSent(ctx, doc.ID)
}

func (w *Worker) envelope(doc *Document) ([]byte, error) {
	var data json.RawMessage = doc.Payload
	return json.Marshal(map[string]any{
		"id":           doc.ID,
		"type":         doc.Name,
		"source":       w.source(),
		"aggregate_id": doc.Aggregate,
		"time":         doc.OccurredAt.UTC().Format(time.RFC3339Nano),
		"data":         data,
	})
}

func (w *Worker) nextRetry(attempts int) time.Time {
	backoff := w.Backoff
	if len(backoff) == 0 {
		backoff = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}
	}
	if attempts >= len(backoff) {
		attempts = len(backoff) - 1
	}
	return time.Now().UTC().Add(backoff[attempts])
}

func (w *Worker) interval() time.Duration {
	if w.Interval <= 0 {
		return 500 * time.Millisecond
	}
	return w.Interval
}

func (w *Worker) workerID() string {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return w.ID
}

func (w *Worker) source() string {
	if w.Source == "" {
		return "studyreserve"
	}
	return w.Source
}
