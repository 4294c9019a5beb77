package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "studyreserve/internal/app/outbox"
	infraoutbox "studyreserve/internal/infra/outbox"
)

// OutboxQueue is the in-memory event queue. It implements both the app-side
// Outbox (Add) and the worker-side Queue (Claim/MarkSent/MarkFailed).
type OutboxQueue struct {
	mu   sync.Mutex
	docs map[string]*infraoutbox.Document
}

func NewOutboxQueue() *OutboxQueue {
	return &OutboxQueue{docs: make(map[string]*infraoutbox.Document)}
}

func (q *OutboxQueue) Add(ctx context.Context, record appoutbox.EventRecord) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.docs[record.ID] = &infraoutbox.Document{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     record.Payload,
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       infraoutbox.StateNew,
		NextAttempt: time.Now().UTC(),
	}
	return nil
}

func (q *OutboxQueue) Claim(ctx context.Context, workerID string) (*infraoutbox.Document, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	now := time.Now().UTC()
	for _, doc := range q.docs {
		if doc.State != infraoutbox.StateNew && doc.State != infraoutbox.StateFailed {
			continue
		}
		if doc.NextAttempt.After(now) {
			continue
		}
		doc.State = infraoutbox.StateClaimed
		cp := *doc
		return &cp, nil
	}
	return nil, nil
}

func (q *OutboxQueue) MarkSent(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if doc, ok := q.docs[id]; ok {
		doc.State = infraoutbox.StateSent
	}
	return nil
}

func (q *OutboxQueue) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if doc, ok := q.docs[id]; ok {
		doc.State = infraoutbox.StateFailed
		doc.NextAttempt = next
		doc.LastError = errMsg
		doc.Attempts++
	}
	return nil
}
