package inmem

import (
	"context"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"sync"
)

// Adapter keeps the queue in process memory only. It backs tests and serves
// as the last-resort degradation when neither durable backend can be opened.
type Adapter struct {
	mu    sync.Mutex
	queue []modelqueue.QueuedAction
}

// InitAdapter sets up an empty in-memory queue backend.
func InitAdapter() *Adapter {
	return &Adapter{queue: []modelqueue.QueuedAction{}}
}

// ReadAll returns a copy of the stored queue.
func (s *Adapter) ReadAll(ctx context.Context) ([]modelqueue.QueuedAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]modelqueue.QueuedAction(nil), s.queue...), nil
}

// WriteAll replaces the stored queue with a copy of the passed one.
func (s *Adapter) WriteAll(ctx context.Context, queue []modelqueue.QueuedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append([]modelqueue.QueuedAction(nil), queue...)
	return nil
}

// Close is a no-op for the in-memory backend.
func (s *Adapter) Close() error {
	return nil
}
