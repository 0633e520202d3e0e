// Package notifier broadcasts queue-size and sync-result changes to
// in-process subscribers.
package notifier

import (
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

const subscriberBuffer = 16

// Subscriber carries one consumer's event channels.
type Subscriber struct {
	QueueSize  chan modelqueue.QueueSizeEvent
	SyncResult chan modelqueue.SyncResult
}

// Notifier defines attributes of a struct available to its methods.
type Notifier struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]bool
	log         *zerolog.Logger
}

// InitNotifier sets up an event notifier with no subscribers.
func InitNotifier(log *zerolog.Logger) *Notifier {
	return &Notifier{
		subscribers: make(map[*Subscriber]bool),
		log:         log,
	}
}

// Subscribe registers a new consumer and returns its event channels.
func (n *Notifier) Subscribe() *Subscriber {
	sub := &Subscriber{
		QueueSize:  make(chan modelqueue.QueueSizeEvent, subscriberBuffer),
		SyncResult: make(chan modelqueue.SyncResult, subscriberBuffer),
	}
	n.mu.Lock()
	n.subscribers[sub] = true
	n.mu.Unlock()
	return sub
}

// Unsubscribe deregisters a consumer and closes its channels.
func (n *Notifier) Unsubscribe(sub *Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.subscribers[sub] {
		return
	}
	delete(n.subscribers, sub)
	close(sub.QueueSize)
	close(sub.SyncResult)
}

// PublishQueueSize broadcasts a queue length change. Publishing never
// blocks; a subscriber with a full buffer misses the event.
func (n *Notifier) PublishQueueSize(size int) {
	event := modelqueue.QueueSizeEvent{
		Size:      size,
		UpdatedAt: time.Now().UnixMilli(),
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subscribers {
		select {
		case sub.QueueSize <- event:
		default:
			n.log.Warn().Msg("queue size event dropped for a slow subscriber")
		}
	}
}

// PublishSyncResult broadcasts the result of one sync pass.
func (n *Notifier) PublishSyncResult(result modelqueue.SyncResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.log.Info().Msg(fmt.Sprintf("sync pass finished: processed %v, succeeded %v, failed %v", result.Processed, result.Succeeded, result.Failed))
	for sub := range n.subscribers {
		select {
		case sub.SyncResult <- result:
		default:
			n.log.Warn().Msg("sync result event dropped for a slow subscriber")
		}
	}
}
