package storage

import (
	"context"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
)

// Adapter defines a set of methods for one physical queue storage backend.
type Adapter interface {
	ReadAll(ctx context.Context) ([]modelqueue.QueuedAction, error)
	WriteAll(ctx context.Context, queue []modelqueue.QueuedAction) error
	Close() error
}

// Store presents a single deduplicated, timestamp-ordered queue view over the available adapters.
type Store interface {
	Read(ctx context.Context) ([]modelqueue.QueuedAction, error)
	Write(ctx context.Context, queue []modelqueue.QueuedAction) error
	Clear(ctx context.Context) (int, error)
}

// SizeNotifier consumes queue length change notifications emitted on every checkpoint.
type SizeNotifier interface {
	PublishQueueSize(size int)
}
