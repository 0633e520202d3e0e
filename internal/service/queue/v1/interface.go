// Package queue provides the public queue management contract.
package queue

import (
	"context"
	"encoding/json"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
)

// Manager defines a set of methods for types implementing Manager. It is
// the only entry point for adding work to the queue.
type Manager interface {
	Enqueue(ctx context.Context, actionType modelqueue.ActionType, endpoint, method string, payload json.RawMessage) (string, error)
	Stats(ctx context.Context) (*modelqueue.QueueStats, error)
	Clear(ctx context.Context) (int, error)
}
