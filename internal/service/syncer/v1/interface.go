// Package syncer provides the sync pass orchestration contract.
package syncer

import (
	"context"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
)

// Orchestrator defines a set of methods for types implementing Orchestrator.
type Orchestrator interface {
	Run(ctx context.Context) modelqueue.SyncResult
}

// Executor performs exactly one delivery attempt for one action.
type Executor interface {
	Execute(ctx context.Context, action modelqueue.QueuedAction) error
}

// Connectivity reports whether the platform currently considers itself online.
type Connectivity interface {
	IsOnline() bool
}

// ResultNotifier consumes the result of every finished sync pass.
type ResultNotifier interface {
	PublishSyncResult(result modelqueue.SyncResult)
}
