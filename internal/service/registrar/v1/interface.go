// Package registrar provides the background-sync registration contract.
package registrar

import (
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"time"
)

// Registrar defines a set of methods for types implementing Registrar.
// Both operations are fire-and-forget: registration failures are logged,
// never surfaced to the caller of enqueue.
type Registrar interface {
	RegisterBackgroundSync(actionType modelqueue.ActionType)
	RegisterPeriodicSync(tag string, minInterval time.Duration)
}

// SyncManager abstracts the platform facility that re-invokes the sync
// orchestrator outside the foreground request path.
type SyncManager interface {
	Register(tag string) error
	RegisterPeriodic(tag string, minInterval time.Duration) error
}
