// Package retrypolicy decides the fate of a queued action without side effects.
package retrypolicy

import (
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"time"
)

// Decision is the outcome of consulting the policy for one action.
type Decision int

const (
	// Retry keeps the action queued for the next pass.
	Retry Decision = iota + 1
	// DiscardExpired evicts an action older than the configured maximum age.
	DiscardExpired
	// DiscardExhausted evicts an action whose retry budget is spent.
	DiscardExhausted
)

// Policy holds the time-based eviction bound.
type Policy struct {
	maxAge time.Duration
}

// NewPolicy sets up a retry policy with the passed maximum action age.
func NewPolicy(maxAge time.Duration) *Policy {
	return &Policy{maxAge: maxAge}
}

// Decide classifies an action at the passed instant. Expiry is checked
// before exhaustion so an overaged action is evicted regardless of its
// attempt count and without consuming a delivery attempt.
func (p *Policy) Decide(action modelqueue.QueuedAction, now time.Time) Decision {
	age := now.Sub(time.UnixMilli(action.Timestamp))
	if age > p.maxAge {
		return DiscardExpired
	}
	if action.Attempts >= action.MaxAttempts {
		return DiscardExhausted
	}
	return Retry
}
