package retrypolicy

import (
	"testing"
	"time"

	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/stretchr/testify/assert"
)

func TestDecideRetry(t *testing.T) {
	policy := NewPolicy(7 * 24 * time.Hour)
	now := time.Now()
	action := modelqueue.QueuedAction{
		ID:          "a1",
		Timestamp:   now.Add(-time.Hour).UnixMilli(),
		Attempts:    1,
		MaxAttempts: 3,
	}
	assert.Equal(t, Retry, policy.Decide(action, now))
}

func TestDecideDiscardExhausted(t *testing.T) {
	policy := NewPolicy(7 * 24 * time.Hour)
	now := time.Now()
	action := modelqueue.QueuedAction{
		ID:          "a1",
		Timestamp:   now.Add(-time.Hour).UnixMilli(),
		Attempts:    3,
		MaxAttempts: 3,
	}
	assert.Equal(t, DiscardExhausted, policy.Decide(action, now))
}

func TestDecideDiscardExpired(t *testing.T) {
	policy := NewPolicy(7 * 24 * time.Hour)
	now := time.Now()
	action := modelqueue.QueuedAction{
		ID:          "a1",
		Timestamp:   now.Add(-8 * 24 * time.Hour).UnixMilli(),
		Attempts:    1,
		MaxAttempts: 3,
	}
	assert.Equal(t, DiscardExpired, policy.Decide(action, now))
}

func TestDecideExpiryPrecedesExhaustion(t *testing.T) {
	policy := NewPolicy(7 * 24 * time.Hour)
	now := time.Now()
	// an overaged action expires even with a spent retry budget
	action := modelqueue.QueuedAction{
		ID:          "a1",
		Timestamp:   now.Add(-8 * 24 * time.Hour).UnixMilli(),
		Attempts:    3,
		MaxAttempts: 3,
	}
	assert.Equal(t, DiscardExpired, policy.Decide(action, now))
}

func TestDecideFreshActionAtBoundary(t *testing.T) {
	policy := NewPolicy(7 * 24 * time.Hour)
	// millisecond-aligned clock: timestamps carry ms precision, so a
	// sub-millisecond remainder in now would push the age past the bound
	now := time.UnixMilli(time.Now().UnixMilli())
	// age exactly equal to the bound does not expire
	action := modelqueue.QueuedAction{
		ID:          "a1",
		Timestamp:   now.Add(-7 * 24 * time.Hour).UnixMilli(),
		Attempts:    0,
		MaxAttempts: 3,
	}
	assert.Equal(t, Retry, policy.Decide(action, now))
}
