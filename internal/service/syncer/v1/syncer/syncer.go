// Package syncer drives one full pass over the offline action queue.
package syncer

import (
	"context"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/retrypolicy/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1"
	serviceErrors "github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1"
	"github.com/rs/zerolog"
	"time"
)

const expiredReason = "Action expired"

// Syncer defines attributes of a struct available to its methods.
type Syncer struct {
	store        storage.Store
	executor     syncer.Executor
	policy       *retrypolicy.Policy
	connectivity syncer.Connectivity
	notifier     syncer.ResultNotifier
	log          *zerolog.Logger
	inFlight     chan struct{}
}

// InitSyncer initializes the sync orchestrator.
func InitSyncer(st storage.Store, executor syncer.Executor, policy *retrypolicy.Policy, connectivity syncer.Connectivity, resultNotifier syncer.ResultNotifier, log *zerolog.Logger) (*Syncer, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil store was passed to syncer initializer"}
	}
	if executor == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil executor was passed to syncer initializer"}
	}
	if policy == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil retry policy was passed to syncer initializer"}
	}
	if connectivity == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil connectivity monitor was passed to syncer initializer"}
	}
	return &Syncer{
		store:        st,
		executor:     executor,
		policy:       policy,
		connectivity: connectivity,
		notifier:     resultNotifier,
		log:          log,
		inFlight:     make(chan struct{}, 1),
	}, nil
}

// Run executes one full sync pass. At most one pass is in flight per
// process; an overlapping invocation returns a no-op result immediately.
// A pass never attempts network I/O while offline, processes actions
// strictly oldest-first, and checkpoints the surviving queue once at the
// end. Executor failures are per-action and never abort the pass.
func (s *Syncer) Run(ctx context.Context) modelqueue.SyncResult {
	result := modelqueue.SyncResult{Success: true, Errors: []modelqueue.SyncError{}}
	select {
	case s.inFlight <- struct{}{}:
	default:
		s.log.Warn().Msg("sync pass already in flight, skipping")
		return result
	}
	defer func() { <-s.inFlight }()

	if !s.connectivity.IsOnline() {
		s.log.Info().Msg("sync pass skipped while offline")
		s.publish(result)
		return result
	}
	queue, err := s.store.Read(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("sync pass failed")
		result.Success = false
		s.publish(result)
		return result
	}
	if len(queue) == 0 {
		s.publish(result)
		return result
	}

	// checkpoint a syncing marker before any delivery attempt; the marker
	// is not authoritative and reverts to pending on the next load
	nowMS := time.Now().UnixMilli()
	for i := range queue {
		queue[i].Status = modelqueue.StatusSyncing
		queue[i].UpdatedAt = nowMS
	}
	if err := s.store.Write(ctx, queue); err != nil {
		s.log.Error().Err(err).Msg("sync pass failed")
		result.Success = false
		s.publish(result)
		return result
	}

	remaining := make([]modelqueue.QueuedAction, 0, len(queue))
	for _, action := range queue {
		result.Processed++
		if s.policy.Decide(action, time.Now()) == retrypolicy.DiscardExpired {
			s.log.Warn().Msg(fmt.Sprintf("action %s expired, discarding without delivery", action.ID))
			result.Failed++
			result.Errors = append(result.Errors, modelqueue.SyncError{
				ActionID: action.ID,
				Type:     action.Type,
				Reason:   expiredReason,
			})
			continue
		}
		err := s.executor.Execute(ctx, action)
		if err == nil {
			s.log.Info().Msg(fmt.Sprintf("action %s delivered", action.ID))
			result.Succeeded++
			continue
		}
		action.Attempts++
		action.LastError = err.Error()
		action.Status = modelqueue.StatusPending
		action.UpdatedAt = time.Now().UnixMilli()
		result.Failed++
		if s.policy.Decide(action, time.Now()) == retrypolicy.DiscardExhausted {
			s.log.Warn().Msg(fmt.Sprintf("action %s exhausted its %v attempts, discarding", action.ID, action.MaxAttempts))
			result.Errors = append(result.Errors, modelqueue.SyncError{
				ActionID: action.ID,
				Type:     action.Type,
				Reason:   action.LastError,
			})
			continue
		}
		s.log.Warn().Msg(fmt.Sprintf("action %s delivery failed on attempt %v of %v, keeping", action.ID, action.Attempts, action.MaxAttempts))
		remaining = append(remaining, action)
	}

	if err := s.store.Write(ctx, remaining); err != nil {
		s.log.Error().Err(err).Msg("sync pass failed")
		result.Success = false
	}
	s.publish(result)
	return result
}

func (s *Syncer) publish(result modelqueue.SyncResult) {
	if s.notifier != nil {
		s.notifier.PublishSyncResult(result)
	}
}
