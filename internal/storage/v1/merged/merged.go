// Package merged presents the two physical queue backends as one logical,
// deduplicated, timestamp-ordered queue.
package merged

import (
	"context"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"sort"
	"sync"
	"time"
)

// Store defines attributes of a struct available to its methods.
type Store struct {
	mu       sync.Mutex
	adapters []storage.Adapter
	notifier storage.SizeNotifier
	log      *zerolog.Logger
}

// InitStore merges the passed adapters into one logical queue store. Nil
// adapters are skipped so a backend that failed to open simply drops out.
func InitStore(log *zerolog.Logger, notifier storage.SizeNotifier, adapters ...storage.Adapter) *Store {
	available := make([]storage.Adapter, 0, len(adapters))
	for _, adapter := range adapters {
		if adapter != nil {
			available = append(available, adapter)
		}
	}
	log.Info().Msg(fmt.Sprintf("queue store initialized over %v backend(s)", len(available)))
	return &Store{
		adapters: available,
		notifier: notifier,
		log:      log,
	}
}

// Read loads the queue from every available adapter concurrently, merges by
// action id with the most recently updated record winning, and returns the
// result sorted by ascending creation timestamp. An unavailable adapter
// degrades silently; with no adapters at all the queue is empty.
func (s *Store) Read(ctx context.Context) ([]modelqueue.QueuedAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	partial := make([][]modelqueue.QueuedAction, len(s.adapters))
	g, gCtx := errgroup.WithContext(ctx)
	for i, adapter := range s.adapters {
		i, adapter := i, adapter
		g.Go(func() error {
			queue, err := adapter.ReadAll(gCtx)
			if err != nil {
				s.log.Warn().Err(err).Msg(fmt.Sprintf("queue backend %v read failed, degrading", i))
				return nil
			}
			partial[i] = queue
			return nil
		})
	}
	_ = g.Wait()
	byID := make(map[string]modelqueue.QueuedAction)
	order := make([]string, 0)
	for _, queue := range partial {
		for _, action := range queue {
			known, ok := byID[action.ID]
			if !ok {
				order = append(order, action.ID)
				byID[action.ID] = action
				continue
			}
			// most recently observed record for an id wins; adapter
			// iteration order breaks exact ties deterministically
			if action.UpdatedAt >= known.UpdatedAt {
				byID[action.ID] = action
			}
		}
	}
	queue := make([]modelqueue.QueuedAction, 0, len(order))
	for _, id := range order {
		action := byID[id]
		// an interrupted pass leaves syncing markers behind; they are
		// not authoritative and revert to pending on load
		if action.Status == modelqueue.StatusSyncing {
			action.Status = modelqueue.StatusPending
		}
		queue = append(queue, action)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Timestamp != queue[j].Timestamp {
			return queue[i].Timestamp < queue[j].Timestamp
		}
		return queue[i].ID < queue[j].ID
	})
	return queue, nil
}

// Write checkpoints the full queue to every available adapter, replacing
// prior contents entirely, and emits a queue-size event. Adapter write
// failures are logged and swallowed: availability wins over durability here.
func (s *Store) Write(ctx context.Context, queue []modelqueue.QueuedAction) error {
	s.mu.Lock()
	for i, adapter := range s.adapters {
		if err := adapter.WriteAll(ctx, queue); err != nil {
			s.log.Warn().Err(err).Msg(fmt.Sprintf("queue backend %v write failed, degrading", i))
		}
	}
	s.mu.Unlock()
	if s.notifier != nil {
		s.notifier.PublishQueueSize(len(queue))
	}
	return nil
}

// Clear empties every backend and returns the number of discarded actions.
func (s *Store) Clear(ctx context.Context) (int, error) {
	queue, err := s.Read(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.Write(ctx, []modelqueue.QueuedAction{}); err != nil {
		return 0, err
	}
	s.log.Info().Msg(fmt.Sprintf("queue cleared, %v action(s) discarded at %v", len(queue), time.Now().Format(time.RFC3339)))
	return len(queue), nil
}
