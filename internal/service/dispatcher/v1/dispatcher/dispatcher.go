// Package dispatcher implements the background-sync facility in process:
// registered tags are coalesced into orchestrator runs once connectivity
// allows, and periodic tags wake the orchestrator on their own schedule.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/monitor/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

// Dispatcher defines attributes of a struct available to its methods.
type Dispatcher struct {
	ctx          context.Context
	orchestrator syncer.Orchestrator
	connectivity monitor.Monitor
	log          *zerolog.Logger
	wg           *sync.WaitGroup
	mu           sync.Mutex
	pending      map[string]bool
	periodic     map[string]bool
	kick         chan struct{}
}

// InitDispatcher initializes a dispatcher bound to the passed orchestrator.
func InitDispatcher(ctx context.Context, orchestrator syncer.Orchestrator, connectivity monitor.Monitor, log *zerolog.Logger, wg *sync.WaitGroup) *Dispatcher {
	return &Dispatcher{
		ctx:          ctx,
		orchestrator: orchestrator,
		connectivity: connectivity,
		log:          log,
		wg:           wg,
		pending:      make(map[string]bool),
		periodic:     make(map[string]bool),
		kick:         make(chan struct{}, 1),
	}
}

// Register marks a tag as awaiting a sync pass. Registrations arriving
// while a pass is pending coalesce into one wakeup.
func (d *Dispatcher) Register(tag string) error {
	d.mu.Lock()
	d.pending[tag] = true
	d.mu.Unlock()
	select {
	case d.kick <- struct{}{}:
	default:
	}
	return nil
}

// RegisterPeriodic starts a periodic wakeup for a tag. Re-registering an
// already periodic tag is a no-op.
func (d *Dispatcher) RegisterPeriodic(tag string, minInterval time.Duration) error {
	if minInterval <= 0 {
		return errors.New("periodic sync interval must be positive")
	}
	d.mu.Lock()
	if d.periodic[tag] {
		d.mu.Unlock()
		return nil
	}
	d.periodic[tag] = true
	d.mu.Unlock()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(minInterval)
		defer ticker.Stop()
		for {
			select {
			case <-d.ctx.Done():
				return
			case <-ticker.C:
				_ = d.Register(tag)
			}
		}
	}()
	return nil
}

// ListenAndDispatch starts the loop that converts registrations and
// connectivity restores into orchestrator runs. Every restore triggers a
// drain: actions enqueued while offline carry no registration, so the
// queue itself is the source of truth and an empty pass is a cheap no-op.
// The connectivity subscription happens before this method returns so no
// transition raised after startup is missed.
func (d *Dispatcher) ListenAndDispatch() {
	online := d.connectivity.Subscribe()
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.log.Info().Msg("started listening for background sync registrations")
		for {
			select {
			case <-d.ctx.Done():
				d.log.Info().Msg("stopped listening for background sync registrations")
				return
			case <-d.kick:
				if d.connectivity.IsOnline() {
					d.drain()
				}
			case restored := <-online:
				if restored {
					d.drain()
				}
			}
		}
	}()
}

func (d *Dispatcher) drain() {
	d.mu.Lock()
	tags := make([]string, 0, len(d.pending))
	for tag := range d.pending {
		tags = append(tags, tag)
	}
	d.pending = make(map[string]bool)
	d.mu.Unlock()
	if len(tags) > 0 {
		d.log.Info().Msg(fmt.Sprintf("draining sync registrations for %v", tags))
	}
	d.orchestrator.Run(d.ctx)
}
