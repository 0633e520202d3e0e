// Package registrar maps action types to sync tags and registers them with
// the platform's background-sync facility.
package registrar

import (
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/registrar/v1"
	"github.com/rs/zerolog"
	"time"
)

// Registrar defines attributes of a struct available to its methods.
type Registrar struct {
	manager registrar.SyncManager
	log     *zerolog.Logger
}

// InitRegistrar initializes a registrar over the passed sync manager. A nil
// manager means background sync is unsupported: registrations degrade to
// log-only and delivery relies on foreground online events.
func InitRegistrar(manager registrar.SyncManager, log *zerolog.Logger) *Registrar {
	if manager == nil {
		log.Warn().Msg("background sync unsupported, relying on foreground online events only")
	}
	return &Registrar{manager: manager, log: log}
}

// RegisterBackgroundSync registers the sync tag of the passed action type.
func (r *Registrar) RegisterBackgroundSync(actionType modelqueue.ActionType) {
	tag, ok := modelqueue.SyncTags[actionType]
	if !ok {
		r.log.Error().Msg(fmt.Sprintf("no sync tag exists for action type %s", actionType))
		return
	}
	if r.manager == nil {
		r.log.Info().Msg(fmt.Sprintf("skipped background sync registration for %s", tag))
		return
	}
	if err := r.manager.Register(tag); err != nil {
		r.log.Error().Err(err).Msg(fmt.Sprintf("background sync registration failed for %s", tag))
		return
	}
	r.log.Info().Msg(fmt.Sprintf("background sync registered for %s", tag))
}

// RegisterPeriodicSync registers a periodic wakeup under the passed tag.
// Not required for queue correctness; used for periodic data refresh.
func (r *Registrar) RegisterPeriodicSync(tag string, minInterval time.Duration) {
	if r.manager == nil {
		r.log.Info().Msg(fmt.Sprintf("skipped periodic sync registration for %s", tag))
		return
	}
	if err := r.manager.RegisterPeriodic(tag, minInterval); err != nil {
		r.log.Error().Err(err).Msg(fmt.Sprintf("periodic sync registration failed for %s", tag))
		return
	}
	r.log.Info().Msg(fmt.Sprintf("periodic sync registered for %s every %v", tag, minInterval))
}
