// Package monitor tracks connectivity to the delivery origin by probing it.
package monitor

import (
	"context"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"sync"
	"time"
)

// Monitor defines attributes of a struct available to its methods.
type Monitor struct {
	ctx    context.Context
	client *resty.Client
	cfg    *config.MonitorConfig
	log    *zerolog.Logger
	wg     *sync.WaitGroup
	mu     sync.Mutex
	online bool
	forced bool
	subs   []chan bool
}

// InitMonitor initializes a connectivity monitor. The state starts online
// and is corrected by the first probe.
func InitMonitor(ctx context.Context, cfg *config.MonitorConfig, log *zerolog.Logger, wg *sync.WaitGroup) *Monitor {
	probeClient := resty.New().SetTimeout(5 * time.Second)
	return &Monitor{
		ctx:    ctx,
		client: probeClient,
		cfg:    cfg,
		log:    log,
		wg:     wg,
		online: true,
	}
}

// ListenAndProbe starts the periodic connectivity probe loop.
func (m *Monitor) ListenAndProbe() {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		interval := time.Duration(m.cfg.ProbeIntervalSeconds) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		m.log.Info().Msg(fmt.Sprintf("started probing %s every %v", m.cfg.ProbeAddress, interval))
		m.probe()
		for {
			select {
			case <-m.ctx.Done():
				m.log.Info().Msg("stopped connectivity probing")
				return
			case <-ticker.C:
				m.probe()
			}
		}
	}()
}

// IsOnline reports the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline overrides the probed state; subsequent probes are ignored.
// Used for explicit offline mode and in tests.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	m.forced = true
	subs, changed := m.transitionLocked(online)
	m.mu.Unlock()
	m.notify(subs, changed, online)
}

// Subscribe registers a consumer of connectivity transitions. Every state
// change is delivered as a bool (true on restore, false on loss).
func (m *Monitor) Subscribe() <-chan bool {
	sub := make(chan bool, 4)
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
	return sub
}

func (m *Monitor) probe() {
	_, err := m.client.R().SetContext(m.ctx).Head(m.cfg.ProbeAddress)
	online := err == nil
	m.mu.Lock()
	if m.forced {
		m.mu.Unlock()
		return
	}
	subs, changed := m.transitionLocked(online)
	m.mu.Unlock()
	m.notify(subs, changed, online)
}

func (m *Monitor) transitionLocked(online bool) ([]chan bool, bool) {
	changed := m.online != online
	m.online = online
	return append([]chan bool(nil), m.subs...), changed
}

func (m *Monitor) notify(subs []chan bool, changed bool, online bool) {
	if !changed {
		return
	}
	if online {
		m.log.Info().Msg("connectivity restored")
	} else {
		m.log.Warn().Msg("connectivity lost")
	}
	for _, sub := range subs {
		select {
		case sub <- online:
		default:
		}
	}
}
