package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartsOnline(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := InitMonitor(ctx, &config.MonitorConfig{ProbeAddress: "http://127.0.0.1:1", ProbeIntervalSeconds: 30}, logger.InitLog(), &sync.WaitGroup{})
	assert.True(t, m.IsOnline())
}

func TestProbeDetectsUnreachableTarget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	m := InitMonitor(ctx, &config.MonitorConfig{ProbeAddress: "http://127.0.0.1:1", ProbeIntervalSeconds: 1}, logger.InitLog(), wg)
	transitions := m.Subscribe()
	m.ListenAndProbe()
	select {
	case online := <-transitions:
		assert.False(t, online)
	case <-time.After(10 * time.Second):
		t.Fatal("no connectivity transition observed")
	}
	assert.False(t, m.IsOnline())
}

func TestProbeDetectsReachableTarget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := &sync.WaitGroup{}
	m := InitMonitor(ctx, &config.MonitorConfig{ProbeAddress: server.URL, ProbeIntervalSeconds: 1}, logger.InitLog(), wg)
	m.ListenAndProbe()
	require.Eventually(t, func() bool {
		return m.IsOnline()
	}, 5*time.Second, 50*time.Millisecond)
}

func TestSetOnlineOverridesProbes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := InitMonitor(ctx, &config.MonitorConfig{ProbeAddress: "http://127.0.0.1:1", ProbeIntervalSeconds: 30}, logger.InitLog(), &sync.WaitGroup{})
	transitions := m.Subscribe()
	m.SetOnline(false)
	assert.False(t, m.IsOnline())
	select {
	case online := <-transitions:
		assert.False(t, online)
	default:
		t.Fatal("no transition delivered to subscriber")
	}
	// a forced state sticks regardless of later probes
	m.probe()
	assert.False(t, m.IsOnline())
}

func TestSubscribeDeliversRestore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m := InitMonitor(ctx, &config.MonitorConfig{ProbeAddress: "http://127.0.0.1:1", ProbeIntervalSeconds: 30}, logger.InitLog(), &sync.WaitGroup{})
	transitions := m.Subscribe()
	m.SetOnline(false)
	<-transitions
	m.SetOnline(true)
	select {
	case online := <-transitions:
		assert.True(t, online)
	default:
		t.Fatal("no restore transition delivered to subscriber")
	}
}
