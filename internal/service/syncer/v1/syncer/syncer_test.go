package syncer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/danilovkiri/dk-go-offlineq/internal/logger"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/retrypolicy/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/inmem"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/merged"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedExecutor struct {
	mu       sync.Mutex
	failures map[string]error
	executed []string
	block    chan struct{}
	entered  chan struct{}
}

func (e *scriptedExecutor) Execute(ctx context.Context, action modelqueue.QueuedAction) error {
	e.mu.Lock()
	e.executed = append(e.executed, action.ID)
	e.mu.Unlock()
	if e.entered != nil {
		e.entered <- struct{}{}
	}
	if e.block != nil {
		<-e.block
	}
	if err, ok := e.failures[action.ID]; ok {
		return err
	}
	return nil
}

func (e *scriptedExecutor) executedIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.executed...)
}

type fixedConnectivity struct {
	online bool
}

func (c *fixedConnectivity) IsOnline() bool {
	return c.online
}

type resultRecorder struct {
	mu      sync.Mutex
	results []modelqueue.SyncResult
}

func (r *resultRecorder) PublishSyncResult(result modelqueue.SyncResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newTestSyncer(t *testing.T, executor *scriptedExecutor, online bool) (*Syncer, *merged.Store, *resultRecorder) {
	t.Helper()
	log := logger.InitLog()
	st := merged.InitStore(log, nil, inmem.InitAdapter())
	recorder := &resultRecorder{}
	policy := retrypolicy.NewPolicy(7 * 24 * time.Hour)
	s, err := InitSyncer(st, executor, policy, &fixedConnectivity{online: online}, recorder, log)
	require.NoError(t, err)
	return s, st, recorder
}

func freshAction(id string, attempts, maxAttempts int) modelqueue.QueuedAction {
	nowMS := time.Now().UnixMilli()
	return modelqueue.QueuedAction{
		ID:          id,
		Type:        modelqueue.ActionVote,
		Endpoint:    "/api/votes",
		Method:      "POST",
		Timestamp:   nowMS,
		UpdatedAt:   nowMS,
		Attempts:    attempts,
		MaxAttempts: maxAttempts,
		Status:      modelqueue.StatusPending,
	}
}

func TestRunOfflineNoOp(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{}
	s, st, _ := newTestSyncer(t, executor, false)
	require.NoError(t, st.Write(ctx, []modelqueue.QueuedAction{freshAction("1-a", 0, 3)}))
	result := s.Run(ctx)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, executor.executedIDs())
	queue, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestRunEmptyQueue(t *testing.T) {
	executor := &scriptedExecutor{}
	s, _, recorder := newTestSyncer(t, executor, true)
	result := s.Run(context.Background())
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Processed)
	assert.Empty(t, executor.executedIDs())
	assert.Len(t, recorder.results, 1)
}

func TestRunDeliversAndRemoves(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{}
	s, st, _ := newTestSyncer(t, executor, true)
	actions := []modelqueue.QueuedAction{freshAction("1-a", 0, 3), freshAction("2-b", 0, 3)}
	actions[0].Timestamp = actions[1].Timestamp - 1000
	require.NoError(t, st.Write(ctx, actions))
	result := s.Run(ctx)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	// strictly oldest first
	assert.Equal(t, []string{"1-a", "2-b"}, executor.executedIDs())
	queue, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestRunFailureKeepsActionWithIncrementedAttempts(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{failures: map[string]error{"1-a": errors.New("HTTP 500: Internal Server Error")}}
	s, st, _ := newTestSyncer(t, executor, true)
	require.NoError(t, st.Write(ctx, []modelqueue.QueuedAction{freshAction("1-a", 0, 3)}))
	result := s.Run(ctx)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Empty(t, result.Errors)
	queue, err := st.Read(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, 1, queue[0].Attempts)
	assert.Equal(t, "HTTP 500: Internal Server Error", queue[0].LastError)
	assert.Equal(t, modelqueue.StatusPending, queue[0].Status)
}

func TestRunExhaustionDiscardsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{failures: map[string]error{"1-a": errors.New("HTTP 500: Internal Server Error")}}
	s, st, _ := newTestSyncer(t, executor, true)
	require.NoError(t, st.Write(ctx, []modelqueue.QueuedAction{freshAction("1-a", 0, 3)}))
	for pass := 0; pass < 2; pass++ {
		s.Run(ctx)
		queue, err := st.Read(ctx)
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, pass+1, queue[0].Attempts)
	}
	result := s.Run(ctx)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "1-a", result.Errors[0].ActionID)
	assert.Equal(t, "HTTP 500: Internal Server Error", result.Errors[0].Reason)
	queue, err := st.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestRunExpiryDiscardsWithoutDelivery(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{}
	s, st, _ := newTestSyncer(t, executor, true)
	expired := freshAction("1-a", 0, 3)
	expired.Timestamp = time.Now().Add(-8 * 24 * time.Hour).UnixMilli()
	require.NoError(t, st.Write(ctx, []modelqueue.QueuedAction{expired, freshAction("2-b", 0, 3)}))
	result := s.Run(ctx)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "1-a", result.Errors[0].ActionID)
	assert.Equal(t, "Action expired", result.Errors[0].Reason)
	// the expired action never reaches the executor
	assert.Equal(t, []string{"2-b"}, executor.executedIDs())
}

func TestRunOverlappingInvocationSkips(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s, st, _ := newTestSyncer(t, executor, true)
	require.NoError(t, st.Write(ctx, []modelqueue.QueuedAction{freshAction("1-a", 0, 3)}))
	done := make(chan modelqueue.SyncResult, 1)
	go func() {
		done <- s.Run(ctx)
	}()
	<-executor.entered
	overlapping := s.Run(ctx)
	assert.Equal(t, 0, overlapping.Processed)
	assert.True(t, overlapping.Success)
	close(executor.block)
	first := <-done
	assert.Equal(t, 1, first.Processed)
	assert.Equal(t, 1, first.Succeeded)
}

func TestRunIdempotentOnEmptyQueue(t *testing.T) {
	ctx := context.Background()
	executor := &scriptedExecutor{}
	s, _, _ := newTestSyncer(t, executor, true)
	for i := 0; i < 3; i++ {
		result := s.Run(ctx)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.Processed)
	}
	assert.Empty(t, executor.executedIDs())
}
