package infile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/logger"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	storageErrors "github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	log := logger.InitLog()
	cfg := config.StorageConfig{QueueFilePath: filepath.Join(t.TempDir(), "queue.json")}
	adapter, err := InitAdapter(&cfg, log)
	require.NoError(t, err)
	return adapter
}

func TestInitAdapterEmptyPath(t *testing.T) {
	log := logger.InitLog()
	_, err := InitAdapter(&config.StorageConfig{}, log)
	assert.Error(t, err)
}

func TestReadAllMissingFile(t *testing.T) {
	adapter := newTestAdapter(t)
	queue, err := adapter.ReadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, queue)
}

func TestWriteReadRoundTrip(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	queue := []modelqueue.QueuedAction{
		{
			ID:          "1700000000000-aaaa",
			Type:        modelqueue.ActionVote,
			Endpoint:    "/api/votes",
			Method:      "POST",
			Timestamp:   1700000000000,
			UpdatedAt:   1700000000000,
			MaxAttempts: 3,
			Status:      modelqueue.StatusPending,
		},
		{
			ID:          "1700000001000-bbbb",
			Type:        modelqueue.ActionContact,
			Endpoint:    "/api/contacts",
			Method:      "PUT",
			Timestamp:   1700000001000,
			UpdatedAt:   1700000002000,
			Attempts:    2,
			MaxAttempts: 3,
			Status:      modelqueue.StatusPending,
			LastError:   "HTTP 500: Internal Server Error",
		},
	}
	require.NoError(t, adapter.WriteAll(ctx, queue))
	restored, err := adapter.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, queue, restored)
}

func TestWriteAllReplacesSnapshot(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx := context.Background()
	require.NoError(t, adapter.WriteAll(ctx, []modelqueue.QueuedAction{{ID: "1-a"}, {ID: "2-b"}}))
	require.NoError(t, adapter.WriteAll(ctx, []modelqueue.QueuedAction{{ID: "3-c"}}))
	restored, err := adapter.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, restored, 1)
	assert.Equal(t, "3-c", restored[0].ID)
}

func TestReadAllCorruptSnapshot(t *testing.T) {
	adapter := newTestAdapter(t)
	require.NoError(t, os.WriteFile(adapter.path, []byte("{not json"), 0o644))
	_, err := adapter.ReadAll(context.Background())
	var decodingErr *storageErrors.SnapshotDecodingError
	assert.ErrorAs(t, err, &decodingErr)
}

func TestReadAllCancelledContext(t *testing.T) {
	adapter := newTestAdapter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := adapter.ReadAll(ctx)
	var timeoutErr *storageErrors.ContextTimeoutExceededError
	assert.ErrorAs(t, err, &timeoutErr)
}
