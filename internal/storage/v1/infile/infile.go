package infile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	storageErrors "github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/errors"
	"github.com/rs/zerolog"
	"os"
	"path/filepath"
	"sync"
)

// snapshot is the on-disk shape of the mirrored queue, one JSON document per file.
type snapshot struct {
	Actions []modelqueue.QueuedAction `json:"actions"`
}

// Adapter implements the flat key-value queue mirror on a single snapshot file.
type Adapter struct {
	mu   sync.Mutex
	path string
	log  *zerolog.Logger
}

// InitAdapter sets up a file-backed queue mirror at the configured path.
func InitAdapter(cfg *config.StorageConfig, log *zerolog.Logger) (*Adapter, error) {
	if cfg.QueueFilePath == "" {
		return nil, &storageErrors.SnapshotIOError{Err: errors.New("empty queue snapshot path")}
	}
	st := Adapter{
		path: cfg.QueueFilePath,
		log:  log,
	}
	log.Info().Msg(fmt.Sprintf("file queue mirror initialized at %s", cfg.QueueFilePath))
	return &st, nil
}

// ReadAll retrieves every queued action from the snapshot file.
func (s *Adapter) ReadAll(ctx context.Context) ([]modelqueue.QueuedAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		s.log.Error().Err(err).Msg("reading queue snapshot failed")
		return nil, &storageErrors.SnapshotIOError{Err: err}
	}
	var persisted snapshot
	if err := json.Unmarshal(data, &persisted); err != nil {
		s.log.Error().Err(err).Msg("decoding queue snapshot failed")
		return nil, &storageErrors.SnapshotDecodingError{Err: err}
	}
	return persisted.Actions, nil
}

// WriteAll replaces the snapshot file contents with the passed queue atomically.
func (s *Adapter) WriteAll(ctx context.Context, queue []modelqueue.QueuedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return &storageErrors.ContextTimeoutExceededError{Err: err}
	}
	data, err := json.Marshal(snapshot{Actions: queue})
	if err != nil {
		return &storageErrors.SnapshotDecodingError{Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Error().Err(err).Msg("writing queue snapshot failed")
		return &storageErrors.SnapshotIOError{Err: err}
	}
	// write-then-rename keeps the snapshot intact if the process dies mid-write
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.log.Error().Err(err).Msg("writing queue snapshot failed")
		return &storageErrors.SnapshotIOError{Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error().Err(err).Msg("writing queue snapshot failed")
		return &storageErrors.SnapshotIOError{Err: err}
	}
	return nil
}

// Close is a no-op for the file mirror.
func (s *Adapter) Close() error {
	return nil
}
