package inpsql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	storageErrors "github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/modelstorage"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/rs/zerolog"
	"sync"
)

// Adapter implements the transactional queue storage backend on PSQL.
type Adapter struct {
	mu  sync.Mutex
	Cfg *config.StorageConfig
	DB  *sql.DB
	log *zerolog.Logger
}

// InitAdapter establishes a PSQL connection and prepares the actions table.
func InitAdapter(ctx context.Context, cfg *config.StorageConfig, log *zerolog.Logger) (*Adapter, error) {
	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, &storageErrors.ExecutionPSQLError{Err: err}
	}
	st := Adapter{
		Cfg: cfg,
		DB:  db,
		log: log,
	}
	err = st.createTable(ctx)
	if err != nil {
		return nil, &storageErrors.ExecutionPSQLError{Err: err}
	}
	log.Info().Msg("PSQL DB connection was established")
	return &st, nil
}

// ReadAll retrieves every queued action currently persisted in PSQL.
func (s *Adapter) ReadAll(ctx context.Context) ([]modelqueue.QueuedAction, error) {
	selectStmt, err := s.DB.PrepareContext(ctx, "SELECT * FROM offline_actions ORDER BY created_ms ASC")
	if err != nil {
		return nil, &storageErrors.StatementPSQLError{Err: err}
	}
	defer selectStmt.Close()
	chanOk := make(chan []modelqueue.QueuedAction)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		rows, err := selectStmt.QueryContext(ctx)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer rows.Close()
		var queryOutput []modelqueue.QueuedAction
		for rows.Next() {
			var queryOutputRow modelstorage.ActionStorageEntry
			err = rows.Scan(&queryOutputRow.ID, &queryOutputRow.ActionID, &queryOutputRow.ActionType, &queryOutputRow.Payload, &queryOutputRow.Endpoint, &queryOutputRow.Method, &queryOutputRow.CreatedMS, &queryOutputRow.UpdatedMS, &queryOutputRow.Attempts, &queryOutputRow.MaxAttempts, &queryOutputRow.Status, &queryOutputRow.LastError)
			if err != nil {
				chanEr <- &storageErrors.ScanningPSQLError{Err: err}
				return
			}
			queryOutput = append(queryOutput, toQueuedAction(queryOutputRow))
		}
		err = rows.Err()
		if err != nil {
			chanEr <- &storageErrors.ScanningPSQLError{Err: err}
			return
		}
		chanOk <- queryOutput
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("reading actions from PSQL failed")
		return nil, &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("reading actions from PSQL failed")
		return nil, methodErr
	case queue := <-chanOk:
		return queue, nil
	}
}

// WriteAll replaces the persisted queue with the passed one in a single transaction.
func (s *Adapter) WriteAll(ctx context.Context, queue []modelqueue.QueuedAction) error {
	chanOk := make(chan bool)
	chanEr := make(chan error)
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		tx, err := s.DB.BeginTx(ctx, nil)
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		defer tx.Rollback()
		_, err = tx.ExecContext(ctx, "DELETE FROM offline_actions")
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		insertStmt, err := tx.PrepareContext(ctx, "INSERT INTO offline_actions (action_id, action_type, payload, endpoint, method, created_ms, updated_ms, attempts, max_attempts, status, last_error) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)")
		if err != nil {
			chanEr <- &storageErrors.StatementPSQLError{Err: err}
			return
		}
		defer insertStmt.Close()
		for _, action := range queue {
			_, err = insertStmt.ExecContext(ctx, action.ID, string(action.Type), string(action.Payload), action.Endpoint, action.Method, action.Timestamp, action.UpdatedAt, action.Attempts, action.MaxAttempts, string(action.Status), action.LastError)
			if err != nil {
				if err, ok := err.(*pgconn.PgError); ok && err.Code == pgerrcode.UniqueViolation {
					chanEr <- &storageErrors.AlreadyExistsError{Err: err, ID: action.ID}
					return
				}
				chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
				return
			}
		}
		err = tx.Commit()
		if err != nil {
			chanEr <- &storageErrors.ExecutionPSQLError{Err: err}
			return
		}
		chanOk <- true
	}()
	select {
	case <-ctx.Done():
		s.log.Error().Err(ctx.Err()).Msg("writing actions to PSQL failed")
		return &storageErrors.ContextTimeoutExceededError{Err: ctx.Err()}
	case methodErr := <-chanEr:
		s.log.Error().Err(methodErr).Msg("writing actions to PSQL failed")
		return methodErr
	case <-chanOk:
		s.log.Info().Msg(fmt.Sprintf("checkpointed %v actions to PSQL", len(queue)))
		return nil
	}
}

// Close closes the underlying DB connection.
func (s *Adapter) Close() error {
	return s.DB.Close()
}

func (s *Adapter) createTable(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS offline_actions (
		id           BIGSERIAL NOT NULL,
		action_id    TEXT      NOT NULL UNIQUE,
		action_type  TEXT      NOT NULL,
		payload      TEXT      NOT NULL,
		endpoint     TEXT      NOT NULL,
		method       TEXT      NOT NULL,
		created_ms   BIGINT    NOT NULL,
		updated_ms   BIGINT    NOT NULL,
		attempts     INT       NOT NULL,
		max_attempts INT       NOT NULL,
		status       TEXT      NOT NULL,
		last_error   TEXT      NOT NULL DEFAULT ''
	);`
	_, err := s.DB.ExecContext(ctx, query)
	return err
}

func toQueuedAction(entry modelstorage.ActionStorageEntry) modelqueue.QueuedAction {
	var payload json.RawMessage
	if entry.Payload != "" {
		payload = json.RawMessage(entry.Payload)
	}
	return modelqueue.QueuedAction{
		ID:          entry.ActionID,
		Type:        modelqueue.ActionType(entry.ActionType),
		Payload:     payload,
		Endpoint:    entry.Endpoint,
		Method:      entry.Method,
		Timestamp:   entry.CreatedMS,
		UpdatedAt:   entry.UpdatedMS,
		Attempts:    entry.Attempts,
		MaxAttempts: entry.MaxAttempts,
		Status:      modelqueue.ActionStatus(entry.Status),
		LastError:   entry.LastError,
	}
}
