// Package queue manages admission of deferred client actions into the
// durable offline queue.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	serviceErrors "github.com/danilovkiri/dk-go-offlineq/internal/service/queue/v1/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/registrar/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/storage/v1"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"time"
)

var allowedMethods = map[string]bool{
	"GET":    true,
	"POST":   true,
	"PUT":    true,
	"DELETE": true,
}

// Queue defines attributes of a struct available to its methods.
type Queue struct {
	store        storage.Store
	registrar    registrar.Registrar
	connectivity syncer.Connectivity
	cfg          *config.QueueConfig
	log          *zerolog.Logger
}

// InitService initializes the queue management service.
func InitService(st storage.Store, reg registrar.Registrar, connectivity syncer.Connectivity, cfg *config.QueueConfig, log *zerolog.Logger) (*Queue, error) {
	if st == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil store was passed to service initializer"}
	}
	if reg == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil registrar was passed to service initializer"}
	}
	if connectivity == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil connectivity monitor was passed to service initializer"}
	}
	if cfg == nil {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "nil queue configuration was passed to service initializer"}
	}
	if cfg.MaxQueueSize <= 0 {
		return nil, &serviceErrors.ServiceFoundNilArgument{Msg: "non-positive queue capacity was passed to service initializer"}
	}
	return &Queue{
		store:        st,
		registrar:    reg,
		connectivity: connectivity,
		cfg:          cfg,
		log:          log,
	}, nil
}

// Enqueue admits one action into the queue and returns its identifier.
// Admission beyond the capacity bound evicts the single oldest entry.
// Enqueue never blocks on delivery: background-sync registration is
// triggered eagerly when online and is fire-and-forget.
func (q *Queue) Enqueue(ctx context.Context, actionType modelqueue.ActionType, endpoint, method string, payload json.RawMessage) (string, error) {
	if _, ok := modelqueue.SyncTags[actionType]; !ok {
		return "", &serviceErrors.UnknownActionTypeError{Type: string(actionType)}
	}
	if !allowedMethods[method] {
		return "", &serviceErrors.IllegalMethodError{Method: method}
	}
	if endpoint == "" {
		return "", &serviceErrors.IllegalEndpointError{Endpoint: endpoint}
	}
	current, err := q.store.Read(ctx)
	if err != nil {
		return "", err
	}
	for len(current) >= q.cfg.MaxQueueSize {
		q.log.Warn().Msg(fmt.Sprintf("queue at capacity %v, evicting oldest action %s", q.cfg.MaxQueueSize, current[0].ID))
		current = current[1:]
	}
	nowMS := time.Now().UnixMilli()
	action := modelqueue.QueuedAction{
		ID:          fmt.Sprintf("%d-%s", nowMS, uuid.New().String()),
		Type:        actionType,
		Payload:     payload,
		Endpoint:    endpoint,
		Method:      method,
		Timestamp:   nowMS,
		UpdatedAt:   nowMS,
		Attempts:    0,
		MaxAttempts: q.cfg.MaxAttempts,
		Status:      modelqueue.StatusPending,
	}
	current = append(current, action)
	if err := q.store.Write(ctx, current); err != nil {
		return "", err
	}
	q.log.Info().Msg(fmt.Sprintf("enqueued %s action %s for %s %s", action.Type, action.ID, action.Method, action.Endpoint))
	if q.connectivity.IsOnline() {
		q.registrar.RegisterBackgroundSync(action.Type)
	}
	return action.ID, nil
}

// Stats aggregates the current queue without mutating it.
func (q *Queue) Stats(ctx context.Context) (*modelqueue.QueueStats, error) {
	current, err := q.store.Read(ctx)
	if err != nil {
		return nil, err
	}
	stats := modelqueue.QueueStats{
		Total:  len(current),
		ByType: make(map[modelqueue.ActionType]int),
	}
	for _, action := range current {
		stats.ByType[action.Type]++
	}
	if len(current) > 0 {
		stats.OldestTimestamp = current[0].Timestamp
		stats.NewestTimestamp = current[len(current)-1].Timestamp
	}
	return &stats, nil
}

// Clear empties both backends and returns the number of discarded actions.
func (q *Queue) Clear(ctx context.Context) (int, error) {
	return q.store.Clear(ctx)
}
