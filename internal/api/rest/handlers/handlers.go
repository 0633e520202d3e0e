// Package handlers provides API endpoint handling functionality.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	handlersErrors "github.com/danilovkiri/dk-go-offlineq/internal/api/rest/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modeldto"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/queue/v1"
	queueErrors "github.com/danilovkiri/dk-go-offlineq/internal/service/queue/v1/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/secretary/v1"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/syncer/v1"
	storageErrors "github.com/danilovkiri/dk-go-offlineq/internal/storage/v1/errors"
	"github.com/rs/zerolog"
)

// Handler defines attributes of a struct available to its methods.
type Handler struct {
	service      queue.Manager
	orchestrator syncer.Orchestrator
	secretary    secretary.Secretary
	log          *zerolog.Logger
}

// InitHandlers initializes a handler object.
func InitHandlers(mainService queue.Manager, orchestrator syncer.Orchestrator, sec secretary.Secretary, log *zerolog.Logger) (*Handler, error) {
	if mainService == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil queue manager was passed to handlers initializer"}
	}
	if orchestrator == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil orchestrator was passed to handlers initializer"}
	}
	if sec == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil secretary was passed to handlers initializer"}
	}
	return &Handler{service: mainService, orchestrator: orchestrator, secretary: sec, log: log}, nil
}

// HandleToken issues a client access token for the mutating routes.
func (h *Handler) HandleToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accessToken, clientID, err := h.secretary.NewToken()
		if err != nil {
			h.log.Error().Err(err).Msg("HandleToken failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("issued access token for client %s", clientID))
		resBody, err := json.Marshal(modeldto.TokenResponse{AccessToken: accessToken})
		if err != nil {
			h.log.Error().Err(err).Msg("HandleToken failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Authorization", "Bearer "+accessToken)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resBody)
	}
}

// HandleEnqueue processes new action admission requests.
func (h *Handler) HandleEnqueue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "Invalid Content-Type", http.StatusBadRequest)
			return
		}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleEnqueue failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var enqueueRequest modeldto.EnqueueRequest
		err = json.Unmarshal(b, &enqueueRequest)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleEnqueue failed")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("new enqueue request detected for %s %s", enqueueRequest.Method, enqueueRequest.Endpoint))
		id, err := h.service.Enqueue(ctx, modelqueue.ActionType(enqueueRequest.Type), enqueueRequest.Endpoint, enqueueRequest.Method, enqueueRequest.Payload)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleEnqueue failed")
			var contextTimeoutExceededError *storageErrors.ContextTimeoutExceededError
			var unknownActionTypeError *queueErrors.UnknownActionTypeError
			var illegalMethodError *queueErrors.IllegalMethodError
			var illegalEndpointError *queueErrors.IllegalEndpointError
			if errors.As(err, &contextTimeoutExceededError) {
				http.Error(w, err.Error(), http.StatusGatewayTimeout)
			} else if errors.As(err, &unknownActionTypeError) || errors.As(err, &illegalMethodError) || errors.As(err, &illegalEndpointError) {
				http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			} else {
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
			return
		}
		resBody, err := json.Marshal(modeldto.EnqueueResponse{ID: id})
		if err != nil {
			h.log.Error().Err(err).Msg("HandleEnqueue failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		w.Write(resBody)
	}
}

// HandleStats processes queue statistics query requests.
func (h *Handler) HandleStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		stats, err := h.service.Stats(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleStats failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		resBody, err := json.Marshal(stats)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleStats failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resBody)
	}
}

// HandleClear processes explicit queue reset requests.
func (h *Handler) HandleClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		discarded, err := h.service.Clear(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleClear failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		h.log.Info().Msg(fmt.Sprintf("queue reset discarded %v action(s)", discarded))
		resBody, err := json.Marshal(modeldto.ClearResponse{Discarded: discarded})
		if err != nil {
			h.log.Error().Err(err).Msg("HandleClear failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resBody)
	}
}

// HandleSyncNow processes manual "retry now" requests by running one sync
// pass and returning its result.
func (h *Handler) HandleSyncNow() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result := h.orchestrator.Run(r.Context())
		resBody, err := json.Marshal(result)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleSyncNow failed")
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(resBody)
	}
}
