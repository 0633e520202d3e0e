package handlers

import (
	"net/http"
	"time"

	handlersErrors "github.com/danilovkiri/dk-go-offlineq/internal/api/rest/errors"
	"github.com/danilovkiri/dk-go-offlineq/internal/service/notifier/v1/notifier"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	eventQueueSize  = "queue.size"
	eventSyncResult = "sync.result"
	writeWait       = 10 * time.Second
	pingInterval    = 30 * time.Second
)

// wsEnvelope wraps all websocket messages.
type wsEnvelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// EventHandler streams queue-size and sync-result events to websocket clients.
type EventHandler struct {
	events   *notifier.Notifier
	upgrader websocket.Upgrader
	log      *zerolog.Logger
}

// InitEventHandler initializes a websocket event handler over the notifier.
func InitEventHandler(events *notifier.Notifier, log *zerolog.Logger) (*EventHandler, error) {
	if events == nil {
		return nil, &handlersErrors.HandlersFoundNilArgument{Msg: "nil notifier was passed to event handler initializer"}
	}
	return &EventHandler{
		events: events,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: log,
	}, nil
}

// HandleEvents upgrades the connection and forwards notifier events until
// the client goes away.
func (h *EventHandler) HandleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Error().Err(err).Msg("HandleEvents failed")
			return
		}
		sub := h.events.Subscribe()
		defer h.events.Unsubscribe(sub)
		defer conn.Close()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		pinger := time.NewTicker(pingInterval)
		defer pinger.Stop()
		for {
			select {
			case <-done:
				return
			case event := <-sub.QueueSize:
				if err := h.writeEnvelope(conn, eventQueueSize, event); err != nil {
					return
				}
			case result := <-sub.SyncResult:
				if err := h.writeEnvelope(conn, eventSyncResult, result); err != nil {
					return
				}
			case <-pinger.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}

func (h *EventHandler) writeEnvelope(conn *websocket.Conn, eventType string, data interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
}
