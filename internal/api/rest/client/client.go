// Package client implements a single-attempt delivery client for replayed
// offline actions.
package client

import (
	"context"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelqueue"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"net/http"
	"strconv"
	"strings"
)

// Client defines attributes of a struct available to its methods.
type Client struct {
	client       *resty.Client
	serverConfig *config.ServerConfig
	log          *zerolog.Logger
}

// InitClient initializes a resty client for action delivery.
func InitClient(serverConfig *config.ServerConfig, log *zerolog.Logger) *Client {
	deliveryClient := resty.New()
	log.Info().Msg("delivery client initialized")
	return &Client{client: deliveryClient, serverConfig: serverConfig, log: log}
}

// Execute performs exactly one delivery attempt for one action. The request
// carries headers identifying it as a replayed offline action together with
// the original creation timestamp so the server can deduplicate and order.
// Any non-2xx response or transport error classifies as failure; retry
// decisions belong to the caller.
func (c *Client) Execute(ctx context.Context, action modelqueue.QueuedAction) error {
	url := action.Endpoint
	if strings.HasPrefix(url, "/") {
		url = c.serverConfig.TargetAddress + url
	}
	request := c.client.R().
		SetContext(ctx).
		SetHeader("X-Offline-Replay", "true").
		SetHeader("X-Original-Timestamp", strconv.FormatInt(action.Timestamp, 10)).
		SetHeader("X-Action-Id", action.ID)
	if len(action.Payload) > 0 && action.Method != http.MethodGet {
		request.SetHeader("Content-Type", "application/json").SetBody([]byte(action.Payload))
	}
	response, err := request.Execute(action.Method, url)
	if err != nil {
		c.log.Err(err).Msg(fmt.Sprintf("delivery attempt failed for action %s", action.ID))
		return err
	}
	if response.StatusCode() < 200 || response.StatusCode() >= 300 {
		deliveryErr := fmt.Errorf("HTTP %d: %s", response.StatusCode(), http.StatusText(response.StatusCode()))
		c.log.Warn().Msg(fmt.Sprintf("delivery attempt for action %s got %s", action.ID, deliveryErr.Error()))
		return deliveryErr
	}
	return nil
}
