package modeldto

import "encoding/json"

type (
	EnqueueRequest struct {
		Type     string          `json:"type"`
		Endpoint string          `json:"endpoint"`
		Method   string          `json:"method"`
		Payload  json.RawMessage `json:"payload,omitempty"`
	}
	EnqueueResponse struct {
		ID string `json:"id"`
	}
	ClearResponse struct {
		Discarded int `json:"discarded"`
	}
	TokenResponse struct {
		AccessToken string `json:"access_token"`
	}
)
