// Package modelqueue provides types for queueing deferred client actions.

package modelqueue

import "encoding/json"

// ActionType enumerates the kinds of deferrable client actions.
type ActionType string

const (
	ActionVote          ActionType = "vote"
	ActionCivicAction   ActionType = "civic_action"
	ActionContact       ActionType = "contact"
	ActionPollCreate    ActionType = "poll_create"
	ActionProfileUpdate ActionType = "profile_update"
	ActionHashtagFollow ActionType = "hashtag_follow"
)

// SyncTags maps an action type to its background-sync registration tag.
// Adding a new action type is a data change here, not a control-flow change.
var SyncTags = map[ActionType]string{
	ActionVote:          "sync-votes",
	ActionCivicAction:   "sync-civic-actions",
	ActionContact:       "sync-contacts",
	ActionPollCreate:    "sync-poll-creates",
	ActionProfileUpdate: "sync-profile-updates",
	ActionHashtagFollow: "sync-hashtag-follows",
}

// ActionStatus marks the in-pass state of a queued action.
type ActionStatus string

const (
	StatusPending ActionStatus = "pending"
	StatusSyncing ActionStatus = "syncing"
)

// QueuedAction is a durable record of a client-initiated write deferred for later delivery.
type QueuedAction struct {
	ID          string          `json:"id"`
	Type        ActionType      `json:"type"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Endpoint    string          `json:"endpoint"`
	Method      string          `json:"method"`
	Timestamp   int64           `json:"timestamp"`
	UpdatedAt   int64           `json:"updated_at"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Status      ActionStatus    `json:"status"`
	LastError   string          `json:"last_error,omitempty"`
}

// SyncError describes one discarded action within a sync pass result.
type SyncError struct {
	ActionID string     `json:"action_id"`
	Type     ActionType `json:"type"`
	Reason   string     `json:"reason"`
}

// SyncResult summarizes one full pass over the queue.
type SyncResult struct {
	Success   bool        `json:"success"`
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Errors    []SyncError `json:"errors"`
}

// QueueStats is a read-only aggregate over the current queue.
type QueueStats struct {
	Total           int                `json:"total"`
	ByType          map[ActionType]int `json:"by_type"`
	OldestTimestamp int64              `json:"oldest_timestamp"`
	NewestTimestamp int64              `json:"newest_timestamp"`
}

// QueueSizeEvent notifies collaborators of a queue length change.
type QueueSizeEvent struct {
	Size      int   `json:"size"`
	UpdatedAt int64 `json:"updated_at"`
}
