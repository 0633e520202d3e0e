// Package modelstorage provides types for querying relational DB.

package modelstorage

type ActionStorageEntry struct {
	ID          uint   `db:"id"`
	ActionID    string `db:"action_id"`
	ActionType  string `db:"action_type"`
	Payload     string `db:"payload"`
	Endpoint    string `db:"endpoint"`
	Method      string `db:"method"`
	CreatedMS   int64  `db:"created_ms"`
	UpdatedMS   int64  `db:"updated_ms"`
	Attempts    int    `db:"attempts"`
	MaxAttempts int    `db:"max_attempts"`
	Status      string `db:"status"`
	LastError   string `db:"last_error"`
}
