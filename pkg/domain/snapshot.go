package domain

import "time"

// Snapshot is the persisted record of a session lifecycle.
// It is written for inspection only; a new host process always starts Fresh.
type Snapshot struct {
	SessionID  string       `json:"session_id"`
	ClientName string       `json:"client_name"`
	Language   string       `json:"language"`
	State      SessionState `json:"state"`
	Dispatched int          `json:"dispatched"`
	UpdatedAt  time.Time    `json:"updated_at"`

	// Sealed carries the encrypted snapshot when the store encrypts at rest.
	// The other fields then only keep what is needed to list and monitor sessions.
	Sealed string `json:"sealed,omitempty"`
}
