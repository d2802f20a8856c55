package models

import (
	"time"
)

// SessionState is the lifecycle step a document session is in
type SessionState string

// Session states. A failed sequence leaves the session in the state of the failing step.
const (
	StateIdle       SessionState = "idle"
	StateLoading    SessionState = "loading"
	StateCreating   SessionState = "creating"
	StatePersisting SessionState = "persisting"
	StateEditing    SessionState = "editing"
	StateActive     SessionState = "active"
	StateUpdating   SessionState = "updating"
	StateDeleting   SessionState = "deleting"
	StateClearing   SessionState = "clearing"
)

// Event represents a recorded session state transition
type Event struct {
	ID         string       `json:"id"`
	DocumentID string       `json:"documentId"`
	Operation  string       `json:"operation"` // created, loaded, saved, enable, disable
	From       SessionState `json:"from"`
	To         SessionState `json:"to"`
	MockID     string       `json:"mockId,omitempty"`
	Error      string       `json:"error,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// EventFilter represents filters for querying events
type EventFilter struct {
	DocumentID string `json:"documentId,omitempty"`
	Operation  string `json:"operation,omitempty"`
	FailedOnly bool   `json:"failedOnly,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}
