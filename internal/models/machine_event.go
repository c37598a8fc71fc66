package models

import "time"

// MachineEvent is a single event-log entry.
type MachineEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CONNECT | DISCONNECT | ALARM | ERROR | JOB | INFO
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
