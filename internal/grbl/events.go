package grbl

import (
	"time"

	"cnc_sender/internal/models"
)

// EventType tags engine events on the single subscribable stream.
type EventType string

const (
	EventStatus     EventType = "status"     // new MachineStatus snapshot
	EventProgress   EventType = "progress"   // job progress update
	EventJob        EventType = "job"        // job lifecycle transition
	EventError      EventType = "error"      // firmware error:<code> reply
	EventAlarm      EventType = "alarm"      // firmware ALARM:<code> push
	EventInfo       EventType = "info"       // banner, bracketed feedback, unclassified lines
	EventDisconnect EventType = "disconnect" // transport closed or failed mid-session
)

// Event is one entry on the engine's event stream. Only the fields
// relevant to the Type are populated.
type Event struct {
	Type     EventType             `json:"type"`
	At       time.Time             `json:"at"`
	Status   *models.MachineStatus `json:"status,omitempty"`
	Progress *models.JobProgress   `json:"progress,omitempty"`
	Job      string                `json:"job,omitempty"`  // job name for job/progress events
	Code     string                `json:"code,omitempty"` // error/alarm code
	Line     string                `json:"line,omitempty"` // raw line for info events
	Cause    string                `json:"cause,omitempty"`
}

// emit delivers without ever blocking the serial read path: a consumer
// that stops draining loses events rather than stalling flow control.
func (e *Engine) emit(ev Event) {
	ev.At = time.Now().UTC()
	select {
	case e.events <- ev:
	default:
		e.dropped.Add(1)
	}
}
