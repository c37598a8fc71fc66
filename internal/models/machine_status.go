package models

import "time"

// Position is a 3-axis coordinate in millimeters.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Overrides holds the firmware's feed/rapid/spindle override percentages.
// GRBL reports all three as integers; 100 means "no override".
type Overrides struct {
	Feed    int `json:"feed"`
	Rapid   int `json:"rapid"`
	Spindle int `json:"spindle"`
}

// BufferState is the advisory planner/receive capacity from a Bf segment.
type BufferState struct {
	PlannerFree int `json:"planner_free"`
	RxFree      int `json:"rx_free"`
}

// MachineStatus is one decoded status report. It is replaced wholesale on
// every report the firmware sends; consumers read the latest snapshot or
// subscribe to status events.
type MachineStatus struct {
	State           string      `json:"state"` // Idle | Run | Hold | Jog | Alarm | Door:0 | ...
	MachinePosition Position    `json:"machine_position"`
	WorkPosition    Position    `json:"work_position"`
	FeedRate        float64     `json:"feed_rate"`
	SpindleSpeed    float64     `json:"spindle_speed"`
	Buffer          BufferState `json:"buffer"`
	Overrides       Overrides   `json:"overrides"`
	Pins            string      `json:"pins,omitempty"` // raw Pn string, e.g. "XYZ" or "P"
	UpdatedAt       time.Time   `json:"updated_at"`
}
