package service

import "time"

// ConnectParams selects the serial port for a session.
type ConnectParams struct {
	Device string // e.g. /dev/ttyUSB0
	Baud   int    // 0 means the 115200 default
}

type JogParams struct {
	Axis     string  // "X" | "Y" | "Z"
	Distance float64 // signed, mm
	Feed     float64 // mm/min
}

// OverrideParams adjusts one firmware override channel.
type OverrideParams struct {
	Kind   string // "feed" | "spindle" | "rapid"
	Target int    // percent
}

// JobParams carries a program to stream. Gcode is the raw file body;
// line filtering happens downstream.
type JobParams struct {
	Name  string
	Gcode string
}

// LogFilter narrows event-log queries by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", "CONNECT", "DISCONNECT", "ALARM", "ERROR", "JOB", "INFO"
}
