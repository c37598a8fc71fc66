package grbl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cnc_sender/internal/models"
)

// LineKind classifies one framed reply line.
type LineKind int

const (
	// LineStatus is an angle-bracketed status report.
	LineStatus LineKind = iota
	// LineAck is the exact "ok" reply that releases one in-flight command.
	LineAck
	// LineError is an "error:<code>" reply; it releases a slot like an ack.
	LineError
	// LineAlarm is an asynchronous "ALARM:<code>" push, not a reply.
	LineAlarm
	// LineInfo covers bracketed feedback and the version banner.
	LineInfo
	// LineOther is any non-empty line the protocol does not define.
	LineOther
)

// Classify decides what a framed line is. For error and alarm lines the
// returned code is the firmware's numeric suffix ("" when absent or
// malformed, which GRBL does not normally produce).
func Classify(line string) (LineKind, string) {
	line = strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(line, "<"):
		return LineStatus, ""
	case line == "ok":
		return LineAck, ""
	case strings.HasPrefix(line, "error:"):
		return LineError, strings.TrimPrefix(line, "error:")
	case strings.HasPrefix(line, "ALARM:"):
		return LineAlarm, strings.TrimPrefix(line, "ALARM:")
	case strings.HasPrefix(line, "["), strings.HasPrefix(line, "Grbl"):
		return LineInfo, ""
	default:
		return LineOther, ""
	}
}

// ParseStatus decodes one "<state|KEY:v,v|...>" report into a fresh
// snapshot. Unknown keys are skipped for forward compatibility; override
// percentages default to 100 when the Ov segment is absent.
func ParseStatus(line string) (models.MachineStatus, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "<") || !strings.HasSuffix(line, ">") {
		return models.MachineStatus{}, fmt.Errorf("not a status report: %q", line)
	}

	parts := strings.Split(strings.Trim(line, "<>"), "|")
	stat := models.MachineStatus{
		State:     parts[0],
		Overrides: models.Overrides{Feed: 100, Rapid: 100, Spindle: 100},
		UpdatedAt: time.Now().UTC(),
	}

	var wposSet bool
	var wco models.Position
	var wcoSet bool

	for _, part := range parts[1:] {
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 {
			continue
		}
		var err error
		switch kv[0] {
		case "MPos":
			stat.MachinePosition, err = parseVector(kv[1])
		case "WPos":
			stat.WorkPosition, err = parseVector(kv[1])
			wposSet = err == nil
		case "WCO":
			wco, err = parseVector(kv[1])
			wcoSet = err == nil
		case "Bf":
			stat.Buffer, err = parseBuffer(kv[1])
		case "FS":
			err = parseFeedSpindle(kv[1], &stat)
		case "F":
			stat.FeedRate, err = strconv.ParseFloat(kv[1], 64)
		case "Ov":
			stat.Overrides, err = parseOverrides(kv[1])
		case "Pn":
			stat.Pins = kv[1]
		default:
			// Unknown key: ignore, newer firmware adds segments freely.
		}
		if err != nil {
			return models.MachineStatus{}, fmt.Errorf("parse %s %q: %w", kv[0], kv[1], err)
		}
	}

	// Work position derives from the offset when not reported directly.
	if !wposSet && wcoSet {
		stat.WorkPosition = models.Position{
			X: stat.MachinePosition.X - wco.X,
			Y: stat.MachinePosition.Y - wco.Y,
			Z: stat.MachinePosition.Z - wco.Z,
		}
	}

	return stat, nil
}

// parseVector reads up to three comma-separated floats; missing axes
// default to zero.
func parseVector(s string) (models.Position, error) {
	var pos models.Position
	dst := []*float64{&pos.X, &pos.Y, &pos.Z}
	for i, field := range strings.Split(s, ",") {
		if i >= len(dst) {
			break
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			return models.Position{}, err
		}
		*dst[i] = v
	}
	return pos, nil
}

func parseBuffer(s string) (models.BufferState, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return models.BufferState{}, fmt.Errorf("want 2 fields, got %d", len(fields))
	}
	planner, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return models.BufferState{}, err
	}
	rx, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return models.BufferState{}, err
	}
	return models.BufferState{PlannerFree: planner, RxFree: rx}, nil
}

func parseFeedSpindle(s string, stat *models.MachineStatus) error {
	fields := strings.Split(s, ",")
	if len(fields) != 2 {
		return fmt.Errorf("want 2 fields, got %d", len(fields))
	}
	feed, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
	if err != nil {
		return err
	}
	spindle, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return err
	}
	stat.FeedRate = feed
	stat.SpindleSpeed = spindle
	return nil
}

func parseOverrides(s string) (models.Overrides, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 3 {
		return models.Overrides{}, fmt.Errorf("want 3 fields, got %d", len(fields))
	}
	var vals [3]int
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return models.Overrides{}, err
		}
		vals[i] = v
	}
	return models.Overrides{Feed: vals[0], Rapid: vals[1], Spindle: vals[2]}, nil
}
