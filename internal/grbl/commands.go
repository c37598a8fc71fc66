package grbl

import (
	"fmt"
	"strings"

	"cnc_sender/internal/models"
)

// Interactive commands. Line commands go through the flow-controlled
// send path like any other command; the firmware defines the rest as
// single real-time bytes that bypass queuing entirely.

// Home runs the homing cycle.
func (e *Engine) Home() error { return e.Send("$H") }

// Unlock clears an alarm lock. The caller decides when recovery is safe;
// the engine never unlocks on its own.
func (e *Engine) Unlock() error { return e.Send("$X") }

// Jog moves one axis by dist millimeters at the given feed, relative to
// the current position.
func (e *Engine) Jog(axis rune, dist, feed float64) error {
	switch axis {
	case 'X', 'Y', 'Z':
	default:
		return fmt.Errorf("invalid jog axis %q", axis)
	}
	if feed <= 0 {
		return fmt.Errorf("invalid jog feed %g", feed)
	}
	return e.Send(fmt.Sprintf("$J=G21G91F%g%c%.4f", feed, axis, dist))
}

// JogCancel aborts any in-progress jog.
func (e *Engine) JogCancel() error { return e.WriteRealtime(rtJogCancel) }

// FeedHold pauses machine motion.
func (e *Engine) FeedHold() error { return e.WriteRealtime(rtFeedHold) }

// CycleResume releases a feed hold.
func (e *Engine) CycleResume() error { return e.WriteRealtime(rtCycleStart) }

// SetZero zeroes the work coordinate offset for the given axes ("XYZ",
// "Z", ...).
func (e *Engine) SetZero(axes string) error {
	axes = strings.ToUpper(strings.TrimSpace(axes))
	if axes == "" {
		return fmt.Errorf("no axes given")
	}
	cmd := "G10L20P1"
	for _, axis := range axes {
		switch axis {
		case 'X', 'Y', 'Z':
			cmd += fmt.Sprintf("%c0", axis)
		default:
			return fmt.Errorf("invalid axis %q", axis)
		}
	}
	return e.Send(cmd)
}

// GoToZero rapids to work zero on X and Y, then drops Z. Two lines so the
// tool clears the work before plunging.
func (e *Engine) GoToZero() error {
	if err := e.Send("G90G0X0Y0"); err != nil {
		return err
	}
	return e.Send("G90G0Z0")
}

// SoftReset flushes the firmware's planner and receive buffer. Local
// flow-control accounting resets with it: everything unacknowledged was
// just wiped, so no acks for it will ever arrive.
func (e *Engine) SoftReset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.softResetLocked()
}

func (e *Engine) softResetLocked() error {
	if err := e.writeRealtimeLocked(rtSoftReset); err != nil {
		return err
	}
	e.inflight = nil
	e.waiting = nil
	e.failJobLocked(models.JobStopped, "soft reset")
	return nil
}

// SetFeedOverride steps the feed override toward an absolute target
// percentage. Each step is its own real-time byte, written individually.
func (e *Engine) SetFeedOverride(target int) error {
	seq, err := feedOverrideBytes(target)
	if err != nil {
		return err
	}
	return e.writeRealtimeSeq(seq)
}

// SetSpindleOverride steps the spindle override toward target.
func (e *Engine) SetSpindleOverride(target int) error {
	seq, err := spindleOverrideBytes(target)
	if err != nil {
		return err
	}
	return e.writeRealtimeSeq(seq)
}

// SetRapidOverride selects one of the firmware's fixed rapid levels
// (25, 50 or 100 percent).
func (e *Engine) SetRapidOverride(target int) error {
	b, err := rapidOverrideByte(target)
	if err != nil {
		return err
	}
	return e.WriteRealtime(b)
}

func (e *Engine) writeRealtimeSeq(seq []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, b := range seq {
		if err := e.writeRealtimeLocked(b); err != nil {
			return err
		}
	}
	return nil
}
