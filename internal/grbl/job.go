package grbl

import (
	"math"
	"strings"
	"time"

	"cnc_sender/internal/models"
)

// job is the one active streamed program. Mutated only under the engine
// mutex.
type job struct {
	name      string
	lines     []string
	cursor    int // index of the next unsent line
	pending   int // job lines in flight
	startedAt time.Time
	status    models.JobStatus
}

func (j *job) active() bool {
	return j.status == models.JobRunning || j.status == models.JobPaused
}

func (j *job) progress() models.JobProgress {
	total := len(j.lines)
	pct := float64(j.cursor) / float64(total) * 100
	elapsed := time.Since(j.startedAt)

	// Linear extrapolation; zero until there is something to extrapolate
	// from, and zero again if the arithmetic goes non-finite.
	var remaining time.Duration
	if pct > 0 {
		rem := elapsed.Seconds() * (100 - pct) / pct
		if !math.IsNaN(rem) && !math.IsInf(rem, 0) && rem > 0 {
			remaining = time.Duration(rem * float64(time.Second))
		}
	}

	return models.JobProgress{
		Status:             j.status,
		CurrentLine:        j.cursor,
		TotalLines:         total,
		PercentComplete:    pct,
		Elapsed:            elapsed,
		EstimatedRemaining: remaining,
	}
}

// filterJobLines drops blank lines and full-line comments (leading ';'
// or '('), keeping everything the firmware would acknowledge.
func filterJobLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "(") {
			continue
		}
		out = append(out, line)
	}
	return out
}

// StartJob filters the program and begins streaming it. Exactly one job
// may be active; a program with nothing left after filtering is an error.
func (e *Engine) StartJob(name string, lines []string) error {
	filtered := filterJobLines(lines)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tr == nil {
		return ErrNotConnected
	}
	if e.job != nil && e.job.active() {
		return ErrJobRunning
	}
	if len(filtered) == 0 {
		return ErrEmptyJob
	}

	e.job = &job{
		name:      name,
		lines:     filtered,
		startedAt: time.Now(),
		status:    models.JobRunning,
	}
	e.jobGen++
	e.log.Infow("job started", "name", name, "lines", len(filtered))
	e.emitJobLocked()
	e.pumpLocked()
	return nil
}

// PauseJob sends the feed-hold signal. Motion stops; lines already queued
// in the firmware stay queued, and the streamer keeps filling free slots.
func (e *Engine) PauseJob() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || !e.job.active() {
		return ErrNoActiveJob
	}
	if err := e.writeRealtimeLocked(rtFeedHold); err != nil {
		return err
	}
	e.job.status = models.JobPaused
	e.emitJobLocked()
	return nil
}

// ResumeJob sends cycle-start to release a feed hold.
func (e *Engine) ResumeJob() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || e.job.status != models.JobPaused {
		return ErrNoActiveJob
	}
	if err := e.writeRealtimeLocked(rtCycleStart); err != nil {
		return err
	}
	e.job.status = models.JobRunning
	e.emitJobLocked()
	e.pumpLocked()
	return nil
}

// StopJob cancels the local job state immediately, holds feed, and a
// short delay later soft-resets the firmware to flush its own queue.
// Hold-then-reset keeps the reset from landing at full feed rate.
func (e *Engine) StopJob() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job == nil || !e.job.active() {
		return ErrNoActiveJob
	}

	e.failJobLocked(models.JobStopped, "stopped by request")
	if err := e.writeRealtimeLocked(rtFeedHold); err != nil {
		return err
	}
	gen := e.jobGen
	time.AfterFunc(stopResetDelay, func() {
		e.mu.Lock()
		// A job started during the delay must not inherit this reset.
		if e.jobGen != gen {
			e.mu.Unlock()
			return
		}
		err := e.softResetLocked()
		e.mu.Unlock()
		if err != nil && err != ErrNotConnected {
			e.log.Errorw("soft reset after stop", "err", err)
		}
	})
	return nil
}

// JobProgress returns the live progress of the active job, or the final
// progress of the last finished one.
func (e *Engine) JobProgress() models.JobProgress {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.job != nil {
		return e.job.progress()
	}
	return e.lastJob
}

// pumpLocked sends job lines while in-flight slots are free. Invoked on
// start, resume and after every ack/error.
func (e *Engine) pumpLocked() {
	j := e.job
	if j == nil || !j.active() {
		return
	}

	for len(e.inflight) < pendingCap && len(e.waiting) == 0 && j.cursor < len(j.lines) {
		if err := e.writeLineLocked(j.lines[j.cursor], true); err != nil {
			e.log.Errorw("job write failed", "line", j.cursor, "err", err)
			e.failJobLocked(models.JobFailed, err.Error())
			return
		}
		j.cursor++
		j.pending++
		p := j.progress()
		e.emit(Event{Type: EventProgress, Job: j.name, Progress: &p})
	}

	if j.cursor == len(j.lines) && j.pending == 0 {
		j.status = models.JobCompleted
		e.log.Infow("job completed", "name", j.name, "lines", len(j.lines))
		e.emitJobLocked()
		e.lastJob = j.progress()
		e.job = nil
	}
}

// failJobLocked finalizes the active job with the given terminal status.
// No-op when no job is active.
func (e *Engine) failJobLocked(status models.JobStatus, cause string) {
	j := e.job
	if j == nil || !j.active() {
		return
	}
	j.status = status
	j.pending = 0
	p := j.progress()
	e.lastJob = p
	e.job = nil
	e.emit(Event{Type: EventJob, Job: j.name, Progress: &p, Cause: cause})
}

func (e *Engine) emitJobLocked() {
	p := e.job.progress()
	e.emit(Event{Type: EventJob, Job: e.job.name, Progress: &p})
}
