package grbl

import (
	"errors"
	"testing"
	"time"

	"cnc_sender/internal/models"
)

func TestFilterJobLines(t *testing.T) {
	in := []string{"", "  ", "; header comment", "(setup)", "G21", "  G1 X1  ", "; tail"}
	got := filterJobLines(in)
	want := []string{"G21", "G1 X1"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %q, want %q", got, want)
		}
	}
}

func TestStartJob_Rejections(t *testing.T) {
	e, _ := newTestEngine(t, time.Hour)

	if err := e.StartJob("empty", []string{";(only)", "", "; comments"}); !errors.Is(err, ErrEmptyJob) {
		t.Fatalf("comment-only job: got %v, want ErrEmptyJob", err)
	}

	if err := e.StartJob("a", []string{"G1 X1", "G1 X2", "G1 X3", "G1 X4", "G1 X5"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.StartJob("b", []string{"G1 X1"}); !errors.Is(err, ErrJobRunning) {
		t.Fatalf("second job: got %v, want ErrJobRunning", err)
	}
}

func TestStartJob_NotConnected(t *testing.T) {
	e, _ := newTestEngine(t, time.Hour)
	if err := e.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := e.StartJob("a", []string{"G1 X1"}); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("got %v, want ErrNotConnected", err)
	}
}

// The §8 scenario: a three-line job acked three times completes with
// 100% progress and nothing left pending.
func TestJob_CompletesOnAcks(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	if err := e.StartJob("square", []string{"G1 X1", "G1 X2", "G1 X3"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := m.tr.sentLines(); len(got) != 3 {
		t.Fatalf("wrote %d lines, want all 3 (cap is %d)", len(got), pendingCap)
	}

	m.ack(3)

	p := e.JobProgress()
	if p.Status != models.JobCompleted {
		t.Fatalf("status = %s, want COMPLETED", p.Status)
	}
	if p.CurrentLine != 3 || p.TotalLines != 3 || p.PercentComplete != 100 {
		t.Fatalf("progress = %+v, want 3/3 at 100%%", p)
	}
	if got := e.PendingCount(); got != 0 {
		t.Fatalf("pending = %d, want 0", got)
	}
}

func TestJob_PumpRespectsCapAndAdvancesPerAck(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "G1 X1"
	}
	if err := e.StartJob("long", lines); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := len(m.tr.sentLines()); got != pendingCap {
		t.Fatalf("wrote %d lines at start, want %d", got, pendingCap)
	}

	for i := 0; i < len(lines); i++ {
		m.ack(1)
	}
	if got := len(m.tr.sentLines()); got != len(lines) {
		t.Fatalf("wrote %d lines total, want %d", got, len(lines))
	}
	if p := e.JobProgress(); p.Status != models.JobCompleted {
		t.Fatalf("status = %s, want COMPLETED", p.Status)
	}
}

// Percent complete never decreases across the progress event stream.
func TestJob_ProgressMonotonic(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "G1 X1"
	}
	if err := e.StartJob("mono", lines); err != nil {
		t.Fatalf("start: %v", err)
	}
	m.ack(len(lines))

	last := -1.0
	for {
		var ev Event
		select {
		case ev = <-e.Events():
		case <-time.After(100 * time.Millisecond):
			t.Fatal("never saw job completion")
		}
		if ev.Type == EventProgress {
			if ev.Progress.PercentComplete < last {
				t.Fatalf("percent went backwards: %g -> %g", last, ev.Progress.PercentComplete)
			}
			last = ev.Progress.PercentComplete
		}
		if ev.Type == EventJob && ev.Progress != nil && ev.Progress.Status == models.JobCompleted {
			return
		}
	}
}

// A mid-job error reply frees the slot and the job keeps streaming;
// halting is the caller's call.
func TestJob_ErrorReplyDoesNotStopJob(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	lines := []string{"G1 X1", "G1 X2", "G1 X3", "G1 X4", "G1 X5"}
	if err := e.StartJob("errs", lines); err != nil {
		t.Fatalf("start: %v", err)
	}
	m.reply("error:20")

	if got := len(m.tr.sentLines()); got != 5 {
		t.Fatalf("wrote %d lines after error, want 5", got)
	}
	if p := e.JobProgress(); p.Status != models.JobRunning {
		t.Fatalf("status = %s, want RUNNING", p.Status)
	}
	m.ack(4)
	if p := e.JobProgress(); p.Status != models.JobCompleted {
		t.Fatalf("status = %s, want COMPLETED", p.Status)
	}
}

func TestJob_PauseResume(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	lines := make([]string, 6)
	for i := range lines {
		lines[i] = "G1 X1"
	}
	if err := e.StartJob("pausable", lines); err != nil {
		t.Fatalf("start: %v", err)
	}

	if err := e.PauseJob(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if p := e.JobProgress(); p.Status != models.JobPaused {
		t.Fatalf("status = %s, want PAUSED", p.Status)
	}
	// Held, not stopped: already-queued lines keep streaming into free
	// slots.
	m.ack(1)
	if got := len(m.tr.sentLines()); got != pendingCap+1 {
		t.Fatalf("wrote %d lines while held, want %d", got, pendingCap+1)
	}

	if err := e.ResumeJob(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if p := e.JobProgress(); p.Status != models.JobRunning {
		t.Fatalf("status = %s, want RUNNING", p.Status)
	}

	rt := m.tr.realtimeBytes()
	if len(rt) != 2 || rt[0] != rtFeedHold || rt[1] != rtCycleStart {
		t.Fatalf("realtime bytes = % X, want hold then cycle-start", rt)
	}
}

func TestJob_ResumeWithoutPause(t *testing.T) {
	e, _ := newTestEngine(t, time.Hour)
	if err := e.StartJob("a", []string{"G1 X1"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.ResumeJob(); !errors.Is(err, ErrNoActiveJob) {
		t.Fatalf("resume of running job: got %v, want ErrNoActiveJob", err)
	}
}

func TestJob_StopHoldsThenResets(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	lines := make([]string, 8)
	for i := range lines {
		lines[i] = "G1 X1"
	}
	if err := e.StartJob("doomed", lines); err != nil {
		t.Fatalf("start: %v", err)
	}
	sentBefore := len(m.tr.sentLines())

	if err := e.StopJob(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p := e.JobProgress(); p.Status != models.JobStopped {
		t.Fatalf("status = %s, want STOPPED immediately", p.Status)
	}
	rt := m.tr.realtimeBytes()
	if len(rt) != 1 || rt[0] != rtFeedHold {
		t.Fatalf("realtime right after stop = % X, want just feed-hold", rt)
	}

	// The soft-reset follows after the deceleration delay.
	deadline := time.Now().Add(2 * stopResetDelay)
	for {
		rt = m.tr.realtimeBytes()
		if len(rt) == 2 && rt[1] == rtSoftReset {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("soft reset never sent; realtime = % X", rt)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Acks for wiped lines must not restart the stream.
	m.ack(2)
	if got := len(m.tr.sentLines()); got != sentBefore {
		t.Fatalf("lines sent after stop: %d -> %d", sentBefore, got)
	}
}

// A job started inside the stop's deceleration window must not be
// killed by the stale delayed reset.
func TestJob_RestartInsideStopDelay(t *testing.T) {
	e, m := newTestEngine(t, time.Hour)

	first := make([]string, 6)
	for i := range first {
		first[i] = "G1 X1"
	}
	if err := e.StartJob("first", first); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := e.StopJob(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := e.StartJob("second", []string{"G1 Y1", "G1 Y2"}); err != nil {
		t.Fatalf("restart: %v", err)
	}

	time.Sleep(2 * stopResetDelay)

	if p := e.JobProgress(); p.Status != models.JobRunning {
		t.Fatalf("status after the stop delay = %s, want RUNNING", p.Status)
	}
	for _, b := range m.tr.realtimeBytes() {
		if b == rtSoftReset {
			t.Fatal("stale soft reset fired into the new job")
		}
	}

	// Acks for the superseded in-flight lines and the new ones drain the
	// second job to completion.
	m.ack(pendingCap + 2)
	if p := e.JobProgress(); p.Status != models.JobCompleted {
		t.Fatalf("status = %s, want COMPLETED", p.Status)
	}
}

func TestJob_ETAGuards(t *testing.T) {
	j := &job{lines: make([]string, 4), startedAt: time.Now(), status: models.JobRunning}
	if p := j.progress(); p.EstimatedRemaining != 0 {
		t.Fatalf("remaining before any send = %v, want 0", p.EstimatedRemaining)
	}
	j.cursor = 2
	j.startedAt = time.Now().Add(-time.Second)
	p := j.progress()
	if p.EstimatedRemaining <= 0 {
		t.Fatalf("remaining at 50%% after 1s = %v, want ~1s", p.EstimatedRemaining)
	}
	j.cursor = 4
	if p := j.progress(); p.PercentComplete != 100 || p.EstimatedRemaining < 0 {
		t.Fatalf("progress at end = %+v", p)
	}
}
