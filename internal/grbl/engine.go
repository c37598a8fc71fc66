package grbl

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cnc_sender/internal/logger"
	"cnc_sender/internal/models"
)

// pendingCap bounds commands in flight (sent but not yet acknowledged).
// GRBL's serial receive buffer is 128 bytes; four lines is the
// conservative bound that can never overflow it with normal G-code.
const pendingCap = 4

const (
	// DefaultPollInterval is how often the status query byte goes out.
	DefaultPollInterval = 100 * time.Millisecond

	// stopResetDelay separates the feed-hold from the soft-reset when a
	// job is stopped, so the firmware decelerates before its queue is
	// wiped.
	stopResetDelay = 200 * time.Millisecond
)

// Engine error conditions surfaced as return values.
var (
	ErrNotConnected     = errors.New("not connected to a machine")
	ErrAlreadyConnected = errors.New("already connected")
	ErrEmptyCommand     = errors.New("empty command")
	ErrJobRunning       = errors.New("a job is already running")
	ErrEmptyJob         = errors.New("job has no executable lines")
	ErrNoActiveJob      = errors.New("no active job")
)

// Engine owns one connection to a GRBL-class controller: it frames and
// classifies the firmware's replies, keeps the in-flight command count
// under pendingCap, streams jobs, polls for status and publishes typed
// events. All wire writes and all pending/cursor mutation are serialized
// through one mutex; reply handling runs on the transport's reader
// goroutine and never blocks on consumers.
type Engine struct {
	log     *logger.Logger
	dial    DialFunc
	events  chan Event
	dropped atomic.Int64

	pollInterval time.Duration

	mu        sync.Mutex
	tr        Transport
	connected bool
	framer    *LineFramer
	status    models.MachineStatus
	hasStatus bool
	inflight  []bool   // one entry per unacknowledged command; true = job line
	waiting   []string // interactive lines parked until an ack frees a slot
	job       *job
	jobGen    int // bumped on every StartJob; stale delayed resets check it
	lastJob   models.JobProgress
	pollStop  chan struct{}
}

// NewEngine returns an engine that opens real serial ports.
func NewEngine(log *logger.Logger) *Engine {
	return NewEngineWithDialer(log, DialSerial, DefaultPollInterval)
}

// NewEngineWithDialer injects the transport factory and poll interval;
// tests use it to run against a scripted transport.
func NewEngineWithDialer(log *logger.Logger, dial DialFunc, pollInterval time.Duration) *Engine {
	return &Engine{
		log:          log,
		dial:         dial,
		events:       make(chan Event, 256),
		pollInterval: pollInterval,
		lastJob:      models.JobProgress{Status: models.JobIdle},
	}
}

// Events returns the engine's event stream. Always the same channel; a
// consumer that falls behind loses events rather than stalling the wire.
func (e *Engine) Events() <-chan Event { return e.events }

// DroppedEvents reports how many events were discarded because the
// stream consumer fell behind.
func (e *Engine) DroppedEvents() int64 { return e.dropped.Load() }

// Connect opens the transport and starts the status poller. One
// connection per engine; connecting twice is an error.
func (e *Engine) Connect(path string, baud int) error {
	e.mu.Lock()
	if e.connected {
		e.mu.Unlock()
		return ErrAlreadyConnected
	}
	e.connected = true
	e.framer = NewLineFramer()
	e.inflight = nil
	e.waiting = nil
	e.status = models.MachineStatus{}
	e.hasStatus = false
	e.mu.Unlock()

	tr, err := e.dial(path, baud, e.handleChunk, e.handleTransportError)
	if err != nil {
		e.mu.Lock()
		e.connected = false
		e.framer = nil
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	// The reader may die between dial returning and this point; teardown
	// then already ran with no transport installed. Finishing the
	// handshake anyway would leave a half-connected engine, so fail the
	// connect instead.
	if !e.connected {
		e.mu.Unlock()
		_ = tr.Close()
		return fmt.Errorf("connection to %s lost during handshake", path)
	}
	e.tr = tr
	stop := make(chan struct{})
	e.pollStop = stop
	e.mu.Unlock()

	go e.pollLoop(stop)
	e.log.Infow("connected", "path", path, "baud", baud)
	return nil
}

// Disconnect closes the transport deliberately. Any active job fails as
// stopped; the poller halts immediately.
func (e *Engine) Disconnect() error {
	e.mu.Lock()
	if !e.connected {
		e.mu.Unlock()
		return ErrNotConnected
	}
	e.teardownLocked("disconnected by request")
	e.mu.Unlock()
	return nil
}

// Connected reports whether a transport is currently open.
func (e *Engine) Connected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.connected
}

// Status returns the latest decoded snapshot and whether one has been
// received since connecting.
func (e *Engine) Status() (models.MachineStatus, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, e.hasStatus
}

// Send queues one command line for execution. The line is written
// immediately when an in-flight slot is free, otherwise parked until an
// acknowledgement frees one. Empty lines are rejected without touching
// the wire.
func (e *Engine) Send(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return ErrEmptyCommand
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tr == nil {
		return ErrNotConnected
	}
	if len(e.inflight) >= pendingCap || len(e.waiting) > 0 {
		e.waiting = append(e.waiting, line)
		return nil
	}
	return e.writeLineLocked(line, false)
}

// PendingCount reports commands sent but not yet acknowledged.
func (e *Engine) PendingCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.inflight)
}

// WriteRealtime sends one real-time byte. Real-time signals bypass line
// framing and the ack accounting entirely.
func (e *Engine) WriteRealtime(b byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeRealtimeLocked(b)
}

func (e *Engine) writeRealtimeLocked(b byte) error {
	if e.tr == nil {
		return ErrNotConnected
	}
	if _, err := e.tr.Write([]byte{b}); err != nil {
		return fmt.Errorf("write realtime 0x%02X: %w", b, err)
	}
	return nil
}

func (e *Engine) writeLineLocked(line string, jobLine bool) error {
	if e.tr == nil {
		return ErrNotConnected
	}
	if _, err := e.tr.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("write %q: %w", line, err)
	}
	e.inflight = append(e.inflight, jobLine)
	return nil
}

// handleChunk runs on the transport reader goroutine.
func (e *Engine) handleChunk(chunk []byte) {
	e.mu.Lock()
	if e.framer == nil {
		e.mu.Unlock()
		return
	}
	lines := e.framer.Push(chunk)
	e.mu.Unlock()

	for _, line := range lines {
		e.handleLine(line)
	}
}

func (e *Engine) handleLine(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}

	kind, code := Classify(line)
	switch kind {
	case LineStatus:
		stat, err := ParseStatus(line)
		if err != nil {
			e.log.Warnw("unparsable status report", "line", line, "err", err)
			return
		}
		e.mu.Lock()
		e.status = stat
		e.hasStatus = true
		e.mu.Unlock()
		e.emit(Event{Type: EventStatus, Status: &stat})

	case LineAck:
		e.acknowledge("")

	case LineError:
		// An error reply still frees its flow-control slot; stalling the
		// pipe on a rejected line would deadlock the job stream.
		e.acknowledge(code)
		e.emit(Event{Type: EventError, Code: code, Line: line})

	case LineAlarm:
		e.log.Warnw("firmware alarm", "code", code)
		e.emit(Event{Type: EventAlarm, Code: code, Line: line})

	case LineInfo, LineOther:
		e.emit(Event{Type: EventInfo, Line: line})
	}
}

// acknowledge consumes one in-flight slot. Acks carry no correlation id,
// so attribution is strictly FIFO over the send order.
func (e *Engine) acknowledge(errCode string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.inflight) == 0 {
		// Spurious ok (e.g. right after a soft reset wiped accounting).
		e.log.Debugw("ack with no command in flight", "code", errCode)
		return
	}

	wasJobLine := e.inflight[0]
	e.inflight = e.inflight[1:]
	if wasJobLine && e.job != nil && e.job.pending > 0 {
		e.job.pending--
	}

	e.flushWaitingLocked()
	e.pumpLocked()
}

// flushWaitingLocked moves parked interactive lines onto the wire while
// slots are free. Interactive commands take priority over job lines.
func (e *Engine) flushWaitingLocked() {
	for len(e.waiting) > 0 && len(e.inflight) < pendingCap {
		line := e.waiting[0]
		e.waiting = e.waiting[1:]
		if err := e.writeLineLocked(line, false); err != nil {
			// The caller's Send already returned nil, so the loss has to
			// be visible somewhere besides the log.
			e.log.Errorw("flush queued command", "line", line, "err", err)
			e.emit(Event{Type: EventError, Line: line, Cause: err.Error()})
			return
		}
	}
}

// handleTransportError is the mid-session failure path: the poller stops,
// the active job fails as stopped and a disconnect event goes out.
func (e *Engine) handleTransportError(err error) {
	e.mu.Lock()
	if !e.connected {
		e.mu.Unlock()
		return
	}
	e.log.Errorw("transport failed", "err", err)
	e.teardownLocked(err.Error())
	e.mu.Unlock()
}

// teardownLocked tears the connection down completely; there is no
// partial-shutdown state.
func (e *Engine) teardownLocked(cause string) {
	e.connected = false
	if e.pollStop != nil {
		close(e.pollStop)
		e.pollStop = nil
	}
	if e.tr != nil {
		_ = e.tr.Close()
		e.tr = nil
	}

	// Whatever the framer still buffers is a final partial line.
	if e.framer != nil {
		if tail, ok := e.framer.Flush(); ok {
			e.emit(Event{Type: EventInfo, Line: tail})
		}
		e.framer = nil
	}

	e.inflight = nil
	e.waiting = nil
	e.failJobLocked(models.JobStopped, cause)
	e.emit(Event{Type: EventDisconnect, Cause: cause})
}

func (e *Engine) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := e.WriteRealtime(rtStatusQuery); err != nil {
				return
			}
		}
	}
}
