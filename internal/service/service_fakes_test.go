package service

import (
	"context"
	"time"

	"cnc_sender/internal/grbl"
	"cnc_sender/internal/models"
)

// fakeController records every engine call so tests can assert routing
// without a serial port.
type fakeController struct {
	calls []string

	connectErr error
	startErr   error

	device string
	baud   int

	jogAxis rune
	jogDist float64
	jogFeed float64

	overrideKind   string
	overrideTarget int

	jobName  string
	jobLines []string

	connected bool
	status    models.MachineStatus
	hasStatus bool
	pending   int
	progress  models.JobProgress

	events chan grbl.Event
}

func newFakeController() *fakeController {
	return &fakeController{events: make(chan grbl.Event, 16)}
}

func (f *fakeController) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeController) Connect(path string, baud int) error {
	f.record("Connect")
	f.device, f.baud = path, baud
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeController) Disconnect() error {
	f.record("Disconnect")
	f.connected = false
	return nil
}

func (f *fakeController) Connected() bool { return f.connected }

func (f *fakeController) Status() (models.MachineStatus, bool) { return f.status, f.hasStatus }
func (f *fakeController) PendingCount() int                    { return f.pending }

func (f *fakeController) Send(line string) error {
	f.record("Send " + line)
	return nil
}

func (f *fakeController) Home() error        { f.record("Home"); return nil }
func (f *fakeController) Unlock() error      { f.record("Unlock"); return nil }
func (f *fakeController) JogCancel() error   { f.record("JogCancel"); return nil }
func (f *fakeController) FeedHold() error    { f.record("FeedHold"); return nil }
func (f *fakeController) CycleResume() error { f.record("CycleResume"); return nil }
func (f *fakeController) GoToZero() error    { f.record("GoToZero"); return nil }
func (f *fakeController) SoftReset() error   { f.record("SoftReset"); return nil }

func (f *fakeController) SetZero(axes string) error {
	f.record("SetZero " + axes)
	return nil
}

func (f *fakeController) Jog(axis rune, dist, feed float64) error {
	f.record("Jog")
	f.jogAxis, f.jogDist, f.jogFeed = axis, dist, feed
	return nil
}

func (f *fakeController) SetFeedOverride(target int) error {
	f.record("SetFeedOverride")
	f.overrideKind, f.overrideTarget = "feed", target
	return nil
}

func (f *fakeController) SetSpindleOverride(target int) error {
	f.record("SetSpindleOverride")
	f.overrideKind, f.overrideTarget = "spindle", target
	return nil
}

func (f *fakeController) SetRapidOverride(target int) error {
	f.record("SetRapidOverride")
	f.overrideKind, f.overrideTarget = "rapid", target
	return nil
}

func (f *fakeController) StartJob(name string, lines []string) error {
	f.record("StartJob")
	f.jobName, f.jobLines = name, lines
	return f.startErr
}

func (f *fakeController) PauseJob() error  { f.record("PauseJob"); return nil }
func (f *fakeController) ResumeJob() error { f.record("ResumeJob"); return nil }
func (f *fakeController) StopJob() error   { f.record("StopJob"); return nil }

func (f *fakeController) JobProgress() models.JobProgress { return f.progress }

func (f *fakeController) Events() <-chan grbl.Event { return f.events }

// fakeEventRepo is an in-memory EventRepo.
type fakeEventRepo struct {
	appendErr error
	events    []models.MachineEvent

	listFrom time.Time
	listTo   time.Time
	listType string
	listResp []models.MachineEvent
	listErr  error
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.MachineEvent) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.events = append(f.events, e)
	return nil
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.MachineEvent, error) {
	f.listFrom, f.listTo, f.listType = from, to, typ
	return f.listResp, f.listErr
}

// fakeJobRepo is an in-memory JobRepo.
type fakeJobRepo struct {
	recordErr error
	records   []models.JobRecord

	listLimit int
	listResp  []models.JobRecord
	listErr   error
}

func (f *fakeJobRepo) Record(ctx context.Context, rec models.JobRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeJobRepo) ListRecent(ctx context.Context, limit int) ([]models.JobRecord, error) {
	f.listLimit = limit
	return f.listResp, f.listErr
}
