package service

import (
	"context"

	"cnc_sender/internal/grbl"
	"cnc_sender/internal/models"
	"cnc_sender/internal/repository"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Machine exposes connection management and interactive machine control.
type Machine interface {
	Connect(ctx context.Context, p ConnectParams) error
	Disconnect(ctx context.Context) error
	Send(line string) error
	Home() error
	Unlock() error
	Jog(p JogParams) error
	JogCancel() error
	FeedHold() error
	CycleResume() error
	SetZero(axes string) error
	GoToZero() error
	SoftReset() error
	SetOverride(p OverrideParams) error
}

// Jobs exposes the streamed-program lifecycle plus its durable history.
type Jobs interface {
	Start(ctx context.Context, p JobParams) error
	Pause() error
	Resume() error
	Stop() error
	Progress() models.JobProgress
	History(ctx context.Context, limit int) ([]models.JobRecord, error)
}

// Monitoring exposes read-only machine state.
type Monitoring interface {
	Status() (models.MachineStatus, bool)
	Connected() bool
	Pending() int
}

// EventLog exposes the append-only event log with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.MachineEvent, error)
}

// Recorder runs the background loop that persists engine events.
// Stop via context cancellation in main() for graceful shutdown.
type Recorder interface {
	Run(ctx context.Context)
}

// Controller is the slice of the protocol engine the services drive.
// *grbl.Engine satisfies it; tests substitute fakes.
type Controller interface {
	Connect(path string, baud int) error
	Disconnect() error
	Connected() bool
	Status() (models.MachineStatus, bool)
	PendingCount() int
	Send(line string) error
	Home() error
	Unlock() error
	Jog(axis rune, dist, feed float64) error
	JogCancel() error
	FeedHold() error
	CycleResume() error
	SetZero(axes string) error
	GoToZero() error
	SoftReset() error
	SetFeedOverride(target int) error
	SetSpindleOverride(target int) error
	SetRapidOverride(target int) error
	StartJob(name string, lines []string) error
	PauseJob() error
	ResumeJob() error
	StopJob() error
	JobProgress() models.JobProgress
	Events() <-chan grbl.Event
}

var _ Controller = (*grbl.Engine)(nil)

type Service struct {
	Machine
	Jobs
	Monitoring
	EventLog
	Recorder
	Authorization
}

// NewService wires the repository layer and the protocol engine into
// concrete services.
func NewService(repos *repository.Repository, eng Controller, signingKey string) *Service {
	return &Service{
		Machine:       NewMachineService(eng, repos.EventRepo),
		Jobs:          NewJobsService(eng, repos.JobRepo),
		Monitoring:    NewMonitoringService(eng),
		EventLog:      NewEventLogService(repos.EventRepo),
		Recorder:      NewRecorderService(eng, repos.EventRepo, repos.JobRepo),
		Authorization: NewAuthService(repos.Auth, signingKey),
	}
}
