package service

import (
	"context"
	"fmt"
	"strings"

	"cnc_sender/internal/grbl"
	"cnc_sender/internal/logger"
	"cnc_sender/internal/models"
	"cnc_sender/internal/repository"
)

// RecorderService drains the engine's event stream and turns the durable
// subset into event-log rows and job-history records. Status and
// per-line progress events are live telemetry and are not persisted.
type RecorderService struct {
	eng       Controller
	eventRepo repository.EventRepo
	jobRepo   repository.JobRepo
	log       *logger.Logger
}

func NewRecorderService(eng Controller, eventRepo repository.EventRepo, jobRepo repository.JobRepo) *RecorderService {
	return &RecorderService{
		eng:       eng,
		eventRepo: eventRepo,
		jobRepo:   jobRepo,
		log:       logger.Get(logger.InfoLevel),
	}
}

// Run consumes engine events until ctx is canceled. Persistence failures
// are logged and skipped; the stream must keep draining so the engine
// never has to drop events on a slow disk.
func (s *RecorderService) Run(ctx context.Context) {
	events := s.eng.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.record(ctx, ev)
		}
	}
}

func (s *RecorderService) record(ctx context.Context, ev grbl.Event) {
	switch ev.Type {
	case grbl.EventAlarm:
		s.append(ctx, models.MachineEvent{
			OccurredAt:  ev.At,
			Type:        "ALARM",
			Description: "firmware alarm " + ev.Code,
			Metadata:    map[string]any{"code": ev.Code},
		})

	case grbl.EventError:
		s.append(ctx, models.MachineEvent{
			OccurredAt:  ev.At,
			Type:        "ERROR",
			Description: "firmware rejected a line with error " + ev.Code,
			Metadata:    map[string]any{"code": ev.Code},
		})

	case grbl.EventDisconnect:
		desc := "serial session closed"
		if ev.Cause != "" {
			desc += ": " + ev.Cause
		}
		s.append(ctx, models.MachineEvent{
			OccurredAt:  ev.At,
			Type:        "DISCONNECT",
			Description: desc,
		})

	case grbl.EventJob:
		s.recordJob(ctx, ev)
	}
}

func (s *RecorderService) recordJob(ctx context.Context, ev grbl.Event) {
	if ev.Progress == nil {
		return
	}
	p := ev.Progress

	desc := fmt.Sprintf("job %q %s (%d/%d lines)",
		ev.Job, strings.ToLower(string(p.Status)), p.CurrentLine, p.TotalLines)
	if ev.Cause != "" {
		desc += ": " + ev.Cause
	}
	s.append(ctx, models.MachineEvent{
		OccurredAt:  ev.At,
		Type:        "JOB",
		Description: desc,
		Metadata: map[string]any{
			"name":    ev.Job,
			"status":  string(p.Status),
			"line":    p.CurrentLine,
			"of":      p.TotalLines,
			"percent": p.PercentComplete,
		},
	})

	switch p.Status {
	case models.JobCompleted, models.JobStopped, models.JobFailed:
	default:
		return
	}

	rec := models.JobRecord{
		Name:       ev.Job,
		TotalLines: p.TotalLines,
		Outcome:    p.Status,
		StartedAt:  ev.At.Add(-p.Elapsed),
		FinishedAt: ev.At,
	}
	if err := s.jobRepo.Record(ctx, rec); err != nil {
		s.log.Errorw("record job history", "name", ev.Job, "err", err)
	}
}

func (s *RecorderService) append(ctx context.Context, e models.MachineEvent) {
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Errorw("append event", "type", e.Type, "err", err)
	}
}
