package service

import (
	"context"
	"errors"
	"strings"

	"cnc_sender/internal/models"
	"cnc_sender/internal/repository"
)

var errEmptyProgram = errors.New("program body is empty")

type JobsService struct {
	eng     Controller
	jobRepo repository.JobRepo
}

func NewJobsService(eng Controller, jobRepo repository.JobRepo) *JobsService {
	return &JobsService{eng: eng, jobRepo: jobRepo}
}

// Start splits the program body into lines and hands it to the engine.
// The engine owns comment/blank filtering and single-active-job rules.
func (s *JobsService) Start(ctx context.Context, p JobParams) error {
	if strings.TrimSpace(p.Gcode) == "" {
		return errEmptyProgram
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "untitled"
	}
	lines := strings.Split(strings.ReplaceAll(p.Gcode, "\r\n", "\n"), "\n")
	return s.eng.StartJob(name, lines)
}

func (s *JobsService) Pause() error  { return s.eng.PauseJob() }
func (s *JobsService) Resume() error { return s.eng.ResumeJob() }
func (s *JobsService) Stop() error   { return s.eng.StopJob() }

func (s *JobsService) Progress() models.JobProgress { return s.eng.JobProgress() }

func (s *JobsService) History(ctx context.Context, limit int) ([]models.JobRecord, error) {
	return s.jobRepo.ListRecent(ctx, limit)
}
