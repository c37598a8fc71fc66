package models

import "time"

// JobStatus is the lifecycle state of a streamed job.
type JobStatus string

const (
	JobIdle      JobStatus = "IDLE"
	JobRunning   JobStatus = "RUNNING"
	JobPaused    JobStatus = "PAUSED"
	JobCompleted JobStatus = "COMPLETED"
	JobStopped   JobStatus = "STOPPED"
	JobFailed    JobStatus = "FAILED"
)

// JobProgress is a point-in-time view of a running (or finished) job.
// EstimatedRemaining is a linear extrapolation from percent complete and
// elapsed time; it reads zero until enough lines have been sent to
// extrapolate from.
type JobProgress struct {
	Status             JobStatus     `json:"status"`
	CurrentLine        int           `json:"current_line"`
	TotalLines         int           `json:"total_lines"`
	PercentComplete    float64       `json:"percent_complete"`
	Elapsed            time.Duration `json:"elapsed_ns"`
	EstimatedRemaining time.Duration `json:"estimated_remaining_ns"`
}

// JobRecord is the durable history row written when a job finishes.
type JobRecord struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TotalLines int       `json:"total_lines"`
	Outcome    JobStatus `json:"outcome"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
