package repository

import (
	"context"
	"database/sql"
	"time"

	"cnc_sender/internal/models"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*models.User, error)
}

// EventRepo is the append-only machine event log.
type EventRepo interface {
	Append(ctx context.Context, e models.MachineEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]models.MachineEvent, error)
}

// JobRepo records finished jobs.
type JobRepo interface {
	Record(ctx context.Context, rec models.JobRecord) error
	ListRecent(ctx context.Context, limit int) ([]models.JobRecord, error)
}

type Repository struct {
	EventRepo EventRepo
	JobRepo   JobRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		EventRepo: NewEventSQLite(db),
		JobRepo:   NewJobSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
