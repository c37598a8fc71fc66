package repository

import (
	"context"
	"database/sql"
	"time"

	"cnc_sender/internal/models"

	"github.com/google/uuid"
)

type JobSQLite struct {
	db *sql.DB
}

func NewJobSQLite(db *sql.DB) *JobSQLite { return &JobSQLite{db: db} }

var _ JobRepo = (*JobSQLite)(nil)

const (
	insertJobSQL = `
		INSERT INTO job_history (id, name, total_lines, outcome, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	selectRecentJobsSQL = `
		SELECT id, name, total_lines, outcome, started_at, finished_at
		FROM job_history ORDER BY finished_at DESC LIMIT ?
	`
)

// Record inserts one finished-job row. A missing ID is generated.
func (r *JobSQLite) Record(ctx context.Context, rec models.JobRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, insertJobSQL,
		rec.ID,
		rec.Name,
		rec.TotalLines,
		string(rec.Outcome),
		rec.StartedAt.UTC().Format(sqliteTimeFormat),
		rec.FinishedAt.UTC().Format(sqliteTimeFormat),
	)
	return err
}

// ListRecent returns the most recently finished jobs, newest first.
func (r *JobSQLite) ListRecent(ctx context.Context, limit int) ([]models.JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, selectRecentJobsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []models.JobRecord
	for rows.Next() {
		var (
			rec                models.JobRecord
			outcome            string
			startedRaw, finRaw string
		)
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.TotalLines, &outcome, &startedRaw, &finRaw); err != nil {
			return nil, err
		}
		rec.Outcome = models.JobStatus(outcome)
		if ts, perr := time.Parse(sqliteTimeFormat, startedRaw); perr == nil {
			rec.StartedAt = ts.UTC()
		}
		if ts, perr := time.Parse(sqliteTimeFormat, finRaw); perr == nil {
			rec.FinishedAt = ts.UTC()
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
