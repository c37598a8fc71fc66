package repository

import (
	"regexp"
	"testing"
	"time"

	"cnc_sender/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestJobRecord_GeneratesIDAndFinishTime(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewJobSQLite(db)

	started := time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta(insertJobSQL)).
		WithArgs(sqlmock.AnyArg(), "bracket.nc", 412, "COMPLETED",
			"2024-05-10 09:30:00", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Record(ctx(t), models.JobRecord{
		Name:       "bracket.nc",
		TotalLines: 412,
		Outcome:    models.JobCompleted,
		StartedAt:  started,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestJobListRecent_DefaultLimitAndOrder(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewJobSQLite(db)

	rows := sqlmock.NewRows([]string{"id", "name", "total_lines", "outcome", "started_at", "finished_at"}).
		AddRow("j-2", "later.nc", 10, "STOPPED", "2024-05-10 12:00:00", "2024-05-10 12:05:00").
		AddRow("j-1", "earlier.nc", 99, "COMPLETED", "2024-05-10 09:00:00", "2024-05-10 10:00:00")

	mock.ExpectQuery(regexp.QuoteMeta(selectRecentJobsSQL)).
		WithArgs(20).
		WillReturnRows(rows)

	got, err := repo.ListRecent(ctx(t), 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	if got[0].ID != "j-2" || got[0].Outcome != models.JobStopped {
		t.Fatalf("first record = %+v", got[0])
	}
	if got[1].FinishedAt.Hour() != 10 {
		t.Fatalf("finished_at parsed to %v", got[1].FinishedAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestJobListRecent_ExplicitLimit(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()

	repo := NewJobSQLite(db)

	mock.ExpectQuery(regexp.QuoteMeta(selectRecentJobsSQL)).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_lines", "outcome", "started_at", "finished_at"}))

	if _, err := repo.ListRecent(ctx(t), 5); err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
