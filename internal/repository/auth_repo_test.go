package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockUserRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func TestUserCreate_Success(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("operator", "hashed-secret").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := repo.Create("operator", "hashed-secret")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id != 7 {
		t.Fatalf("id = %d, want 7", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("operator", "h").
		WillReturnError(errors.New("UNIQUE constraint failed: users.username"))

	if _, err := repo.Create("operator", "h"); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestUserGetByUsername_Found(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("operator").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(3, "operator", "hash"))

	u, err := repo.GetByUsername("operator")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u == nil || u.ID != 3 || u.Username != "operator" || u.PasswordHash != "hash" {
		t.Fatalf("user = %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}

func TestUserGetByUsername_NotFound(t *testing.T) {
	t.Parallel()
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectUserByUsernameSQL)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	u, err := repo.GetByUsername("ghost")
	if err != nil {
		t.Fatalf("expected nil error on no rows, got %v", err)
	}
	if u != nil {
		t.Fatalf("user = %+v, want nil", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("mock expectations: %v", err)
	}
}
