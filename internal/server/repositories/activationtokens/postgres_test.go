package activationtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophaccounts/internal/common"
	"github.com/dmitrijs2005/gophaccounts/internal/server/models"
)

const (
	upsertQ  = `(?s)^\s*INSERT\s+INTO\s+activation_tokens\s*\(user_id,\s*token,\s*expires_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*ON\s+CONFLICT\s*\(user_id\)\s*DO\s+UPDATE\s+SET\s+token\s*=\s*EXCLUDED\.token,\s*expires_at\s*=\s*EXCLUDED\.expires_at\s*$`
	consumeQ = `(?s)^\s*DELETE\s+FROM\s+activation_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+user_id,\s*token,\s*expires_at\s*$`
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestUpsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(24 * time.Hour)
	mock.ExpectExec(upsertQ).WithArgs("u1", "tok", exp).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(upsertQ).WithArgs("u2", "tok2", exp).WillReturnError(errors.New("boom"))

	if err := repo.Upsert(context.Background(), &models.ActivationToken{UserID: "u1", Token: "tok", ExpiresAt: exp}); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	err := repo.Upsert(context.Background(), &models.ActivationToken{UserID: "u2", Token: "tok2", ExpiresAt: exp})
	if err == nil || !regexp.MustCompile(`db error: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestConsume_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	exp := time.Now().Add(time.Hour)
	mock.ExpectQuery(consumeQ).WithArgs("tok").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "token", "expires_at"}).AddRow("u1", "tok", exp))

	got, err := repo.Consume(context.Background(), "tok")
	if err != nil {
		t.Fatalf("Consume error: %v", err)
	}
	if got.UserID != "u1" || got.Token != "tok" || !got.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected token: %+v", got)
	}
}

func TestConsume_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQ).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "nope")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestConsume_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(consumeQ).WithArgs("tok").WillReturnError(errors.New("db err"))

	_, err := repo.Consume(context.Background(), "tok")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}
