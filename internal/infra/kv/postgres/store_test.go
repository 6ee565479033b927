package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"hrdesk/internal/kv/core"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestStoreGetSetDelete(t *testing.T) {
	mock := newMock(t)
	store := New(mock)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(createTableSQL)).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
		WithArgs("hr_data", []byte(`{"v":1}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
		WithArgs("hr_data").
		WillReturnRows(pgxmock.NewRows([]string{"value"}).AddRow([]byte(`{"v":1}`)))
	mock.ExpectQuery(regexp.QuoteMeta(selectValueSQL)).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta(deleteValueSQL)).
		WithArgs("hr_data").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteValueSQL)).
		WithArgs("hr_data").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := store.Set(ctx, "hr_data", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := store.Get(ctx, "hr_data")
	if err != nil || string(got) != `{"v":1}` {
		t.Fatalf("Get: %s %v", got, err)
	}
	if _, err := store.Get(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if ok, err := store.Delete(ctx, "hr_data"); err != nil || !ok {
		t.Fatalf("Delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "hr_data"); err != nil || ok {
		t.Fatalf("second Delete should report false")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreList(t *testing.T) {
	mock := newMock(t)
	store := New(mock)
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(listKeysSQL)).
		WithArgs("hr_").
		WillReturnRows(pgxmock.NewRows([]string{"key", "octet_length", "updated_at"}).
			AddRow("hr_data", int64(10), now).
			AddRow("hr_data_fallback", int64(4), now))

	infos, err := store.List(context.Background(), "hr_")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 || infos[1].Key != "hr_data_fallback" || infos[0].Size != 10 {
		t.Fatalf("unexpected infos %+v", infos)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreSetDiskFullMapsToQuota(t *testing.T) {
	mock := newMock(t)
	store := New(mock)
	mock.ExpectExec(regexp.QuoteMeta(upsertValueSQL)).
		WithArgs("hr_data", []byte("x")).
		WillReturnError(&pgconn.PgError{Code: diskFullCode, Message: "could not extend file"})

	err := store.Set(context.Background(), "hr_data", []byte("x"))
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestTranslatePgErrorPassThrough(t *testing.T) {
	other := errors.New("random")
	if err := translatePgError(other); errors.Is(err, core.ErrQuotaExceeded) || !errors.Is(err, other) {
		t.Fatalf("unexpected translation %v", err)
	}
}

func TestBuildPoolConfig(t *testing.T) {
	cfg, err := BuildPoolConfig(Config{DSN: "postgres://u:p@localhost:5432/hr", MaxConns: 7, MinConns: 2, ConnMaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("BuildPoolConfig: %v", err)
	}
	if cfg.MaxConns != 7 || cfg.MinConns != 2 || cfg.MaxConnLifetime != time.Minute {
		t.Fatalf("unexpected pool config %+v", cfg)
	}
	if _, err := BuildPoolConfig(Config{DSN: "::not a dsn"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
