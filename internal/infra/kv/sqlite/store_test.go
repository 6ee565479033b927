package sqlite

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"hrdesk/internal/kv/core"
)

func TestSQLiteStoreRoundTripAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	store, err := New(path, Options{})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	ctx := context.Background()
	if store.Driver() != core.DriverSQLite || store.Path() != path {
		t.Fatalf("unexpected driver/path")
	}
	if _, err := store.Get(ctx, "hr_data"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "hr_data", []byte(`{"v":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "hr_data", []byte(`{"v":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := store.Set(ctx, "hr_sync", []byte(`{}`)); err != nil {
		t.Fatalf("set sync: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := New(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	got, err := reopened.Get(ctx, "hr_data")
	if err != nil || string(got) != `{"v":2}` {
		t.Fatalf("get after reopen: %s %v", got, err)
	}
	list, err := reopened.List(ctx, "hr_")
	if err != nil || len(list) != 2 || list[0].Key != "hr_data" || list[0].Size != 7 {
		t.Fatalf("list: %v %+v", err, list)
	}
	if ok, err := reopened.Delete(ctx, "hr_sync"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := reopened.Delete(ctx, "hr_sync"); err != nil || ok {
		t.Fatalf("second delete should report false")
	}
}

func TestSQLiteStoreMaxPageCountMapsToQuota(t *testing.T) {
	store, err := New(filepath.Join(t.TempDir(), "small.db"), Options{MaxPageCount: 8})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	big := bytes.Repeat([]byte("x"), 1<<20)
	if err := store.Set(context.Background(), "hr_data", big); !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}
