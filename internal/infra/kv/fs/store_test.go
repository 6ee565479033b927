package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"hrdesk/internal/kv/core"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver")
	}
	if _, err := store.Get(ctx, "hr_data"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Set(ctx, "hr_data", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, "hr_data", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.Get(ctx, "hr_data")
	if err != nil || string(got) != `{"a":2}` {
		t.Fatalf("get: %s %v", got, err)
	}
	if err := store.Set(ctx, "nested/key", []byte("x")); err != nil {
		t.Fatalf("nested set: %v", err)
	}
	list, err := store.List(ctx, "")
	if err != nil || len(list) != 2 || list[0].Key != "hr_data" || list[1].Key != "nested/key" {
		t.Fatalf("list: %v %+v", err, list)
	}
	if ok, err := store.Delete(ctx, "hr_data"); err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if ok, err := store.Delete(ctx, "hr_data"); err != nil || ok {
		t.Fatalf("second delete should report false")
	}
	if _, err := os.Stat(filepath.Join(dir, "hr_data")); !os.IsNotExist(err) {
		t.Fatalf("file should be gone")
	}
}

func TestSanitizeKey(t *testing.T) {
	for _, key := range []string{"", "  ", "../escape", "/abs"} {
		if _, err := sanitizeKey(key); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
	store, _ := New(t.TempDir())
	if err := store.Set(context.Background(), "../x", nil); err == nil {
		t.Fatalf("expected traversal rejection on set")
	}
}

func TestMapDiskFull(t *testing.T) {
	err := mapDiskFull(fmt.Errorf("write: %w", syscall.ENOSPC))
	if !errors.Is(err, core.ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
	other := errors.New("other")
	if mapDiskFull(other) != other {
		t.Fatalf("non disk errors pass through")
	}
}
