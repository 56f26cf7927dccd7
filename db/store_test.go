package db

import (
	"context"
	"path/filepath"
	"testing"

	"qfmwidget/config"
)

func exerciseStore(t *testing.T, store KVStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want not found", ok, err)
	}

	if err := store.Set(ctx, "music-volume", "0.3"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(ctx, "music-volume")
	if err != nil || !ok || v != "0.3" {
		t.Fatalf("Get after Set = %q, %v, %v", v, ok, err)
	}

	// 覆盖写
	if err := store.Set(ctx, "music-volume", "0.8"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, _, _ = store.Get(ctx, "music-volume")
	if v != "0.8" {
		t.Errorf("overwrite: got %q, want 0.8", v)
	}

	if err := store.Delete(ctx, "music-volume"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "music-volume"); ok {
		t.Error("key should be gone after Delete")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "player.db")
	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	defer store.Close()

	exerciseStore(t, store)
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.db")
	ctx := context.Background()

	store, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore: %v", err)
	}
	if err := store.Set(ctx, "music-play-mode", "loop"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	store.Close()

	reopened, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "music-play-mode")
	if err != nil || !ok || v != "loop" {
		t.Errorf("after reopen got %q, %v, %v", v, ok, err)
	}
}

func TestOpenDrivers(t *testing.T) {
	store, err := Open(&config.Config{StoreDriver: DriverMemory})
	if err != nil {
		t.Fatalf("Open(memory): %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("Open(memory) returned %T", store)
	}

	if _, err := Open(&config.Config{StoreDriver: "etcd"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}
