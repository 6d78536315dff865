package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/folio/internal/storage"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "folio.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error")
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	_, path := openTestStore(t)

	// Reopening must not reapply migrations.
	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()

	var n int
	if err := again.sqlDB.QueryRow(`SELECT count(*) FROM ` + migrationTable).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 1 {
		t.Errorf("applied migrations = %d, want 1", n)
	}
	var name string
	err = again.sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'documents'`).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		t.Errorf("documents table missing: %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, storage.Document{
		Title:   "Letter",
		Content: "<p>Dear reader</p>",
		Pages:   1,
		Words:   2,
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() || !saved.UpdatedAt.Equal(saved.CreatedAt) {
		t.Fatalf("saved = %+v", saved)
	}

	got, err := store.Load(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != saved.ID || got.Title != "Letter" || got.Content != "<p>Dear reader</p>" || got.Pages != 1 || got.Words != 2 {
		t.Errorf("Load() = %+v, want %+v", got, saved)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) || !got.UpdatedAt.Equal(saved.UpdatedAt) {
		t.Errorf("Load() times = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, saved.CreatedAt, saved.UpdatedAt)
	}
}

func TestSaveUpdateKeepsCreatedAt(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store.now = func() time.Time { return clock }

	first, err := store.Save(ctx, storage.Document{Title: "a", Content: "x"})
	if err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(time.Hour)
	second, err := store.Save(ctx, storage.Document{ID: first.ID, Title: "b", Content: "y", Pages: 2})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", second.CreatedAt, first.CreatedAt)
	}
	if !second.UpdatedAt.Equal(clock) {
		t.Errorf("UpdatedAt = %v, want %v", second.UpdatedAt, clock)
	}

	got, _ := store.Load(ctx, first.ID)
	if got.Title != "b" || got.Content != "y" || got.Pages != 2 {
		t.Errorf("Load() = %+v", got)
	}
}

func TestSaveRejectsBadID(t *testing.T) {
	store, _ := openTestStore(t)
	if _, err := store.Save(context.Background(), storage.Document{ID: "not-a-uuid"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestListAndDelete(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	clock := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }

	older, _ := store.Save(ctx, storage.Document{Title: "older", Content: "abc"})
	clock = clock.Add(time.Minute)
	newer, _ := store.Save(ctx, storage.Document{Title: "newer", Content: "héllo"})

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != newer.ID || list[1].ID != older.ID {
		t.Fatalf("List() = %+v", list)
	}
	if list[0].Size != int64(len("héllo")) {
		t.Errorf("Size = %d, want %d", list[0].Size, len("héllo"))
	}

	if err := store.Delete(ctx, older.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load(ctx, older.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Load(deleted) = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, older.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete(deleted) = %v, want ErrNotFound", err)
	}
}

func TestNilStore(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
	if _, err := s.List(context.Background()); err == nil {
		t.Error("List() on nil store succeeded")
	}
}

func TestUpSection(t *testing.T) {
	in := "-- +migrate Up\nCREATE TABLE t (a);\n-- +migrate Down\nDROP TABLE t;\n"
	if got := upSection(in); got != "\nCREATE TABLE t (a);\n" {
		t.Errorf("upSection() = %q", got)
	}
	if got := upSection("SELECT 1;"); got != "SELECT 1;" {
		t.Errorf("upSection(plain) = %q", got)
	}
}
