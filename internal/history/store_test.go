package history

import (
	"reflect"
	"testing"
	"time"

	"pyreload/internal/logging"
	"pyreload/internal/reload"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(t.TempDir(), logging.Discard())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndGet(t *testing.T) {
	store := openTestStore(t)

	session := reload.Session{
		ID:        "s-1",
		Root:      "pkg.a",
		StartedAt: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Duration:  42 * time.Millisecond,
		Modules:   []string{"pkg.c", "pkg.b", "pkg.a"},
		Executed:  3,
		Status:    reload.StatusOK,
	}
	if err := store.Record(session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get("s-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("session not found after Record")
	}
	if got.Root != "pkg.a" || got.Status != reload.StatusOK || got.Executed != 3 {
		t.Errorf("session = %+v", got)
	}
	if !reflect.DeepEqual(got.Modules, session.Modules) {
		t.Errorf("Modules = %v, want %v (order preserved)", got.Modules, session.Modules)
	}
	if got.Duration != session.Duration {
		t.Errorf("Duration = %v, want %v", got.Duration, session.Duration)
	}
}

func TestGetMissingSession(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("got %+v, want nil for missing session", got)
	}
}

func TestRecordFailedSession(t *testing.T) {
	store := openTestStore(t)

	session := reload.Session{
		ID:        "s-fail",
		Root:      "pkg.a",
		StartedAt: time.Now().UTC(),
		Modules:   []string{"pkg.b", "pkg.a"},
		Executed:  1,
		Status:    reload.StatusFailed,
		Failed:    "pkg.a",
		Error:     "re-executing module: boom",
	}
	if err := store.Record(session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := store.Get("s-fail")
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if got.Failed != "pkg.a" || got.Error == "" {
		t.Errorf("failure details lost: %+v", got)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"s-1", "s-2", "s-3"} {
		session := reload.Session{
			ID:        id,
			Root:      "pkg.a",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
			Status:    reload.StatusOK,
		}
		if err := store.Record(session); err != nil {
			t.Fatalf("Record(%s) failed: %v", id, err)
		}
	}

	sessions, err := store.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if sessions[0].ID != "s-3" || sessions[1].ID != "s-2" {
		t.Errorf("order = [%s %s], want [s-3 s-2]", sessions[0].ID, sessions[1].ID)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)

	old := reload.Session{ID: "old", Root: "pkg.a",
		StartedAt: time.Now().UTC().Add(-48 * time.Hour), Status: reload.StatusOK}
	recent := reload.Session{ID: "recent", Root: "pkg.a",
		StartedAt: time.Now().UTC(), Status: reload.StatusOK}
	for _, s := range []reload.Session{old, recent} {
		if err := store.Record(s); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	deleted, err := store.Prune(24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if got, _ := store.Get("old"); got != nil {
		t.Error("old session survived prune")
	}
	if got, _ := store.Get("recent"); got == nil {
		t.Error("recent session pruned")
	}
}

func TestReopenExistingDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenStore(dir, logging.Discard())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	session := reload.Session{ID: "s-1", Root: "pkg.a",
		StartedAt: time.Now().UTC(), Status: reload.StatusOK}
	if err := store.Record(session); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenStore(dir, logging.Discard())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	got, err := reopened.Get("s-1")
	if err != nil || got == nil {
		t.Fatalf("session lost across reopen: %v, %v", got, err)
	}
}
