package journal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// withClock swaps the package clock. Tests using it do not run in
// parallel.
func withClock(t *testing.T, times ...time.Time) {
	t.Helper()
	orig := now
	i := 0
	now = func() time.Time {
		ts := times[i]
		if i < len(times)-1 {
			i++
		}
		return ts
	}
	t.Cleanup(func() { now = orig })
}

func TestNew(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("New(\"\") error = nil, want error")
	}
	j, err := New(t.TempDir())
	if err != nil || j == nil {
		t.Fatalf("New() = %v, %v", j, err)
	}
}

func TestRecordAndList(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	withClock(t, base, base.Add(time.Minute), base.Add(2*time.Minute))

	dir := filepath.Join(t.TempDir(), "journal")
	j, _ := New(dir)

	ops := []Operation{OpInstall, OpUpdate, OpUninstall}
	var ids []string
	for _, op := range ops {
		e, err := j.Record(Entry{Operation: op, Project: "/p", Version: "1.0.0", Success: true})
		if err != nil {
			t.Fatalf("Record(%s) error = %v", op, err)
		}
		if e.ID == "" {
			t.Fatal("Record() left ID empty")
		}
		ids = append(ids, e.ID)
	}

	got, err := j.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() len = %d, want 3", len(got))
	}
	if got[0].Operation != OpUninstall || got[2].Operation != OpInstall {
		t.Errorf("List() not newest first: %v, %v", got[0].Operation, got[2].Operation)
	}

	limited, _ := j.List(2)
	if len(limited) != 2 {
		t.Errorf("List(2) len = %d, want 2", len(limited))
	}

	e, err := j.Get(ids[1][:8])
	if err != nil {
		t.Fatalf("Get(prefix) error = %v", err)
	}
	if e.Operation != OpUpdate {
		t.Errorf("Get(prefix).Operation = %s, want update", e.Operation)
	}
}

func TestList_MissingDirAndJunk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, _ := New(filepath.Join(dir, "absent"))
	got, err := j.List(0)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("List() on missing dir = %v, %v", got, err)
	}

	j, _ = New(dir)
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err = j.List(0)
	if err != nil || len(got) != 0 {
		t.Errorf("List() = %v, %v, want no entries", got, err)
	}
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()

	j, _ := New(t.TempDir())
	_, err := j.Get("deadbeef")
	if !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Get() error = %v, want ErrEntryNotFound", err)
	}
	if _, err := j.Get(""); err == nil {
		t.Error("Get(\"\") error = nil, want error")
	}
}

func TestCleanup(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	withClock(t, base, base.AddDate(0, 0, 50), base.AddDate(0, 0, 100))

	j, _ := New(t.TempDir())
	if _, err := j.Record(Entry{Operation: OpInstall}); err != nil {
		t.Fatal(err)
	}
	if _, err := j.Record(Entry{Operation: OpUpdate}); err != nil {
		t.Fatal(err)
	}

	// clock now sits at day 100: the day-0 entry is past a 90 day window
	removed, err := j.Cleanup(90)
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Cleanup() removed = %d, want 1", removed)
	}
	left, _ := j.List(0)
	if len(left) != 1 || left[0].Operation != OpUpdate {
		t.Errorf("after Cleanup() = %v", left)
	}

	if n, _ := j.Cleanup(0); n != 0 {
		t.Errorf("Cleanup(0) removed = %d, want 0", n)
	}
}
