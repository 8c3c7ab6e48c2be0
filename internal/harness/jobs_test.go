package harness

import (
	"testing"
	"time"
)

func TestJobStorePutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "abc", Filename: "doc.pdf", UpdatedAt: time.Now()}
	store.Put(job)

	if got := store.Get("abc"); got != job {
		t.Fatal("expected to get the stored job back")
	}
	if got := store.Get("missing"); got != nil {
		t.Fatal("expected nil for unknown id")
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(10 * time.Millisecond)
	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-time.Minute)}
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	store.Cleanup()

	if store.Get("stale") != nil {
		t.Error("expected stale job to be evicted")
	}
	if store.Get("fresh") == nil {
		t.Error("expected fresh job to survive")
	}
}

func TestJobSnapshotErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "x"}
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Fatal("snapshot errors should be an empty slice, not nil")
	}

	job.AddError("boom")
	snap = job.Snapshot()
	if len(snap.Errors) != 1 || snap.Errors[0] != "boom" {
		t.Fatalf("unexpected errors %v", snap.Errors)
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for _, s := range []JobStatus{StatusCompleted, StatusFailed} {
		if !s.Terminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusQueued, StatusPreflight, StatusUploading, StatusPolling, StatusDetecting, StatusSaving} {
		if s.Terminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestJobSetStatusBumpsUpdatedAt(t *testing.T) {
	job := &Job{ID: "x", UpdatedAt: time.Now().Add(-time.Minute)}
	before := job.UpdatedAt
	job.SetStatus(StatusPolling, "polling")
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to move forward")
	}
	if job.Status != StatusPolling || job.Phase != "polling" {
		t.Errorf("unexpected status %s phase %s", job.Status, job.Phase)
	}
}

func TestGenerateULIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 1000 {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("expected 26-char ULID, got %d (%s)", len(id), id)
		}
		if seen[id] {
			t.Fatalf("duplicate ULID %s", id)
		}
		seen[id] = true
	}
}
