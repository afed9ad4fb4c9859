package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayoubcharbel/telegram-bot/model"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestFileStoreGetOrCreate(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, 1); err != ErrNotFound {
		t.Fatalf("Get() on empty store error = %v, want ErrNotFound", err)
	}

	created, err := s.Upsert(ctx, 1, model.UserPatch{Username: "alice", MessageDelta: 1})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if created.FirstSeen.IsZero() {
		t.Error("FirstSeen not set on creation")
	}

	again, err := s.Upsert(ctx, 1, model.UserPatch{MessageDelta: 1})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if again.MessageCount != 2 {
		t.Errorf("MessageCount = %d, want 2 (update, not second record)", again.MessageCount)
	}
	if !again.FirstSeen.Equal(created.FirstSeen) {
		t.Error("FirstSeen changed on update; must be immutable")
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(All()) = %d, want exactly one record per userID", len(all))
	}
}

func TestFileStoreTotalInvariant(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	patches := []model.UserPatch{
		{MessageDelta: 1},
		{StickerDelta: 1},
		{MessageDelta: 1},
		{},
		{StickerDelta: 1},
	}

	for i, p := range patches {
		r, err := s.Upsert(ctx, 42, p)
		if err != nil {
			t.Fatalf("Upsert() #%d error = %v", i, err)
		}
		if r.TotalActivity != r.MessageCount+r.StickerCount {
			t.Fatalf("after patch #%d: TotalActivity = %d, want %d",
				i, r.TotalActivity, r.MessageCount+r.StickerCount)
		}
	}
}

func TestFileStoreSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	ctx := context.Background()

	s, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := s.Upsert(ctx, 5, model.UserPatch{Username: "bob", MessageDelta: 3}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reloaded, err := NewFileStore(path, 0)
	if err != nil {
		t.Fatalf("NewFileStore() reload error = %v", err)
	}
	defer reloaded.Close()

	r, err := reloaded.Get(ctx, 5)
	if err != nil {
		t.Fatalf("Get() after reload error = %v", err)
	}
	if r.Username != "bob" || r.MessageCount != 3 || r.TotalActivity != 3 {
		t.Errorf("reloaded record = %+v, lost state across save/load", r)
	}
}

func TestFileStoreLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileStore(path, 0); err == nil {
		t.Error("NewFileStore() on malformed file should fail")
	}
}

func TestFileStoreReplaceAll(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	if _, err := s.Upsert(ctx, 1, model.UserPatch{MessageDelta: 10}); err != nil {
		t.Fatal(err)
	}

	restored := []*model.ActivityRecord{
		{UserID: 2, MessageCount: 4, FirstSeen: time.Now(), LastSeen: time.Now()},
	}
	if err := s.ReplaceAll(ctx, restored); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	// The pre-restore user is gone entirely.
	if _, err := s.Get(ctx, 1); err != ErrNotFound {
		t.Errorf("Get(1) after restore error = %v, want ErrNotFound", err)
	}

	r, err := s.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get(2) error = %v", err)
	}
	if r.TotalActivity != 4 {
		t.Errorf("TotalActivity = %d, want recomputed 4", r.TotalActivity)
	}
}

func TestFileStoreConcurrentUpserts(t *testing.T) {
	s := newTestFileStore(t)
	ctx := context.Background()

	const workers = 8
	const perWorker = 50

	done := make(chan struct{})
	for w := 0; w < workers; w++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for i := 0; i < perWorker; i++ {
				_, _ = s.Upsert(ctx, 99, model.UserPatch{MessageDelta: 1})
			}
		}()
	}
	for w := 0; w < workers; w++ {
		<-done
	}

	r, err := s.Get(ctx, 99)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if r.MessageCount != workers*perWorker {
		t.Errorf("MessageCount = %d, want %d (lost increments)", r.MessageCount, workers*perWorker)
	}

	all, _ := s.All(ctx)
	if len(all) != 1 {
		t.Errorf("len(All()) = %d, want 1 (at-most-one-creation violated)", len(all))
	}
}

func TestFileStoreCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	s, err := NewFileStore(path, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v, want nil", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("state file after Close: %v", err)
	}
}
