package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/model"
)

// FileStore keeps all records in memory and persists them as a single
// JSON document. It is safe for concurrent use within one process; two
// processes writing the same file will lose updates — that is a known
// limitation of this backend, not something it tries to paper over.
type FileStore struct {
	mu      sync.RWMutex
	records map[int64]*model.ActivityRecord
	path    string
	dirty   bool

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewFileStore loads the JSON document at path (missing file means empty
// state) and starts a background flush loop with the given interval. An
// interval of zero disables periodic flushing; Close still saves.
func NewFileStore(path string, flushInterval time.Duration) (*FileStore, error) {
	s := &FileStore{
		records: make(map[int64]*model.ActivityRecord),
		path:    path,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	go s.flushLoop(flushInterval)

	log.Info().
		Str("path", path).
		Int("records", len(s.records)).
		Dur("flush_interval", flushInterval).
		Msg("File store loaded")

	return s, nil
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read store file: %w", err)
	}

	var records []*model.ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse store file %s: %w", s.path, err)
	}

	for _, r := range records {
		r.Recompute()
		s.records[r.UserID] = r
	}
	return nil
}

func (s *FileStore) flushLoop(interval time.Duration) {
	defer close(s.done)

	if interval <= 0 {
		<-s.stop
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Save(); err != nil {
				log.Error().Err(err).Msg("Periodic flush failed")
			}
		case <-s.stop:
			return
		}
	}
}

// Save writes a snapshot of the current state to disk. The snapshot is
// copied under the read lock and written outside it, so a slow disk
// never blocks concurrent increments, and a crash mid-write leaves the
// previous file intact (write to temp, then rename).
func (s *FileStore) Save() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := make([]*model.ActivityRecord, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		snapshot = append(snapshot, &cp)
	}
	s.dirty = false
	s.mu.Unlock()

	if err := s.write(snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return err
	}

	log.Debug().Int("records", len(snapshot)).Msg("Store flushed to disk")
	return nil
}

func (s *FileStore) write(snapshot []*model.ActivityRecord) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, userID int64) (*model.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// Upsert implements Store.
func (s *FileStore) Upsert(_ context.Context, userID int64, patch model.UserPatch) (*model.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[userID]
	if !ok {
		r = model.NewRecord(userID, patch)
		s.records[userID] = r
	} else {
		patch.Apply(r)
	}
	s.dirty = true

	cp := *r
	return &cp, nil
}

// All implements Store.
func (s *FileStore) All(_ context.Context) ([]*model.ActivityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.ActivityRecord, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

// ReplaceAll implements Store.
func (s *FileStore) ReplaceAll(_ context.Context, records []*model.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[int64]*model.ActivityRecord, len(records))
	for _, r := range records {
		cp := *r
		cp.Recompute()
		s.records[cp.UserID] = &cp
	}
	s.dirty = true
	return nil
}

// Close stops the flush loop and saves the final state. It is safe to
// call more than once; later calls return nil.
func (s *FileStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.done
		err = s.Save()
	})
	return err
}
