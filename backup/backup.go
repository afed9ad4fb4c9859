// Package backup snapshots the Record Store to timestamp-named JSON
// files and restores them, keeping a bounded number of rotations.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ayoubcharbel/telegram-bot/model"
	"github.com/ayoubcharbel/telegram-bot/store"
)

const (
	filePrefix = "backup_"
	fileSuffix = ".json"
	nameLayout = "20060102_150405"
)

// Manager creates, lists and restores backups for any Store.
type Manager struct {
	store store.Store
	dir   string
	keep  int
	now   func() time.Time
}

// New creates a Manager writing into dir and retaining the keep newest
// backups (0 disables rotation).
func New(s store.Store, dir string, keep int) *Manager {
	return &Manager{store: s, dir: dir, keep: keep, now: time.Now}
}

// Create writes a full snapshot of the store and prunes old rotations.
func (m *Manager) Create(ctx context.Context) (model.BackupInfo, error) {
	records, err := m.store.All(ctx)
	if err != nil {
		return model.BackupInfo{}, fmt.Errorf("failed to snapshot store: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return model.BackupInfo{}, fmt.Errorf("failed to marshal backup: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0o750); err != nil {
		return model.BackupInfo{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	name := filePrefix + m.now().UTC().Format(nameLayout) + fileSuffix
	path := filepath.Join(m.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.BackupInfo{}, fmt.Errorf("failed to write backup %s: %w", name, err)
	}

	log.Info().Str("backup", name).Int("records", len(records)).Msg("Backup created")
	m.rotate()

	return model.BackupInfo{
		Name:      name,
		SizeBytes: int64(len(data)),
		CreatedAt: m.now(),
		Records:   len(records),
	}, nil
}

// List returns available backups, newest first.
func (m *Manager) List() ([]model.BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []model.BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var infos []model.BackupInfo
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, model.BackupInfo{
			Name:      name,
			SizeBytes: fi.Size(),
			CreatedAt: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name > infos[j].Name })
	return infos, nil
}

// Restore atomically replaces the entire record set with the named
// backup's contents. The payload is fully parsed before the store is
// touched: a missing or malformed backup leaves current state intact.
func (m *Manager) Restore(ctx context.Context, name string) error {
	// Reject anything that could escape the backup directory.
	if name != filepath.Base(name) || !strings.HasPrefix(name, filePrefix) {
		return fmt.Errorf("invalid backup name %q", name)
	}

	data, err := os.ReadFile(filepath.Join(m.dir, name))
	if err != nil {
		return fmt.Errorf("failed to read backup %s: %w", name, err)
	}

	var records []*model.ActivityRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse backup %s: %w", name, err)
	}
	for _, r := range records {
		r.Recompute()
	}

	if err := m.store.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", name, err)
	}

	log.Info().Str("backup", name).Int("records", len(records)).Msg("Backup restored")
	return nil
}

// rotate removes backups beyond the keep newest. Best effort.
func (m *Manager) rotate() {
	if m.keep <= 0 {
		return
	}
	infos, err := m.List()
	if err != nil {
		log.Warn().Err(err).Msg("Backup rotation skipped")
		return
	}
	if len(infos) <= m.keep {
		return
	}
	for _, info := range infos[m.keep:] {
		if err := os.Remove(filepath.Join(m.dir, info.Name)); err != nil {
			log.Warn().Err(err).Str("backup", info.Name).Msg("Failed to prune backup")
		} else {
			log.Debug().Str("backup", info.Name).Msg("Old backup pruned")
		}
	}
}
