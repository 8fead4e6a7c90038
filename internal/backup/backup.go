// Package backup writes portable JSON archives of a user's habit selections,
// completion ledger and profile counters, independent of the storage backend.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/storage"
)

const (
	// MaxBackups is the maximum number of backups to keep
	MaxBackups = 14
	// BackupDirName is the name of the backup directory
	BackupDirName = "backups"
	// BackupFilePrefix is the prefix for backup files
	BackupFilePrefix = "rizq-"
	// BackupFileSuffix is the suffix for backup files
	BackupFileSuffix = ".json"
	// FormatVersion is the archive layout written by CreateBackup
	FormatVersion = 1

	timestampLayout = "20060102-150405"
)

var ErrInvalidArchive = errors.New("invalid backup archive")

// Keys are the storage keys an archive captures.
type Keys struct {
	Habits  string
	Profile string
}

// Archive is the on-disk backup document. Absent records stay nil.
type Archive struct {
	Version   int                     `json:"version"`
	CreatedAt time.Time               `json:"created_at"`
	Keys      Keys                    `json:"keys"`
	Habits    *models.Snapshot        `json:"habits,omitempty"`
	Profile   *models.ProfileCounters `json:"profile,omitempty"`
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
	seq       int
}

// HabitRecords is how a restore writes the habit record. habits.Store satisfies it.
type HabitRecords interface {
	Save(ctx context.Context, snap models.Snapshot) error
	Clear(ctx context.Context) error
}

// ProfileRecords is how a restore writes the profile record. profile.Ledger satisfies it.
type ProfileRecords interface {
	Save(ctx context.Context, c models.ProfileCounters) error
	Clear(ctx context.Context) error
}

// Manager handles backup operations. Archives are read straight from the KV
// store; restores write through the owning habit store and profile ledger.
type Manager struct {
	kv        storage.KV
	keys      Keys
	habits    HabitRecords
	profile   ProfileRecords
	backupDir string
	now       func() time.Time
}

// NewManager returns a manager for the records under keys. habitRecords and
// profileRecords must own those same keys.
func NewManager(kv storage.KV, backupDir string, keys Keys, habitRecords HabitRecords, profileRecords ProfileRecords) *Manager {
	return &Manager{
		kv:        kv,
		keys:      keys,
		habits:    habitRecords,
		profile:   profileRecords,
		backupDir: backupDir,
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup archives the current records and rotates old archives.
func (m *Manager) CreateBackup(ctx context.Context) (string, error) {
	return m.createBackup(ctx, false)
}

// createBackup skips rotation when called on behalf of a restore
func (m *Manager) createBackup(ctx context.Context, skipRotation bool) (string, error) {
	archive, err := m.snapshot(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	backupPath, err := m.uniquePath(archive.CreatedAt)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(archive, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode backup: %w", err)
	}
	if err := writeFileAtomic(backupPath, data); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "dir", m.backupDir, "error", err)
		}
	}
	return backupPath, nil
}

func (m *Manager) snapshot(ctx context.Context) (Archive, error) {
	archive := Archive{
		Version:   FormatVersion,
		CreatedAt: m.now().UTC(),
		Keys:      m.keys,
	}

	var snap models.Snapshot
	found, err := m.loadRecord(ctx, m.keys.Habits, &snap)
	if err != nil {
		return Archive{}, err
	}
	if found {
		snap.Normalize()
		archive.Habits = &snap
	}

	var counters models.ProfileCounters
	found, err = m.loadRecord(ctx, m.keys.Profile, &counters)
	if err != nil {
		return Archive{}, err
	}
	if found {
		archive.Profile = &counters
	}
	return archive, nil
}

// loadRecord decodes key into v. A corrupt record fails the backup rather than
// being silently replaced by an empty one.
func (m *Manager) loadRecord(ctx context.Context, key string, v any) (bool, error) {
	data, err := m.kv.Load(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("record %s is corrupt: %w", key, err)
	}
	return true, nil
}

// uniquePath numbers archives taken within the same second after the highest
// existing one, so rotation never removes the archive just written.
func (m *Manager) uniquePath(at time.Time) (string, error) {
	stamp := at.Format(timestampLayout)
	existing, err := m.ListBackups()
	if err != nil {
		return "", err
	}
	last := -1
	for _, b := range existing {
		if b.Timestamp.Format(timestampLayout) == stamp && b.seq > last {
			last = b.seq
		}
	}
	if last < 0 {
		return filepath.Join(m.backupDir, BackupFilePrefix+stamp+BackupFileSuffix), nil
	}
	return filepath.Join(m.backupDir, fmt.Sprintf("%s%s-%d%s", BackupFilePrefix, stamp, last+1, BackupFileSuffix)), nil
}

// ListBackups returns all archives, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []BackupInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: ts,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].seq > backups[j].seq
	})
	return backups, nil
}

// parseName reads rizq-YYYYMMDD-HHMMSS[-N].json
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, BackupFilePrefix) || !strings.HasSuffix(name, BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, BackupFilePrefix), BackupFileSuffix)

	seq := 0
	if len(stamp) > len(timestampLayout) {
		suffix, ok := strings.CutPrefix(stamp[len(timestampLayout):], "-")
		if !ok {
			return time.Time{}, 0, false
		}
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
		stamp = stamp[:len(timestampLayout)]
	}

	ts, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return time.Time{}, 0, false
	}
	return ts, seq, true
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ReadArchive loads and validates a backup file.
func ReadArchive(path string) (Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Archive{}, fmt.Errorf("failed to read backup: %w", err)
	}
	var archive Archive
	if err := json.Unmarshal(data, &archive); err != nil {
		return Archive{}, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	if archive.Version < 1 || archive.Version > FormatVersion {
		return Archive{}, fmt.Errorf("%w: unsupported version %d", ErrInvalidArchive, archive.Version)
	}
	if archive.Profile != nil && (archive.Profile.TotalXP < 0 || archive.Profile.StreakCount < 0) {
		return Archive{}, fmt.Errorf("%w: negative profile counters", ErrInvalidArchive)
	}
	return archive, nil
}

// RestoreBackup replaces the current records with the archive at path. The
// current state is archived first. Records absent from the archive are deleted.
// It returns the path of the pre-restore archive.
func (m *Manager) RestoreBackup(ctx context.Context, path string) (string, error) {
	archive, err := ReadArchive(path)
	if err != nil {
		return "", err
	}

	previous, err := m.createBackup(ctx, true)
	if err != nil {
		return "", fmt.Errorf("failed to backup current state before restore: %w", err)
	}

	if archive.Habits != nil {
		err = m.habits.Save(ctx, *archive.Habits)
	} else {
		err = m.habits.Clear(ctx)
	}
	if err != nil {
		return previous, fmt.Errorf("failed to restore %s: %w", m.keys.Habits, err)
	}

	if archive.Profile != nil {
		err = m.profile.Save(ctx, *archive.Profile)
	} else {
		err = m.profile.Clear(ctx)
	}
	if err != nil {
		return previous, fmt.Errorf("failed to restore %s: %w", m.keys.Profile, err)
	}
	return previous, nil
}

// writeFileAtomic writes to a temporary file and renames it into place
func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
