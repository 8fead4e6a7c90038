// Package profile keeps the user's XP, level and streak counters.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/progress"
	"github.com/julianstephens/rizq/internal/storage"
	"github.com/julianstephens/rizq/internal/utils"
)

// Ledger serializes counter updates the same way habits.Store serializes snapshots.
type Ledger struct {
	mu  sync.Mutex
	kv  storage.KV
	key string
	now func() time.Time
	loc *time.Location
}

type Option func(*Ledger)

func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func New(kv storage.KV, opts ...Option) *Ledger {
	l := &Ledger{
		kv:  kv,
		key: constants.ProfileStorageKey,
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func defaultCounters() models.ProfileCounters {
	return models.ProfileCounters{Level: progress.CalculateLevel(0)}
}

// Counters returns the stored counters with the level recomputed from XP.
func (l *Ledger) Counters(ctx context.Context) models.ProfileCounters {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *Ledger) load(ctx context.Context) models.ProfileCounters {
	data, err := l.kv.Load(ctx, l.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Profile unreadable, using defaults", "key", l.key, "error", err)
		}
		return defaultCounters()
	}

	var c models.ProfileCounters
	if err := json.Unmarshal(data, &c); err != nil {
		logger.Warn("Profile blob corrupt, using defaults", "key", l.key, "error", err)
		return defaultCounters()
	}
	if c.TotalXP < 0 {
		c.TotalXP = 0
	}
	if c.StreakCount < 0 {
		c.StreakCount = 0
	}
	c.Level = progress.CalculateLevel(c.TotalXP)
	return c
}

func (l *Ledger) save(ctx context.Context, c models.ProfileCounters) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize profile: %w", err)
	}
	if err := l.kv.Save(ctx, l.key, data); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	return nil
}

// RecordActivity adds xp for an activity happening now and advances the streak.
// It returns the counters before and after the update.
func (l *Ledger) RecordActivity(ctx context.Context, xp int) (before, after models.ProfileCounters, err error) {
	if xp < 0 {
		return before, after, fmt.Errorf("xp must not be negative, got %d", xp)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	before = l.load(ctx)
	after = before

	today := l.now().In(l.loc)
	var lastActive time.Time
	if before.LastActiveDate != "" {
		lastActive, err = utils.ParseDay(before.LastActiveDate, l.loc)
		if err != nil {
			logger.Warn("Ignoring unparseable last active date", "value", before.LastActiveDate, "error", err)
			lastActive = time.Time{}
		}
	}

	after.TotalXP += xp
	after.Level = progress.CalculateLevel(after.TotalXP)
	after.StreakCount = progress.UpdateStreak(lastActive, today, before.StreakCount)
	// A clock that moved backwards keeps the later date
	if lastActive.IsZero() || progress.DaysBetween(lastActive, today) > 0 {
		after.LastActiveDate = utils.DayKey(today, nil)
	}

	if err := l.save(ctx, after); err != nil {
		return before, before, err
	}
	logger.Debug("Recorded activity", "xp", xp, "total_xp", after.TotalXP, "level", after.Level, "streak", after.StreakCount)
	return before, after, nil
}

// Save replaces the stored counters. Negative values are clamped and the level
// is recomputed from XP.
func (l *Ledger) Save(ctx context.Context, c models.ProfileCounters) error {
	c.TotalXP = max(c.TotalXP, 0)
	c.StreakCount = max(c.StreakCount, 0)
	c.Level = progress.CalculateLevel(c.TotalXP)

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(ctx, c)
}

// Clear deletes the stored counters; the next read yields defaults.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Delete(ctx, l.key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("failed to clear profile: %w", err)
	}
	return nil
}

// Reset zeroes XP, streak and last active date. The level falls back to 1.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(ctx, defaultCounters())
}
