// Package habits owns the persisted habit selections and the daily completion ledger.
package habits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/progress"
	"github.com/julianstephens/rizq/internal/storage"
	"github.com/julianstephens/rizq/internal/utils"
)

// Store serializes every read-modify-write of the snapshot blob through one mutex.
// All state lives in the KV backend; the store itself caches nothing.
type Store struct {
	mu            sync.Mutex
	kv            storage.KV
	key           string
	now           func() time.Time
	loc           *time.Location
	retentionDays int
}

type Option func(*Store)

// WithKey overrides the storage key (used to scope records per user).
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLocation sets the timezone that decides which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithRetentionDays sets how many past days of completions survive pruning.
// Values below 1 keep the default.
func WithRetentionDays(days int) Option {
	return func(s *Store) {
		if days > 0 {
			s.retentionDays = days
		}
	}
}

func New(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:            kv,
		key:           constants.HabitsStorageKey,
		now:           time.Now,
		loc:           time.Local,
		retentionDays: constants.DefaultRetentionDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Store) todayKey() string {
	return utils.DayKey(s.today(), nil)
}

// Load returns the stored snapshot. Missing or unreadable data yields an empty snapshot.
func (s *Store) Load(ctx context.Context) models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Save replaces the stored snapshot.
func (s *Store) Save(ctx context.Context, snap models.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, snap)
}

func (s *Store) load(ctx context.Context) models.Snapshot {
	data, err := s.kv.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("Habit store unreadable, using empty state", "key", s.key, "error", err)
		}
		return models.EmptySnapshot()
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		logger.Warn("Habit store blob corrupt, using empty state", "key", s.key, "error", err)
		return models.EmptySnapshot()
	}
	snap.Normalize()
	return snap
}

func (s *Store) save(ctx context.Context, snap models.Snapshot) error {
	snap.Normalize()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to serialize habit store: %w", err)
	}
	if err := s.kv.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write habit store: %w", err)
	}
	return nil
}

// update runs one load/mutate/save cycle. fn reports whether it changed anything;
// unchanged snapshots are not written back.
func (s *Store) update(ctx context.Context, fn func(*models.Snapshot) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.load(ctx)
	if !fn(&snap) {
		return nil
	}
	return s.save(ctx, snap)
}

// AddJourney subscribes to a journey. Subscribing twice is a no-op.
func (s *Store) AddJourney(ctx context.Context, journeyID int) error {
	return s.update(ctx, func(snap *models.Snapshot) bool {
		if slices.Contains(snap.ActiveJourneyIDs, journeyID) {
			return false
		}
		snap.ActiveJourneyIDs = append(snap.ActiveJourneyIDs, journeyID)
		return true
	})
}

func (s *Store) RemoveJourney(ctx context.Context, journeyID int) error {
	return s.update(ctx, func(snap *models.Snapshot) bool {
		i := slices.Index(snap.ActiveJourneyIDs, journeyID)
		if i < 0 {
			return false
		}
		snap.ActiveJourneyIDs = slices.Delete(snap.ActiveJourneyIDs, i, i+1)
		return true
	})
}

func (s *Store) IsJourneyActive(ctx context.Context, journeyID int) bool {
	return slices.Contains(s.Load(ctx).ActiveJourneyIDs, journeyID)
}

// ActiveJourneyIDs returns subscriptions in the order they were made.
func (s *Store) ActiveJourneyIDs(ctx context.Context) []int {
	return s.Load(ctx).ActiveJourneyIDs
}

// AddCustomHabit adds a single dua to the user's routine. A dua that already
// has a custom habit is left untouched.
func (s *Store) AddCustomHabit(ctx context.Context, duaID int, slot models.TimeSlot) error {
	if !slot.Valid() {
		return fmt.Errorf("invalid time slot %q", slot)
	}
	return s.update(ctx, func(snap *models.Snapshot) bool {
		for _, c := range snap.CustomHabits {
			if c.DuaID == duaID {
				return false
			}
		}
		snap.CustomHabits = append(snap.CustomHabits, models.CustomHabit{
			ID:        uuid.New().String(),
			DuaID:     duaID,
			TimeSlot:  slot,
			SortOrder: len(snap.CustomHabits),
			CreatedAt: s.now().UTC(),
		})
		return true
	})
}

func (s *Store) RemoveCustomHabit(ctx context.Context, id string) error {
	return s.update(ctx, func(snap *models.Snapshot) bool {
		i := slices.IndexFunc(snap.CustomHabits, func(c models.CustomHabit) bool { return c.ID == id })
		if i < 0 {
			return false
		}
		snap.CustomHabits = slices.Delete(snap.CustomHabits, i, i+1)
		return true
	})
}

// CustomHabits returns custom habits ordered by SortOrder.
func (s *Store) CustomHabits(ctx context.Context) []models.CustomHabit {
	habits := s.Load(ctx).CustomHabits
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].SortOrder < habits[j].SortOrder
	})
	return habits
}

// MarkCompleted records duaID as done today and reports whether it was new.
// Every write also prunes day records that fell out of the retention window.
func (s *Store) MarkCompleted(ctx context.Context, duaID int) (bool, error) {
	added := false
	today := s.today()
	key := utils.DayKey(today, nil)

	err := s.update(ctx, func(snap *models.Snapshot) bool {
		ids := snap.DailyCompletions[key]
		pruned := s.prune(snap, today)
		if slices.Contains(ids, duaID) {
			return pruned
		}
		snap.DailyCompletions[key] = append(ids, duaID)
		added = true
		return true
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// ClaimReward records that duaID paid XP today and reports whether this is the
// first claim of the day. Claims survive UnmarkCompleted, so a dua pays at most
// once per day.
func (s *Store) ClaimReward(ctx context.Context, duaID int) (bool, error) {
	claimed := false
	today := s.today()
	key := utils.DayKey(today, nil)

	err := s.update(ctx, func(snap *models.Snapshot) bool {
		ids := snap.RewardedDuas[key]
		pruned := s.prune(snap, today)
		if slices.Contains(ids, duaID) {
			return pruned
		}
		snap.RewardedDuas[key] = append(ids, duaID)
		claimed = true
		return true
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}

// UnmarkCompleted removes duaID from today's record. XP already paid for it
// stays paid, and completing it again today earns nothing.
func (s *Store) UnmarkCompleted(ctx context.Context, duaID int) error {
	key := s.todayKey()
	return s.update(ctx, func(snap *models.Snapshot) bool {
		ids := snap.DailyCompletions[key]
		i := slices.Index(ids, duaID)
		if i < 0 {
			return false
		}
		snap.DailyCompletions[key] = slices.Delete(ids, i, i+1)
		return true
	})
}

func (s *Store) prune(snap *models.Snapshot, today time.Time) bool {
	changed := false
	for _, days := range []map[string][]int{snap.DailyCompletions, snap.RewardedDuas} {
		for day := range days {
			t, err := utils.ParseDay(day, today.Location())
			if err != nil || progress.DaysBetween(t, today) > s.retentionDays {
				delete(days, day)
				changed = true
			}
		}
	}
	return changed
}

func (s *Store) IsCompletedToday(ctx context.Context, duaID int) bool {
	return slices.Contains(s.TodayCompletedIDs(ctx), duaID)
}

func (s *Store) TodayCompletedIDs(ctx context.Context) []int {
	return s.CompletionsOn(ctx, s.todayKey())
}

// CompletionsOn returns the dua IDs recorded for day (YYYY-MM-DD).
func (s *Store) CompletionsOn(ctx context.Context, day string) []int {
	ids := s.Load(ctx).DailyCompletions[day]
	if ids == nil {
		return []int{}
	}
	return ids
}

// Today returns today's calendar key in the store's timezone.
func (s *Store) Today() string {
	return s.todayKey()
}

// Clear drops all stored habit state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to clear habit store: %w", err)
	}
	return nil
}
