// Package aggregator builds today's practice list from journey subscriptions
// and custom habits, and routes completions to the habit store and profile.
package aggregator

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/rizq/internal/constants"
	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/models"
)

// HabitStore is the subset of habits.Store the aggregator reads and writes.
type HabitStore interface {
	ActiveJourneyIDs(ctx context.Context) []int
	CustomHabits(ctx context.Context) []models.CustomHabit
	TodayCompletedIDs(ctx context.Context) []int
	MarkCompleted(ctx context.Context, duaID int) (bool, error)
	ClaimReward(ctx context.Context, duaID int) (bool, error)
}

type ContentProvider interface {
	FetchJourneyWithDuas(ctx context.Context, journeyID int) (models.JourneyWithDuas, error)
	FetchDua(ctx context.Context, duaID int) (models.Dua, error)
}

// ProgressRecorder receives XP for new completions. profile.Ledger satisfies it.
type ProgressRecorder interface {
	Counters(ctx context.Context) models.ProfileCounters
	RecordActivity(ctx context.Context, xp int) (before, after models.ProfileCounters, err error)
}

// Result is one aggregation pass.
type Result struct {
	Habits []models.Habit
	// Fallback is set when the list is cached or sample data because
	// aggregation did not finish in time.
	Fallback bool
	// Skipped counts journeys and duas that could not be resolved.
	Skipped int
}

type Aggregator struct {
	store       HabitStore
	content     ContentProvider
	recorder    ProgressRecorder
	onComplete  func(models.CompletionEvent)
	fallback    func() []models.Habit
	timeout     time.Duration
	concurrency int
	now         func() time.Time

	mu       sync.Mutex
	lastGood []models.Habit
}

type Option func(*Aggregator)

// WithTimeout bounds a whole LoadTodaysHabits call.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithFallback sets the dataset used on timeout when nothing is cached yet.
func WithFallback(fn func() []models.Habit) Option {
	return func(a *Aggregator) { a.fallback = fn }
}

// WithConcurrency limits in-flight content lookups.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

func WithProgressRecorder(r ProgressRecorder) Option {
	return func(a *Aggregator) { a.recorder = r }
}

// WithCompletionHandler registers a callback fired after each new completion.
func WithCompletionHandler(fn func(models.CompletionEvent)) Option {
	return func(a *Aggregator) { a.onComplete = fn }
}

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func New(store HabitStore, provider ContentProvider, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:       store,
		content:     provider,
		fallback:    content.FallbackHabits,
		timeout:     constants.DefaultLoadTimeout,
		concurrency: constants.DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LoadTodaysHabits merges journey and custom habits into one list sorted by
// time slot. It never fails: unresolvable items are skipped and a timeout
// yields the last good list or the fallback dataset.
func (a *Aggregator) LoadTodaysHabits(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	done := make(chan Result, 1)
	go func() {
		done <- a.resolve(ctx)
	}()

	select {
	case res := <-done:
		if ctx.Err() == nil {
			a.remember(res.Habits)
			return res
		}
	case <-ctx.Done():
	}

	logger.Warn("Habit aggregation did not finish, serving fallback", "timeout", a.timeout, "error", ctx.Err())
	return Result{Habits: a.fallbackHabits(), Fallback: true}
}

func (a *Aggregator) resolve(ctx context.Context) Result {
	journeyIDs := a.store.ActiveJourneyIDs(ctx)
	journeys := make([]*models.JourneyWithDuas, len(journeyIDs))

	var g errgroup.Group
	g.SetLimit(a.concurrency)
	for i, id := range journeyIDs {
		g.Go(func() error {
			j, err := a.content.FetchJourneyWithDuas(ctx, id)
			if err != nil {
				logger.Warn("Skipping journey", "journey_id", id, "error", err)
				return nil
			}
			journeys[i] = &j
			return nil
		})
	}
	_ = g.Wait()

	var res Result
	seen := make(map[int]bool)
	for _, j := range journeys {
		if j == nil {
			res.Skipped++
			continue
		}
		duas := append([]models.JourneyDua(nil), j.Duas...)
		sort.SliceStable(duas, func(x, y int) bool { return duas[x].SortOrder < duas[y].SortOrder })
		for _, jd := range duas {
			if seen[jd.Dua.ID] {
				continue
			}
			seen[jd.Dua.ID] = true
			res.Habits = append(res.Habits, models.JourneyHabit(j.Journey.ID, jd))
		}
	}

	var pending []models.CustomHabit
	for _, c := range a.store.CustomHabits(ctx) {
		if seen[c.DuaID] {
			continue
		}
		seen[c.DuaID] = true
		pending = append(pending, c)
	}

	duas := make([]*models.Dua, len(pending))
	var dg errgroup.Group
	dg.SetLimit(a.concurrency)
	for i, c := range pending {
		dg.Go(func() error {
			d, err := a.content.FetchDua(ctx, c.DuaID)
			if err != nil {
				logger.Warn("Skipping custom habit", "dua_id", c.DuaID, "error", err)
				return nil
			}
			duas[i] = &d
			return nil
		})
	}
	_ = dg.Wait()

	for i, c := range pending {
		if duas[i] == nil {
			res.Skipped++
			continue
		}
		res.Habits = append(res.Habits, models.CustomHabitItem(c, *duas[i]))
	}

	SortBySlot(res.Habits)
	if res.Habits == nil {
		res.Habits = []models.Habit{}
	}
	return res
}

func (a *Aggregator) remember(habits []models.Habit) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastGood = append([]models.Habit(nil), habits...)
}

func (a *Aggregator) cached() []models.Habit {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lastGood == nil {
		return nil
	}
	return append([]models.Habit{}, a.lastGood...)
}

func (a *Aggregator) fallbackHabits() []models.Habit {
	if habits := a.cached(); habits != nil {
		return habits
	}
	if a.fallback == nil {
		return []models.Habit{}
	}
	habits := a.fallback()
	if habits == nil {
		return []models.Habit{}
	}
	return habits
}

// Complete marks duaID done for today. The first completion of a dua on a
// given day earns its XP through the progress recorder and fires the
// completion handler; repeats earn nothing, even after an unmark. Duas the
// content provider does not know are rejected before anything is written.
func (a *Aggregator) Complete(ctx context.Context, duaID int) (models.CompletionEvent, error) {
	title, xp, err := a.lookup(ctx, duaID)
	if err != nil {
		return models.CompletionEvent{}, err
	}

	added, err := a.store.MarkCompleted(ctx, duaID)
	if err != nil {
		return models.CompletionEvent{}, fmt.Errorf("failed to mark dua %d completed: %w", duaID, err)
	}

	event := models.CompletionEvent{
		DuaID:            duaID,
		Title:            title,
		AlreadyCompleted: !added,
		CompletedAt:      a.now(),
	}
	if !added {
		a.fillCounters(ctx, &event)
		return event, nil
	}

	claimed, err := a.store.ClaimReward(ctx, duaID)
	if err != nil {
		return event, fmt.Errorf("completion saved but XP was not recorded: %w", err)
	}
	if !claimed {
		event.AlreadyRewarded = true
		a.fillCounters(ctx, &event)
		logger.Debug("Dua already rewarded today", "dua_id", duaID)
		return event, nil
	}

	if a.recorder != nil {
		before, after, err := a.recorder.RecordActivity(ctx, xp)
		if err != nil {
			return event, fmt.Errorf("completion saved but XP was not recorded: %w", err)
		}
		event.XPEarned = xp
		event.Counters = after
		event.LeveledUp = after.Level > before.Level
		event.StreakExtended = after.StreakCount > before.StreakCount
	}

	logger.Info("Completed dua", "dua_id", duaID, "xp", event.XPEarned, "level", event.Counters.Level)
	if a.onComplete != nil {
		a.onComplete(event)
	}
	return event, nil
}

func (a *Aggregator) fillCounters(ctx context.Context, event *models.CompletionEvent) {
	if a.recorder != nil {
		event.Counters = a.recorder.Counters(ctx)
	}
}

// lookup finds the title and XP of a dua, preferring the last aggregated list.
func (a *Aggregator) lookup(ctx context.Context, duaID int) (string, int, error) {
	for _, h := range a.cached() {
		if h.DuaID == duaID {
			return h.Title, h.XPValue, nil
		}
	}
	d, err := a.content.FetchDua(ctx, duaID)
	if err != nil {
		return "", 0, fmt.Errorf("cannot complete dua %d: %w", duaID, err)
	}
	return d.Title, d.XPValue, nil
}

// CompletedSet returns today's completions as a set.
func (a *Aggregator) CompletedSet(ctx context.Context) map[int]bool {
	ids := a.store.TodayCompletedIDs(ctx)
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
