package profile

import (
	"context"
	"testing"
	"time"

	"github.com/julianstephens/rizq/internal/models"
	"github.com/julianstephens/rizq/internal/storage"
)

func fixedClock(day string) func() time.Time {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	t = t.Add(20 * time.Hour)
	return func() time.Time { return t }
}

func seed(t *testing.T, kv storage.KV, c models.ProfileCounters) {
	t.Helper()
	l := New(kv)
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.save(context.Background(), c); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}

func TestCountersDefaults(t *testing.T) {
	l := New(storage.NewMemoryStore())

	c := l.Counters(context.Background())
	if c.TotalXP != 0 || c.Level != 1 || c.StreakCount != 0 || c.LastActiveDate != "" {
		t.Errorf("unexpected default counters: %+v", c)
	}
}

func TestCountersRecomputesLevel(t *testing.T) {
	kv := storage.NewMemoryStore()
	seed(t, kv, models.ProfileCounters{TotalXP: 300, Level: 1})

	if got := New(kv).Counters(context.Background()).Level; got != 3 {
		t.Errorf("expected stored level to be recomputed to 3, got %d", got)
	}
}

func TestCountersCorruptBlob(t *testing.T) {
	kv := storage.NewMemoryStore()
	ctx := context.Background()
	if err := kv.Save(ctx, "user_profile", []byte("[]")); err != nil {
		t.Fatalf("failed to seed blob: %v", err)
	}

	if c := New(kv).Counters(ctx); c.Level != 1 || c.TotalXP != 0 {
		t.Errorf("expected defaults for corrupt blob, got %+v", c)
	}
}

func TestRecordActivity(t *testing.T) {
	tests := []struct {
		name       string
		start      models.ProfileCounters
		today      string
		xp         int
		wantXP     int
		wantLevel  int
		wantStreak int
		wantLast   string
	}{
		{
			name:       "first activity",
			today:      "2026-01-08",
			xp:         15,
			wantXP:     15,
			wantLevel:  1,
			wantStreak: 1,
			wantLast:   "2026-01-08",
		},
		{
			name:       "next day extends streak",
			start:      models.ProfileCounters{TotalXP: 90, StreakCount: 4, LastActiveDate: "2026-01-07"},
			today:      "2026-01-08",
			xp:         10,
			wantXP:     100,
			wantLevel:  2,
			wantStreak: 5,
			wantLast:   "2026-01-08",
		},
		{
			name:       "same day keeps streak",
			start:      models.ProfileCounters{TotalXP: 10, StreakCount: 4, LastActiveDate: "2026-01-08"},
			today:      "2026-01-08",
			xp:         10,
			wantXP:     20,
			wantLevel:  1,
			wantStreak: 4,
			wantLast:   "2026-01-08",
		},
		{
			name:       "gap resets streak",
			start:      models.ProfileCounters{TotalXP: 10, StreakCount: 9, LastActiveDate: "2026-01-05"},
			today:      "2026-01-08",
			xp:         5,
			wantXP:     15,
			wantLevel:  1,
			wantStreak: 1,
			wantLast:   "2026-01-08",
		},
		{
			name:       "clock behind last active",
			start:      models.ProfileCounters{TotalXP: 10, StreakCount: 3, LastActiveDate: "2026-01-10"},
			today:      "2026-01-08",
			xp:         5,
			wantXP:     15,
			wantLevel:  1,
			wantStreak: 3,
			wantLast:   "2026-01-10",
		},
		{
			name:       "garbage last active date",
			start:      models.ProfileCounters{StreakCount: 7, LastActiveDate: "yesterday"},
			today:      "2026-01-08",
			xp:         5,
			wantXP:     5,
			wantLevel:  1,
			wantStreak: 1,
			wantLast:   "2026-01-08",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			seed(t, kv, tt.start)
			l := New(kv, WithClock(fixedClock(tt.today)), WithLocation(time.UTC))

			before, after, err := l.RecordActivity(context.Background(), tt.xp)
			if err != nil {
				t.Fatalf("RecordActivity failed: %v", err)
			}
			if before.TotalXP != tt.start.TotalXP {
				t.Errorf("before.TotalXP = %d, want %d", before.TotalXP, tt.start.TotalXP)
			}
			if after.TotalXP != tt.wantXP || after.Level != tt.wantLevel ||
				after.StreakCount != tt.wantStreak || after.LastActiveDate != tt.wantLast {
				t.Errorf("after = %+v, want xp=%d level=%d streak=%d last=%s",
					after, tt.wantXP, tt.wantLevel, tt.wantStreak, tt.wantLast)
			}

			if stored := l.Counters(context.Background()); stored != after {
				t.Errorf("stored counters %+v differ from returned %+v", stored, after)
			}
		})
	}
}

func TestRecordActivityRejectsNegativeXP(t *testing.T) {
	l := New(storage.NewMemoryStore())
	if _, _, err := l.RecordActivity(context.Background(), -1); err == nil {
		t.Error("expected error for negative xp")
	}
}

func TestReset(t *testing.T) {
	kv := storage.NewMemoryStore()
	seed(t, kv, models.ProfileCounters{TotalXP: 450, StreakCount: 12, LastActiveDate: "2026-01-08"})
	l := New(kv)

	if err := l.Reset(context.Background()); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	want := models.ProfileCounters{Level: 1}
	if got := l.Counters(context.Background()); got != want {
		t.Errorf("after Reset got %+v, want %+v", got, want)
	}
}

func TestSaveAndClear(t *testing.T) {
	kv := storage.NewMemoryStore()
	l := New(kv)
	ctx := context.Background()

	if err := l.Save(ctx, models.ProfileCounters{TotalXP: 120, Level: 9, StreakCount: -3, LastActiveDate: "2026-01-08"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	c := l.Counters(ctx)
	if c.TotalXP != 120 || c.Level != 2 || c.StreakCount != 0 || c.LastActiveDate != "2026-01-08" {
		t.Errorf("saved counters = %+v", c)
	}

	if err := l.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := kv.Load(ctx, "user_profile"); err == nil {
		t.Error("Clear should remove the stored record")
	}
	if err := l.Clear(ctx); err != nil {
		t.Errorf("second Clear should be a no-op: %v", err)
	}
}
