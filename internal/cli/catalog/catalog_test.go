package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/rizq/internal/cli"
	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/models"
)

func setupTestContext(t *testing.T, dsn string) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	ctx, err := cli.NewContext(cli.Options{
		DSN:           dsn,
		Content:       "builtin",
		Timezone:      "UTC",
		Timeout:       2 * time.Second,
		RetentionDays: 30,
	})
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })

	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func TestJourneyAddRemove(t *testing.T) {
	ctx, out := setupTestContext(t, "memory:")
	bg := context.Background()

	if err := (&JourneyAddCmd{ID: 2}).Run(ctx); err != nil {
		t.Fatalf("journey add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Subscribed to") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
	if !ctx.Habits.IsJourneyActive(bg, 2) {
		t.Fatal("journey 2 should be active")
	}

	out.Reset()
	if err := (&JourneyAddCmd{ID: 2}).Run(ctx); err != nil {
		t.Fatalf("repeat journey add failed: %v", err)
	}
	if !strings.Contains(out.String(), "Already subscribed") {
		t.Errorf("repeat add should be reported:\n%s", out.String())
	}
	if ids := ctx.Habits.ActiveJourneyIDs(bg); len(ids) != 1 {
		t.Errorf("active journeys = %v", ids)
	}

	if err := (&JourneyAddCmd{ID: 99}).Run(ctx); err == nil {
		t.Error("unknown journey should fail")
	}

	if err := (&JourneyRemoveCmd{ID: 2}).Run(ctx); err != nil {
		t.Fatalf("journey remove failed: %v", err)
	}
	if err := (&JourneyRemoveCmd{ID: 2}).Run(ctx); err == nil {
		t.Error("removing an inactive journey should fail")
	}
}

func TestJourneyList(t *testing.T) {
	ctx, out := setupTestContext(t, "memory:")
	if err := ctx.Habits.AddJourney(context.Background(), 1); err != nil {
		t.Fatalf("AddJourney: %v", err)
	}

	if err := (&JourneyListCmd{}).Run(ctx); err != nil {
		t.Fatalf("journey list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 journeys, got:\n%s", out.String())
	}
	if !strings.HasPrefix(lines[0], "✓") || !strings.Contains(lines[0], "[featured]") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[2], "[premium]") {
		t.Errorf("third line = %q", lines[2])
	}

	out.Reset()
	if err := (&JourneyListCmd{Active: true}).Run(ctx); err != nil {
		t.Fatalf("journey list --active failed: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(out.String()), "\n")); n != 1 {
		t.Errorf("expected 1 active journey, got %d", n)
	}
}

func TestCustomCommands(t *testing.T) {
	ctx, out := setupTestContext(t, "memory:")
	bg := context.Background()

	if err := (&CustomAddCmd{DuaID: 8, Slot: "evening"}).Run(ctx); err != nil {
		t.Fatalf("custom add failed: %v", err)
	}
	customs := ctx.Habits.CustomHabits(bg)
	if len(customs) != 1 || customs[0].TimeSlot != models.TimeSlotEvening {
		t.Fatalf("custom habits = %+v", customs)
	}

	out.Reset()
	if err := (&CustomAddCmd{DuaID: 8, Slot: "morning"}).Run(ctx); err != nil {
		t.Fatalf("repeat custom add failed: %v", err)
	}
	if !strings.Contains(out.String(), "already a custom habit") {
		t.Errorf("duplicate should be reported:\n%s", out.String())
	}

	if err := (&CustomAddCmd{DuaID: 404, Slot: "anytime"}).Run(ctx); err == nil {
		t.Error("unknown dua should fail")
	}
	if err := (&CustomAddCmd{DuaID: 1, Slot: "noon"}).Run(ctx); err == nil {
		t.Error("invalid slot should fail")
	}

	out.Reset()
	if err := (&CustomListCmd{}).Run(ctx); err != nil {
		t.Fatalf("custom list failed: %v", err)
	}
	if !strings.Contains(out.String(), shortID(customs[0].ID)) || !strings.Contains(out.String(), "Beneficial knowledge") {
		t.Errorf("unexpected list:\n%s", out.String())
	}

	if err := (&CustomRemoveCmd{Ref: "nope"}).Run(ctx); err == nil {
		t.Error("unknown ref should fail")
	}
	if err := (&CustomRemoveCmd{Ref: "8"}).Run(ctx); err != nil {
		t.Fatalf("remove by dua id failed: %v", err)
	}
	if n := len(ctx.Habits.CustomHabits(bg)); n != 0 {
		t.Errorf("expected no custom habits, got %d", n)
	}
}

func TestCustomRemoveByPrefix(t *testing.T) {
	ctx, _ := setupTestContext(t, "memory:")
	bg := context.Background()
	if err := ctx.Habits.AddCustomHabit(bg, 4, models.TimeSlotAnytime); err != nil {
		t.Fatalf("AddCustomHabit: %v", err)
	}
	id := ctx.Habits.CustomHabits(bg)[0].ID

	if err := (&CustomRemoveCmd{Ref: id[:8]}).Run(ctx); err != nil {
		t.Fatalf("remove by prefix failed: %v", err)
	}
	if n := len(ctx.Habits.CustomHabits(bg)); n != 0 {
		t.Errorf("expected no custom habits, got %d", n)
	}
}

func TestMatchesID(t *testing.T) {
	tests := []struct {
		id, ref string
		want    bool
	}{
		{"0123456789abcdef", "0123456789abcdef", true},
		{"0123456789abcdef", "01234567", true},
		{"0123456789abcdef", "0123", false},
		{"0123456789abcdef", "fedcba98", false},
	}
	for _, tt := range tests {
		if got := matchesID(tt.id, tt.ref); got != tt.want {
			t.Errorf("matchesID(%q, %q) = %v, want %v", tt.id, tt.ref, got, tt.want)
		}
	}
}

func TestContentList(t *testing.T) {
	ctx, out := setupTestContext(t, "memory:")

	if err := (&ContentListCmd{}).Run(ctx); err != nil {
		t.Fatalf("content list failed: %v", err)
	}
	if n := len(strings.Split(strings.TrimSpace(out.String()), "\n")); n != 8 {
		t.Errorf("expected 8 duas, got %d:\n%s", n, out.String())
	}

	out.Reset()
	if err := (&ContentListCmd{Journey: 2}).Run(ctx); err != nil {
		t.Fatalf("content list --journey failed: %v", err)
	}
	if !strings.Contains(out.String(), "Path of Forgiveness") {
		t.Errorf("unexpected journey output:\n%s", out.String())
	}

	if err := (&ContentListCmd{Journey: 99}).Run(ctx); err == nil {
		t.Error("unknown journey should fail")
	}
}

func TestContentSeed(t *testing.T) {
	ctx, out := setupTestContext(t, filepath.Join(t.TempDir(), "rizq.db"))

	if err := (&ContentSeedCmd{}).Run(ctx); err != nil {
		t.Fatalf("content seed failed: %v", err)
	}
	if !strings.Contains(out.String(), "3 journeys") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	store, err := cli.SQLContent(ctx.KV)
	if err != nil {
		t.Fatalf("SQLContent: %v", err)
	}
	duas, err := store.ListDuas(context.Background())
	if err != nil {
		t.Fatalf("ListDuas: %v", err)
	}
	want, _ := content.Builtin().ListDuas(context.Background())
	if len(duas) != len(want) {
		t.Errorf("seeded %d duas, want %d", len(duas), len(want))
	}
}

func TestContentSeedFromFile(t *testing.T) {
	ctx, _ := setupTestContext(t, filepath.Join(t.TempDir(), "rizq.db"))
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	data := []byte(`duas:
  - id: 1
    title: Only
    arabic_text: "x"
    translation: only
    xp_value: 5
journeys:
  - id: 7
    name: Single
    slug: single
    duas:
      - {dua_id: 1, time_slot: anytime}
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if err := (&ContentSeedCmd{File: path}).Run(ctx); err != nil {
		t.Fatalf("content seed --file failed: %v", err)
	}
	store, err := cli.SQLContent(ctx.KV)
	if err != nil {
		t.Fatalf("SQLContent: %v", err)
	}
	j, err := store.FetchJourneyWithDuas(context.Background(), 7)
	if err != nil {
		t.Fatalf("FetchJourneyWithDuas: %v", err)
	}
	if j.Journey.Name != "Single" || len(j.Duas) != 1 {
		t.Errorf("seeded journey = %+v", j)
	}
}

func TestContentSeedNeedsSQL(t *testing.T) {
	ctx, _ := setupTestContext(t, "memory:")
	if err := (&ContentSeedCmd{}).Run(ctx); err == nil {
		t.Error("seeding a memory store should fail")
	}
}
