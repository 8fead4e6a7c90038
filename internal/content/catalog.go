// Package content resolves journeys and duas for the habit aggregator.
package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/rizq/internal/models"
)

// ErrNotFound is returned when a journey or dua does not exist.
var ErrNotFound = errors.New("content not found")

// Provider is the read side of a content source.
type Provider interface {
	FetchJourneyWithDuas(ctx context.Context, journeyID int) (models.JourneyWithDuas, error)
	FetchDua(ctx context.Context, duaID int) (models.Dua, error)
	ListJourneys(ctx context.Context) ([]models.Journey, error)
	ListDuas(ctx context.Context) ([]models.Dua, error)
}

type catalogFile struct {
	Duas     []models.Dua   `yaml:"duas"`
	Journeys []journeyEntry `yaml:"journeys"`
}

type journeyEntry struct {
	models.Journey `yaml:",inline"`
	Duas           []journeyDuaEntry `yaml:"duas"`
}

type journeyDuaEntry struct {
	DuaID     int             `yaml:"dua_id"`
	TimeSlot  models.TimeSlot `yaml:"time_slot"`
	SortOrder int             `yaml:"sort_order"`
}

// Catalog is an immutable in-memory content source.
type Catalog struct {
	duas     map[int]models.Dua
	duaOrder []int
	journeys map[int]models.JourneyWithDuas
	order    []int
}

// LoadFile reads and validates a YAML catalog from disk.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML catalog and validates its references.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return build(file)
}

func build(file catalogFile) (*Catalog, error) {
	c := &Catalog{
		duas:     make(map[int]models.Dua, len(file.Duas)),
		journeys: make(map[int]models.JourneyWithDuas, len(file.Journeys)),
	}

	var errs []error
	for _, d := range file.Duas {
		if _, dup := c.duas[d.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate dua id %d", d.ID))
			continue
		}
		if d.Title == "" {
			errs = append(errs, fmt.Errorf("dua %d: title is required", d.ID))
		}
		if d.XPValue < 0 {
			errs = append(errs, fmt.Errorf("dua %d: xp_value must not be negative", d.ID))
		}
		if d.Repetitions < 1 {
			d.Repetitions = 1
		}
		c.duas[d.ID] = d
		c.duaOrder = append(c.duaOrder, d.ID)
	}

	slugs := make(map[string]int)
	for _, j := range file.Journeys {
		if _, dup := c.journeys[j.ID]; dup {
			errs = append(errs, fmt.Errorf("duplicate journey id %d", j.ID))
			continue
		}
		if j.Slug == "" {
			errs = append(errs, fmt.Errorf("journey %d: slug is required", j.ID))
		} else if other, dup := slugs[j.Slug]; dup {
			errs = append(errs, fmt.Errorf("journey %d: slug %q already used by journey %d", j.ID, j.Slug, other))
		}
		slugs[j.Slug] = j.ID

		entry := models.JourneyWithDuas{Journey: j.Journey, Duas: make([]models.JourneyDua, 0, len(j.Duas))}
		seen := make(map[int]bool)
		for _, jd := range j.Duas {
			dua, ok := c.duas[jd.DuaID]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("journey %d: unknown dua %d", j.ID, jd.DuaID))
				continue
			case seen[jd.DuaID]:
				errs = append(errs, fmt.Errorf("journey %d: dua %d listed twice", j.ID, jd.DuaID))
				continue
			case !jd.TimeSlot.Valid():
				errs = append(errs, fmt.Errorf("journey %d: dua %d has invalid time slot %q", j.ID, jd.DuaID, jd.TimeSlot))
				continue
			}
			seen[jd.DuaID] = true
			entry.Duas = append(entry.Duas, models.JourneyDua{Dua: dua, TimeSlot: jd.TimeSlot, SortOrder: jd.SortOrder})
		}
		sortJourneyDuas(entry.Duas)

		c.journeys[j.ID] = entry
		c.order = append(c.order, j.ID)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %w", errors.Join(errs...))
	}
	return c, nil
}

func sortJourneyDuas(duas []models.JourneyDua) {
	sort.SliceStable(duas, func(i, j int) bool {
		return duas[i].SortOrder < duas[j].SortOrder
	})
}

func (c *Catalog) FetchJourneyWithDuas(ctx context.Context, journeyID int) (models.JourneyWithDuas, error) {
	if err := ctx.Err(); err != nil {
		return models.JourneyWithDuas{}, err
	}
	j, ok := c.journeys[journeyID]
	if !ok {
		return models.JourneyWithDuas{}, fmt.Errorf("journey %d: %w", journeyID, ErrNotFound)
	}
	j.Duas = append([]models.JourneyDua(nil), j.Duas...)
	return j, nil
}

func (c *Catalog) FetchDua(ctx context.Context, duaID int) (models.Dua, error) {
	if err := ctx.Err(); err != nil {
		return models.Dua{}, err
	}
	d, ok := c.duas[duaID]
	if !ok {
		return models.Dua{}, fmt.Errorf("dua %d: %w", duaID, ErrNotFound)
	}
	return d, nil
}

// ListJourneys returns journeys in catalog order.
func (c *Catalog) ListJourneys(ctx context.Context) ([]models.Journey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Journey, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.journeys[id].Journey)
	}
	return out, nil
}

func (c *Catalog) ListDuas(ctx context.Context) ([]models.Dua, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Dua, 0, len(c.duaOrder))
	for _, id := range c.duaOrder {
		out = append(out, c.duas[id])
	}
	return out, nil
}

// JourneysWithDuas returns every journey with its duas, in catalog order.
func (c *Catalog) JourneysWithDuas() []models.JourneyWithDuas {
	out := make([]models.JourneyWithDuas, 0, len(c.order))
	for _, id := range c.order {
		j := c.journeys[id]
		j.Duas = append([]models.JourneyDua(nil), j.Duas...)
		out = append(out, j)
	}
	return out
}

// FeaturedHabits flattens the featured journeys into a ready-to-show habit list.
// The first journey to list a dua owns it.
func (c *Catalog) FeaturedHabits() []models.Habit {
	var habits []models.Habit
	seen := make(map[int]bool)
	for _, id := range c.order {
		j := c.journeys[id]
		if !j.Journey.IsFeatured {
			continue
		}
		for _, jd := range j.Duas {
			if seen[jd.Dua.ID] {
				continue
			}
			seen[jd.Dua.ID] = true
			habits = append(habits, models.JourneyHabit(j.Journey.ID, jd))
		}
	}
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].TimeSlot.Priority() < habits[j].TimeSlot.Priority()
	})
	return habits
}
