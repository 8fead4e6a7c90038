// Package sqlstore serves journeys and duas from the SQL content tables.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/rizq/internal/content"
	"github.com/julianstephens/rizq/internal/logger"
	"github.com/julianstephens/rizq/internal/migration"
	"github.com/julianstephens/rizq/internal/models"
)

// Store reads content from a database whose schema was created by the
// embedded migrations. It does not own the connection.
type Store struct {
	db      *sql.DB
	dialect migration.Dialect
}

func New(db *sql.DB, dialect migration.Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != migration.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const duaColumns = `id, title, arabic_text, transliteration, translation, repetitions, xp_value, category`

const journeyColumns = `id, name, slug, description, emoji, estimated_minutes, daily_xp, is_premium, is_featured`

type scanner interface {
	Scan(dest ...any) error
}

func scanDua(row scanner, d *models.Dua, extra ...any) error {
	dest := append([]any{&d.ID, &d.Title, &d.ArabicText, &d.Transliteration, &d.Translation,
		&d.Repetitions, &d.XPValue, &d.Category}, extra...)
	return row.Scan(dest...)
}

func scanJourney(row scanner, j *models.Journey) error {
	return row.Scan(&j.ID, &j.Name, &j.Slug, &j.Description, &j.Emoji,
		&j.EstimatedMinutes, &j.DailyXP, &j.IsPremium, &j.IsFeatured)
}

func (s *Store) FetchDua(ctx context.Context, duaID int) (models.Dua, error) {
	var d models.Dua
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+duaColumns+` FROM duas WHERE id = ?`), duaID)
	if err := scanDua(row, &d); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Dua{}, fmt.Errorf("dua %d: %w", duaID, content.ErrNotFound)
		}
		return models.Dua{}, fmt.Errorf("failed to fetch dua %d: %w", duaID, err)
	}
	return d, nil
}

func (s *Store) FetchJourneyWithDuas(ctx context.Context, journeyID int) (models.JourneyWithDuas, error) {
	var out models.JourneyWithDuas
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+journeyColumns+` FROM journeys WHERE id = ?`), journeyID)
	if err := scanJourney(row, &out.Journey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.JourneyWithDuas{}, fmt.Errorf("journey %d: %w", journeyID, content.ErrNotFound)
		}
		return models.JourneyWithDuas{}, fmt.Errorf("failed to fetch journey %d: %w", journeyID, err)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT d.id, d.title, d.arabic_text, d.transliteration, d.translation,
		       d.repetitions, d.xp_value, d.category, jd.time_slot, jd.sort_order
		FROM journey_duas jd
		JOIN duas d ON d.id = jd.dua_id
		WHERE jd.journey_id = ?
		ORDER BY jd.sort_order, d.id`), journeyID)
	if err != nil {
		return models.JourneyWithDuas{}, fmt.Errorf("failed to fetch duas for journey %d: %w", journeyID, err)
	}
	defer rows.Close()

	out.Duas = []models.JourneyDua{}
	for rows.Next() {
		var jd models.JourneyDua
		var slot string
		if err := scanDua(rows, &jd.Dua, &slot, &jd.SortOrder); err != nil {
			return models.JourneyWithDuas{}, fmt.Errorf("failed to scan journey dua: %w", err)
		}
		jd.TimeSlot = models.TimeSlot(slot)
		out.Duas = append(out.Duas, jd)
	}
	if err := rows.Err(); err != nil {
		return models.JourneyWithDuas{}, fmt.Errorf("failed to read journey duas: %w", err)
	}
	return out, nil
}

func (s *Store) ListJourneys(ctx context.Context) ([]models.Journey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+journeyColumns+` FROM journeys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	var journeys []models.Journey
	for rows.Next() {
		var j models.Journey
		if err := scanJourney(rows, &j); err != nil {
			return nil, fmt.Errorf("failed to scan journey: %w", err)
		}
		journeys = append(journeys, j)
	}
	return journeys, rows.Err()
}

func (s *Store) ListDuas(ctx context.Context) ([]models.Dua, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+duaColumns+` FROM duas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list duas: %w", err)
	}
	defer rows.Close()

	var duas []models.Dua
	for rows.Next() {
		var d models.Dua
		if err := scanDua(rows, &d); err != nil {
			return nil, fmt.Errorf("failed to scan dua: %w", err)
		}
		duas = append(duas, d)
	}
	return duas, rows.Err()
}

// Seed upserts every dua and journey from catalog in one transaction.
// Journey membership is replaced, so removing a dua from a journey in the
// catalog removes it from the database too.
func (s *Store) Seed(ctx context.Context, catalog *content.Catalog) (err error) {
	duas, err := catalog.ListDuas(ctx)
	if err != nil {
		return err
	}
	journeys := catalog.JourneysWithDuas()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Warn("Failed to roll back content seed", "error", rbErr)
			}
		}
	}()

	duaStmt := s.rebind(`
		INSERT INTO duas (` + duaColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			arabic_text = excluded.arabic_text,
			transliteration = excluded.transliteration,
			translation = excluded.translation,
			repetitions = excluded.repetitions,
			xp_value = excluded.xp_value,
			category = excluded.category`)
	for _, d := range duas {
		if _, err = tx.ExecContext(ctx, duaStmt, d.ID, d.Title, d.ArabicText, d.Transliteration,
			d.Translation, d.Repetitions, d.XPValue, d.Category); err != nil {
			return fmt.Errorf("failed to seed dua %d: %w", d.ID, err)
		}
	}

	journeyStmt := s.rebind(`
		INSERT INTO journeys (` + journeyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			slug = excluded.slug,
			description = excluded.description,
			emoji = excluded.emoji,
			estimated_minutes = excluded.estimated_minutes,
			daily_xp = excluded.daily_xp,
			is_premium = excluded.is_premium,
			is_featured = excluded.is_featured`)
	clearStmt := s.rebind(`DELETE FROM journey_duas WHERE journey_id = ?`)
	linkStmt := s.rebind(`INSERT INTO journey_duas (journey_id, dua_id, time_slot, sort_order) VALUES (?, ?, ?, ?)`)

	for _, jw := range journeys {
		j := jw.Journey
		if _, err = tx.ExecContext(ctx, journeyStmt, j.ID, j.Name, j.Slug, j.Description, j.Emoji,
			j.EstimatedMinutes, j.DailyXP, j.IsPremium, j.IsFeatured); err != nil {
			return fmt.Errorf("failed to seed journey %d: %w", j.ID, err)
		}
		if _, err = tx.ExecContext(ctx, clearStmt, j.ID); err != nil {
			return fmt.Errorf("failed to reset duas of journey %d: %w", j.ID, err)
		}
		for _, jd := range jw.Duas {
			if _, err = tx.ExecContext(ctx, linkStmt, j.ID, jd.Dua.ID, string(jd.TimeSlot), jd.SortOrder); err != nil {
				return fmt.Errorf("failed to link dua %d to journey %d: %w", jd.Dua.ID, j.ID, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit content seed: %w", err)
	}
	logger.Info("Seeded content", "duas", len(duas), "journeys", len(journeys))
	return nil
}

// Count reports how many journeys are stored. Used to detect an unseeded database.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journeys`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count journeys: %w", err)
	}
	return n, nil
}

var _ content.Provider = (*Store)(nil)
