package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Fixture is a YAML snapshot of both collections used to seed a local store.
type Fixture struct {
	Members     []FixtureMember     `yaml:"members"`
	Assignments []FixtureAssignment `yaml:"assignments"`
}

// FixtureMember is one member row of a fixture.
type FixtureMember struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	Email      string   `yaml:"email"`
	Icon       string   `yaml:"icon"`
	ExitDate   string   `yaml:"exit_date"`
	Onboarding string   `yaml:"onboarding"`
	Categories []string `yaml:"categories"`
}

// FixtureAssignment is one weekly record of a fixture.
type FixtureAssignment struct {
	ID           string   `yaml:"id"`
	Title        string   `yaml:"title"`
	Week         int      `yaml:"week"`
	WeekStart    string   `yaml:"week_start"` // YYYY-MM-DD, any day of the week
	Participants []string `yaml:"participants"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// SeedResult counts what a seed wrote.
type SeedResult struct {
	Members     int
	Assignments int
}

// Seed upserts the fixture into the database in one transaction. Members are
// replaced by id; assignments are replaced with their participant lists.
func Seed(ctx context.Context, db *sql.DB, f *Fixture) (*SeedResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &SeedResult{}
	for _, m := range f.Members {
		if m.ID == "" {
			return nil, fmt.Errorf("fixture member %q has no id", m.Name)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO members (id, name, email, icon, exit_date, onboarding_status) VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email, icon = excluded.icon,
				exit_date = excluded.exit_date, onboarding_status = excluded.onboarding_status`,
			m.ID, m.Name, nullable(m.Email), nullable(m.Icon), nullable(m.ExitDate), nullable(m.Onboarding),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to seed member %s: %w", m.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM member_categories WHERE member_id = ?`, m.ID); err != nil {
			return nil, fmt.Errorf("failed to reset categories of %s: %w", m.ID, err)
		}
		for _, c := range m.Categories {
			if _, err := tx.ExecContext(ctx, `INSERT INTO member_categories (member_id, category) VALUES (?, ?)`, m.ID, c); err != nil {
				return nil, fmt.Errorf("failed to seed category %q of %s: %w", c, m.ID, err)
			}
		}
		result.Members++
	}

	for _, a := range f.Assignments {
		id := a.ID
		if id == "" {
			id = uuid.NewString()
		}
		title := a.Title
		if title == "" {
			title = fmt.Sprintf("Putzcrew KW %d", a.Week)
		}
		weekStart, err := parseWeekStart(nullable(a.WeekStart))
		if err != nil {
			return nil, fmt.Errorf("fixture assignment %s: %w", id, err)
		}
		if _, w := weekStart.ISOWeek(); !weekStart.IsZero() && w != a.Week {
			return nil, fmt.Errorf("fixture assignment %s: week_start %s is not in week %d", id, a.WeekStart, a.Week)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assignments (id, title, week, week_start) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title, week = excluded.week,
				week_start = excluded.week_start, updated_at = CURRENT_TIMESTAMP`,
			id, title, a.Week, weekStartValue(weekStart),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to seed assignment %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_participants WHERE assignment_id = ?`, id); err != nil {
			return nil, fmt.Errorf("failed to reset participants of %s: %w", id, err)
		}
		if err := insertParticipants(ctx, tx, id, a.Participants); err != nil {
			return nil, err
		}
		result.Assignments++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}
	return result, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
