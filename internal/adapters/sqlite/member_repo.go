// Package sqlite contains SQLite implementations of the record store ports.
// It backs the local rehearsal mode; the layout mirrors the Notion collections.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/ports/secondary"
)

// MemberRepository implements secondary.MemberSource with SQLite.
type MemberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new SQLite member repository.
func NewMemberRepository(db *sql.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// QueryMembers returns the members matching the criteria. The clauses mirror
// the Notion filter: no exit date, onboarding done, none of the excluded
// categories, at least one included category.
func (r *MemberRepository) QueryMembers(ctx context.Context, criteria eligibility.MemberCriteria) ([]eligibility.Member, error) {
	if len(criteria.IncludedCategories) == 0 {
		return nil, nil
	}

	query := `SELECT m.id, m.name, COALESCE(m.email, ''), COALESCE(m.icon, '')
		FROM members m
		WHERE (m.exit_date IS NULL OR m.exit_date = '')
		AND m.onboarding_status = ?`
	args := []any{criteria.OnboardingDone}

	if len(criteria.ExcludedCategories) > 0 {
		query += ` AND NOT EXISTS (SELECT 1 FROM member_categories c WHERE c.member_id = m.id AND c.category IN (` +
			placeholders(len(criteria.ExcludedCategories)) + `))`
		for _, c := range criteria.ExcludedCategories {
			args = append(args, c)
		}
	}
	query += ` AND EXISTS (SELECT 1 FROM member_categories c WHERE c.member_id = m.id AND c.category IN (` +
		placeholders(len(criteria.IncludedCategories)) + `))`
	for _, c := range criteria.IncludedCategories {
		args = append(args, c)
	}
	query += ` ORDER BY m.name, m.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []eligibility.Member
	for rows.Next() {
		var m eligibility.Member
		if err := rows.Scan(&m.ID, &m.DisplayName, &m.ContactAddress, &m.StatusMarker); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read members: %w", err)
	}

	history, err := r.assignmentHistory(ctx)
	if err != nil {
		return nil, err
	}
	for i := range members {
		members[i].PriorAssignments = history[members[i].ID]
	}
	return members, nil
}

// GetMember retrieves a member by its ID.
func (r *MemberRepository) GetMember(ctx context.Context, id string) (*eligibility.Member, error) {
	m := &eligibility.Member{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, COALESCE(email, ''), COALESCE(icon, '') FROM members WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.DisplayName, &m.ContactAddress, &m.StatusMarker)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("member %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	history, err := r.assignmentHistory(ctx)
	if err != nil {
		return nil, err
	}
	m.PriorAssignments = history[m.ID]
	return m, nil
}

// assignmentHistory maps member ids to the weeks they were assigned to.
// Records without a week_start yield assignments of unknown week.
func (r *MemberRepository) assignmentHistory(ctx context.Context) (map[string][]eligibility.Assignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ap.member_id, a.id, a.week_start
		FROM assignment_participants ap
		JOIN assignments a ON a.id = ap.assignment_id
		ORDER BY a.week_start, a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment history: %w", err)
	}
	defer rows.Close()

	history := map[string][]eligibility.Assignment{}
	for rows.Next() {
		var memberID string
		var weekStart sql.NullString
		var a eligibility.Assignment
		if err := rows.Scan(&memberID, &a.RecordID, &weekStart); err != nil {
			return nil, fmt.Errorf("failed to scan assignment history: %w", err)
		}
		if a.Week, err = parseWeekStart(weekStart); err != nil {
			return nil, fmt.Errorf("assignment %s: %w", a.RecordID, err)
		}
		history[memberID] = append(history[memberID], a)
	}
	return history, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// Ensure MemberRepository implements the interface
var _ secondary.MemberSource = (*MemberRepository)(nil)
