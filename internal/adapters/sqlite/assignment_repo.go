package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/week"
	"github.com/example/putzplan/internal/ports/secondary"
)

// AssignmentRepository implements secondary.AssignmentStore with SQLite.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByPeriod returns every record of the given week.
func (r *AssignmentRepository) FindByPeriod(ctx context.Context, period int) ([]week.RecordSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.title, a.week, a.week_start,
			(SELECT COUNT(*) FROM assignment_participants ap WHERE ap.assignment_id = a.id)
		FROM assignments a WHERE a.week = ? ORDER BY a.created_at, a.id`,
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}

	var records []week.RecordSnapshot
	for rows.Next() {
		var rec week.RecordSnapshot
		var weekStart sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Period, &weekStart, &rec.AggregateCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		if rec.WeekStart, err = parseWeekStart(weekStart); err != nil {
			rows.Close()
			return nil, fmt.Errorf("assignment %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read assignments: %w", err)
	}

	for i := range records {
		ids, err := r.participants(ctx, records[i].ID)
		if err != nil {
			return nil, err
		}
		records[i].ParticipantIDs = ids
	}
	return records, nil
}

// UpdateParticipants replaces the participant list of a record.
func (r *AssignmentRepository) UpdateParticipants(ctx context.Context, recordID string, participantIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE assignments SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, recordID)
	if err != nil {
		return fmt.Errorf("failed to update assignment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("assignment %s not found", recordID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_participants WHERE assignment_id = ?`, recordID); err != nil {
		return fmt.Errorf("failed to clear participants: %w", err)
	}
	if err := insertParticipants(ctx, tx, recordID, participantIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Create persists a new weekly record and returns its id.
func (r *AssignmentRepository) Create(ctx context.Context, req effects.CreateAssignmentEffect) (string, error) {
	id := uuid.NewString()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var templateID sql.NullString
	if req.TemplateID != "" {
		templateID = sql.NullString{String: req.TemplateID, Valid: true}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, title, week, week_start, template_id) VALUES (?, ?, ?, ?, ?)`,
		id, req.Title, req.Period, weekStartValue(req.WeekStart), templateID,
	)
	if err != nil {
		return "", fmt.Errorf("failed to create assignment: %w", err)
	}
	if err := insertParticipants(ctx, tx, id, req.ParticipantIDs); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit assignment: %w", err)
	}
	return id, nil
}

func (r *AssignmentRepository) participants(ctx context.Context, recordID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT member_id FROM assignment_participants WHERE assignment_id = ? ORDER BY position`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func insertParticipants(ctx context.Context, tx *sql.Tx, recordID string, ids []string) error {
	for i, memberID := range ids {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO assignment_participants (assignment_id, member_id, position) VALUES (?, ?, ?)`,
			recordID, memberID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to add participant %s: %w", memberID, err)
		}
	}
	return nil
}

// weekStartLayout is the storage format of week_start.
const weekStartLayout = "2006-01-02"

func weekStartValue(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: week.Start(t).Format(weekStartLayout), Valid: true}
}

func parseWeekStart(v sql.NullString) (time.Time, error) {
	if !v.Valid || v.String == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(weekStartLayout, v.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid week_start %q: %w", v.String, err)
	}
	return t, nil
}

// Ensure AssignmentRepository implements the interface
var _ secondary.AssignmentStore = (*AssignmentRepository)(nil)
