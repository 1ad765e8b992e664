package sqlite_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/example/putzplan/internal/adapters/sqlite"
	"github.com/example/putzplan/internal/core/effects"
)

func members(ids ...string) []sqlite.FixtureMember {
	out := make([]sqlite.FixtureMember, len(ids))
	for i, id := range ids {
		out[i] = activeMember(id, id+", Test")
	}
	return out
}

func TestAssignmentRepository_CreateAndFind(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	seed(t, database, &sqlite.Fixture{Members: members("a", "b", "c")})

	repo := sqlite.NewAssignmentRepository(database)

	records, err := repo.FindByPeriod(ctx, 43)
	if err != nil {
		t.Fatalf("FindByPeriod failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records before create, want 0", len(records))
	}

	id, err := repo.Create(ctx, effects.CreateAssignmentEffect{
		Title:          "Putzcrew KW 43",
		Period:         43,
		WeekStart:      time.Date(2026, 10, 21, 12, 0, 0, 0, time.UTC),
		ParticipantIDs: []string{"c", "a", "b"},
		TemplateID:     "tmpl",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id == "" {
		t.Fatal("Create returned empty id")
	}

	records, err = repo.FindByPeriod(ctx, 43)
	if err != nil {
		t.Fatalf("FindByPeriod failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.ID != id || rec.Title != "Putzcrew KW 43" || rec.Period != 43 || rec.AggregateCount != 3 {
		t.Errorf("record = %+v", rec)
	}
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(rec.ParticipantIDs, want) {
		t.Errorf("ParticipantIDs = %v, want %v", rec.ParticipantIDs, want)
	}
	if want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC); !rec.WeekStart.Equal(want) {
		t.Errorf("WeekStart = %v, want the Monday %v", rec.WeekStart, want)
	}
}

func TestAssignmentRepository_UpdateParticipants(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	seed(t, database, &sqlite.Fixture{
		Members:     members("v1", "v2", "n1"),
		Assignments: []sqlite.FixtureAssignment{{ID: "rec", Week: 12, Participants: []string{"v1", "v2"}}},
	})

	repo := sqlite.NewAssignmentRepository(database)
	if err := repo.UpdateParticipants(ctx, "rec", []string{"v1", "v2", "n1"}); err != nil {
		t.Fatalf("UpdateParticipants failed: %v", err)
	}

	records, err := repo.FindByPeriod(ctx, 12)
	if err != nil {
		t.Fatalf("FindByPeriod failed: %v", err)
	}
	if want := []string{"v1", "v2", "n1"}; !reflect.DeepEqual(records[0].ParticipantIDs, want) {
		t.Errorf("ParticipantIDs = %v, want %v", records[0].ParticipantIDs, want)
	}
	if records[0].Title != "Putzcrew KW 12" {
		t.Errorf("default fixture title = %q", records[0].Title)
	}

	if err := repo.UpdateParticipants(ctx, "missing", nil); err == nil {
		t.Errorf("expected error for unknown record")
	}
}

func TestAssignmentRepository_MultipleRecordsPerWeek(t *testing.T) {
	database := setupTestDB(t)
	seed(t, database, &sqlite.Fixture{
		Assignments: []sqlite.FixtureAssignment{{ID: "one", Week: 5}, {ID: "two", Week: 5}},
	})

	records, err := sqlite.NewAssignmentRepository(database).FindByPeriod(context.Background(), 5)
	if err != nil {
		t.Fatalf("FindByPeriod failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want both returned so the caller can flag them", len(records))
	}
}
