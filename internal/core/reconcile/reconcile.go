// Package reconcile merges a week's existing participants with a fresh draw
// and plans the single record write that persists the result.
// This is part of the Functional Core - no I/O, only pure functions.
package reconcile

import (
	"fmt"
	"time"

	"github.com/example/putzplan/internal/core/draw"
	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/week"
)

// Action is the kind of record write a plan performs.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionNone   Action = "none"
)

// Input contains the pre-fetched data for planning.
type Input struct {
	State       week.State
	Draw        draw.Result
	WeekStart   time.Time // Monday of the target week
	TitleFormat string
	TemplateID  string
}

// Plan is the planned record write of a run.
type Plan struct {
	Action   Action
	FinalIDs []string
	NewIDs   []string
	Write    effects.Effect
	// Notes are diagnostics for the operator; they run on dry runs too.
	Notes []effects.Effect
}

// Effects returns the plan's effects as a flat slice for execution.
func (p Plan) Effects() []effects.Effect {
	if p.Write == nil {
		return nil
	}
	if _, ok := p.Write.(effects.NoEffect); ok {
		return nil
	}
	return []effects.Effect{p.Write}
}

// Merge returns existing followed by the drawn ids not already present.
// Existing ids are never dropped and keep their order.
func Merge(existing []string, drawn []string) (final, added []string) {
	final = week.Dedupe(existing)
	seen := make(map[string]bool, len(final)+len(drawn))
	for _, id := range final {
		seen[id] = true
	}
	for _, id := range drawn {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		final = append(final, id)
		added = append(added, id)
	}
	return final, added
}

// GeneratePlan decides between creating the period's record, updating the
// existing one, or leaving it untouched when nothing changed.
// This is a pure function - all input data must be pre-fetched.
func GeneratePlan(input Input) Plan {
	drawnIDs := make([]string, len(input.Draw.Drawn))
	for i, c := range input.Draw.Drawn {
		drawnIDs[i] = c.ID
	}
	final, added := Merge(input.State.ParticipantIDs, drawnIDs)

	plan := Plan{FinalIDs: final, NewIDs: added}

	switch {
	case !input.State.Exists:
		plan.Action = ActionCreate
		plan.Write = effects.CreateAssignmentEffect{
			Title:          week.Title(input.TitleFormat, input.State.Period),
			Period:         input.State.Period,
			WeekStart:      input.WeekStart,
			ParticipantIDs: final,
			TemplateID:     input.TemplateID,
		}
	case len(added) > 0:
		plan.Action = ActionUpdate
		plan.Write = effects.UpdateAssignmentEffect{
			RecordID:       input.State.RecordID,
			Period:         input.State.Period,
			ParticipantIDs: final,
		}
	default:
		plan.Action = ActionNone
		plan.Write = effects.NoEffect{}
		plan.Notes = append(plan.Notes, effects.LogEffect{
			Level:   effects.LevelInfo,
			Message: fmt.Sprintf("Week %d already has %d participant(s); record left unchanged", input.State.Period, input.State.Count),
		})
	}

	if input.Draw.Shortfall > 0 {
		plan.Notes = append(plan.Notes, effects.LogEffect{
			Level:   effects.LevelWarn,
			Message: fmt.Sprintf("Only %d of %d open slot(s) could be filled", len(input.Draw.Drawn), input.Draw.Needed),
		})
	}
	return plan
}
