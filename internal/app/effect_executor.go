// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"

	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/reconcile"
	"github.com/example/putzplan/internal/ports/secondary"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place the lottery writes.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) (*ExecutionResult, error)
}

// ExecutionResult carries what happened during execution.
type ExecutionResult struct {
	CreatedRecordID string
	Announced       bool // the announcement reached the channel
}

// DefaultEffectExecutor implements EffectExecutor against the store and chat ports.
type DefaultEffectExecutor struct {
	assignments secondary.AssignmentStore
	announcer   secondary.Announcer
	reporter    secondary.Reporter
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(assignments secondary.AssignmentStore, announcer secondary.Announcer, reporter secondary.Reporter) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		assignments: assignments,
		announcer:   announcer,
		reporter:    reporter,
	}
}

// Execute processes a slice of effects in sequence. The first failure stops
// execution; earlier writes are not compensated.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) (*ExecutionResult, error) {
	result := &ExecutionResult{}
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff, result); err != nil {
			return result, fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return result, nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect, result *ExecutionResult) error {
	switch typed := eff.(type) {
	case effects.CreateAssignmentEffect:
		return e.executeCreate(ctx, typed, result)
	case effects.UpdateAssignmentEffect:
		return e.executeUpdate(ctx, typed)
	case effects.AnnounceEffect:
		if err := e.announcer.Post(ctx, typed.Channel, typed.Text); err != nil {
			return err
		}
		result.Announced = true
		e.reporter.Success("Announcement posted")
		return nil
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		if typed.Level == effects.LevelWarn {
			e.reporter.Warn("%s", typed.Message)
		} else {
			e.reporter.Info("%s", typed.Message)
		}
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeCreate(ctx context.Context, eff effects.CreateAssignmentEffect, result *ExecutionResult) error {
	if guard := reconcile.CanCreate(eff); !guard.Allowed {
		return guard.Error()
	}
	id, err := e.assignments.Create(ctx, eff)
	if err != nil {
		return err
	}
	result.CreatedRecordID = id
	e.reporter.Success("Created %q with %d participant(s)", eff.Title, len(eff.ParticipantIDs))
	return nil
}

func (e *DefaultEffectExecutor) executeUpdate(ctx context.Context, eff effects.UpdateAssignmentEffect) error {
	if guard := reconcile.CanUpdate(eff); !guard.Allowed {
		return guard.Error()
	}
	if err := e.assignments.UpdateParticipants(ctx, eff.RecordID, eff.ParticipantIDs); err != nil {
		return err
	}
	e.reporter.Success("Updated week %d record to %d participant(s)", eff.Period, len(eff.ParticipantIDs))
	return nil
}
