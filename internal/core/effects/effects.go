// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Log levels of LogEffect.
const (
	LevelInfo = "info"
	LevelWarn = "warn"
)

// LogEffect represents a diagnostic line for the console.
type LogEffect struct {
	Level   string // LevelInfo or LevelWarn
	Message string
}

func (e LogEffect) EffectType() string { return "log" }

// CreateAssignmentEffect creates the assignment record of a period from a template.
type CreateAssignmentEffect struct {
	Title          string
	Period         int
	WeekStart      time.Time // Monday of the week; stores that keep dates persist it
	ParticipantIDs []string
	TemplateID     string
	// ContentBlocks must stay empty when TemplateID is set; the record store
	// rejects requests carrying both.
	ContentBlocks []string
}

func (e CreateAssignmentEffect) EffectType() string { return "create_assignment" }

// UpdateAssignmentEffect replaces the participant relation of an existing record.
type UpdateAssignmentEffect struct {
	RecordID       string
	Period         int
	ParticipantIDs []string
}

func (e UpdateAssignmentEffect) EffectType() string { return "update_assignment" }

// AnnounceEffect posts a message to the team channel.
type AnnounceEffect struct {
	Channel string
	Text    string
}

func (e AnnounceEffect) EffectType() string { return "announce" }

// NoEffect represents an operation that produces no side effects.
type NoEffect struct{}

func (e NoEffect) EffectType() string { return "none" }
