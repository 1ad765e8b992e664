// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"

	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/week"
)

// MemberSource defines the secondary port for reading the member collection.
type MemberSource interface {
	// QueryMembers returns every member matching the criteria.
	QueryMembers(ctx context.Context, criteria eligibility.MemberCriteria) ([]eligibility.Member, error)

	// GetMember retrieves a single member by id, regardless of the criteria.
	GetMember(ctx context.Context, id string) (*eligibility.Member, error)
}

// AssignmentStore defines the secondary port for the assignment collection.
type AssignmentStore interface {
	// FindByPeriod returns all records whose period field equals period.
	FindByPeriod(ctx context.Context, period int) ([]week.RecordSnapshot, error)

	// UpdateParticipants replaces the participant relation of a record.
	UpdateParticipants(ctx context.Context, recordID string, participantIDs []string) error

	// Create instantiates a record from its template and returns the new id.
	Create(ctx context.Context, req effects.CreateAssignmentEffect) (string, error)
}

// IdentityLookup defines the secondary port for resolving chat identities.
type IdentityLookup interface {
	// LookupByEmail returns the chat user id for an address.
	// found is false when no user has the address; that is not an error.
	LookupByEmail(ctx context.Context, email string) (id string, found bool, err error)
}

// Announcer defines the secondary port for posting to the team channel.
type Announcer interface {
	Post(ctx context.Context, channel, text string) error
}
