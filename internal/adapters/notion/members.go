package notion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/ports/secondary"
)

// MemberSchema names the properties read from the member collection.
type MemberSchema struct {
	TitleProperty       string
	EmailProperty       string // optional
	AssignmentsRelation string
	// AssignmentsDataSource and AssignmentPeriodProperty locate the week of
	// each related assignment record. Left empty, assignments have unknown
	// weeks and count as recent.
	AssignmentsDataSource    string
	AssignmentPeriodProperty string
}

// MemberRepository implements secondary.MemberSource on a Notion data source.
type MemberRepository struct {
	client       *Client
	dataSourceID string
	schema       MemberSchema

	mu    sync.Mutex
	weeks map[string]time.Time // assignment record id -> week start
}

// NewMemberRepository creates a member repository for the given data source.
func NewMemberRepository(client *Client, dataSourceID string, schema MemberSchema) *MemberRepository {
	return &MemberRepository{client: client, dataSourceID: dataSourceID, schema: schema}
}

// QueryMembers returns every member matching the criteria, across all pages
// of the query result.
func (r *MemberRepository) QueryMembers(ctx context.Context, criteria eligibility.MemberCriteria) ([]eligibility.Member, error) {
	pages, err := r.client.queryAll(ctx, r.dataSourceID, CriteriaFilter(criteria))
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}

	members := make([]eligibility.Member, 0, len(pages))
	for _, p := range pages {
		m, err := r.toMember(ctx, p)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// GetMember retrieves a member page by id.
func (r *MemberRepository) GetMember(ctx context.Context, id string) (*eligibility.Member, error) {
	p, err := r.client.getPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get member %s: %w", id, err)
	}
	m, err := r.toMember(ctx, *p)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// toMember maps a page to a member. A page without a title keeps an empty
// display name; the eligibility filter skips it.
func (r *MemberRepository) toMember(ctx context.Context, p Page) (eligibility.Member, error) {
	m := eligibility.Member{ID: p.ID, StatusMarker: p.EmojiIcon()}

	if title, ok := p.TitleProperty(r.schema.TitleProperty); ok {
		m.DisplayName = title.PlainText()
	}

	if r.schema.EmailProperty != "" {
		if prop, ok := p.Properties[r.schema.EmailProperty]; ok {
			switch {
			case prop.Email != nil:
				m.ContactAddress = *prop.Email
			case prop.Type == "rich_text":
				m.ContactAddress = prop.PlainText()
			}
		}
	}

	if prop, ok := p.Properties[r.schema.AssignmentsRelation]; ok {
		ids, err := r.client.relationIDs(ctx, p.ID, prop)
		if err != nil {
			return m, fmt.Errorf("failed to read assignments of member %s: %w", p.ID, err)
		}
		weeks, err := r.assignmentWeeks(ctx)
		if err != nil {
			return m, err
		}
		for _, id := range ids {
			m.PriorAssignments = append(m.PriorAssignments, eligibility.Assignment{RecordID: id, Week: weeks[id]})
		}
	}
	return m, nil
}

// assignmentWeeks dates every assignment record once per repository. The
// relation on a member page carries only record ids.
func (r *MemberRepository) assignmentWeeks(ctx context.Context) (map[string]time.Time, error) {
	if r.schema.AssignmentsDataSource == "" {
		return nil, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.weeks != nil {
		return r.weeks, nil
	}

	pages, err := r.client.queryAll(ctx, r.schema.AssignmentsDataSource, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignment weeks: %w", err)
	}
	weeks := make(map[string]time.Time, len(pages))
	for _, p := range pages {
		if _, start := recordWeek(p, r.schema.AssignmentPeriodProperty); !start.IsZero() {
			weeks[p.ID] = start
		}
	}
	r.weeks = weeks
	return weeks, nil
}

// Ensure MemberRepository implements the interface
var _ secondary.MemberSource = (*MemberRepository)(nil)
