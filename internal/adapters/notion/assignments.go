package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/week"
	"github.com/example/putzplan/internal/ports/secondary"
)

// AssignmentSchema names the properties of the assignment collection.
type AssignmentSchema struct {
	TitleProperty        string
	ParticipantsRelation string
	PeriodProperty       string
	CountProperty        string // optional rollup or formula
}

// AssignmentRepository implements secondary.AssignmentStore on a Notion data source.
type AssignmentRepository struct {
	client       *Client
	dataSourceID string
	schema       AssignmentSchema
}

// NewAssignmentRepository creates an assignment repository for the given data source.
func NewAssignmentRepository(client *Client, dataSourceID string, schema AssignmentSchema) *AssignmentRepository {
	return &AssignmentRepository{client: client, dataSourceID: dataSourceID, schema: schema}
}

// FindByPeriod returns every record whose period property equals period.
func (r *AssignmentRepository) FindByPeriod(ctx context.Context, period int) ([]week.RecordSnapshot, error) {
	pages, err := r.client.queryAll(ctx, r.dataSourceID, PeriodFilter(r.schema.PeriodProperty, period))
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments: %w", err)
	}

	records := make([]week.RecordSnapshot, 0, len(pages))
	for _, p := range pages {
		rec := week.RecordSnapshot{ID: p.ID, Period: period, AggregateCount: -1}
		if title, ok := p.TitleProperty(r.schema.TitleProperty); ok {
			rec.Title = title.PlainText()
		}
		if n, start := recordWeek(p, r.schema.PeriodProperty); n != 0 {
			rec.Period, rec.WeekStart = n, start
		}
		if prop, ok := p.Properties[r.schema.ParticipantsRelation]; ok {
			ids, err := r.client.relationIDs(ctx, p.ID, prop)
			if err != nil {
				return nil, fmt.Errorf("failed to read participants of %s: %w", p.ID, err)
			}
			rec.ParticipantIDs = ids
		}
		if r.schema.CountProperty != "" {
			if prop, ok := p.Properties[r.schema.CountProperty]; ok {
				if v, ok := prop.NumberValue(); ok {
					rec.AggregateCount = int(v)
				}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// UpdateParticipants replaces the participant relation of a record.
func (r *AssignmentRepository) UpdateParticipants(ctx context.Context, recordID string, participantIDs []string) error {
	body := map[string]any{
		"properties": map[string]any{
			r.schema.ParticipantsRelation: relationValue(participantIDs),
		},
	}
	if err := r.client.do(ctx, http.MethodPatch, "/v1/pages/"+recordID, body, nil); err != nil {
		return fmt.Errorf("failed to update assignment %s: %w", recordID, err)
	}
	return nil
}

// Create instantiates a record from the template. Page content comes from the
// template alone; the request never carries children.
func (r *AssignmentRepository) Create(ctx context.Context, req effects.CreateAssignmentEffect) (string, error) {
	if len(req.ContentBlocks) > 0 {
		return "", errors.New("notion: records are created from a template; content blocks are not sent")
	}
	body := map[string]any{
		"parent": map[string]string{
			"type":           "data_source_id",
			"data_source_id": r.dataSourceID,
		},
		"properties": map[string]any{
			r.schema.TitleProperty:        titleValue(req.Title),
			r.schema.PeriodProperty:       map[string]any{"number": req.Period},
			r.schema.ParticipantsRelation: relationValue(req.ParticipantIDs),
		},
	}
	if req.TemplateID != "" {
		body["template"] = map[string]string{"type": "template_id", "template_id": req.TemplateID}
	}

	var created Page
	if err := r.client.do(ctx, http.MethodPost, "/v1/pages", body, &created); err != nil {
		return "", fmt.Errorf("failed to create assignment for period %d: %w", req.Period, err)
	}
	return created.ID, nil
}

// recordWeek reads the week number of an assignment page and dates it to the
// week of that number closest to the page's creation. It returns 0 when the
// page has no week number and a zero time when it has no creation time.
func recordWeek(p Page, periodProperty string) (int, time.Time) {
	prop, ok := p.Properties[periodProperty]
	if !ok {
		return 0, time.Time{}
	}
	v, ok := prop.NumberValue()
	if !ok {
		return 0, time.Time{}
	}
	n := int(v)
	if p.CreatedTime.IsZero() {
		return n, time.Time{}
	}
	return n, week.Nearest(n, p.CreatedTime)
}

// Ensure AssignmentRepository implements the interface
var _ secondary.AssignmentStore = (*AssignmentRepository)(nil)
