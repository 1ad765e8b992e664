package reconcile

import (
	"fmt"

	"github.com/example/putzplan/internal/core/effects"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CanCreate evaluates whether a create request may be sent to the store.
// Rules:
// - A template must be referenced
// - Template and literal content blocks are mutually exclusive
// - The period must be a valid ISO week
func CanCreate(req effects.CreateAssignmentEffect) GuardResult {
	if req.TemplateID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot create record for week %d: no template configured", req.Period),
		}
	}
	if len(req.ContentBlocks) > 0 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot create record for week %d: template %s and %d content block(s) are mutually exclusive", req.Period, req.TemplateID, len(req.ContentBlocks)),
		}
	}
	if req.Period < 1 || req.Period > 53 {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot create record: invalid week %d", req.Period),
		}
	}
	return GuardResult{Allowed: true}
}

// CanUpdate evaluates whether an update request may be sent to the store.
// Rules:
// - The record id must be known
func CanUpdate(req effects.UpdateAssignmentEffect) GuardResult {
	if req.RecordID == "" {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("cannot update record for week %d: record id missing", req.Period),
		}
	}
	return GuardResult{Allowed: true}
}
