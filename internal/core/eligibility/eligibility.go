// Package eligibility contains the pure rules deciding which members may be
// drawn for a cleaning week. This is part of the Functional Core - no I/O.
package eligibility

import (
	"strings"
	"time"

	"github.com/example/putzplan/internal/core/identity"
)

// DefaultReviewMarker is the member icon flagging a membership under review.
const DefaultReviewMarker = "❓"

// Reason explains why a member was excluded from the draw.
type Reason string

const (
	ReasonUnderReview        Reason = "under_review"
	ReasonPreviouslyAssigned Reason = "previously_assigned"
	ReasonAlreadyInWeek      Reason = "already_in_week"
)

// Assignment is one past cleaning week a member was part of.
// Week is the Monday of that week, zero when the store cannot tell.
type Assignment struct {
	RecordID string
	Week     time.Time
}

// Member is a read-only snapshot of one member record.
type Member struct {
	ID               string
	DisplayName      string
	ContactAddress   string // explicit address, empty when the record has none
	StatusMarker     string
	PriorAssignments []Assignment
}

// Candidate is a member that may be drawn in the current run.
type Candidate struct {
	ID             string
	DisplayName    string
	ContactAddress string // empty when none could be derived
}

// Exclusion records a member that did not make it into the pool.
type Exclusion struct {
	MemberID    string
	DisplayName string
	Reasons     []Reason
}

// Result is the outcome of filtering a member pool.
type Result struct {
	Candidates []Candidate
	Excluded   []Exclusion
	Skipped    []string // ids of malformed member records
}

// Options configures Filter.
type Options struct {
	ReviewMarker  string // defaults to DefaultReviewMarker
	ContactDomain string // domain for derived addresses
	Policy        Policy // defaults to EverAssigned
}

// Filter classifies every member of the pool. A member is a candidate only
// when it is not under review, is allowed by the assignment policy and is
// not already part of the current week. Malformed members are skipped rather
// than failing the run: those without a display name, and those with neither
// an explicit address nor a "Last, First" name to derive one from.
func Filter(pool []Member, alreadyInWeek map[string]bool, opts Options) Result {
	marker := opts.ReviewMarker
	if marker == "" {
		marker = DefaultReviewMarker
	}
	policy := opts.Policy
	if policy == nil {
		policy = EverAssigned()
	}

	var result Result
	for _, m := range pool {
		if !addressable(m) {
			result.Skipped = append(result.Skipped, m.ID)
			continue
		}

		var reasons []Reason
		if m.StatusMarker == marker {
			reasons = append(reasons, ReasonUnderReview)
		}
		if policy.Excludes(m) {
			reasons = append(reasons, ReasonPreviouslyAssigned)
		}
		if alreadyInWeek[m.ID] {
			reasons = append(reasons, ReasonAlreadyInWeek)
		}
		if len(reasons) > 0 {
			result.Excluded = append(result.Excluded, Exclusion{
				MemberID:    m.ID,
				DisplayName: m.DisplayName,
				Reasons:     reasons,
			})
			continue
		}

		result.Candidates = append(result.Candidates, Candidate{
			ID:             m.ID,
			DisplayName:    m.DisplayName,
			ContactAddress: ContactAddress(m, opts.ContactDomain),
		})
	}
	return result
}

func addressable(m Member) bool {
	if strings.TrimSpace(m.DisplayName) == "" {
		return false
	}
	if strings.TrimSpace(m.ContactAddress) != "" {
		return true
	}
	last, first, ok := identity.SplitDisplayName(m.DisplayName)
	return ok && last != "" && first != ""
}

// ContactAddress returns the member's explicit address or, failing that, the
// address derived from a "Last, First" display name. Empty when neither exists.
func ContactAddress(m Member, domain string) string {
	if addr := strings.TrimSpace(m.ContactAddress); addr != "" {
		return addr
	}
	addr, _ := identity.FallbackAddress(m.DisplayName, domain)
	return addr
}
