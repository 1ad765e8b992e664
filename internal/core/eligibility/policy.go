package eligibility

import (
	"time"

	"github.com/example/putzplan/internal/core/week"
)

// Policy decides whether past assignments exclude a member from the draw.
type Policy interface {
	Excludes(m Member) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(m Member) bool

// Excludes implements Policy.
func (f PolicyFunc) Excludes(m Member) bool { return f(m) }

// EverAssigned excludes every member that has been assigned at least once.
func EverAssigned() Policy {
	return PolicyFunc(func(m Member) bool {
		return len(m.PriorAssignments) > 0
	})
}

// AssignedWithin excludes members assigned during the k weeks up to and
// including the week starting at target. Assignments of unknown week, or of a
// week after target, count as recent. k <= 0 falls back to EverAssigned.
func AssignedWithin(k int, target time.Time) Policy {
	if k <= 0 {
		return EverAssigned()
	}
	return PolicyFunc(func(m Member) bool {
		for _, a := range m.PriorAssignments {
			if a.Week.IsZero() {
				return true
			}
			if age := week.Between(a.Week, target); age < k {
				return true
			}
		}
		return false
	})
}
