// Package week contains the pure rules for identifying the target cleaning
// week and reading the state of its assignment record.
// This is part of the Functional Core - no I/O, only pure functions.
package week

import (
	"errors"
	"fmt"
	"time"
)

// DefaultTargetSize is the number of participants a fully staffed week needs.
const DefaultTargetSize = 4

// ErrAmbiguousPeriod is returned when the store holds more than one record
// for a single period.
var ErrAmbiguousPeriod = errors.New("more than one assignment record for period")

// RecordSnapshot is an assignment record as returned by a store query.
type RecordSnapshot struct {
	ID             string
	Title          string
	Period         int
	ParticipantIDs []string
	// WeekStart is the Monday of the week the record was made for, zero when
	// the store cannot tell. Week numbers repeat every year; this does not.
	WeekStart time.Time
	// AggregateCount is the store-maintained participant count (a rollup),
	// -1 when the record has no such field. It may lag behind the relation.
	AggregateCount int
}

// State is the resolved state of the target week.
type State struct {
	Period         int
	Exists         bool
	RecordID       string
	Title          string
	ParticipantIDs []string // unique, store order kept
	Count          int      // participants already present
}

// ParticipantSet returns the participant ids as a lookup set.
func (s State) ParticipantSet() map[string]bool {
	set := make(map[string]bool, len(s.ParticipantIDs))
	for _, id := range s.ParticipantIDs {
		set[id] = true
	}
	return set
}

// PeriodKey returns the ISO week number of the week offset weeks after now.
func PeriodKey(now time.Time, offset int) int {
	_, w := now.AddDate(0, 0, 7*offset).ISOWeek()
	return w
}

// Start returns midnight UTC of the Monday that begins t's ISO week.
func Start(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}

// Target returns the start of the week offset weeks after now.
func Target(now time.Time, offset int) time.Time {
	return Start(now.AddDate(0, 0, 7*offset))
}

// Between returns the number of whole weeks from the week of from to the
// week of to. It is negative when to lies before from.
func Between(from, to time.Time) int {
	days := int(Start(to).Sub(Start(from)).Hours() / 24)
	return days / 7
}

// Nearest returns the start of the week numbered period that lies closest to
// t, or the zero time when no such week is within half a year of t.
func Nearest(period int, t time.Time) time.Time {
	ref := Start(t)
	for d := 0; d <= 27; d++ {
		for _, delta := range []int{d, -d} {
			candidate := ref.AddDate(0, 0, 7*delta)
			if _, w := candidate.ISOWeek(); w == period {
				return candidate
			}
		}
	}
	return time.Time{}
}

// Current splits records into those made for the week starting at target and
// the number of stale ones left over from the same week number of another
// year. Records of unknown week are kept.
func Current(target time.Time, records []RecordSnapshot) ([]RecordSnapshot, int) {
	current := make([]RecordSnapshot, 0, len(records))
	stale := 0
	for _, r := range records {
		if !r.WeekStart.IsZero() && !r.WeekStart.Equal(Start(target)) {
			stale++
			continue
		}
		current = append(current, r)
	}
	return current, stale
}

// Title is the display title of the record for period.
func Title(format string, period int) string {
	if format == "" {
		format = "Putzcrew KW %d"
	}
	return fmt.Sprintf(format, period)
}

// Resolve turns the records a store returned for period into the week state.
// Zero records mean the week has no record yet. More than one record is an
// anomaly the caller must surface; Resolve never picks one of them.
func Resolve(period int, records []RecordSnapshot) (State, error) {
	switch len(records) {
	case 0:
		return State{Period: period}, nil
	case 1:
	default:
		ids := make([]string, len(records))
		for i, r := range records {
			ids[i] = r.ID
		}
		return State{Period: period}, fmt.Errorf("%w %d: %v", ErrAmbiguousPeriod, period, ids)
	}

	rec := records[0]
	participants := Dedupe(rec.ParticipantIDs)

	// Rollups can lag behind the relation they count; trust the larger value.
	count := len(participants)
	if rec.AggregateCount > count {
		count = rec.AggregateCount
	}

	return State{
		Period:         period,
		Exists:         true,
		RecordID:       rec.ID,
		Title:          rec.Title,
		ParticipantIDs: participants,
		Count:          count,
	}, nil
}

// Dedupe drops repeated and empty ids, keeping first occurrences in order.
func Dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
