// Package primary defines the primary ports (driving side) for the application.
package primary

import (
	"context"

	"github.com/example/putzplan/internal/core/announce"
	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/reconcile"
)

// LotteryService defines the primary port for the weekly crew lottery.
type LotteryService interface {
	// Run reconciles the target week's record, draws the missing participants,
	// writes the record and posts the announcement. With DryRun nothing is written.
	Run(ctx context.Context, req RunRequest) (*RunReport, error)

	// Pool lists the members that would enter the lottery for the target week.
	Pool(ctx context.Context, req PoolRequest) (*PoolReport, error)

	// Week shows the state of a week's assignment record.
	Week(ctx context.Context, offset int) (*WeekReport, error)
}

// RunRequest contains parameters for a lottery run.
type RunRequest struct {
	DryRun bool
	Offset int    // weeks after the current one; see config period_offset
	Seed   uint64 // 0 draws from a random seed
}

// Participant is a member resolved for display.
type Participant struct {
	ID             string
	DisplayName    string
	ContactAddress string
	Tag            string
}

// RunReport summarises a lottery run.
type RunReport struct {
	Period       int
	RecordID     string
	Existing     []Participant
	Drawn        []Participant
	Needed       int
	Shortfall    int
	PoolSize     int
	Action       reconcile.Action
	Announcement announce.Message
	Announced    bool   // the announcement reached the channel
	Seed         uint64 // seed the draw used; pass it back to repeat a rehearsal
	DryRun       bool
}

// PoolRequest contains parameters for listing the pool.
type PoolRequest struct {
	Offset int
}

// PoolReport lists candidates and exclusions for a period.
type PoolReport struct {
	Period     int
	Candidates []eligibility.Candidate
	Excluded   []eligibility.Exclusion
	Skipped    []string
}

// WeekReport describes a week's assignment record.
type WeekReport struct {
	Period       int
	Exists       bool
	RecordID     string
	Title        string
	Participants []Participant
	Count        int
	TargetSize   int
	Needed       int
}
