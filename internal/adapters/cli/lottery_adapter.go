package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/reconcile"
	"github.com/example/putzplan/internal/ports/primary"
)

// LotteryAdapter is a thin adapter that translates CLI operations to LotteryService calls.
// It depends only on the LotteryService interface, enabling easy testing with mocks.
type LotteryAdapter struct {
	service primary.LotteryService
	out     io.Writer
	noColor bool
}

// NewLotteryAdapter creates a new LotteryAdapter with the given service.
func NewLotteryAdapter(service primary.LotteryService, out io.Writer, noColor bool) *LotteryAdapter {
	return &LotteryAdapter{
		service: service,
		out:     out,
		noColor: noColor,
	}
}

func (a *LotteryAdapter) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if a.noColor {
		c.DisableColor()
	}
	return c.Sprint(s)
}

// Draw runs the lottery and prints its outcome. A report returned alongside
// an error is still printed so partial progress is visible.
func (a *LotteryAdapter) Draw(ctx context.Context, req primary.RunRequest) (*primary.RunReport, error) {
	report, err := a.service.Run(ctx, req)
	if report == nil {
		return nil, err
	}

	title := fmt.Sprintf("Week %d", report.Period)
	if report.DryRun {
		title += a.paint(color.FgYellow, " (dry run)")
	}
	fmt.Fprintf(a.out, "\n%s\n", title)
	fmt.Fprintln(a.out, "────────────────────────────────────────")
	fmt.Fprintf(a.out, "Pool:     %d candidate(s)\n", report.PoolSize)
	fmt.Fprintf(a.out, "Existing: %s\n", listParticipants(report.Existing))
	fmt.Fprintf(a.out, "Needed:   %d\n", report.Needed)
	fmt.Fprintf(a.out, "Drawn:    %s\n", listParticipants(report.Drawn))
	if report.Shortfall > 0 {
		fmt.Fprintf(a.out, "%s %d slot(s) stay open\n", a.paint(color.FgYellow, "⚠"), report.Shortfall)
	}

	switch {
	case report.DryRun:
		fmt.Fprintf(a.out, "Record:   would %s\n", report.Action)
	case err != nil:
	case report.Action == reconcile.ActionCreate:
		fmt.Fprintf(a.out, "%s Record %s created\n", a.paint(color.FgGreen, "✓"), report.RecordID)
	case report.Action == reconcile.ActionUpdate:
		fmt.Fprintf(a.out, "%s Record %s updated\n", a.paint(color.FgGreen, "✓"), report.RecordID)
	default:
		fmt.Fprintf(a.out, "%s Record %s unchanged\n", a.paint(color.FgGreen, "✓"), report.RecordID)
	}

	fmt.Fprintf(a.out, "\nAnnouncement (%s):\n%s\n", report.Announcement.Case, report.Announcement.Text)
	if !report.DryRun && !report.Announced {
		fmt.Fprintf(a.out, "%s Announcement not posted\n", a.paint(color.FgRed, "✗"))
	}
	fmt.Fprintf(a.out, "\nSeed: %d (repeat with --seed %d)\n", report.Seed, report.Seed)
	return report, err
}

// Pool lists the candidates and exclusions of the target week.
func (a *LotteryAdapter) Pool(ctx context.Context, offset int) error {
	report, err := a.service.Pool(ctx, primary.PoolRequest{Offset: offset})
	if err != nil {
		return fmt.Errorf("failed to list pool: %w", err)
	}

	fmt.Fprintf(a.out, "\nLottery pool for week %d: %d candidate(s)\n", report.Period, len(report.Candidates))
	if len(report.Candidates) > 0 {
		fmt.Fprintf(a.out, "\n%-32s %s\n", "NAME", "ADDRESS")
		fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
		for _, c := range report.Candidates {
			addr := c.ContactAddress
			if addr == "" {
				addr = "-"
			}
			fmt.Fprintf(a.out, "%-32s %s\n", c.DisplayName, addr)
		}
	}

	if len(report.Excluded) > 0 {
		fmt.Fprintf(a.out, "\nExcluded (%d):\n", len(report.Excluded))
		for _, e := range report.Excluded {
			fmt.Fprintf(a.out, "  %-30s %s\n", e.DisplayName, joinReasons(e.Reasons))
		}
	}
	if len(report.Skipped) > 0 {
		fmt.Fprintf(a.out, "\n%s %d record(s) without a name skipped: %s\n",
			a.paint(color.FgYellow, "⚠"), len(report.Skipped), strings.Join(report.Skipped, ", "))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Week shows the state of the target week's record.
func (a *LotteryAdapter) Week(ctx context.Context, offset int) error {
	report, err := a.service.Week(ctx, offset)
	if err != nil {
		return fmt.Errorf("failed to read week: %w", err)
	}

	fmt.Fprintf(a.out, "\nWeek %d\n", report.Period)
	if !report.Exists {
		fmt.Fprintf(a.out, "Record:  %s\n", a.paint(color.FgYellow, "(not created)"))
		fmt.Fprintf(a.out, "Needed:  %d of %d\n\n", report.Needed, report.TargetSize)
		return nil
	}
	fmt.Fprintf(a.out, "Record:  %s (%s)\n", report.RecordID, report.Title)
	fmt.Fprintf(a.out, "Crew:    %d of %d\n", report.Count, report.TargetSize)
	for _, p := range report.Participants {
		name := p.DisplayName
		if name == "" {
			name = p.ID
		}
		fmt.Fprintf(a.out, "  - %s\n", name)
	}
	if report.Needed > 0 {
		fmt.Fprintf(a.out, "Needed:  %d\n", report.Needed)
	} else {
		fmt.Fprintf(a.out, "%s complete\n", a.paint(color.FgGreen, "✓"))
	}
	fmt.Fprintln(a.out)
	return nil
}

func listParticipants(ps []primary.Participant) string {
	if len(ps) == 0 {
		return "-"
	}
	names := make([]string, len(ps))
	for i, p := range ps {
		switch {
		case p.DisplayName != "":
			names[i] = p.DisplayName
		default:
			names[i] = p.ID
		}
	}
	return strings.Join(names, "; ")
}

func joinReasons(reasons []eligibility.Reason) string {
	out := make([]string, len(reasons))
	for i, r := range reasons {
		out[i] = string(r)
	}
	return strings.Join(out, ", ")
}
