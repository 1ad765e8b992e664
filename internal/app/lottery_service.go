package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/putzplan/internal/core/announce"
	"github.com/example/putzplan/internal/core/draw"
	"github.com/example/putzplan/internal/core/effects"
	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/identity"
	"github.com/example/putzplan/internal/core/reconcile"
	"github.com/example/putzplan/internal/core/week"
	"github.com/example/putzplan/internal/ctxutil"
	"github.com/example/putzplan/internal/ports/primary"
	"github.com/example/putzplan/internal/ports/secondary"
	"github.com/example/putzplan/internal/telemetry"
)

// LotterySettings holds the tunables of the lottery.
type LotterySettings struct {
	TargetSize    int
	TitleFormat   string
	TemplateID    string
	Channel       string
	ContactDomain string
	ReviewMarker  string
	Criteria      eligibility.MemberCriteria
	// Policy returns the assignment policy for the week starting at target.
	Policy func(target time.Time) eligibility.Policy
}

// LotteryServiceImpl implements the LotteryService interface.
type LotteryServiceImpl struct {
	members     secondary.MemberSource
	assignments secondary.AssignmentStore
	identities  secondary.IdentityLookup
	executor    EffectExecutor
	reporter    secondary.Reporter
	metrics     *telemetry.Metrics
	tracer      trace.Tracer
	settings    LotterySettings
	now         func() time.Time
}

// NewLotteryService creates a new LotteryService. metrics may be nil.
func NewLotteryService(
	members secondary.MemberSource,
	assignments secondary.AssignmentStore,
	identities secondary.IdentityLookup,
	executor EffectExecutor,
	reporter secondary.Reporter,
	metrics *telemetry.Metrics,
	settings LotterySettings,
) *LotteryServiceImpl {
	if settings.TargetSize <= 0 {
		settings.TargetSize = week.DefaultTargetSize
	}
	if settings.Policy == nil {
		settings.Policy = func(time.Time) eligibility.Policy { return eligibility.EverAssigned() }
	}
	return &LotteryServiceImpl{
		members:     members,
		assignments: assignments,
		identities:  identities,
		executor:    executor,
		reporter:    reporter,
		metrics:     metrics,
		tracer:      telemetry.Tracer(),
		settings:    settings,
		now:         time.Now,
	}
}

// SetClock replaces the wall clock, for tests and rehearsals of other weeks.
func (s *LotteryServiceImpl) SetClock(now func() time.Time) {
	s.now = now
}

// Run executes one lottery run for the target week.
func (s *LotteryServiceImpl) Run(ctx context.Context, req primary.RunRequest) (report *primary.RunReport, err error) {
	ctx, span := s.tracer.Start(ctx, "lottery.run", trace.WithAttributes(
		attribute.Bool("dry_run", req.DryRun),
		attribute.String("run_id", ctxutil.RunIDFromContext(ctx)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.observe(report, err)
	}()

	// 1. Member pool
	pool, err := s.queryPool(ctx)
	if err != nil {
		return nil, err
	}

	// 2. Target week
	target, state, err := s.resolveWeek(ctx, req.Offset)
	if err != nil {
		return nil, err
	}
	if state.Exists {
		s.reporter.Info("Week %d has a record with %d participant(s)", state.Period, state.Count)
	} else {
		s.reporter.Info("Week %d has no record yet", state.Period)
	}

	// 3. Directory of everyone the run may mention
	dir := s.buildDirectory(ctx, pool, state.ParticipantIDs)

	// 4. Eligibility
	filtered := eligibility.Filter(pool, state.ParticipantSet(), s.filterOptions(target))
	for _, id := range filtered.Skipped {
		s.reporter.Warn("Skipping member %s: no address and no \"Last, First\" name", id)
	}
	s.reporter.Info("%d member(s) in the pool", len(filtered.Candidates))

	// 5. Draw
	seed := req.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	_, drawSpan := s.tracer.Start(ctx, "lottery.draw")
	needed := draw.Needed(s.settings.TargetSize, state.Count)
	drawn := draw.Draw(filtered.Candidates, needed, rand.New(rand.NewPCG(seed, seed)))
	drawSpan.SetAttributes(attribute.Int("needed", needed), attribute.Int("drawn", len(drawn.Drawn)))
	drawSpan.End()

	// 6. Reconcile
	plan := reconcile.GeneratePlan(reconcile.Input{
		State:       state,
		Draw:        drawn,
		WeekStart:   target,
		TitleFormat: s.settings.TitleFormat,
		TemplateID:  s.settings.TemplateID,
	})

	// 7. Announcement
	drawnIDs := make([]string, len(drawn.Drawn))
	for i, c := range drawn.Drawn {
		drawnIDs[i] = c.ID
	}
	tags := s.newTagger(ctx, dir)
	msg := announce.Compose(announce.Input{
		Period:      state.Period,
		TargetSize:  s.settings.TargetSize,
		ExistingIDs: state.ParticipantIDs,
		Needed:      needed,
		DrawnIDs:    drawnIDs,
	}, tags.tag)

	report = &primary.RunReport{
		Period:       state.Period,
		RecordID:     state.RecordID,
		Existing:     tags.participants(state.ParticipantIDs),
		Drawn:        tags.participants(drawnIDs),
		Needed:       needed,
		Shortfall:    drawn.Shortfall,
		PoolSize:     len(filtered.Candidates),
		Action:       plan.Action,
		Announcement: msg,
		Seed:         seed,
		DryRun:       req.DryRun,
	}

	// 8. Diagnostics, writes, then the announcement
	effs := append([]effects.Effect{}, plan.Notes...)
	if !req.DryRun {
		effs = append(effs, plan.Effects()...)
		effs = append(effs, effects.AnnounceEffect{Channel: s.settings.Channel, Text: msg.Text})
	}
	ctx, execSpan := s.tracer.Start(ctx, "lottery.execute", trace.WithAttributes(attribute.String("action", string(plan.Action))))
	result, err := s.executor.Execute(ctx, effs)
	execSpan.End()
	if result != nil {
		if result.CreatedRecordID != "" {
			report.RecordID = result.CreatedRecordID
		}
		report.Announced = result.Announced
	}
	return report, err
}

// Pool lists the candidates and exclusions for the target week.
func (s *LotteryServiceImpl) Pool(ctx context.Context, req primary.PoolRequest) (*primary.PoolReport, error) {
	pool, err := s.queryPool(ctx)
	if err != nil {
		return nil, err
	}
	target, state, err := s.resolveWeek(ctx, req.Offset)
	if err != nil {
		return nil, err
	}
	filtered := eligibility.Filter(pool, state.ParticipantSet(), s.filterOptions(target))
	return &primary.PoolReport{
		Period:     state.Period,
		Candidates: filtered.Candidates,
		Excluded:   filtered.Excluded,
		Skipped:    filtered.Skipped,
	}, nil
}

// Week shows the state of the target week's record.
func (s *LotteryServiceImpl) Week(ctx context.Context, offset int) (*primary.WeekReport, error) {
	_, state, err := s.resolveWeek(ctx, offset)
	if err != nil {
		return nil, err
	}
	dir := s.buildDirectory(ctx, nil, state.ParticipantIDs)
	participants := make([]primary.Participant, 0, len(state.ParticipantIDs))
	for _, id := range state.ParticipantIDs {
		m := dir[id]
		participants = append(participants, primary.Participant{
			ID:             id,
			DisplayName:    m.DisplayName,
			ContactAddress: eligibility.ContactAddress(m, s.settings.ContactDomain),
		})
	}
	return &primary.WeekReport{
		Period:       state.Period,
		Exists:       state.Exists,
		RecordID:     state.RecordID,
		Title:        state.Title,
		Participants: participants,
		Count:        state.Count,
		TargetSize:   s.settings.TargetSize,
		Needed:       draw.Needed(s.settings.TargetSize, state.Count),
	}, nil
}

func (s *LotteryServiceImpl) queryPool(ctx context.Context) ([]eligibility.Member, error) {
	ctx, span := s.tracer.Start(ctx, "lottery.query_pool")
	defer span.End()

	pool, err := s.members.QueryMembers(ctx, s.settings.Criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to query member pool: %w", err)
	}
	span.SetAttributes(attribute.Int("members", len(pool)))
	return pool, nil
}

// resolveWeek returns the start of the target week and the state of its
// record. Records carrying the same week number from another year are
// ignored.
func (s *LotteryServiceImpl) resolveWeek(ctx context.Context, offset int) (time.Time, week.State, error) {
	ctx, span := s.tracer.Start(ctx, "lottery.resolve_week")
	defer span.End()

	target := week.Target(s.now(), offset)
	period := week.PeriodKey(s.now(), offset)
	span.SetAttributes(attribute.Int("period", period))

	records, err := s.assignments.FindByPeriod(ctx, period)
	if err != nil {
		return target, week.State{}, fmt.Errorf("failed to read week %d: %w", period, err)
	}
	records, stale := week.Current(target, records)
	if stale > 0 {
		s.reporter.Info("Ignoring %d record(s) of week %d from another year", stale, period)
	}
	state, err := week.Resolve(period, records)
	if err != nil {
		if errors.Is(err, week.ErrAmbiguousPeriod) {
			s.reporter.Error("Week %d has %d records; resolve them before drawing", period, len(records))
		}
		return target, week.State{}, err
	}
	return target, state, nil
}

// buildDirectory indexes the pool by id and fetches participants missing
// from it. A failed fetch leaves the participant unnamed.
func (s *LotteryServiceImpl) buildDirectory(ctx context.Context, pool []eligibility.Member, participantIDs []string) map[string]eligibility.Member {
	dir := make(map[string]eligibility.Member, len(pool)+len(participantIDs))
	for _, m := range pool {
		dir[m.ID] = m
	}
	for _, id := range participantIDs {
		if _, ok := dir[id]; ok {
			continue
		}
		m, err := s.members.GetMember(ctx, id)
		if err != nil {
			s.reporter.Warn("Could not load participant %s: %v", id, err)
			dir[id] = eligibility.Member{ID: id}
			continue
		}
		dir[id] = *m
	}
	return dir
}

func (s *LotteryServiceImpl) filterOptions(target time.Time) eligibility.Options {
	return eligibility.Options{
		ReviewMarker:  s.settings.ReviewMarker,
		ContactDomain: s.settings.ContactDomain,
		Policy:        s.settings.Policy(target),
	}
}

func (s *LotteryServiceImpl) observe(report *primary.RunReport, err error) {
	if s.metrics == nil {
		return
	}
	stats := telemetry.RunStats{Failed: err != nil}
	if report != nil {
		stats.Period = report.Period
		stats.PoolSize = report.PoolSize
		stats.Existing = len(report.Existing)
		stats.Drawn = len(report.Drawn)
		stats.Shortfall = report.Shortfall
		stats.Action = string(report.Action)
	}
	s.metrics.Observe(stats, s.now())
}

// tagger resolves members to chat mentions once per run.
type tagger struct {
	ctx        context.Context
	dir        map[string]eligibility.Member
	identities secondary.IdentityLookup
	reporter   secondary.Reporter
	domain     string
	cache      map[string]string
}

func (s *LotteryServiceImpl) newTagger(ctx context.Context, dir map[string]eligibility.Member) *tagger {
	return &tagger{
		ctx:        ctx,
		dir:        dir,
		identities: s.identities,
		reporter:   s.reporter,
		domain:     s.settings.ContactDomain,
		cache:      map[string]string{},
	}
}

// tag returns the mention for a member, falling back to the first name and
// finally the raw id. It never fails.
func (t *tagger) tag(id string) string {
	if v, ok := t.cache[id]; ok {
		return v
	}
	m := t.dir[id]
	v := ""
	if addr := eligibility.ContactAddress(m, t.domain); addr != "" {
		userID, found, err := t.identities.LookupByEmail(t.ctx, addr)
		switch {
		case err != nil:
			t.reporter.Warn("Chat lookup for %s failed: %v", addr, err)
		case found:
			v = "<@" + userID + ">"
		}
	}
	if v == "" {
		v = identity.FallbackTag(m.DisplayName)
	}
	if v == "" {
		v = id
	}
	t.cache[id] = v
	return v
}

func (t *tagger) participants(ids []string) []primary.Participant {
	out := make([]primary.Participant, 0, len(ids))
	for _, id := range ids {
		m := t.dir[id]
		out = append(out, primary.Participant{
			ID:             id,
			DisplayName:    m.DisplayName,
			ContactAddress: eligibility.ContactAddress(m, t.domain),
			Tag:            t.tag(id),
		})
	}
	return out
}

// Ensure LotteryServiceImpl implements the interface
var _ primary.LotteryService = (*LotteryServiceImpl)(nil)
