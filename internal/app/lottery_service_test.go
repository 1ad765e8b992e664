package app

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/example/putzplan/internal/core/announce"
	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/reconcile"
	"github.com/example/putzplan/internal/core/week"
	"github.com/example/putzplan/internal/ports/primary"
	"github.com/example/putzplan/internal/telemetry"
)

func ids(ps []primary.Participant) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestRun_EmptyWeekDrawsFullCrew(t *testing.T) {
	h := newHarness(newMockMemberSource(freshMembers(10)...), newMockAssignmentStore())

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, Seed: 7})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Period != 43 {
		t.Errorf("Period = %d, want 43", report.Period)
	}
	if report.Action != reconcile.ActionCreate {
		t.Errorf("Action = %s, want create", report.Action)
	}
	if len(report.Drawn) != 4 || report.Needed != 4 || report.Shortfall != 0 {
		t.Errorf("drawn=%d needed=%d shortfall=%d", len(report.Drawn), report.Needed, report.Shortfall)
	}
	if report.PoolSize != 10 {
		t.Errorf("PoolSize = %d, want 10", report.PoolSize)
	}
	if report.RecordID != "rec-new-1" {
		t.Errorf("RecordID = %q, want the created id", report.RecordID)
	}

	if len(h.assignments.created) != 1 {
		t.Fatalf("got %d creates, want 1", len(h.assignments.created))
	}
	created := h.assignments.created[0]
	if created.Title != "Putzcrew KW 43" || created.Period != 43 || created.TemplateID != "tmpl-1" {
		t.Errorf("create request = %+v", created)
	}
	if want := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC); !created.WeekStart.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", created.WeekStart, want)
	}
	if !report.Announced {
		t.Error("report should record the posted announcement")
	}
	if !reflect.DeepEqual(created.ParticipantIDs, ids(report.Drawn)) {
		t.Errorf("created participants %v, drawn %v", created.ParticipantIDs, ids(report.Drawn))
	}

	if report.Announcement.Case != announce.CaseLottery {
		t.Errorf("Case = %s, want lottery", report.Announcement.Case)
	}
	if len(h.announcer.posts) != 1 || h.announcer.posts[0].Channel != "C-PUTZ" {
		t.Fatalf("posts = %+v", h.announcer.posts)
	}
	if !strings.HasPrefix(h.announcer.posts[0].Text, "🧹 *Putzplan KW 43 ist da!* 🧹") {
		t.Errorf("text = %q", h.announcer.posts[0].Text)
	}
}

func TestRun_TopsUpPartiallyStaffedWeek(t *testing.T) {
	pool := append([]eligibility.Member{
		assigned(member("v1", "Frei, Willi"), "rec-43"),
		assigned(member("v2", "Gern, Gabi"), "rec-43"),
	}, freshMembers(5)...)
	store := newMockAssignmentStore().withRecord(43, "rec-43", "v1", "v2")
	h := newHarness(newMockMemberSource(pool...), store)

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, Seed: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Action != reconcile.ActionUpdate || report.Needed != 2 || len(report.Drawn) != 2 {
		t.Fatalf("report = %+v", report)
	}
	if report.PoolSize != 5 {
		t.Errorf("PoolSize = %d, want 5 (volunteers are excluded)", report.PoolSize)
	}
	if len(store.updates) != 1 || len(store.created) != 0 {
		t.Fatalf("updates=%d creates=%d", len(store.updates), len(store.created))
	}
	got := store.updates[0]
	if got.RecordID != "rec-43" || len(got.IDs) != 4 || got.IDs[0] != "v1" || got.IDs[1] != "v2" {
		t.Errorf("update = %+v, want existing first then two drawn", got)
	}
	for _, id := range got.IDs[2:] {
		if id == "v1" || id == "v2" {
			t.Errorf("volunteer %s drawn again", id)
		}
	}

	if report.Announcement.Case != announce.CaseMixed {
		t.Errorf("Case = %s, want mixed", report.Announcement.Case)
	}
	text := report.Announcement.Text
	if !strings.Contains(text, "Danke an Willi und Gabi") || !strings.Contains(text, "Dazu gelost wurden:") {
		t.Errorf("text = %q", text)
	}
}

func TestRun_FullWeekWritesNothing(t *testing.T) {
	store := newMockAssignmentStore().withRecord(43, "rec-43", "a", "b", "c", "d")
	pool := append([]eligibility.Member{
		member("a", "A, Anna"), member("b", "B, Bert"), member("c", "C, Carla"), member("d", "D, Dora"),
	}, freshMembers(3)...)
	h := newHarness(newMockMemberSource(pool...), store)

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Action != reconcile.ActionNone || report.Needed != 0 || len(report.Drawn) != 0 {
		t.Errorf("report = %+v", report)
	}
	if store.writes() != 0 {
		t.Errorf("got %d writes, want none", store.writes())
	}
	if report.Announcement.Case != announce.CaseComplete {
		t.Errorf("Case = %s, want complete", report.Announcement.Case)
	}
	if len(h.announcer.posts) != 1 {
		t.Errorf("the complete week is still announced, got %d posts", len(h.announcer.posts))
	}
}

func TestRun_ShortfallIsWarningOnly(t *testing.T) {
	store := newMockAssignmentStore().withRecord(43, "rec-43", "v1")
	pool := []eligibility.Member{assigned(member("v1", "Frei, Willi"), "rec-43")}
	h := newHarness(newMockMemberSource(pool...), store)

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Needed != 3 || report.Shortfall != 3 || len(report.Drawn) != 0 {
		t.Errorf("report = %+v", report)
	}
	if report.Action != reconcile.ActionNone || store.writes() != 0 {
		t.Errorf("action=%s writes=%d, want no write", report.Action, store.writes())
	}
	if !h.reporter.has("warn: Only 0 of 3") {
		t.Errorf("expected shortfall warning, got %v", h.reporter.lines)
	}
	if report.Announcement.Case != announce.CaseMixed || strings.Contains(report.Announcement.Text, "gelost") {
		t.Errorf("announcement = %+v", report.Announcement)
	}
}

func TestRun_EmptyPoolStillCreatesRecord(t *testing.T) {
	store := newMockAssignmentStore()
	h := newHarness(newMockMemberSource(), store)

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(store.created) != 1 || len(store.created[0].ParticipantIDs) != 0 {
		t.Errorf("created = %+v", store.created)
	}
	if !strings.Contains(report.Announcement.Text, "niemand im Lostopf") {
		t.Errorf("text = %q", report.Announcement.Text)
	}
}

func TestRun_ExcludesReviewAndPriorAssignments(t *testing.T) {
	review := member("r", "Prüfen, Paul")
	review.StatusMarker = eligibility.DefaultReviewMarker
	veteran := assigned(member("v", "Alt, Alma"), "rec-old")
	h := newHarness(newMockMemberSource(review, veteran, member("n", "Neu, Nora")), newMockAssignmentStore())

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := ids(report.Drawn); !reflect.DeepEqual(got, []string{"n"}) {
		t.Errorf("drawn = %v, want [n]", got)
	}
}

func TestRun_FailFast(t *testing.T) {
	storeErr := errors.New("store unavailable")

	tests := []struct {
		name      string
		setup     func(*testHarness)
		wantErr   error
		wantWrite int
		wantPosts int
	}{
		{
			name:    "member query fails",
			setup:   func(h *testHarness) { h.members.queryErr = storeErr },
			wantErr: storeErr,
		},
		{
			name:    "week lookup fails",
			setup:   func(h *testHarness) { h.assignments.findErr = storeErr },
			wantErr: storeErr,
		},
		{
			name: "two records for the week",
			setup: func(h *testHarness) {
				h.assignments.withRecord(43, "one").withRecord(43, "two")
			},
			wantErr: week.ErrAmbiguousPeriod,
		},
		{
			name:    "create fails",
			setup:   func(h *testHarness) { h.assignments.createErr = storeErr },
			wantErr: storeErr,
		},
		{
			name:      "post fails after the write",
			setup:     func(h *testHarness) { h.announcer.postErr = storeErr },
			wantErr:   storeErr,
			wantWrite: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(newMockMemberSource(freshMembers(6)...), newMockAssignmentStore())
			tt.setup(h)

			_, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := h.assignments.writes(); got != tt.wantWrite {
				t.Errorf("writes = %d, want %d", got, tt.wantWrite)
			}
			if got := len(h.announcer.posts); got != tt.wantPosts {
				t.Errorf("posts = %d, want %d", got, tt.wantPosts)
			}
		})
	}
}

func TestRun_MissingTemplateRejectedBeforeWrite(t *testing.T) {
	h := newHarness(newMockMemberSource(freshMembers(6)...), newMockAssignmentStore())
	h.service.settings.TemplateID = ""

	_, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err == nil || !strings.Contains(err.Error(), "no template configured") {
		t.Fatalf("err = %v, want template guard", err)
	}
	if h.assignments.writes() != 0 || len(h.announcer.posts) != 0 {
		t.Errorf("nothing may be written when the guard fails")
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	h := newHarness(newMockMemberSource(freshMembers(10)...), newMockAssignmentStore())

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, DryRun: true, Seed: 11})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !report.DryRun || report.Action != reconcile.ActionCreate || len(report.Drawn) != 4 {
		t.Errorf("report = %+v", report)
	}
	if h.assignments.writes() != 0 || len(h.announcer.posts) != 0 {
		t.Errorf("dry run wrote %d records and %d posts", h.assignments.writes(), len(h.announcer.posts))
	}
	if report.Announcement.Text == "" {
		t.Error("dry run still composes the announcement")
	}
	if report.Announced {
		t.Error("dry run reported a posted announcement")
	}
}

func TestRun_DryRunStillWarnsAboutShortfall(t *testing.T) {
	h := newHarness(newMockMemberSource(freshMembers(1)...), newMockAssignmentStore())

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, DryRun: true, Seed: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Shortfall != 3 {
		t.Errorf("Shortfall = %d, want 3", report.Shortfall)
	}
	if !h.reporter.has("warn: Only 1 of 4") {
		t.Errorf("expected shortfall warning, got %v", h.reporter.lines)
	}
	if h.assignments.writes() != 0 {
		t.Error("dry run wrote a record")
	}
}

func TestRun_SeedIsReproducible(t *testing.T) {
	run := func(seed uint64) []string {
		h := newHarness(newMockMemberSource(freshMembers(20)...), newMockAssignmentStore())
		report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, DryRun: true, Seed: seed})
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if report.Seed != seed {
			t.Errorf("Seed = %d, want %d", report.Seed, seed)
		}
		return ids(report.Drawn)
	}

	if a, b := run(42), run(42); !reflect.DeepEqual(a, b) {
		t.Errorf("same seed drew %v and %v", a, b)
	}

	h := newHarness(newMockMemberSource(freshMembers(5)...), newMockAssignmentStore())
	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Seed == 0 {
		t.Error("an unseeded run reports the random seed it used")
	}
}

func TestRun_Tagging(t *testing.T) {
	withMail := member("a", "Schön, Anna")
	withMail.ContactAddress = "anna@privat.de"
	pool := []eligibility.Member{
		withMail,
		member("b", "Müller, Jürgen"), // derived juergen.mueller@verein.de
		member("c", "Einname"),        // no address, skipped
		member("d", "Zweitname"),
	}
	pool[3].ContactAddress = "zweit@privat.de" // lookup misses
	h := newHarness(newMockMemberSource(pool...), newMockAssignmentStore())
	h.identities.users["anna@privat.de"] = "UANNA"
	h.identities.users["juergen.mueller@verein.de"] = "UJUERGEN"

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	tags := map[string]string{}
	for _, p := range report.Drawn {
		tags[p.ID] = p.Tag
	}
	want := map[string]string{"a": "<@UANNA>", "b": "<@UJUERGEN>", "d": "Zweitname"}
	if !reflect.DeepEqual(tags, want) {
		t.Errorf("tags = %v, want %v", tags, want)
	}
	if h.identities.calls != 3 {
		t.Errorf("lookups = %d, want 3 (one per addressable member)", h.identities.calls)
	}
	if !reflect.DeepEqual(report.Skipped, []string{"c"}) || !h.reporter.has(`warn: Skipping member c`) {
		t.Errorf("skipped = %v, lines = %v", report.Skipped, h.reporter.lines)
	}
}

func TestRun_LookupErrorFallsBackToName(t *testing.T) {
	h := newHarness(newMockMemberSource(member("a", "Schön, Anna")), newMockAssignmentStore())
	h.identities.err = errors.New("rate limited")

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("a failed lookup must not fail the run: %v", err)
	}
	if report.Drawn[0].Tag != "Anna" {
		t.Errorf("Tag = %q, want Anna", report.Drawn[0].Tag)
	}
	if !h.reporter.has("warn: Chat lookup") {
		t.Errorf("expected lookup warning, got %v", h.reporter.lines)
	}
}

func TestRun_ParticipantOutsidePool(t *testing.T) {
	store := newMockAssignmentStore().withRecord(43, "rec-43", "gone", "known")
	members := newMockMemberSource(freshMembers(4)...)
	members.extra["known"] = member("known", "Ex, Erik")
	h := newHarness(members, store)

	// "gone" cannot be fetched and degrades to its id.
	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(members.getCalls, []string{"gone", "known"}) {
		t.Errorf("GetMember calls = %v", members.getCalls)
	}
	byID := map[string]primary.Participant{}
	for _, p := range report.Existing {
		byID[p.ID] = p
	}
	if byID["gone"].Tag != "gone" || byID["known"].Tag != "Erik" {
		t.Errorf("existing = %+v", report.Existing)
	}
	if !h.reporter.has("warn: Could not load participant gone") {
		t.Errorf("expected degrade warning, got %v", h.reporter.lines)
	}
}

func TestRun_RecordsMetrics(t *testing.T) {
	h := newHarness(newMockMemberSource(freshMembers(6)...), newMockAssignmentStore())
	metrics := telemetry.NewMetrics()
	h.service.metrics = metrics

	if _, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	values := map[string]float64{}
	mfs, err := metrics.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	for _, mf := range mfs {
		if g := mf.GetMetric()[0].GetGauge(); g != nil {
			values[mf.GetName()] = g.GetValue()
		}
	}
	if values["putzplan_pool_size"] != 6 || values["putzplan_drawn_participants"] != 4 || values["putzplan_last_run_success"] != 1 {
		t.Errorf("metrics = %v", values)
	}
}

func TestPool(t *testing.T) {
	review := member("r", "Prüfen, Paul")
	review.StatusMarker = eligibility.DefaultReviewMarker
	store := newMockAssignmentStore().withRecord(43, "rec-43", "w")
	h := newHarness(newMockMemberSource(review, member("w", "Woche, Wanda"), member("n", "Neu, Nora"), member("x", " ")), store)

	report, err := h.service.Pool(context.Background(), primary.PoolRequest{Offset: 1})
	if err != nil {
		t.Fatalf("Pool failed: %v", err)
	}
	if report.Period != 43 || len(report.Candidates) != 1 || report.Candidates[0].ID != "n" {
		t.Errorf("report = %+v", report)
	}
	if report.Candidates[0].ContactAddress != "nora.neu@verein.de" {
		t.Errorf("ContactAddress = %q", report.Candidates[0].ContactAddress)
	}
	if len(report.Excluded) != 2 || !reflect.DeepEqual(report.Skipped, []string{"x"}) {
		t.Errorf("excluded=%+v skipped=%v", report.Excluded, report.Skipped)
	}
	if store.writes() != 0 {
		t.Error("Pool must not write")
	}
}

func TestWeek(t *testing.T) {
	store := newMockAssignmentStore().withRecord(42, "rec-42", "a", "b")
	h := newHarness(newMockMemberSource(member("a", "A, Anna"), member("b", "B, Bert")), store)

	report, err := h.service.Week(context.Background(), 0)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if !report.Exists || report.Period != 42 || report.Count != 2 || report.Needed != 2 || report.TargetSize != 4 {
		t.Errorf("report = %+v", report)
	}
	if report.Participants[0].DisplayName != "A, Anna" {
		t.Errorf("participants = %+v", report.Participants)
	}

	empty, err := h.service.Week(context.Background(), 1)
	if err != nil {
		t.Fatalf("Week failed: %v", err)
	}
	if empty.Exists || empty.Needed != 4 {
		t.Errorf("empty week = %+v", empty)
	}
}

func TestRun_IgnoresSameWeekNumberOfLastYear(t *testing.T) {
	store := newMockAssignmentStore().withRecord(43, "rec-2025-43", "a", "b", "c", "d")
	store.records[43][0].WeekStart = time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)
	h := newHarness(newMockMemberSource(freshMembers(6)...), store)

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, Seed: 5})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Action != reconcile.ActionCreate || len(report.Drawn) != 4 {
		t.Errorf("action=%s drawn=%d, want a fresh record with 4", report.Action, len(report.Drawn))
	}
	if len(store.updates) != 0 {
		t.Errorf("last year's record was updated: %+v", store.updates)
	}
	if !h.reporter.has("info: Ignoring 1 record(s) of week 43 from another year") {
		t.Errorf("reporter lines = %v", h.reporter.lines)
	}
}

func TestRun_WithinPolicyReadmitsLastYearsCrew(t *testing.T) {
	lastYear := member("old", "Alt, Anton")
	lastYear.PriorAssignments = []eligibility.Assignment{{RecordID: "rec-2025-43", Week: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)}}
	recent := member("new", "Neu, Nora")
	recent.PriorAssignments = []eligibility.Assignment{{RecordID: "rec-41", Week: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)}}

	h := newHarness(newMockMemberSource(lastYear, recent), newMockAssignmentStore())
	h.service.settings.Policy = func(target time.Time) eligibility.Policy {
		return eligibility.AssignedWithin(8, target)
	}

	report, err := h.service.Run(context.Background(), primary.RunRequest{Offset: 1, DryRun: true, Seed: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := ids(report.Drawn); !reflect.DeepEqual(got, []string{"old"}) {
		t.Errorf("drawn = %v, want only the member assigned a year ago", got)
	}
}
