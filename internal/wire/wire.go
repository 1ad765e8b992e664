// Package wire provides dependency injection for putzplan.
// It assembles the services for one configuration; nothing is global.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"time"

	cliadapter "github.com/example/putzplan/internal/adapters/cli"
	"github.com/example/putzplan/internal/adapters/notion"
	"github.com/example/putzplan/internal/adapters/slack"
	"github.com/example/putzplan/internal/adapters/sqlite"
	"github.com/example/putzplan/internal/app"
	"github.com/example/putzplan/internal/config"
	"github.com/example/putzplan/internal/db"
	"github.com/example/putzplan/internal/ports/primary"
	"github.com/example/putzplan/internal/ports/secondary"
	"github.com/example/putzplan/internal/telemetry"
)

// LocalTemplateID stands in for the page template in the sqlite backend,
// where records have no page content.
const LocalTemplateID = "local"

// App holds the assembled services of one process.
type App struct {
	Config   *config.Config
	Lottery  primary.LotteryService
	Metrics  *telemetry.Metrics
	Reporter secondary.Reporter

	noColor  bool
	database *sql.DB
}

// Build validates cfg and wires the services for its backend. Diagnostics
// and console announcements go to out.
func Build(cfg *config.Config, out io.Writer, noColor bool) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Metrics:  telemetry.NewMetrics(),
		Reporter: cliadapter.NewConsoleReporter(out, noColor),
		noColor:  noColor,
	}

	var (
		members     secondary.MemberSource
		assignments secondary.AssignmentStore
		templateID  = cfg.Notion.TemplateID
	)

	switch cfg.Store.Backend {
	case config.BackendNotion:
		client := notion.NewClient(notion.Options{
			BaseURL: cfg.Notion.BaseURL,
			Token:   cfg.Notion.Token,
			Version: cfg.Notion.Version,
			Timeout: cfg.Notion.Timeout,
		})
		memberSchema := notion.MemberSchema{
			TitleProperty:       cfg.Members.TitleProperty,
			EmailProperty:       cfg.Members.EmailProperty,
			AssignmentsRelation: cfg.Members.AssignmentsRelation,
		}
		// Only the within policy needs to know when a member was assigned.
		if cfg.Lottery.Policy.Mode == config.PolicyWithin {
			memberSchema.AssignmentsDataSource = cfg.Notion.AssignmentsDataSource
			memberSchema.AssignmentPeriodProperty = cfg.Assignments.PeriodProperty
		}
		members = notion.NewMemberRepository(client, cfg.Notion.MembersDataSource, memberSchema)
		assignments = notion.NewAssignmentRepository(client, cfg.Notion.AssignmentsDataSource, notion.AssignmentSchema{
			TitleProperty:        cfg.Assignments.TitleProperty,
			ParticipantsRelation: cfg.Assignments.ParticipantsRelation,
			PeriodProperty:       cfg.Assignments.PeriodProperty,
			CountProperty:        cfg.Assignments.CountProperty,
		})
	case config.BackendSQLite:
		database, err := OpenLocal(cfg)
		if err != nil {
			return nil, err
		}
		a.database = database
		members = sqlite.NewMemberRepository(database)
		assignments = sqlite.NewAssignmentRepository(database)
		if templateID == "" {
			templateID = LocalTemplateID
		}
	}

	var (
		identities secondary.IdentityLookup
		announcer  secondary.Announcer
	)
	if cfg.Slack.Token != "" {
		client := slack.NewClient(cfg.Slack.Token, cfg.Slack.APIURL)
		identities, announcer = client, client
	} else {
		identities, announcer = slack.NoLookup{}, slack.NewConsoleAnnouncer(out)
	}

	executor := app.NewEffectExecutor(assignments, announcer, a.Reporter)
	a.Lottery = app.NewLotteryService(members, assignments, identities, executor, a.Reporter, a.Metrics, app.LotterySettings{
		TargetSize:    cfg.Lottery.TargetSize,
		TitleFormat:   cfg.Lottery.TitleFormat,
		TemplateID:    templateID,
		Channel:       cfg.Slack.ChannelID,
		ContactDomain: cfg.Lottery.ContactDomain,
		ReviewMarker:  cfg.Lottery.ReviewMarker,
		Criteria:      cfg.Criteria(),
		Policy:        cfg.Policy,
	})
	return a, nil
}

// LotteryAdapter returns a new LotteryAdapter writing to out.
// Each call creates a new adapter (adapters are stateless translators).
func (a *App) LotteryAdapter(out io.Writer) *cliadapter.LotteryAdapter {
	return cliadapter.NewLotteryAdapter(a.Lottery, out, a.noColor)
}

// Close releases the local database, if one was opened.
func (a *App) Close() error {
	if a.database == nil {
		return nil
	}
	return a.database.Close()
}

// OpenLocal opens the sqlite database configured for the local backend.
func OpenLocal(cfg *config.Config) (*sql.DB, error) {
	path := cfg.Store.DBPath
	if path == "" {
		var err error
		if path, err = config.DefaultDBPath(); err != nil {
			return nil, err
		}
	}
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}
	return database, nil
}

// PushTimeout bounds the metrics push at the end of a run.
const PushTimeout = 10 * time.Second
