// Package config loads the putzplan configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// environment variables. The resulting Config is built once per process and
// passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/example/putzplan/internal/core/eligibility"
	"github.com/example/putzplan/internal/core/week"
)

// Store backends
const (
	BackendNotion = "notion"
	BackendSQLite = "sqlite"
)

// Assignment policy modes
const (
	PolicyEver   = "ever"   // one assignment per lifetime
	PolicyWithin = "within" // no assignment within the last N weeks
)

// FileName is the config file looked up when no path is given.
const FileName = "putzplan.yaml"

// Config is the complete putzplan configuration.
type Config struct {
	Store       StoreConfig      `yaml:"store"`
	Notion      NotionConfig     `yaml:"notion"`
	Slack       SlackConfig      `yaml:"slack"`
	Lottery     LotteryConfig    `yaml:"lottery"`
	Members     MemberSchema     `yaml:"members"`
	Assignments AssignmentSchema `yaml:"assignments"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"PUTZPLAN_BACKEND"`
	DBPath  string `yaml:"db_path" env:"PUTZPLAN_DB_PATH"`
}

// NotionConfig holds the Notion API settings.
type NotionConfig struct {
	Token                 string        `yaml:"-"                      env:"NOTION_TOKEN"`
	BaseURL               string        `yaml:"base_url"               env:"PUTZPLAN_NOTION_URL"`
	Version               string        `yaml:"version"`
	MembersDataSource     string        `yaml:"members_data_source"     env:"DS_A_ID"`
	AssignmentsDataSource string        `yaml:"assignments_data_source" env:"DS_B_ID"`
	TemplateID            string        `yaml:"template_id"            env:"PUTZPLAN_TEMPLATE_ID"`
	Timeout               time.Duration `yaml:"timeout"`
}

// SlackConfig holds the Slack API settings.
type SlackConfig struct {
	Token     string `yaml:"-"          env:"SLACK_TOKEN"`
	ChannelID string `yaml:"channel_id" env:"SLACK_CHANNEL_ID"`
	APIURL    string `yaml:"api_url"    env:"PUTZPLAN_SLACK_URL"`
}

// LotteryConfig tunes the draw.
type LotteryConfig struct {
	TargetSize    int          `yaml:"target_size"`
	PeriodOffset  int          `yaml:"period_offset" env:"PUTZPLAN_PERIOD_OFFSET"`
	ContactDomain string       `yaml:"contact_domain" env:"EMAIL_DOMAIN"`
	ReviewMarker  string       `yaml:"review_marker"`
	TitleFormat   string       `yaml:"title_format"`
	Policy        PolicyConfig `yaml:"policy"`
}

// PolicyConfig selects the assignment policy.
type PolicyConfig struct {
	Mode    string `yaml:"mode"`
	Periods int    `yaml:"periods"`
}

// MemberSchema names the properties of the member collection.
type MemberSchema struct {
	TitleProperty       string   `yaml:"title_property"`
	EmailProperty       string   `yaml:"email_property"`
	AssignmentsRelation string   `yaml:"assignments_relation"`
	ExitDateProperty    string   `yaml:"exit_date_property"`
	OnboardingProperty  string   `yaml:"onboarding_property"`
	OnboardingDone      string   `yaml:"onboarding_done"`
	CategoryProperty    string   `yaml:"category_property"`
	ExcludedCategories  []string `yaml:"excluded_categories"`
	IncludedCategories  []string `yaml:"included_categories"`
}

// AssignmentSchema names the properties of the assignment collection.
type AssignmentSchema struct {
	TitleProperty        string `yaml:"title_property"`
	ParticipantsRelation string `yaml:"participants_relation"`
	PeriodProperty       string `yaml:"period_property"`
	CountProperty        string `yaml:"count_property"`
}

// TelemetryConfig holds the optional observability endpoints.
type TelemetryConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" env:"PUTZPLAN_PUSHGATEWAY_URL"`
	OTelEndpoint   string `yaml:"otel_endpoint"   env:"PUTZPLAN_OTEL_ENDPOINT"`
}

// Default returns the configuration matching the association's workspace.
func Default() *Config {
	criteria := eligibility.DefaultMemberCriteria()
	return &Config{
		Store: StoreConfig{Backend: BackendNotion},
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com",
			Version: "2025-09-03",
			Timeout: 30 * time.Second,
		},
		Slack: SlackConfig{},
		Lottery: LotteryConfig{
			TargetSize:   week.DefaultTargetSize,
			PeriodOffset: 1,
			ReviewMarker: eligibility.DefaultReviewMarker,
			TitleFormat:  "Putzcrew KW %d",
			Policy:       PolicyConfig{Mode: PolicyEver},
		},
		Members: MemberSchema{
			TitleProperty:       "Name",
			AssignmentsRelation: "Putzplan",
			ExitDateProperty:    criteria.ExitDateProperty,
			OnboardingProperty:  criteria.OnboardingProperty,
			OnboardingDone:      criteria.OnboardingDone,
			CategoryProperty:    criteria.CategoryProperty,
			ExcludedCategories:  criteria.ExcludedCategories,
			IncludedCategories:  criteria.IncludedCategories,
		},
		Assignments: AssignmentSchema{
			TitleProperty:        "Woche",
			ParticipantsRelation: "Putzcrew",
			PeriodProperty:       "KW",
			CountProperty:        "Anzahl",
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// ./putzplan.yaml and ~/.putzplan/putzplan.yaml are tried in that order.
// A missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = lookupFile()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overlays environment variables onto target. Unset variables leave
// the current values alone.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func lookupFile() string {
	candidates := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".putzplan", FileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// DefaultDBPath returns the local database path used by the sqlite backend.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".putzplan", "putzplan.db"), nil
}

// Validate reports every setting the selected backend needs but lacks.
func (c *Config) Validate() error {
	var missing []string
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}

	switch c.Store.Backend {
	case BackendNotion:
		require(c.Notion.Token, "NOTION_TOKEN")
		require(c.Notion.MembersDataSource, "DS_A_ID")
		require(c.Notion.AssignmentsDataSource, "DS_B_ID")
		require(c.Notion.TemplateID, "PUTZPLAN_TEMPLATE_ID")
		require(c.Slack.Token, "SLACK_TOKEN")
		require(c.Slack.ChannelID, "SLACK_CHANNEL_ID")
	case BackendSQLite:
		if c.Slack.Token != "" {
			require(c.Slack.ChannelID, "SLACK_CHANNEL_ID")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", c.Store.Backend, BackendNotion, BackendSQLite)
	}
	require(c.Members.TitleProperty, "members.title_property")
	require(c.Members.ExitDateProperty, "members.exit_date_property")
	require(c.Members.OnboardingProperty, "members.onboarding_property")
	require(c.Members.OnboardingDone, "members.onboarding_done")
	require(c.Members.CategoryProperty, "members.category_property")
	if len(c.Members.IncludedCategories) == 0 {
		missing = append(missing, "members.included_categories")
	}
	require(c.Assignments.PeriodProperty, "assignments.period_property")
	require(c.Assignments.ParticipantsRelation, "assignments.participants_relation")

	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}

	if c.Lottery.TargetSize < 1 {
		return fmt.Errorf("lottery.target_size must be positive, got %d", c.Lottery.TargetSize)
	}
	switch c.Lottery.Policy.Mode {
	case PolicyEver:
	case PolicyWithin:
		if c.Lottery.Policy.Periods < 1 {
			return errors.New("lottery.policy.periods must be positive for mode within")
		}
	default:
		return fmt.Errorf("unknown lottery.policy.mode %q (want %s or %s)", c.Lottery.Policy.Mode, PolicyEver, PolicyWithin)
	}
	return nil
}

// Criteria returns the fixed member query in core form.
func (c *Config) Criteria() eligibility.MemberCriteria {
	return eligibility.MemberCriteria{
		ExitDateProperty:   c.Members.ExitDateProperty,
		OnboardingProperty: c.Members.OnboardingProperty,
		OnboardingDone:     c.Members.OnboardingDone,
		CategoryProperty:   c.Members.CategoryProperty,
		ExcludedCategories: c.Members.ExcludedCategories,
		IncludedCategories: c.Members.IncludedCategories,
	}
}

// Policy returns the configured assignment policy for the week starting at
// target.
func (c *Config) Policy(target time.Time) eligibility.Policy {
	if c.Lottery.Policy.Mode == PolicyWithin {
		return eligibility.AssignedWithin(c.Lottery.Policy.Periods, target)
	}
	return eligibility.EverAssigned()
}
