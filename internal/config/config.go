// Package config provides hierarchical configuration loading for workflow-notify.
// Precedence: defaults < YAML file < environment variables.
package config

import (
	"time"

	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
)

// Config holds all runtime configuration for workflow-notify.
type Config struct {
	GitHub    GitHub    `yaml:"github"`
	Ignore    Ignore    `yaml:"ignore"`
	Notify    Notify    `yaml:"notify"`
	Slack     Slack     `yaml:"slack"`
	Discord   Discord   `yaml:"discord"`
	NATS      NATS      `yaml:"nats"`
	Server    Server    `yaml:"server"`
	Cache     Cache     `yaml:"cache"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// GitHub holds the CI provider connection and the run being reported.
// Repository, RunID and Workflow are normally taken from the Actions runtime.
type GitHub struct {
	APIURL     string        `yaml:"api_url"`
	Token      string        `yaml:"token"`
	Timeout    time.Duration `yaml:"timeout"`
	Repository string        `yaml:"repository"` // owner/repo
	RunID      int64         `yaml:"run_id"`
	Workflow   string        `yaml:"workflow"` // workflow name
}

// Ignore lists the job and step names left out of notifications.
type Ignore struct {
	Jobs  []string `yaml:"jobs"`
	Steps []string `yaml:"steps"`
}

// Notify controls which runs produce a notification.
type Notify struct {
	Text   string   `yaml:"text"`   // fallback text for clients without block support
	Levels []string `yaml:"levels"` // "success", "error", "warning", "info"; empty = all
}

// Slack holds incoming-webhook and bot-token delivery settings.
// Each sink is enabled by its credential.
type Slack struct {
	WebhookURL string `yaml:"webhook_url"`
	BotToken   string `yaml:"bot_token"`
	ChannelID  string `yaml:"channel_id"`
	APIURL     string `yaml:"api_url"`
}

// Discord holds Discord webhook delivery settings.
type Discord struct {
	WebhookURL string `yaml:"webhook_url"`
}

// NATS holds JetStream publishing settings. An empty URL disables the sink.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Server holds settings for the webhook receiver started by `serve`.
type Server struct {
	Port            string        `yaml:"port"`
	WebhookSecret   string        `yaml:"webhook_secret"`
	ReportTimeout   time.Duration `yaml:"report_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Cache holds the in-process cache used by the webhook receiver.
type Cache struct {
	WorkflowTTL  time.Duration `yaml:"workflow_ttl"` // 0 disables caching
	MaxCostBytes int64         `yaml:"max_cost_bytes"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Format  string `yaml:"format"` // "json", "text" or "auto"
}

// Telemetry holds OTLP exporter configuration. An empty endpoint disables export.
type Telemetry struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		GitHub: GitHub{
			APIURL:  "https://api.github.com",
			Timeout: 30 * time.Second,
		},
		Notify: Notify{
			Text: "Workflow status",
		},
		Slack: Slack{
			APIURL: "https://slack.com/api",
		},
		NATS: NATS{
			Subject: "workflow.reports",
		},
		Server: Server{
			Port:            "8080",
			ReportTimeout:   2 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
		},
		Cache: Cache{
			WorkflowTTL:  10 * time.Minute,
			MaxCostBytes: 8 << 20,
		},
		Logging: Logging{
			Level:   "info",
			Service: "workflow-notify",
			Format:  "json",
		},
	}
}

// IgnoreRules converts the configured name lists into workflow.IgnoreRules.
func (c *Config) IgnoreRules() workflow.IgnoreRules {
	return workflow.NewIgnoreRules(c.Ignore.Jobs, c.Ignore.Steps)
}
