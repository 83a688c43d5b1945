package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Strob0t/workflow-notify/internal/domain/workflow"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "workflow-notify.yaml"

// ConfigFileEnv overrides DefaultConfigFile.
const ConfigFileEnv = "WORKFLOW_NOTIFY_CONFIG"

// ErrOutsideWorkflowRun is returned by ValidateRun when no run is identified.
var ErrOutsideWorkflowRun = errors.New("triggered outside of a workflow run")

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	path := DefaultConfigFile
	if v := os.Getenv(ConfigFileEnv); v != "" {
		path = v
	}
	return LoadFrom(path)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config. Action inputs
// (INPUT_*) take precedence over the generic variables they shadow.
func loadEnv(cfg *Config) {
	// GitHub Actions runtime
	setString(&cfg.GitHub.APIURL, "GITHUB_API_URL")
	setString(&cfg.GitHub.Repository, "GITHUB_REPOSITORY")
	setInt64(&cfg.GitHub.RunID, "GITHUB_RUN_ID")
	setString(&cfg.GitHub.Workflow, "GITHUB_WORKFLOW")
	setString(&cfg.GitHub.Token, "GITHUB_TOKEN")
	setDuration(&cfg.GitHub.Timeout, "WORKFLOW_NOTIFY_HTTP_TIMEOUT")

	// Action inputs
	setString(&cfg.GitHub.Token, "INPUT_GITHUB-TOKEN")
	setList(&cfg.Ignore.Jobs, "INPUT_IGNORE-JOBS")
	setList(&cfg.Ignore.Steps, "INPUT_IGNORE-STEPS")
	setString(&cfg.Slack.ChannelID, "INPUT_CHANNEL-ID")

	// Sinks
	setString(&cfg.Slack.WebhookURL, "SLACK_WEBHOOK_URL")
	setString(&cfg.Slack.BotToken, "SLACK_BOT_TOKEN")
	setString(&cfg.Slack.APIURL, "SLACK_API_URL")
	setString(&cfg.Discord.WebhookURL, "DISCORD_WEBHOOK_URL")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.Subject, "WORKFLOW_NOTIFY_NATS_SUBJECT")
	setString(&cfg.Notify.Text, "WORKFLOW_NOTIFY_TEXT")
	setList(&cfg.Notify.Levels, "WORKFLOW_NOTIFY_LEVELS")

	// Server
	setString(&cfg.Server.Port, "WORKFLOW_NOTIFY_PORT")
	setString(&cfg.Server.WebhookSecret, "WORKFLOW_NOTIFY_WEBHOOK_SECRET")
	setDuration(&cfg.Server.ReportTimeout, "WORKFLOW_NOTIFY_REPORT_TIMEOUT")
	setDuration(&cfg.Server.ShutdownTimeout, "WORKFLOW_NOTIFY_SHUTDOWN_TIMEOUT")

	// Cache
	setDuration(&cfg.Cache.WorkflowTTL, "WORKFLOW_NOTIFY_CACHE_TTL")
	setInt64(&cfg.Cache.MaxCostBytes, "WORKFLOW_NOTIFY_CACHE_MAX_BYTES")

	// Logging
	setString(&cfg.Logging.Level, "WORKFLOW_NOTIFY_LOG_LEVEL")
	setString(&cfg.Logging.Service, "WORKFLOW_NOTIFY_LOG_SERVICE")
	setString(&cfg.Logging.Format, "WORKFLOW_NOTIFY_LOG_FORMAT")

	// Telemetry
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setBool(&cfg.Telemetry.Insecure, "OTEL_EXPORTER_OTLP_INSECURE")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.GitHub.APIURL == "" {
		return errors.New("github.api_url is required")
	}
	if cfg.GitHub.Timeout <= 0 {
		return errors.New("github.timeout must be > 0")
	}
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Cache.WorkflowTTL > 0 && cfg.Cache.MaxCostBytes <= 0 {
		return errors.New("cache.max_cost_bytes must be > 0 when caching is enabled")
	}
	switch cfg.Logging.Format {
	case "json", "text", "auto":
	default:
		return fmt.Errorf("logging.format %q must be json, text or auto", cfg.Logging.Format)
	}
	return nil
}

// ValidateRun checks the settings needed to report the current workflow run.
func (c *Config) ValidateRun() error {
	if c.GitHub.RunID <= 0 || c.GitHub.Workflow == "" {
		return ErrOutsideWorkflowRun
	}
	if c.GitHub.Repository == "" {
		return errors.New("github.repository is required")
	}
	if c.GitHub.Token == "" {
		return errors.New("github token is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		*dst = workflow.SplitList(v)
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
