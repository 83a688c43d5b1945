package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cfotel "github.com/Strob0t/workflow-notify/internal/adapter/otel"
	"github.com/Strob0t/workflow-notify/internal/adapter/ristretto"
	"github.com/Strob0t/workflow-notify/internal/config"
	"github.com/Strob0t/workflow-notify/internal/logger"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
	"github.com/Strob0t/workflow-notify/internal/port/notifier"
	"github.com/Strob0t/workflow-notify/internal/service"
)

// app bundles the loaded configuration and process-wide telemetry.
type app struct {
	cfg      *config.Config
	metrics  *cfotel.Metrics
	shutdown cfotel.ShutdownFunc
	cache    *ristretto.Cache
	notify   *service.NotificationService
	// sinkErr holds construction failures of sinks that were skipped while
	// the remaining ones still deliver.
	sinkErr error
}

// bootstrap loads configuration, installs the default logger and starts
// telemetry export.
func bootstrap(ctx context.Context, configPath string) (*app, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	slog.SetDefault(logger.New(cfg.Logging))
	slog.Debug("config loaded",
		"repository", cfg.GitHub.Repository,
		"run_id", cfg.GitHub.RunID,
		"ignored_jobs", len(cfg.Ignore.Jobs),
		"ignored_steps", len(cfg.Ignore.Steps),
	)

	shutdown, err := cfotel.Setup(ctx, cfg.Telemetry, cfg.Logging.Service)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	metrics, err := cfotel.NewMetrics()
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("metrics: %w", err)
	}

	return &app{cfg: cfg, metrics: metrics, shutdown: shutdown}, nil
}

// Close closes notifiers, releases the cache and flushes telemetry.
func (a *app) Close() {
	if a.notify != nil {
		if err := a.notify.Close(); err != nil {
			slog.Warn("notifier close failed", "error", err)
		}
	}
	if a.cache != nil {
		a.cache.Close()
	}
	if err := a.shutdown(context.Background()); err != nil {
		slog.Warn("telemetry shutdown failed", "error", err)
	}
}

// reportService wires the CI provider and, when deliver is set, the
// configured notifiers. Long-running callers set cacheWorkflows to keep
// workflow lookups in memory between reports.
func (a *app) reportService(deliver, cacheWorkflows bool) (*service.ReportService, error) {
	var provider ciprovider.Provider
	provider, err := ciprovider.New("github", providerConfig(a.cfg))
	if err != nil {
		return nil, fmt.Errorf("ci provider: %w", err)
	}

	if cacheWorkflows && a.cfg.Cache.WorkflowTTL > 0 {
		a.cache, err = ristretto.New(a.cfg.Cache.MaxCostBytes)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		provider = service.NewCachedProvider(provider, a.cache, a.cfg.Cache.WorkflowTTL)
	}

	var notifiers []notifier.Notifier
	if deliver {
		notifiers, a.sinkErr = buildNotifiers(a.cfg)
		if len(notifiers) == 0 {
			if a.sinkErr != nil {
				return nil, a.sinkErr
			}
			return nil, service.ErrNoNotifiers
		}
		if a.sinkErr != nil {
			slog.Warn("skipping misconfigured notifiers", "error", a.sinkErr, "remaining", len(notifiers))
		}
	}

	notify := service.NewNotificationService(notifiers, a.cfg.Notify.Levels)
	notify.SetMetrics(a.metrics)
	a.notify = notify

	report := service.NewReportService(provider, notify, a.cfg.IgnoreRules(), a.cfg.Notify.Text)
	report.SetMetrics(a.metrics)
	return report, nil
}

func providerConfig(cfg *config.Config) map[string]string {
	return map[string]string{
		"api_url": cfg.GitHub.APIURL,
		"token":   cfg.GitHub.Token,
		"timeout": cfg.GitHub.Timeout.String(),
	}
}

// notifierConfigs returns the registry configuration of every sink whose
// credential is set, keyed by notifier name.
func notifierConfigs(cfg *config.Config) map[string]map[string]string {
	configs := make(map[string]map[string]string)
	if cfg.Slack.WebhookURL != "" {
		configs["slack-webhook"] = map[string]string{
			"webhook_url": cfg.Slack.WebhookURL,
		}
	}
	if cfg.Slack.BotToken != "" {
		configs["slack-bot"] = map[string]string{
			"api_url": cfg.Slack.APIURL,
			"token":   cfg.Slack.BotToken,
			"channel": cfg.Slack.ChannelID,
		}
	}
	if cfg.Discord.WebhookURL != "" {
		configs["discord"] = map[string]string{
			"webhook_url": cfg.Discord.WebhookURL,
		}
	}
	if cfg.NATS.URL != "" {
		configs["nats"] = map[string]string{
			"url":     cfg.NATS.URL,
			"subject": cfg.NATS.Subject,
		}
	}
	return configs
}

// report delivers the notification for ref to every sink that could be
// built. Sinks skipped for bad configuration still fail the call once the
// others have been served.
func (a *app) report(ctx context.Context, ref ciprovider.RunRef) error {
	report, err := a.reportService(true, false)
	if err != nil {
		return err
	}
	return errors.Join(report.Report(ctx, ref), a.sinkErr)
}

// buildNotifiers creates the enabled notifiers in registry order. A sink
// that fails to build is left out and its error joined into the result, so
// callers receive both the usable notifiers and the failures.
func buildNotifiers(cfg *config.Config) ([]notifier.Notifier, error) {
	configs := notifierConfigs(cfg)

	var (
		notifiers []notifier.Notifier
		errs      []error
	)
	for _, name := range notifier.Available() {
		c, ok := configs[name]
		if !ok {
			continue
		}
		n, err := notifier.New(name, c)
		if err != nil {
			errs = append(errs, fmt.Errorf("notifier %s: %w", name, err))
			continue
		}
		notifiers = append(notifiers, n)
	}

	slog.Debug("notifiers configured", "count", len(notifiers), "failed", len(errs))
	return notifiers, errors.Join(errs...)
}
