package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfhttp "github.com/Strob0t/workflow-notify/internal/adapter/http"
	"github.com/Strob0t/workflow-notify/internal/port/ciprovider"
)

// runReport reports the workflow run described by the Actions environment.
func runReport(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.cfg.ValidateRun(); err != nil {
		return err
	}
	ref, err := ciprovider.NewRunRef(app.cfg.GitHub.Repository, app.cfg.GitHub.RunID, app.cfg.GitHub.Workflow)
	if err != nil {
		return err
	}

	return app.report(ctx, ref)
}

// runPreview prints the blocks for a run to stdout without delivering them.
func runPreview(args []string) error {
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	repo := fs.String("repo", "", "repository as owner/repo (default $GITHUB_REPOSITORY)")
	runID := fs.Int64("run-id", 0, "workflow run ID (default $GITHUB_RUN_ID)")
	workflowName := fs.String("workflow", "", "workflow name (default $GITHUB_WORKFLOW)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	gh := &app.cfg.GitHub
	if *repo != "" {
		gh.Repository = *repo
	}
	if *runID != 0 {
		gh.RunID = *runID
	}
	if *workflowName != "" {
		gh.Workflow = *workflowName
	}
	if err := app.cfg.ValidateRun(); err != nil {
		return err
	}
	ref, err := ciprovider.NewRunRef(gh.Repository, gh.RunID, gh.Workflow)
	if err != nil {
		return err
	}

	report, err := app.reportService(false, false)
	if err != nil {
		return err
	}
	n, err := report.Compose(ctx, ref)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"text":   n.Text,
		"blocks": n.Blocks,
	})
}

// runServe starts the webhook receiver and blocks until SIGINT/SIGTERM.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	port := fs.String("port", "", "listen port (default $WORKFLOW_NOTIFY_PORT or 8080)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	app, err := bootstrap(ctx, *configPath)
	if err != nil {
		return err
	}
	defer app.Close()

	if *port != "" {
		app.cfg.Server.Port = *port
	}
	if app.cfg.GitHub.Token == "" {
		return errors.New("github token is required")
	}
	if app.cfg.Server.WebhookSecret == "" {
		slog.Warn("webhook secret not configured, deliveries will be rejected")
	}

	report, err := app.reportService(true, true)
	if err != nil {
		return err
	}

	handlers := &cfhttp.Handlers{
		Reporter:      report,
		ReportTimeout: app.cfg.Server.ReportTimeout,
	}
	r := cfhttp.NewRouter(handlers, app.cfg.Server.WebhookSecret, serviceName)

	addr := ":" + app.cfg.Server.Port

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-done:
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	handlers.Wait()
	return nil
}
