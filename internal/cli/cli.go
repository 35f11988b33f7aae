// Package cli wires the command line: the TUI as the default action and
// headless subcommands for scripting.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/logger"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
	"github.com/j-veylop/sleep-insight-tui/internal/version"
)

// env carries what the Before hook prepares for every command.
type env struct {
	cfg    *config.Config
	stdout io.Writer
}

// Run runs the CLI application.
func Run(ctx context.Context, args []string) error {
	if err := newApp(os.Stdout, os.Stderr).Run(ctx, args); err != nil {
		logger.Error("command failed", "error", err)
		return goerr.Wrap(err, "CLI execution failed")
	}
	return nil
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	e := &env{stdout: stdout}
	var logLevel, logFormat string

	return &cli.Command{
		Name:      "sit",
		Usage:     "Sleep health insight: upload exports and explore sleep metrics",
		Version:   version.GetVersion(),
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Log level (debug, info, warn, error); defaults to LOG_LEVEL",
				Category:    "Logging",
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Console log format (console, json, auto)",
				Category:    "Logging",
				Value:       "auto",
				Sources:     cli.EnvVars("LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			cfg, err := config.Load()
			if err != nil {
				return ctx, goerr.Wrap(err, "failed to load configuration")
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			e.cfg = cfg

			format, err := logger.ParseFormat(logFormat)
			if err != nil {
				return ctx, goerr.Wrap(err, "invalid --log-format", goerr.V("format", logFormat))
			}
			logger.Set(logger.New(logger.ParseLevel(cfg.LogLevel), stderr, format))
			return logger.WithContext(ctx), nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runTUI(ctx, e.cfg)
		},
		Commands: []*cli.Command{
			cmdUpload(e),
			cmdSummary(e),
			cmdMetrics(e),
			cmdScore(e),
			cmdExport(e),
			cmdConfig(e),
			cmdVersion(e),
		},
	}
}

// manager opens the service manager for a headless command.
func (e *env) manager() (*services.Manager, error) {
	mgr, err := services.NewManager(e.cfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize services")
	}
	return mgr, nil
}

// withManager runs fn with a service manager that is closed afterwards.
func (e *env) withManager(ctx context.Context, fn func(ctx context.Context, mgr *services.Manager) error) error {
	mgr, err := e.manager()
	if err != nil {
		return err
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			ctxlog.From(ctx).Warn("failed to close services", "error", err)
		}
	}()
	return fn(ctx, mgr)
}
