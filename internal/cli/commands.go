package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
	"github.com/j-veylop/sleep-insight-tui/internal/config"
	"github.com/j-veylop/sleep-insight-tui/internal/models"
	"github.com/j-veylop/sleep-insight-tui/internal/report"
	"github.com/j-veylop/sleep-insight-tui/internal/results"
	"github.com/j-veylop/sleep-insight-tui/internal/services"
	"github.com/j-veylop/sleep-insight-tui/internal/sleep"
	"github.com/j-veylop/sleep-insight-tui/internal/upload"
	"github.com/j-veylop/sleep-insight-tui/internal/version"
)

func mockFlag(dest *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "mock",
		Usage:       "Use the bundled sample data instead of the backend",
		Destination: dest,
	}
}

// source resolves the data source for a command. --mock wins, otherwise the
// configured RESULTS_SOURCE is used.
func (e *env) source(mock bool) config.Source {
	if mock || !e.cfg.UseBackend() {
		return config.SourceMock
	}
	return config.SourceBackend
}

func cmdUpload(e *env) *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a health export (.zip or .xml) to the backend",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, c *cli.Command) error {
			path := strings.TrimSpace(c.Args().First())
			if path == "" {
				return goerr.New("missing export file argument")
			}
			f, err := upload.Inspect(path)
			if err != nil {
				return goerr.Wrap(err, "cannot upload file", goerr.V("path", path))
			}

			return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
				ctxlog.From(ctx).Info("uploading export", "file", f.Name, "size", f.SizeString(), "backend", mgr.BackendURL())
				result, err := mgr.Upload(ctx, f.Path)
				if err != nil {
					return goerr.Wrap(err, api.Message(err))
				}

				fmt.Fprintln(e.stdout, upload.SuccessMessage)
				out, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return goerr.Wrap(err, "failed to encode upload result")
				}
				fmt.Fprintln(e.stdout, string(out))
				return nil
			})
		},
	}
}

func cmdSummary(e *env) *cli.Command {
	var mock bool
	return &cli.Command{
		Name:  "summary",
		Usage: "Print the sleep summary and score",
		Flags: []cli.Flag{mockFlag(&mock)},
		Action: func(ctx context.Context, c *cli.Command) error {
			return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
				ds, err := mgr.LoadDataset(ctx, e.source(mock))
				if err != nil {
					return goerr.Wrap(err, api.Message(err))
				}
				fmt.Fprintln(e.stdout, renderSummary(ds))
				return nil
			})
		},
	}
}

func cmdMetrics(e *env) *cli.Command {
	var (
		mock     bool
		category string
		page     int
		pageSize int
	)
	return &cli.Command{
		Name:  "metrics",
		Usage: "Print one page of metric records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "category",
				Aliases:     []string{"c"},
				Usage:       "Record category (activity, vitals, environment)",
				Value:       models.CategoryActivity.String(),
				Destination: &category,
			},
			&cli.IntFlag{
				Name:        "page",
				Aliases:     []string{"p"},
				Usage:       "Page number, starting at 1",
				Value:       1,
				Destination: &page,
			},
			&cli.IntFlag{
				Name:        "page-size",
				Aliases:     []string{"n"},
				Usage:       "Records per page (50, 100, 250 or 500)",
				Value:       results.DefaultPageSize,
				Destination: &pageSize,
			},
			mockFlag(&mock),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cat, err := models.ParseCategory(category)
			if err != nil {
				return goerr.Wrap(err, "invalid --category")
			}

			return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
				mp, err := fetchPage(ctx, mgr, e.source(mock), cat, page, pageSize)
				if err != nil {
					return err
				}
				fmt.Fprintln(e.stdout, renderPage(mp))
				return nil
			})
		},
	}
}

// fetchPage returns one page from the backend, or paginates the sample
// dataset locally.
func fetchPage(ctx context.Context, mgr *services.Manager, source config.Source, c models.Category, page, size int) (*models.MetricPage, error) {
	if source == config.SourceBackend {
		mp, err := mgr.FetchMetrics(ctx, c, page, size)
		if err != nil {
			return nil, goerr.Wrap(err, api.Message(err))
		}
		return mp, nil
	}

	ds, err := mgr.LoadDataset(ctx, config.SourceMock)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load sample data")
	}
	all := ds.Records(c)
	return &models.MetricPage{
		Records:  results.Paginate(all, page, size),
		Category: c,
		Page:     page,
		PageSize: size,
		Total:    len(all),
	}, nil
}

func cmdScore(e *env) *cli.Command {
	var mock bool
	return &cli.Command{
		Name:  "score",
		Usage: "Compute the sleep quality score and store it in the history",
		Flags: []cli.Flag{mockFlag(&mock)},
		Action: func(ctx context.Context, c *cli.Command) error {
			return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
				source := e.source(mock)
				ds, err := mgr.LoadDataset(ctx, source)
				if err != nil {
					return goerr.Wrap(err, api.Message(err))
				}
				if _, err := mgr.RecordScore(ctx, ds, source); err != nil {
					ctxlog.From(ctx).Warn("failed to record score", "error", err)
				}
				fmt.Fprintln(e.stdout, renderBreakdown(sleep.Compute(ds.Summary.Stats, ds.Summary.Trend)))
				return nil
			})
		},
	}
}

func cmdExport(e *env) *cli.Command {
	var mock, open bool
	var dir string
	return &cli.Command{
		Name:  "export",
		Usage: "Write the results charts to an HTML report",
		Flags: []cli.Flag{
			mockFlag(&mock),
			&cli.BoolFlag{
				Name:        "open",
				Usage:       "Open the report in the default browser",
				Destination: &open,
			},
			&cli.StringFlag{
				Name:        "dir",
				Usage:       "Output directory; defaults to EXPORT_DIR",
				Destination: &dir,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if dir == "" {
				dir = e.cfg.ExportDir
			}
			return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
				ds, err := mgr.LoadDataset(ctx, e.source(mock))
				if err != nil {
					return goerr.Wrap(err, api.Message(err))
				}
				path, err := report.Export(dir, ds, time.Now())
				if err != nil {
					return goerr.Wrap(err, "failed to export report", goerr.V("dir", dir))
				}
				fmt.Fprintln(e.stdout, path)

				if open {
					if err := report.Open(path); err != nil {
						return goerr.Wrap(err, "failed to open report", goerr.V("path", path))
					}
				}
				return nil
			})
		},
	}
}

func cmdConfig(e *env) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or change the backend URL",
		Commands: []*cli.Command{
			{
				Name:  "get-url",
				Usage: "Print the backend URL in use",
				Action: func(ctx context.Context, c *cli.Command) error {
					return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
						fmt.Fprintln(e.stdout, mgr.BackendURL())
						return nil
					})
				},
			},
			{
				Name:      "set-url",
				Usage:     "Save the backend URL; an empty value restores the default",
				ArgsUsage: "<url>",
				Action: func(ctx context.Context, c *cli.Command) error {
					url := strings.TrimSpace(c.Args().First())
					return e.withManager(ctx, func(ctx context.Context, mgr *services.Manager) error {
						if err := mgr.SetBackendURL(url); err != nil {
							return goerr.Wrap(err, "failed to save backend URL", goerr.V("url", url))
						}
						fmt.Fprintln(e.stdout, mgr.BackendURL())
						return nil
					})
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(ctx context.Context, c *cli.Command) error {
					fmt.Fprintln(e.stdout, renderConfig(e.cfg))
					return nil
				},
			},
		},
	}
}

func cmdVersion(e *env) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Action: func(ctx context.Context, c *cli.Command) error {
			fmt.Fprintln(e.stdout, version.Info())
			return nil
		},
	}
}
