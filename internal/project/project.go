package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ranger/internal/assets"
	"github.com/wolfeidau/ranger/internal/compress"
	"github.com/wolfeidau/ranger/internal/config"
	"github.com/wolfeidau/ranger/internal/htmlinject"
	"github.com/wolfeidau/ranger/internal/policy"
	"github.com/wolfeidau/ranger/internal/report"
	"github.com/wolfeidau/ranger/internal/telemetry"
)

const (
	PageFile  = "index.html"
	StatsFile = "stats.txt"
)

// Result is a finished project build.
type Result struct {
	BuildID     string
	Files       []assets.OutputFile
	Compressed  []compress.File
	Diagnostics []assets.Diagnostic
	Duration    time.Duration
}

// Project runs the asset pipeline and everything that depends on its output:
// the page, compressed copies, bundle stats and the size report.
type Project struct {
	cfg      *config.Config
	pkg      *config.PackageInfo
	bctx     policy.BuildContext
	pipeline *assets.Pipeline
	logger   zerolog.Logger
	report   io.Writer
}

type Option func(*Project)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Project) {
		p.logger = logger
	}
}

// WithReport prints a size report to w after every successful build.
func WithReport(w io.Writer) Option {
	return func(p *Project) {
		p.report = w
	}
}

// New reads the package file and prepares the pipeline for one build context.
func New(cfg *config.Config, bctx policy.BuildContext, opts ...Option) (*Project, error) {
	pkg, err := config.ReadPackage(cfg.Path(cfg.PackageFile))
	if err != nil {
		return nil, err
	}

	p := &Project{
		cfg:    cfg,
		pkg:    pkg,
		bctx:   bctx,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.pipeline = assets.New(assets.FromProject(cfg, pkg), bctx, assets.WithLogger(p.logger))
	return p, nil
}

func (p *Project) Config() *config.Config {
	return p.cfg
}

func (p *Project) BuildContext() policy.BuildContext {
	return p.bctx
}

// OutDir is the absolute output directory.
func (p *Project) OutDir() (string, error) {
	return filepath.Abs(p.cfg.Path(p.cfg.OutDir))
}

// Build runs one build.
func (p *Project) Build(ctx context.Context) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "project.Build")
	defer span.End()

	started := time.Now()

	res, err := p.pipeline.Build(ctx)
	if err != nil {
		return toResult(res, started), err
	}
	return p.complete(ctx, res, started, "")
}

// Watch builds and rebuilds on change until ctx is done. When liveReload is
// set the page subscribes to that event stream.
func (p *Project) Watch(ctx context.Context, liveReload string, onRebuild func(*Result, error)) error {
	started := time.Now()
	return p.pipeline.Watch(ctx, func(res *assets.Result, err error) {
		var result *Result
		if err == nil {
			result, err = p.complete(ctx, res, started, liveReload)
		} else {
			result = toResult(res, started)
		}
		started = time.Now()
		if onRebuild != nil {
			onRebuild(result, err)
		}
	})
}

func (p *Project) complete(ctx context.Context, res *assets.Result, started time.Time, liveReload string) (*Result, error) {
	out, err := p.OutDir()
	if err != nil {
		return nil, err
	}

	page, err := p.RenderPage(liveReload)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(out, PageFile), page, 0o644); err != nil { //nolint:gosec // build output is served publicly
		return nil, fmt.Errorf("failed to write page: %w", err)
	}

	result := toResult(res, started)
	result.Files = append(result.Files, assets.OutputFile{Path: PageFile, Contents: page})

	flags := p.cfg.Flags()

	if flags.Visualize {
		stats, err := p.pipeline.Analyze()
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(filepath.Join(out, StatsFile), []byte(stats), 0o644); err != nil { //nolint:gosec // build output is served publicly
			return nil, fmt.Errorf("failed to write bundle stats: %w", err)
		}
	}

	if flags.Compress {
		verbose := p.cfg.Compression.Verbose == nil || *p.cfg.Compression.Verbose
		result.Compressed, err = compress.Compress(ctx, out, compress.Options{
			Algorithm:    p.cfg.Compression.Algorithm,
			Threshold:    p.cfg.Compression.Threshold,
			DeleteOrigin: p.cfg.Compression.DeleteOrigin,
			Verbose:      verbose,
			Logger:       p.logger,
		})
		if err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(started)

	if p.report != nil {
		entries := make([]report.Entry, 0, len(result.Files))
		for _, f := range result.Files {
			entries = append(entries, report.Entry{Path: f.Path, Contents: f.Contents})
		}
		if err := report.Write(p.report, entries, report.Options{
			GzipSize: p.cfg.Settings().ReportCompressedSize,
			Duration: result.Duration,
		}); err != nil {
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
	}

	return result, nil
}

// RenderPage renders the page template with tags for the last build.
func (p *Project) RenderPage(liveReload string) ([]byte, error) {
	page, err := os.ReadFile(p.cfg.Path(p.cfg.Template))
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	entry, err := p.pipeline.LoadScripts(p.cfg.Entry)
	if err != nil {
		return nil, err
	}

	sprite, err := htmlinject.SVGSprite(p.cfg.Path(p.cfg.SVGDir))
	if err != nil {
		return nil, err
	}

	var version string
	if p.cfg.Settings().Versioned {
		version = strconv.FormatInt(p.bctx.Timestamp, 10)
	}

	flags := p.cfg.Flags()
	opts := htmlinject.Options{
		HTMLID:     p.cfg.HTMLID,
		Script:     entry.Script,
		Classic:    p.cfg.MicroApp,
		Styles:     entry.Styles,
		Sprite:     sprite,
		Version:    version,
		LiveReload: liveReload,
		Data: htmlinject.Data{
			CdnPath: flags.CDNPath,
			APIPath: flags.APIURL,
			Mode:    p.bctx.Mode.String(),
			Version: version,
		},
	}
	if !p.cfg.MicroApp {
		opts.Preload = entry.Preload
	}

	return htmlinject.Render(page, opts)
}

func toResult(res *assets.Result, started time.Time) *Result {
	result := &Result{Duration: time.Since(started)}
	if res != nil {
		result.BuildID = res.BuildID
		result.Files = res.Files
		result.Diagnostics = res.Diagnostics
	}
	return result
}
