package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/google/uuid"
	"github.com/wolfeidau/ranger/internal/policy"
	"github.com/wolfeidau/ranger/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var (
	envIdentifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

	assetLoaders = map[string]api.Loader{
		".png":   api.LoaderFile,
		".jpg":   api.LoaderFile,
		".jpeg":  api.LoaderFile,
		".gif":   api.LoaderFile,
		".svg":   api.LoaderFile,
		".webp":  api.LoaderFile,
		".ico":   api.LoaderFile,
		".woff":  api.LoaderFile,
		".woff2": api.LoaderFile,
		".ttf":   api.LoaderFile,
		".eot":   api.LoaderFile,
	}

	// Noisy console calls removed from production bundles when unused
	pureConsoleCalls = []string{"console.info", "console.warn", "console.dir"}
)

// Build runs esbuild with the configured settings, relocates the output and
// writes it to the output directory
func (p *Pipeline) Build(ctx context.Context) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "assets.Build")
	defer span.End()

	started := time.Now()

	opts, err := p.buildOptions()
	if err != nil {
		return nil, err
	}

	p.logger.Info().Strs("entrypoints", opts.EntryPoints).Str("mode", p.bctx.Mode.String()).Msg("Building assets")

	result := api.Build(opts)

	res, err := p.finish(ctx, &result, started)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}

// Watch builds once and then rebuilds on every change until ctx is done.
// onRebuild is called after each build, including failed ones.
func (p *Pipeline) Watch(ctx context.Context, onRebuild func(*Result, error)) error {
	opts, err := p.buildOptions()
	if err != nil {
		return err
	}

	var started time.Time
	opts.Plugins = append(opts.Plugins, api.Plugin{
		Name: "ranger-output",
		Setup: func(build api.PluginBuild) {
			build.OnStart(func() (api.OnStartResult, error) {
				started = time.Now()
				return api.OnStartResult{}, nil
			})
			build.OnEnd(func(result *api.BuildResult) (api.OnEndResult, error) {
				res, err := p.finish(ctx, result, started)
				if onRebuild != nil {
					onRebuild(res, err)
				}
				return api.OnEndResult{}, nil
			})
		},
	})

	buildCtx, ctxErr := api.Context(opts)
	if ctxErr != nil {
		msgs := make([]string, 0, len(ctxErr.Errors))
		for _, msg := range ctxErr.Errors {
			msgs = append(msgs, msg.Text)
		}
		return fmt.Errorf("failed to create build context: %s", strings.Join(msgs, "; "))
	}
	defer buildCtx.Dispose()

	if err := buildCtx.Watch(api.WatchOptions{}); err != nil {
		return fmt.Errorf("failed to watch: %w", err)
	}

	p.logger.Info().Strs("entrypoints", opts.EntryPoints).Msg("Watching assets")

	<-ctx.Done()
	return nil
}

func (p *Pipeline) paths() (root, out string, err error) {
	root, err = filepath.Abs(p.config.Root)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve root: %w", err)
	}
	out = p.config.OutputDir
	if !filepath.IsAbs(out) {
		out = filepath.Join(root, out)
	}
	return root, out, nil
}

func (p *Pipeline) entryPoints(root string) ([]string, error) {
	var entryPoints []string
	for _, entry := range p.config.EntryPoints {
		if !strings.ContainsAny(entry, "*?[") {
			entryPoints = append(entryPoints, entry)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(root, entry))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			rel, err := filepath.Rel(root, match)
			if err != nil {
				return nil, err
			}
			entryPoints = append(entryPoints, filepath.ToSlash(rel))
		}
	}

	if len(entryPoints) == 0 {
		return nil, errors.New("no entry points found")
	}
	return entryPoints, nil
}

func (p *Pipeline) buildOptions() (api.BuildOptions, error) {
	root, out, err := p.paths()
	if err != nil {
		return api.BuildOptions{}, err
	}

	entryPoints, err := p.entryPoints(root)
	if err != nil {
		return api.BuildOptions{}, err
	}

	scriptNames := strings.TrimSuffix(policy.RouteScript(p.bctx), ".js")

	opts := api.BuildOptions{
		AbsWorkingDir:     root,
		EntryPoints:       entryPoints,
		Bundle:            true,
		Splitting:         !p.config.MicroApp,
		Write:             false,
		Platform:          api.PlatformBrowser,
		Format:            cond(p.config.MicroApp, api.FormatIIFE, api.FormatESModule),
		JSX:               cond(p.config.MicroApp, api.JSXTransform, api.JSXAutomatic),
		Outdir:            out,
		EntryNames:        scriptNames,
		ChunkNames:        scriptNames,
		AssetNames:        "[name]-[hash]",
		PublicPath:        p.config.Base,
		Target:            cond(p.config.Legacy, api.ES2015, api.ESNext),
		MinifyWhitespace:  p.config.Minify,
		MinifyIdentifiers: p.config.Minify,
		MinifySyntax:      p.config.Minify,
		TreeShaking:       api.TreeShakingTrue,
		Sourcemap:         cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:          true,
		Loader:            assetLoaders,
		Define:            p.defines(),
		LogLevel:          api.LogLevelSilent,
	}

	if !p.config.MicroApp {
		opts.JSXImportSource = p.config.JSXImportSource
	} else if p.config.GlobalName != "" {
		opts.GlobalName = p.config.GlobalName
	}

	if p.config.Banner != "" {
		opts.Banner = map[string]string{"js": p.config.Banner}
	}

	if p.config.DropConsole {
		opts.Pure = pureConsoleCalls
		opts.Drop = api.DropDebugger
	}

	return opts, nil
}

// defines exposes the build mode and prefixed env vars to client code
func (p *Pipeline) defines() map[string]string {
	prod := p.bctx.Mode.IsProduction()
	nodeEnv := cond(prod, "production", "development")

	defines := map[string]string{
		"import.meta.env.MODE": jsonString(p.bctx.Mode.String()),
		"import.meta.env.PROD": strconv.FormatBool(prod),
		"import.meta.env.DEV":  strconv.FormatBool(!prod),
		"process.env.NODE_ENV": jsonString(nodeEnv),
	}

	for k, v := range p.config.Env {
		if !envIdentifier.MatchString(k) {
			continue
		}
		defines["import.meta.env."+k] = jsonString(v)
		defines["process.env."+k] = jsonString(v)
	}

	return defines
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// finish applies the output policy to a raw esbuild result and writes it
func (p *Pipeline) finish(ctx context.Context, result *api.BuildResult, started time.Time) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m := telemetry.GetMetrics()
	m.BuildsTotal.Add(ctx, 1)

	res := &Result{BuildID: uuid.NewString()}
	logger := p.logger.With().Str("build_id", res.BuildID).Logger()

	kept, err := report(ctx, logger, classify(result.Warnings, result.Errors), len(result.Errors) > 0)
	res.Diagnostics = kept
	if err != nil {
		m.BuildFailuresTotal.Add(ctx, 1)
		return res, err
	}

	root, out, err := p.paths()
	if err != nil {
		return res, err
	}

	files := make([]OutputFile, 0, len(result.OutputFiles))
	for _, f := range result.OutputFiles {
		rel, err := filepath.Rel(out, f.Path)
		if err != nil {
			return res, fmt.Errorf("output outside of %s: %w", out, err)
		}
		files = append(files, OutputFile{Path: filepath.ToSlash(rel), Contents: f.Contents})
	}

	files, moves := relocate(files, p.bctx, p.config.Base)
	for from := range moves {
		if filepath.Ext(from) == ".map" {
			continue
		}
		kind := policy.AssetCandidate{Name: from}.Kind()
		m.AssetsRoutedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	}

	if err := p.write(root, out, files); err != nil {
		m.BuildFailuresTotal.Add(ctx, 1)
		return res, err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return res, fmt.Errorf("failed to parse metafile: %w", err)
	}
	p.metadata = normalizeMetadata(&metadata, root, out, moves)

	p.metafile, err = relocateMetafile(result.Metafile, root, out, moves, files)
	if err != nil {
		return res, err
	}

	if err := p.writeArtifacts(out); err != nil {
		return res, err
	}

	for _, file := range files {
		logger.Debug().Str("file", file.Path).Int("bytes", len(file.Contents)).Msg("Built file")
	}

	res.Files = files
	m.BuildDuration.Record(ctx, float64(time.Since(started).Milliseconds()))

	logger.Info().Int("files", len(files)).Dur("duration", time.Since(started)).Msg("Build complete")
	return res, nil
}

func (p *Pipeline) write(root, out string, files []OutputFile) error {
	if p.config.EmptyOutDir {
		if rel, err := filepath.Rel(out, root); err == nil && !strings.HasPrefix(rel, "..") {
			return fmt.Errorf("refusing to empty %s: it contains the project root", out)
		}
		if err := os.RemoveAll(out); err != nil {
			return fmt.Errorf("failed to empty output directory: %w", err)
		}
	}

	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, f := range files {
		dst := filepath.Join(out, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, f.Contents, 0o644); err != nil { //nolint:gosec // build output is served publicly
			return err
		}
	}
	return nil
}

// normalizeMetadata rewrites metafile paths to be relative to the output
// directory and to point at relocated files.
func normalizeMetadata(metadata *BuildMetadata, root, out string, moves map[string]string) *BuildMetadata {
	rel := func(p string) string {
		if p == "" {
			return ""
		}
		r, err := filepath.Rel(out, filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return p
		}
		r = filepath.ToSlash(r)
		if to, ok := moves[r]; ok {
			return to
		}
		return r
	}

	normalized := &BuildMetadata{Outputs: make(map[string]OutputInfo, len(metadata.Outputs))}
	for key, info := range metadata.Outputs {
		info.CSSBundle = rel(info.CSSBundle)
		imports := make([]ImportInfo, 0, len(info.Imports))
		for _, imp := range info.Imports {
			if !imp.External {
				imp.Path = rel(imp.Path)
			}
			imports = append(imports, imp)
		}
		info.Imports = imports
		normalized.Outputs[rel(key)] = info
	}
	return normalized
}

// relocateMetafile renames the outputs of an esbuild metafile to the paths they
// were written to and records their written sizes, so bundle analysis reports
// the routed names. Keys stay relative to the project root as esbuild emits them.
func relocateMetafile(metafile, root, out string, moves map[string]string, files []OutputFile) (string, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(metafile), &doc); err != nil {
		return "", fmt.Errorf("failed to parse metafile: %w", err)
	}

	var outputs map[string]map[string]any
	if raw, ok := doc["outputs"]; ok {
		if err := json.Unmarshal(raw, &outputs); err != nil {
			return "", fmt.Errorf("failed to parse metafile outputs: %w", err)
		}
	}

	sizes := make(map[string]int, len(files))
	for _, f := range files {
		sizes[f.Path] = len(f.Contents)
	}

	// move returns the root relative and output relative locations of p
	move := func(p string) (string, string) {
		r, err := filepath.Rel(out, filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return p, ""
		}
		outRel := filepath.ToSlash(r)
		to, ok := moves[outRel]
		if !ok {
			return p, outRel
		}
		moved, err := filepath.Rel(root, filepath.Join(out, filepath.FromSlash(to)))
		if err != nil {
			return p, outRel
		}
		return filepath.ToSlash(moved), to
	}

	relocated := make(map[string]map[string]any, len(outputs))
	for key, info := range outputs {
		if bundle, ok := info["cssBundle"].(string); ok && bundle != "" {
			info["cssBundle"], _ = move(bundle)
		}
		if imports, ok := info["imports"].([]any); ok {
			for _, imp := range imports {
				entry, ok := imp.(map[string]any)
				if !ok {
					continue
				}
				if external, _ := entry["external"].(bool); external {
					continue
				}
				if p, ok := entry["path"].(string); ok {
					entry["path"], _ = move(p)
				}
			}
		}

		newKey, outRel := move(key)
		if n, ok := sizes[outRel]; ok {
			info["bytes"] = n
		}
		relocated[newKey] = info
	}

	raw, err := json.Marshal(relocated)
	if err != nil {
		return "", fmt.Errorf("failed to encode metafile outputs: %w", err)
	}
	doc["outputs"] = raw

	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode metafile: %w", err)
	}
	return string(b), nil
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
