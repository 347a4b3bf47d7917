package assets

import (
	"path/filepath"

	"github.com/wolfeidau/ranger/internal/config"
)

type Config struct {
	// Project root, esbuild's working directory
	Root string
	// Entry point paths or glob patterns relative to Root (e.g., "src/main.tsx")
	EntryPoints []string
	// Output directory for built files, relative to Root
	OutputDir string
	// Public URL prefix for emitted files
	Base string
	// Whether to minify output
	Minify bool
	// Whether to enable source maps
	SourceMap bool
	// Whether to target older browsers
	Legacy bool
	// Micro apps are emitted as a single IIFE bundle with the classic JSX transform
	MicroApp   bool
	GlobalName string
	// Import source for the automatic JSX runtime
	JSXImportSource string
	// Comment prepended to every script
	Banner string
	// Prefixed env vars exposed to client code
	Env map[string]string
	// Mark console.info/warn/dir as pure and drop debugger statements
	DropConsole bool
	// Remove OutputDir before writing
	EmptyOutDir bool
	// Write manifest.json
	Manifest bool
	// Write version.json
	Versioned bool
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() Config {
	return Config{
		Root:            ".",
		EntryPoints:     []string{"src/main.tsx"},
		OutputDir:       "dist",
		Base:            "/",
		Minify:          true,
		SourceMap:       false,
		Legacy:          true,
		JSXImportSource: "@emotion/react",
		EmptyOutDir:     true,
	}
}

// FromProject derives the pipeline config from a project config.
func FromProject(cfg *config.Config, pkg *config.PackageInfo) Config {
	settings := cfg.Settings()

	c := Config{
		Root:            cfg.Root,
		EntryPoints:     []string{filepath.ToSlash(cfg.Entry)},
		OutputDir:       cfg.OutDir,
		Base:            cfg.Base,
		Minify:          settings.Minify,
		SourceMap:       settings.Sourcemap,
		Legacy:          cfg.LegacyEnabled(),
		MicroApp:        cfg.MicroApp,
		JSXImportSource: cfg.JSXImportSource,
		Banner:          pkg.Banner(),
		Env:             cfg.Env,
		DropConsole:     settings.DropConsole,
		EmptyOutDir:     settings.EmptyOutDir,
		Manifest:        settings.Manifest,
		Versioned:       settings.Versioned,
	}
	if pkg != nil {
		c.GlobalName = globalName(pkg.Name)
	}
	return c
}

// globalName turns a package name such as @acme/shop-ui into acme_shop_ui.
func globalName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '$':
			out = append(out, r)
		case r >= '0' && r <= '9':
			if len(out) == 0 {
				out = append(out, '_')
			}
			out = append(out, r)
		case r == '@':
		default:
			if len(out) > 0 {
				out = append(out, '_')
			}
		}
	}
	return string(out)
}
