package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/evanw/esbuild/pkg/api"
)

// EntryAssets are the public URLs a page needs to load one entry point
type EntryAssets struct {
	Script  string
	Styles  []string
	Preload []string
}

// LoadScripts returns the entry script for the given entry point together with
// its stylesheet bundle and the chunks it statically imports
func (p *Pipeline) LoadScripts(entryPointPath string) (*EntryAssets, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.loadScripts(entryPointPath)
}

func (p *Pipeline) loadScripts(entryPointPath string) (*EntryAssets, error) {
	if p.metadata == nil {
		return nil, errors.New("assets not built yet, call Build() first")
	}

	entryPointPath = path.Clean(filepath.ToSlash(entryPointPath))

	for _, outputPath := range slices.Sorted(maps.Keys(p.metadata.Outputs)) {
		info := p.metadata.Outputs[outputPath]
		if info.EntryPoint != entryPointPath || !isScript(path.Ext(outputPath)) {
			continue
		}

		assets := &EntryAssets{Script: publicURL(p.config.Base, outputPath)}
		if info.CSSBundle != "" {
			assets.Styles = append(assets.Styles, publicURL(p.config.Base, info.CSSBundle))
		}

		visited := map[string]bool{outputPath: true}
		p.addDependencies(info, assets, visited)
		return assets, nil
	}

	return nil, fmt.Errorf("entrypoint %s not found in metadata", entryPointPath)
}

func (p *Pipeline) addDependencies(output OutputInfo, assets *EntryAssets, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.External || imp.Kind != "import-statement" || visited[imp.Path] {
			continue
		}
		visited[imp.Path] = true
		assets.Preload = append(assets.Preload, publicURL(p.config.Base, imp.Path))

		if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
			if chunkInfo.CSSBundle != "" {
				assets.Styles = append(assets.Styles, publicURL(p.config.Base, chunkInfo.CSSBundle))
			}
			p.addDependencies(chunkInfo, assets, visited)
		}
	}
}

// ManifestEntry maps an entry point to its emitted files, relative to the output directory
type ManifestEntry struct {
	File    string   `json:"file"`
	CSS     []string `json:"css,omitempty"`
	Imports []string `json:"imports,omitempty"`
}

// Manifest returns the emitted files for every entry point
func (p *Pipeline) Manifest() (map[string]ManifestEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.manifest()
}

func (p *Pipeline) manifest() (map[string]ManifestEntry, error) {
	if p.metadata == nil {
		return nil, errors.New("assets not built yet, call Build() first")
	}

	manifest := map[string]ManifestEntry{}
	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint == "" || !isScript(path.Ext(outputPath)) {
			continue
		}
		entry := ManifestEntry{File: outputPath}
		if info.CSSBundle != "" {
			entry.CSS = []string{info.CSSBundle}
		}
		for _, imp := range info.Imports {
			if !imp.External && imp.Kind == "import-statement" {
				entry.Imports = append(entry.Imports, imp.Path)
			}
		}
		manifest[info.EntryPoint] = entry
	}
	return manifest, nil
}

// writeArtifacts writes manifest.json and version.json when enabled
func (p *Pipeline) writeArtifacts(out string) error {
	if p.config.Manifest {
		manifest, err := p.manifest()
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(out, "manifest.json"), data, 0o644); err != nil { //nolint:gosec // build output is served publicly
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	if p.config.Versioned {
		data := []byte(`{"version":` + strconv.FormatInt(p.bctx.Timestamp, 10) + "}\n")
		if err := os.WriteFile(filepath.Join(out, "version.json"), data, 0o644); err != nil { //nolint:gosec // build output is served publicly
			return fmt.Errorf("failed to write version file: %w", err)
		}
	}

	return nil
}

// Analyze returns a human readable breakdown of the last build's bundle sizes
func (p *Pipeline) Analyze() (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metafile == "" {
		return "", errors.New("assets not built yet, call Build() first")
	}
	return api.AnalyzeMetafile(p.metafile, api.AnalyzeMetafileOptions{Verbose: true}), nil
}
