package assets

import (
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/ranger/internal/policy"
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
	Bytes      int          `json:"bytes"`
}

type ImportInfo struct {
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	External bool   `json:"external"`
}

// OutputFile is an emitted file with its path relative to the output directory
type OutputFile struct {
	Path     string
	Contents []byte
}

// Result describes one finished build
type Result struct {
	BuildID string
	Files   []OutputFile
	// Diagnostics that were logged, after suppression
	Diagnostics []Diagnostic
}

// Pipeline manages the asset build process and script loading
type Pipeline struct {
	config   Config
	bctx     policy.BuildContext
	logger   zerolog.Logger
	metadata *BuildMetadata
	metafile string
	mu       sync.RWMutex
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger used for build output
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a new asset pipeline for one build context
func New(config Config, bctx policy.BuildContext, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: config,
		bctx:   bctx,
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildContext returns the context the pipeline was created with
func (p *Pipeline) BuildContext() policy.BuildContext {
	return p.bctx
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() Config {
	return p.config
}
