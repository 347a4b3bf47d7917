package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wolfeidau/ranger/internal/policy"
)

var (
	// ErrMissingEntry indicates no script entry point was configured
	ErrMissingEntry = errors.New("entry is required")
	// ErrInvalidPort indicates the dev server port is out of range
	ErrInvalidPort = errors.New("port must be between 1 and 65535")
	// ErrMissingTLS indicates https was requested without a certificate and key
	ErrMissingTLS = errors.New("https requires cert and key")
)

// ProxyRule forwards dev server requests matching a path prefix to Target.
type ProxyRule struct {
	Target       string `yaml:"target" json:"target" toml:"target"`
	ChangeOrigin bool   `yaml:"changeOrigin" json:"changeOrigin" toml:"changeOrigin"`
	Secure       bool   `yaml:"secure" json:"secure" toml:"secure"`
	// RewriteFrom is a regular expression applied to the request path, replaced with RewriteTo.
	RewriteFrom string `yaml:"rewriteFrom" json:"rewriteFrom" toml:"rewriteFrom"`
	RewriteTo   string `yaml:"rewriteTo" json:"rewriteTo" toml:"rewriteTo"`
}

// BuildOverrides replace the mode derived build settings when set.
type BuildOverrides struct {
	Minify               *bool `yaml:"minify" json:"minify" toml:"minify"`
	Sourcemap            *bool `yaml:"sourcemap" json:"sourcemap" toml:"sourcemap"`
	ReportCompressedSize *bool `yaml:"reportCompressedSize" json:"reportCompressedSize" toml:"reportCompressedSize"`
	EmptyOutDir          *bool `yaml:"emptyOutDir" json:"emptyOutDir" toml:"emptyOutDir"`
	Manifest             bool  `yaml:"manifest" json:"manifest" toml:"manifest"`
}

// Compression controls pre-compressed copies of large output files.
type Compression struct {
	Algorithm    string `yaml:"algorithm" json:"algorithm" toml:"algorithm"`
	Threshold    int64  `yaml:"threshold" json:"threshold" toml:"threshold"`
	DeleteOrigin bool   `yaml:"deleteOrigin" json:"deleteOrigin" toml:"deleteOrigin"`
	Verbose      *bool  `yaml:"verbose" json:"verbose" toml:"verbose"`
}

// Config describes one frontend project build.
type Config struct {
	Root            string               `yaml:"root" json:"root" toml:"root"`
	Entry           string               `yaml:"entry" json:"entry" toml:"entry"`
	Template        string               `yaml:"template" json:"template" toml:"template"`
	Mode            string               `yaml:"mode" json:"mode" toml:"mode"`
	HTTPS           bool                 `yaml:"https" json:"https" toml:"https"`
	Cert            string               `yaml:"cert" json:"cert" toml:"cert"`
	Key             string               `yaml:"key" json:"key" toml:"key"`
	Host            string               `yaml:"host" json:"host" toml:"host"`
	Port            int                  `yaml:"port" json:"port" toml:"port"`
	OutDir          string               `yaml:"outDir" json:"outDir" toml:"outDir"`
	Base            string               `yaml:"base" json:"base" toml:"base"`
	HTMLID          string               `yaml:"htmlId" json:"htmlId" toml:"htmlId"`
	MicroApp        bool                 `yaml:"isMicroApp" json:"isMicroApp" toml:"isMicroApp"`
	SVGDir          string               `yaml:"svgDirPath" json:"svgDirPath" toml:"svgDirPath"`
	PackageFile     string               `yaml:"pkg" json:"pkg" toml:"pkg"`
	JSXImportSource string               `yaml:"jsxImportSource" json:"jsxImportSource" toml:"jsxImportSource"`
	Legacy          *bool                `yaml:"legacy" json:"legacy" toml:"legacy"`
	EnvPrefix       string               `yaml:"envPrefix" json:"envPrefix" toml:"envPrefix"`
	Proxy           map[string]ProxyRule `yaml:"proxy" json:"proxy" toml:"proxy"`
	Build           BuildOverrides       `yaml:"build" json:"build" toml:"build"`
	Compression     Compression          `yaml:"compression" json:"compression" toml:"compression"`

	// Env holds prefixed variables loaded by LoadEnv. Never read from a file.
	Env map[string]string `yaml:"-" json:"-" toml:"-"`
}

// DefaultConfig returns the defaults every project starts from
func DefaultConfig() Config {
	legacy := true
	return Config{
		Root:            ".",
		Template:        "index.html",
		Mode:            string(policy.ModeDevelopment),
		Host:            "127.0.0.1",
		Port:            3000,
		OutDir:          "dist",
		Base:            "/",
		HTMLID:          "root",
		SVGDir:          "svgs",
		PackageFile:     "package.json",
		JSXImportSource: "@emotion/react",
		Legacy:          &legacy,
		EnvPrefix:       "REACT_",
		Compression: Compression{
			Algorithm: "gzip",
			Threshold: 10240,
		},
	}
}

// ApplyDefaults fills every zero field from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	setDefault(&c.Root, d.Root)
	setDefault(&c.Template, d.Template)
	setDefault(&c.Mode, d.Mode)
	setDefault(&c.Host, d.Host)
	setDefault(&c.OutDir, d.OutDir)
	setDefault(&c.Base, d.Base)
	setDefault(&c.HTMLID, d.HTMLID)
	setDefault(&c.SVGDir, d.SVGDir)
	setDefault(&c.PackageFile, d.PackageFile)
	setDefault(&c.JSXImportSource, d.JSXImportSource)
	setDefault(&c.EnvPrefix, d.EnvPrefix)
	setDefault(&c.Compression.Algorithm, d.Compression.Algorithm)
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Legacy == nil {
		c.Legacy = d.Legacy
	}
	if c.Compression.Threshold == 0 {
		c.Compression.Threshold = d.Compression.Threshold
	}
	if c.Env == nil {
		c.Env = map[string]string{}
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate checks the config for values the build cannot work with.
func (c *Config) Validate() error {
	if c.Entry == "" {
		return ErrMissingEntry
	}
	if c.Port < 1 || c.Port > 65535 {
		return ErrInvalidPort
	}
	if c.HTTPS && (c.Cert == "" || c.Key == "") {
		return ErrMissingTLS
	}
	switch c.Compression.Algorithm {
	case "gzip", "zstd":
	default:
		return fmt.Errorf("unknown compression algorithm %q", c.Compression.Algorithm)
	}
	return nil
}

// BuildMode returns the parsed mode.
func (c *Config) BuildMode() policy.Mode {
	return policy.ParseMode(c.Mode)
}

// Path resolves p against the project root unless it is already absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// LegacyEnabled reports whether output targets older browsers.
func (c *Config) LegacyEnabled() bool {
	return c.Legacy == nil || *c.Legacy
}
