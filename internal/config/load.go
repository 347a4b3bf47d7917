package config

import (
	"fmt"
)

// LoadOptions carries the command line view of a config. Non-zero values
// override what the config file says.
type LoadOptions struct {
	File    string
	Root    string
	Entry   string
	Mode    string
	OutDir  string
	Host    string
	Port    int
	Environ []string
}

// Load assembles a config from an optional file, command line overrides,
// defaults and the dotenv files for the resulting mode.
func Load(opts LoadOptions) (*Config, error) {
	cfg := &Config{}
	if opts.File != "" {
		loaded, err := LoadFile(opts.File)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	override(&cfg.Root, opts.Root)
	override(&cfg.Entry, opts.Entry)
	override(&cfg.Mode, opts.Mode)
	override(&cfg.OutDir, opts.OutDir)
	override(&cfg.Host, opts.Host)
	if opts.Port != 0 {
		cfg.Port = opts.Port
	}

	cfg.ApplyDefaults()

	env, err := LoadEnv(cfg.Root, cfg.Mode, cfg.EnvPrefix, opts.Environ)
	if err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	cfg.Env = env

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func override(field *string, value string) {
	if value != "" {
		*field = value
	}
}
