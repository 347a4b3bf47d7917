package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

// Well known variables read from the loaded env.
const (
	EnvAPIURL          = "REACT_APP_API_URL"
	EnvCDNPath         = "REACT_CDN_PATH"
	EnvEnableCompress  = "REACT_APP_ENABLE_COMPRESS"
	EnvBundleVisualize = "REACT_APP_BUNDLE_VISUALIZE"
)

// envFiles lists dotenv files in load order, later files win.
func envFiles(mode string) []string {
	return []string{
		".env",
		".env.local",
		".env." + mode,
		".env." + mode + ".local",
	}
}

// LoadEnv reads the dotenv files for mode from dir, then applies environ
// (KEY=VALUE pairs, usually os.Environ()) on top. Only keys starting with
// prefix are returned.
func LoadEnv(dir, mode, prefix string, environ []string) (map[string]string, error) {
	env := map[string]string{}

	for _, name := range envFiles(mode) {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}

		parsed, err := gotenv.StrictParse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		for k, v := range parsed {
			if strings.HasPrefix(k, prefix) {
				env[k] = v
			}
		}
	}

	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, prefix) {
			continue
		}
		env[k] = v
	}

	return env, nil
}

// Flags are the feature switches carried in the env.
type Flags struct {
	APIURL    string
	CDNPath   string
	Compress  bool
	Visualize bool
}

// Flags derives feature switches from c.Env.
func (c *Config) Flags() Flags {
	return Flags{
		APIURL:    c.Env[EnvAPIURL],
		CDNPath:   c.Env[EnvCDNPath],
		Compress:  c.Env[EnvEnableCompress] == "1",
		Visualize: c.Env[EnvBundleVisualize] == "1",
	}
}
