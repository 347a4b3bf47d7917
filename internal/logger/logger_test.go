package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestSetup_levels(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, Setup(Options{}).GetLevel())
	require.Equal(t, zerolog.DebugLevel, Setup(Options{Debug: true}).GetLevel())
}

func TestSetup_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranger.log")

	log := Setup(Options{File: path})
	log.Info().Str("build_id", "abc").Msg("Build complete")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"build_id":"abc"`)
	require.Contains(t, string(data), "Build complete")
}
