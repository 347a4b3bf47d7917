package commands

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/wolfeidau/ranger/internal/config"
	"github.com/wolfeidau/ranger/internal/logger"
	"github.com/wolfeidau/ranger/internal/telemetry"
)

type Globals struct {
	Debug     bool
	LogFile   string
	Telemetry bool
	Config    string
	Version   string

	// Stdout receives command output, os.Stdout when nil.
	Stdout io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Globals) logger() zerolog.Logger {
	return logger.Setup(logger.Options{Debug: g.Debug, File: g.LogFile})
}

// startTelemetry initializes OTLP export when enabled and returns a func that
// flushes it.
func (g *Globals) startTelemetry(ctx context.Context, log zerolog.Logger) func() {
	if !g.Telemetry {
		return func() {}
	}

	log.Info().Msg("Telemetry is enabled")
	shutdown, err := telemetry.InitTelemetry(ctx, "ranger", g.Version)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without it")
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Failed to shutdown telemetry")
		}
	}
}

// ProjectFlags are shared by commands that load a project config.
type ProjectFlags struct {
	Root   string `help:"Project root directory." type:"path" env:"RANGER_ROOT"`
	Entry  string `help:"Script entry point relative to the root." env:"RANGER_ENTRY"`
	OutDir string `help:"Output directory relative to the root." env:"RANGER_OUT_DIR"`
}

func (f ProjectFlags) load(globals *Globals, mode string, extra config.LoadOptions) (*config.Config, error) {
	extra.File = globals.Config
	extra.Root = f.Root
	extra.Entry = f.Entry
	extra.OutDir = f.OutDir
	extra.Mode = mode
	extra.Environ = os.Environ()
	return config.Load(extra)
}
