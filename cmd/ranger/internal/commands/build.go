package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/ranger/internal/config"
	"github.com/wolfeidau/ranger/internal/policy"
	"github.com/wolfeidau/ranger/internal/project"
)

type BuildCmd struct {
	ProjectFlags `embed:""`
	Mode         string `help:"Build mode." default:"production" env:"RANGER_MODE"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	log := globals.logger()
	defer globals.startTelemetry(ctx, log)()

	cfg, err := c.load(globals, c.Mode, config.LoadOptions{})
	if err != nil {
		return err
	}

	bctx := policy.NewBuildContext(cfg.BuildMode(), time.Now())
	log.Info().
		Str("version", globals.Version).
		Str("root", cfg.Root).
		Str("mode", bctx.Mode.String()).
		Int64("timestamp", bctx.Timestamp).
		Msg("Starting build")

	p, err := project.New(cfg, bctx, project.WithLogger(log), project.WithReport(globals.stdout()))
	if err != nil {
		return err
	}

	if _, err := p.Build(ctx); err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	return nil
}
