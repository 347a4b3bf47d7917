package commands

import (
	"context"
	"time"

	"github.com/wolfeidau/ranger/internal/config"
	"github.com/wolfeidau/ranger/internal/devserver"
	"github.com/wolfeidau/ranger/internal/policy"
	"github.com/wolfeidau/ranger/internal/project"
)

type ServeCmd struct {
	ProjectFlags `embed:""`
	Mode         string `help:"Build mode." default:"development" env:"RANGER_MODE"`
	Host         string `help:"Dev server host." env:"RANGER_HOST"`
	Port         int    `help:"Dev server port." env:"RANGER_PORT"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
	log := globals.logger()
	defer globals.startTelemetry(ctx, log)()

	cfg, err := c.load(globals, c.Mode, config.LoadOptions{Host: c.Host, Port: c.Port})
	if err != nil {
		return err
	}

	// one timestamp for the whole session, rebuilds keep their names stable
	bctx := policy.NewBuildContext(cfg.BuildMode(), time.Now())
	log.Info().
		Str("version", globals.Version).
		Str("root", cfg.Root).
		Str("mode", bctx.Mode.String()).
		Msg("Starting dev server")

	p, err := project.New(cfg, bctx, project.WithLogger(log), project.WithReport(globals.stdout()))
	if err != nil {
		return err
	}

	srv, err := devserver.New(p, devserver.WithLogger(log))
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
