package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/wolfeidau/ranger/cmd/ranger/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Build    commands.BuildCmd    `cmd:"" help:"Build the project for production"`
		Serve    commands.ServeCmd    `cmd:"" help:"Start the dev server with live reload"`
		Route    commands.RouteCmd    `cmd:"" help:"Print the output location template for asset names"`
		Classify commands.ClassifyCmd `cmd:"" help:"Print the action taken for a bundler diagnostic"`

		Debug     bool   `help:"Enable debug mode."`
		LogFile   string `help:"Also write JSON logs to this file, rotated." type:"path" env:"RANGER_LOG_FILE"`
		Telemetry bool   `help:"Export traces and metrics over OTLP." env:"RANGER_TELEMETRY"`
		Config    string `help:"Path to a ranger.yaml, .toml or .json config file." type:"path" short:"c" env:"RANGER_CONFIG"`
		Version   kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("ranger"),
		kong.Description("Frontend build tool and dev server."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:     cli.Debug,
		LogFile:   cli.LogFile,
		Telemetry: cli.Telemetry,
		Config:    cli.Config,
		Version:   version,
	})
	cmd.FatalIfErrorf(err)
}
