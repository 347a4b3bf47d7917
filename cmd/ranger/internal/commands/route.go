package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wolfeidau/ranger/internal/policy"
)

type RouteCmd struct {
	Names     []string `arg:"" optional:"" help:"Asset file names, e.g. logo.png."`
	Mode      string   `help:"Build mode." default:"production"`
	Timestamp int64    `help:"Build timestamp in unix milliseconds, now when zero."`
}

func (c *RouteCmd) Run(_ context.Context, globals *Globals) error {
	bctx := policy.BuildContext{Mode: policy.ParseMode(c.Mode), Timestamp: c.Timestamp}
	if bctx.Timestamp == 0 {
		bctx = policy.NewBuildContext(bctx.Mode, time.Now())
	}

	out := globals.stdout()
	fmt.Fprintf(out, "scripts\t%s\n", policy.RouteScript(bctx))
	for _, name := range c.Names {
		candidate := policy.AssetCandidate{Name: name}
		fmt.Fprintf(out, "%s\t%s\t%s\n", name, candidate.Kind(), policy.RouteAsset(candidate, bctx))
	}
	return nil
}
