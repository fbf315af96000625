package engine

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
	"github.com/nelhage/fourstones/engine"
)

type Command struct {
	Config *config.Config

	opt opt.Solver
}

func (*Command) Name() string     { return "engine" }
func (*Command) Synopsis() string { return "Launch fourstones in c4i engine mode" }
func (*Command) Usage() string {
	return `engine

Launch the engine in c4i mode, a UCI-like protocol suitable for being
driven by an external GUI or controller.
`
}

func (c *Command) SetFlags(fs *flag.FlagSet) {
	c.opt.AddFlags(fs, c.Config)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.opt.Close()
	e := engine.NewEngine(os.Stdin, os.Stdout)
	e.ConfigFactory = c.opt.BuildConfig
	if err := e.Run(ctx); err != nil {
		log.Error().Err(err).Msg("engine")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
