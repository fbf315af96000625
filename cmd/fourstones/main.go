package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/cmd/internal/book"
	"github.com/nelhage/fourstones/cmd/internal/engine"
	"github.com/nelhage/fourstones/cmd/internal/play"
	"github.com/nelhage/fourstones/cmd/internal/selfplay"
	"github.com/nelhage/fourstones/cmd/internal/serve"
	"github.com/nelhage/fourstones/cmd/internal/solve"
	"github.com/nelhage/fourstones/config"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "_CONFIG"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	subcommands.Register(subcommands.HelpCommand(), "")
	subcommands.Register(subcommands.FlagsCommand(), "")
	subcommands.Register(subcommands.CommandsCommand(), "")

	subcommands.Register(&play.Command{Config: cfg}, "")
	subcommands.Register(&solve.Command{Config: cfg}, "")
	subcommands.Register(&engine.Command{Config: cfg}, "")
	subcommands.Register(&serve.Command{Config: cfg}, "")
	subcommands.Register(&book.Command{Config: cfg}, "")
	subcommands.Register(&selfplay.Command{Config: cfg}, "")

	flag.IntVar(&cfg.Debug, "debug", cfg.Debug, "debug level")
	flag.Parse()
	zerolog.SetGlobalLevel(cfg.Level())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := subcommands.Execute(ctx)
	stop()
	os.Exit(int(status))
}
