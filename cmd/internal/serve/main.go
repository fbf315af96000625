package serve

import (
	"context"
	"flag"
	"fmt"
	"net"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"

	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
	"github.com/nelhage/fourstones/logs"
	"github.com/nelhage/fourstones/rpc"
)

type Command struct {
	Config *config.Config

	opt     opt.Solver
	port    int
	logPath string
}

func (*Command) Name() string     { return "serve" }
func (*Command) Synopsis() string { return "Serve solver RPCs via GRPC" }
func (*Command) Usage() string {
	return `serve
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.opt.AddFlags(flags, c.Config)
	flags.IntVar(&c.port, "port", c.Config.Port, "bind port")
	flags.StringVar(&c.logPath, "log", c.Config.LogPath, "record solves in this database")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.opt.Close()
	srv := rpc.NewServer()
	srv.ConfigFactory = c.opt.BuildConfig
	if c.logPath != "" {
		repo, err := logs.Open(c.logPath)
		if err != nil {
			log.Error().Err(err).Str("log", c.logPath).Msg("open solve log")
			return subcommands.ExitFailure
		}
		defer repo.Close()
		srv.Log = repo
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", c.port))
	if err != nil {
		log.Error().Err(err).Msg("failed to listen")
		return subcommands.ExitFailure
	}
	log.Info().Int("port", c.port).Msg("listening")
	grpcServer := grpc.NewServer()
	rpc.RegisterSolverServer(grpcServer, srv)

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()
	if err := grpcServer.Serve(lis); err != nil {
		log.Error().Err(err).Msg("serve")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
