package play

import (
	"bufio"
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/cli"
	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
)

type Command struct {
	Config *config.Config

	board opt.Board
	opt   opt.Solver

	first    string
	second   string
	opponent string
	limit    time.Duration
	unicode  bool
}

func (*Command) Name() string     { return "play" }
func (*Command) Synopsis() string { return "Play or solve positions from the command line" }
func (*Command) Usage() string {
	return `play [flags]

With no players named, read columns as hex digits; a newline prints
the board, solves it and starts over, and q quits.

With -first and -second, play a whole game between two players:
` + opt.PlayerUsage
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.board.AddFlags(flags, c.Config)
	c.opt.AddFlags(flags, c.Config)
	flags.StringVar(&c.first, "first", "", "first player")
	flags.StringVar(&c.second, "second", "", "second player")
	flags.StringVar(&c.opponent, "opponent", "", "player that answers each move typed in the shell")
	flags.DurationVar(&c.limit, "limit", time.Minute, "ai time limit per move")
	flags.BoolVar(&c.unicode, "unicode", false, "render board with utf8 glyphs")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.opt.Close()
	cfg := c.board.Config()
	var err error
	if cfg.Wide() {
		err = run[bitboard.Bits128](ctx, c, cfg)
	} else {
		err = run[bitboard.Bits64](ctx, c, cfg)
	}
	if err != nil {
		log.Error().Err(err).Msg("play")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func glyphs(unicode bool) *cli.Glyphs {
	if unicode {
		return &cli.UnicodeGlyphs
	}
	return &cli.DefaultGlyphs
}

func run[W bitboard.Word[W]](ctx context.Context, c *Command, cfg bitboard.Config) error {
	k, err := opt.Precompute[W](cfg)
	if err != nil {
		return err
	}
	in := bufio.NewReader(os.Stdin)

	if c.first == "" && c.second == "" {
		sh := cli.NewShell(ai.NewSolver(k, c.opt.BuildConfig(cfg)), os.Stdout)
		sh.Glyphs = glyphs(c.unicode)
		if c.opponent != "" {
			pl, done, err := opt.ParsePlayer(&c.opt, k, c.opponent, c.limit, in, os.Stdout)
			if err != nil {
				return err
			}
			defer done()
			sh.Opponent = pl
		}
		return sh.Run(ctx, in)
	}

	first, done, err := opt.ParsePlayer(&c.opt, k, orHuman(c.first), c.limit, in, os.Stdout)
	if err != nil {
		return err
	}
	defer done()
	second, done, err := opt.ParsePlayer(&c.opt, k, orHuman(c.second), c.limit, in, os.Stdout)
	if err != nil {
		return err
	}
	defer done()
	g := &cli.Game[W]{
		Out:    os.Stdout,
		Glyphs: glyphs(c.unicode),
		First:  first,
		Second: second,
	}
	g.Play(ctx, board.New(k))
	return nil
}

func orHuman(s string) string {
	if s == "" {
		return "human"
	}
	return s
}
