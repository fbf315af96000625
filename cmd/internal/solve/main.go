package solve

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/cli"
	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
	"github.com/nelhage/fourstones/game"
	"github.com/nelhage/fourstones/logs"
)

type Command struct {
	Config *config.Config

	board opt.Board
	opt   opt.Solver

	analyze    bool
	quiet      bool
	timeLimit  time.Duration
	logPath    string
	cpuProfile string
}

func (*Command) Name() string     { return "solve" }
func (*Command) Synopsis() string { return "Solve positions given as move strings" }
func (*Command) Usage() string {
	return `solve [options] MOVES...

Solve each position reached by playing MOVES, a string of hex column
digits, from the empty board. An empty string solves the empty board.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.board.AddFlags(flags, c.Config)
	c.opt.AddFlags(flags, c.Config)
	flags.BoolVar(&c.analyze, "analyze", false, "print the value of every move")
	flags.BoolVar(&c.quiet, "quiet", false, "don't print board diagrams")
	flags.DurationVar(&c.timeLimit, "limit", 0, "give up on a position after this long")
	flags.StringVar(&c.logPath, "log", c.Config.LogPath, "record solves in this database")
	flags.StringVar(&c.cpuProfile, "cpuprofile", "", "write CPU profile")
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.opt.Close()
	cfg := c.board.Config()
	sess, err := game.New(cfg, c.opt.BuildConfig(cfg))
	if err != nil {
		log.Error().Err(err).Msg("solve")
		return subcommands.ExitUsageError
	}

	var repo *logs.Repository
	if c.logPath != "" {
		repo, err = logs.Open(c.logPath)
		if err != nil {
			log.Error().Err(err).Str("log", c.logPath).Msg("open solve log")
			return subcommands.ExitFailure
		}
		defer repo.Close()
	}

	if c.cpuProfile != "" {
		f, err := os.OpenFile(c.cpuProfile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			log.Error().Err(err).Msg("open cpu profile")
			return subcommands.ExitFailure
		}
		defer f.Close()
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{""}
	}
	status := subcommands.ExitSuccess
	for _, moves := range args {
		if err := c.solveOne(ctx, sess, repo, moves); err != nil {
			log.Error().Err(err).Str("moves", moves).Msg("solve")
			status = subcommands.ExitFailure
		}
	}
	return status
}

var printer = message.NewPrinter(language.English)

func (c *Command) solveOne(ctx context.Context, sess game.Session, repo *logs.Repository, moves string) error {
	sess.Reset()
	if err := sess.Replay(moves); err != nil {
		return err
	}
	if !c.quiet {
		sess.Render(os.Stdout, &cli.DefaultGlyphs)
	}
	if over, winner, draw := sess.GameOver(); over {
		if draw {
			fmt.Println("Game over: draw")
		} else {
			fmt.Printf("Game over: %s wins\n", winner)
		}
		return nil
	}
	if c.timeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeLimit)
		defer cancel()
	}

	if c.analyze {
		mvs, st, err := sess.Analyze(ctx)
		if err != nil {
			return err
		}
		for _, mv := range mvs {
			fmt.Printf("  %s %s\n", sess.Format(mv.Move), ai.ValueString(mv.Value))
		}
		printer.Printf("work = %d nodes, %.3fs\n", st.Visited, st.Elapsed.Seconds())
		return nil
	}

	r, err := sess.Solve(ctx)
	if err != nil {
		return err
	}
	sess.PrintResult(os.Stdout, r)
	if repo == nil {
		return nil
	}
	return repo.InsertSolve(logs.NewSolve(sess, r, "solve"))
}
