package selfplay

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
)

type Command struct {
	Config *config.Config

	board opt.Board
	opt   opt.Solver

	p1 string
	p2 string

	games    int
	swap     bool
	openings string

	limit   time.Duration
	threads int

	summary string
	verbose bool
}

func (*Command) Name() string     { return "selfplay" }
func (*Command) Synopsis() string { return "Play two AIs against each other and report results" }
func (*Command) Usage() string {
	return `selfplay [flags]

Players are named as for play:
` + opt.PlayerUsage
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.board.AddFlags(flags, c.Config)
	c.opt.AddFlags(flags, c.Config)
	flags.StringVar(&c.p1, "p1", "solver", "player 1")
	flags.StringVar(&c.p2, "p2", "rand", "player 2")
	flags.IntVar(&c.games, "games", 10, "number of games to play per opening/color")
	flags.BoolVar(&c.swap, "swap", true, "swap colors each game")
	flags.StringVar(&c.openings, "openings", "", "file of openings, one move string per line")
	flags.DurationVar(&c.limit, "limit", 0, "amount of time to search each move")
	flags.IntVar(&c.threads, "parallel", 4, "number of games to play at once")
	flags.StringVar(&c.summary, "summary", "", "write summary JSON file")
	flags.BoolVar(&c.verbose, "v", false, "verbose output")
}

func readOpenings(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	r := bufio.NewScanner(f)
	for r.Scan() {
		if line := strings.TrimSpace(r.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, r.Err()
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	defer c.opt.Close()
	cfg := &Config{
		Games:   c.games,
		Verbose: c.verbose,
		P1:      c.p1,
		P2:      c.p2,
		Swap:    c.swap,
		Threads: c.threads,
		Limit:   c.limit,
	}
	if c.openings != "" {
		var err error
		cfg.Openings, err = readOpenings(c.openings)
		if err != nil {
			log.Error().Err(err).Msg("-openings")
			return subcommands.ExitUsageError
		}
	}

	bc := c.board.Config()
	var st Stats
	var err error
	if bc.Wide() {
		st, err = simulate[bitboard.Bits128](ctx, c, bc, cfg)
	} else {
		st, err = simulate[bitboard.Bits64](ctx, c, bc, cfg)
	}
	if err != nil {
		log.Error().Err(err).Msg("selfplay")
		return subcommands.ExitFailure
	}

	if c.summary != "" {
		if err := c.writeSummary(c.summary, &st); err != nil {
			log.Error().Err(err).Msg("writing summary")
		}
	}

	log.Info().
		Int("games", st.Count()).
		Int("ties", st.Ties).
		Int("resigned", st.Resigned).
		Int("first", st.First).
		Int("second", st.Second).
		Dur("limit", c.limit).
		Msg("done")
	tw := tabwriter.NewWriter(os.Stderr, 2, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\tfirst\tsecond\tsum\n")
	fmt.Fprintf(tw, "p1\t%d\t%d\t%d\n", st.Players[0].FirstWins, st.Players[0].SecondWins, st.Players[0].Wins)
	fmt.Fprintf(tw, "p2\t%d\t%d\t%d\n", st.Players[1].FirstWins, st.Players[1].SecondWins, st.Players[1].Wins)
	fmt.Fprintf(tw, "sum\t%d\t%d\t%d\n",
		st.Players[0].FirstWins+st.Players[1].FirstWins,
		st.Players[0].SecondWins+st.Players[1].SecondWins,
		st.Players[0].Wins+st.Players[1].Wins,
	)
	tw.Flush()
	return subcommands.ExitSuccess
}

func simulate[W bitboard.Word[W]](ctx context.Context, c *Command, bc bitboard.Config, cfg *Config) (Stats, error) {
	k, err := opt.Precompute[W](bc)
	if err != nil {
		return Stats{}, err
	}
	return Simulate(ctx, &c.opt, k, cfg)
}

type Summary struct {
	Cmdline []string
	Board   string
	Player1 string
	Player2 string
	Limit   time.Duration
	Stats   *Stats
}

func (c *Command) writeSummary(path string, stats *Stats) error {
	summary := Summary{
		Cmdline: os.Args,
		Board:   c.board.Config().String(),
		Player1: c.p1,
		Player2: c.p2,
		Limit:   c.limit,
		Stats:   stats,
	}
	bs, err := json.MarshalIndent(&summary, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, bs, 0644)
}
