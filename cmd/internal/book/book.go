package book

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/book"
	"github.com/nelhage/fourstones/cmd/internal/opt"
	"github.com/nelhage/fourstones/config"
)

type Command struct {
	Config *config.Config

	board opt.Board
	opt   opt.Solver
	path  string
}

func (*Command) Name() string     { return "book" }
func (*Command) Synopsis() string { return "Build or inspect an opening book" }
func (*Command) Usage() string {
	return `book [flags] build|stats

build solves every position -book-plies moves deep and stores the
values; stats prints how many positions of each value the book holds.
The book is -book, or bookWHD in the working directory.
`
}

func (c *Command) SetFlags(flags *flag.FlagSet) {
	c.board.AddFlags(flags, c.Config)
	c.opt.AddFlags(flags, c.Config)
}

func (c *Command) Execute(ctx context.Context, flag *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if flag.NArg() != 1 {
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	cfg := c.board.Config()
	path := c.opt.Book
	if path == "" {
		path = book.FileName(cfg)
	}
	b, err := book.Open(path, cfg)
	if err != nil {
		log.Error().Err(err).Msg("open book")
		return subcommands.ExitFailure
	}
	defer b.Close()

	switch flag.Arg(0) {
	case "build":
		// the solver must not consult the book it is filling
		c.opt.Book = ""
		scfg := c.opt.BuildConfig(cfg)
		start := time.Now()
		var n int
		if cfg.Wide() {
			n, err = build[bitboard.Bits128](ctx, b, cfg, c.opt.BookPlies, c.opt.Threads, scfg)
		} else {
			n, err = build[bitboard.Bits64](ctx, b, cfg, c.opt.BookPlies, c.opt.Threads, scfg)
		}
		if err != nil {
			log.Error().Err(err).Msg("build book")
			return subcommands.ExitFailure
		}
		log.Info().Int("positions", n).Dur("elapsed", time.Since(start)).Str("path", path).Msg("book built")
	case "stats":
		if err := stats(b); err != nil {
			log.Error().Err(err).Msg("book stats")
			return subcommands.ExitFailure
		}
	default:
		fmt.Fprint(os.Stderr, c.Usage())
		return subcommands.ExitUsageError
	}
	return subcommands.ExitSuccess
}

func build[W bitboard.Word[W]](ctx context.Context, b *book.Book, cfg bitboard.Config, plies, threads int, scfg ai.SolverConfig) (int, error) {
	k, err := opt.Precompute[W](cfg)
	if err != nil {
		return 0, err
	}
	return book.Build(ctx, b, k, plies, threads, scfg)
}

func stats(b *book.Book) error {
	counts, err := b.Counts()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 4, 8, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "book\t%s\n", b.Config())
	fmt.Fprintln(w, "plies\tvalue\tpositions")
	for _, c := range counts {
		fmt.Fprintf(w, "%d\t%s\t%d\n", c.Plies, ai.ValueString(c.Value), c.Count)
	}
	return nil
}
