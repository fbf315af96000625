package opt

import (
	"flag"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/book"
	"github.com/nelhage/fourstones/config"
	"github.com/nelhage/fourstones/notation"
)

// Board holds the board-size flags.
type Board struct {
	Width  int
	Height int
	Depth  int
}

func (o *Board) AddFlags(flags *flag.FlagSet, cfg *config.Config) {
	flags.IntVar(&o.Width, "width", cfg.Width, "board width")
	flags.IntVar(&o.Height, "height", cfg.Height, "board height")
	flags.IntVar(&o.Depth, "depth", cfg.Depth, "board depth; 0 plays on a flat board")
}

func (o *Board) Config() bitboard.Config {
	c := config.Config{Width: o.Width, Height: o.Height, Depth: o.Depth}
	return c.Board()
}

// Precompute builds the constants for cfg, rejecting boards whose
// columns cannot all be typed as one hex digit.
func Precompute[W bitboard.Word[W]](cfg bitboard.Config) (*bitboard.Constants[W], error) {
	c, err := bitboard.Precompute[W](cfg)
	if err != nil {
		return nil, err
	}
	if c.Cells() > notation.MaxColumns {
		return nil, fmt.Errorf("%w: %s has more than %d columns",
			bitboard.ErrBadConfig, cfg, notation.MaxColumns)
	}
	return c, nil
}

// Solver holds the flags that configure a solver.
type Solver struct {
	Debug     int
	TableBits int
	Table     bool
	Evens     bool
	Symmetry  bool
	Sort      bool
	Shuffle   bool
	Threads   int
	Book      string
	BookPlies int

	books []*book.Book
}

func (o *Solver) AddFlags(flags *flag.FlagSet, cfg *config.Config) {
	o.Debug = cfg.Debug
	flags.IntVar(&o.TableBits, "table-bits", cfg.TableBits, "log2 of the transposition table size")
	flags.BoolVar(&o.Table, "table", true, "use the transposition table")
	flags.BoolVar(&o.Evens, "evens", true, "cut searches the evens rule decides")
	flags.BoolVar(&o.Symmetry, "symmetry", true, "share table entries between mirrored positions")
	flags.BoolVar(&o.Sort, "sort", true, "sort moves via history heuristic")
	flags.BoolVar(&o.Shuffle, "shuffle", false, "shuffle equally good root moves")
	flags.IntVar(&o.Threads, "threads", cfg.Threads, "parallel searches when analyzing")
	flags.StringVar(&o.Book, "book", cfg.BookPath, "opening book database")
	flags.IntVar(&o.BookPlies, "book-plies", cfg.BookPlies, "ply count the book was built at")
}

// BuildConfig returns a solver configuration for board, opening the
// book if one was named.
func (o *Solver) BuildConfig(board bitboard.Config) ai.SolverConfig {
	cfg := ai.SolverConfig{
		Debug:     o.Debug,
		TableBits: o.TableBits,

		NoTable:    !o.Table,
		NoEvens:    !o.Evens,
		NoSymmetry: !o.Symmetry,
		NoSort:     !o.Sort,
		Shuffle:    o.Shuffle,
		Threads:    o.Threads,
	}
	if o.Book != "" {
		b, err := book.Open(o.Book, board)
		if err != nil {
			log.Fatal().Err(err).Str("book", o.Book).Msg("open book")
		}
		o.books = append(o.books, b)
		cfg.Book = b
		cfg.BookPlies = o.BookPlies
	}
	return cfg
}

// Close closes any books BuildConfig opened.
func (o *Solver) Close() {
	for _, b := range o.books {
		b.Close()
	}
	o.books = nil
}
