// Package game hides the word width of a board behind an interface,
// so that front ends can pick a board size at run time.
package game

import (
	"context"
	"fmt"
	"io"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/cli"
	"github.com/nelhage/fourstones/notation"
)

// Session is one position together with a solver for its board.
type Session interface {
	Config() bitboard.Config

	Reset()
	Play(col int) error
	Undo() error
	// Replay plays a string of column digits.
	Replay(moves string) error
	IsPlayable(col int) bool
	Moves() []int
	Plies() int
	ToMove() board.Color
	GameOver() (over bool, winner board.Color, draw bool)
	// Code is the hex position code; Key is the canonical form the
	// book uses.
	Code() string
	Key() string

	Solve(ctx context.Context) (ai.Result, error)
	Analyze(ctx context.Context) ([]ai.MoveValue, ai.Stats, error)
	QuickMove() int
	// Format writes a column the way Replay reads it.
	Format(col int) string
	// Logical is the number Format writes for col.
	Logical(col int) int
	// Notation is the move list the way Replay reads it.
	Notation() string

	Render(out io.Writer, g *cli.Glyphs)
	// PrintResult describes a Solve result for the current position.
	PrintResult(out io.Writer, r ai.Result)
}

// New returns a Session for cfg, using 64-bit words when the board
// fits in them.
func New(cfg bitboard.Config, scfg ai.SolverConfig) (Session, error) {
	if cfg.Bits() <= 64 {
		return newSession[bitboard.Bits64](cfg, scfg)
	}
	return newSession[bitboard.Bits128](cfg, scfg)
}

func newSession[W bitboard.Word[W]](cfg bitboard.Config, scfg ai.SolverConfig) (Session, error) {
	c, err := bitboard.Precompute[W](cfg)
	if err != nil {
		return nil, err
	}
	if c.Cells() > notation.MaxColumns {
		return nil, fmt.Errorf("%w: %s has %d columns, at most %d can be named",
			bitboard.ErrBadConfig, cfg, c.Cells(), notation.MaxColumns)
	}
	return &session[W]{
		p: board.New(c),
		s: ai.NewSolver(c, scfg),
	}, nil
}

type session[W bitboard.Word[W]] struct {
	p *board.Position[W]
	s *ai.Solver[W]
}

func (g *session[W]) Config() bitboard.Config { return g.p.Constants().Config }
func (g *session[W]) Reset()                  { g.p.Reset() }
func (g *session[W]) Play(col int) error      { return g.p.Play(col) }
func (g *session[W]) Undo() error             { return g.p.Undo() }
func (g *session[W]) IsPlayable(col int) bool { return g.p.IsPlayable(col) }
func (g *session[W]) Moves() []int            { return g.p.Moves() }
func (g *session[W]) Plies() int              { return g.p.Plies() }
func (g *session[W]) ToMove() board.Color     { return g.p.ToMove() }
func (g *session[W]) Code() string            { return bitboard.Hex(g.p.PositionCode()) }
func (g *session[W]) Key() string             { return g.s.BookKey(g.p) }
func (g *session[W]) QuickMove() int          { return g.s.QuickMove(g.p) }

func (g *session[W]) Format(col int) string {
	return notation.FormatColumn(g.p.Constants(), col)
}

func (g *session[W]) Logical(col int) int { return g.p.Constants().Logical(col) }
func (g *session[W]) Notation() string    { return notation.Format(g.p) }

func (g *session[W]) Replay(moves string) error {
	return notation.Replay(g.p, moves)
}

func (g *session[W]) GameOver() (bool, board.Color, bool) {
	return g.p.GameOver()
}

func (g *session[W]) Solve(ctx context.Context) (ai.Result, error) {
	return g.s.Solve(ctx, g.p)
}

func (g *session[W]) Analyze(ctx context.Context) ([]ai.MoveValue, ai.Stats, error) {
	return g.s.Analyze(ctx, g.p)
}

func (g *session[W]) Render(out io.Writer, glyphs *cli.Glyphs) {
	cli.RenderBoard(glyphs, out, g.p)
}

func (g *session[W]) PrintResult(out io.Writer, r ai.Result) {
	cli.PrintResult(out, g.p, r)
}
