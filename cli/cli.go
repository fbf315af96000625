package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

type Glyphs struct {
	First, Second, Empty string
}

var DefaultGlyphs = Glyphs{
	First:  "X",
	Second: "O",
	Empty:  ".",
}

var UnicodeGlyphs = Glyphs{
	First:  "●",
	Second: "○",
	Empty:  "·",
}

const bell = "\a"

// Shell reads moves as hexadecimal column digits. A newline prints
// the board, solves it, and starts a new game; q quits.
type Shell[W bitboard.Word[W]] struct {
	Out    io.Writer
	Glyphs *Glyphs
	Solver *ai.Solver[W]
	// Opponent, if set, answers every move that is typed.
	Opponent ai.Player[W]

	p *board.Position[W]
}

func NewShell[W bitboard.Word[W]](s *ai.Solver[W], out io.Writer) *Shell[W] {
	return &Shell[W]{
		Out:    out,
		Solver: s,
		p:      board.New(s.Constants()),
	}
}

func (s *Shell[W]) Position() *board.Position[W] {
	return s.p
}

func (s *Shell[W]) Run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	defer fmt.Fprintln(s.Out, "Be seeing you...")
	for {
		ch, _, err := r.ReadRune()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		switch {
		case ch == 'q':
			return nil
		case ch == '\n':
			if err := s.solve(ctx); err != nil {
				return err
			}
			s.p.Reset()
		default:
			col, err := notation.Column(s.p.Constants(), ch)
			if err != nil {
				continue
			}
			if !s.play(ctx, col) {
				fmt.Fprint(s.Out, bell)
			}
		}
	}
}

func (s *Shell[W]) play(ctx context.Context, col int) bool {
	if over, _, _ := s.p.GameOver(); over {
		return false
	}
	if s.p.Play(col) != nil {
		return false
	}
	if s.Opponent == nil {
		return true
	}
	if over, _, _ := s.p.GameOver(); over {
		return true
	}
	m := s.Opponent.GetMove(ctx, s.p)
	if m < 0 || s.p.Play(m) != nil {
		return false
	}
	fmt.Fprintf(s.Out, "%s plays %s\n", s.p.ToMove().Flip(), notation.FormatColumn(s.p.Constants(), m))
	return true
}

func (s *Shell[W]) solve(ctx context.Context) error {
	RenderBoard(s.Glyphs, s.Out, s.p)
	if over, winner, draw := s.p.GameOver(); over {
		if draw {
			fmt.Fprintln(s.Out, "Game over: draw")
		} else {
			fmt.Fprintf(s.Out, "Game over: %s wins\n", winner)
		}
		return nil
	}
	r, err := s.Solver.Solve(ctx, s.p)
	if err != nil {
		return err
	}
	PrintResult(s.Out, s.p, r)
	return nil
}

var printer = message.NewPrinter(language.English)

// PrintResult writes a solver result for the side to move at p.
func PrintResult[W bitboard.Word[W]](out io.Writer, p *board.Position[W], r ai.Result) {
	printer.Fprintf(out, "%s %s: best move %s\n",
		p.ToMove(), ai.ValueString(r.Value), notation.FormatColumn(p.Constants(), r.Move))
	nps := float64(r.Stats.Visited) / (r.Stats.Elapsed.Seconds() + 1e-9)
	printer.Fprintf(out, "work = %d nodes, %d tt hits, %d evens cuts, %.3fs, %.0f nodes/s\n",
		r.Stats.Visited, r.Stats.TTHits, r.Stats.EvensCuts, r.Stats.Elapsed.Seconds(), nps)
}

// RenderBoard draws p top row first. Columns are labelled with the
// digit that plays them; the gap columns of a cube are drawn as
// separators.
func RenderBoard[W bitboard.Word[W]](g *Glyphs, out io.Writer, p *board.Position[W]) {
	if g == nil {
		g = &DefaultGlyphs
	}
	c := p.Constants()
	fmt.Fprintln(out)
	fmt.Fprintf(out, "[%s to play]\n", p.ToMove())
	w := tabwriter.NewWriter(out, 2, 8, 1, ' ', 0)
	for row := c.Height - 1; row >= 0; row-- {
		for col := 0; col < c.Columns; col++ {
			if c.IsGap(col) {
				fmt.Fprint(w, "|\t")
				continue
			}
			stone := g.Empty
			if who, ok := p.At(col, row); ok {
				stone = g.First
				if who == board.Second {
					stone = g.Second
				}
			}
			fmt.Fprintf(w, "%s\t", stone)
		}
		fmt.Fprint(w, "\n")
	}
	for col := 0; col < c.Columns; col++ {
		if c.IsGap(col) {
			fmt.Fprint(w, " \t")
			continue
		}
		fmt.Fprintf(w, "%s\t", notation.FormatColumn(c, col))
	}
	fmt.Fprint(w, "\n")
	w.Flush()
	fmt.Fprintf(out, "moves: %s\n", notation.FormatMoves(notation.Logical(c, p.Moves())))
}
