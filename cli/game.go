package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/nelhage/fourstones/ai"
	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
	"github.com/nelhage/fourstones/notation"
)

// Game plays a whole game between two players, drawing the board
// before every move.
type Game[W bitboard.Word[W]] struct {
	Out    io.Writer
	Glyphs *Glyphs
	First  ai.Player[W]
	Second ai.Player[W]
}

// Play plays from p until the game is over, a player gives up by
// returning -1, or ctx is done. It returns the final position.
func (g *Game[W]) Play(ctx context.Context, p *board.Position[W]) *board.Position[W] {
	for ctx.Err() == nil {
		RenderBoard(g.Glyphs, g.Out, p)
		if over, winner, draw := p.GameOver(); over {
			if draw {
				fmt.Fprintln(g.Out, "Game Over! Draw.")
			} else {
				fmt.Fprintf(g.Out, "Game Over! %s wins.\n", winner)
			}
			return p
		}
		player := g.First
		if p.ToMove() == board.Second {
			player = g.Second
		}
		m := player.GetMove(ctx, p)
		if m < 0 {
			fmt.Fprintf(g.Out, "%s resigns.\n", p.ToMove())
			return p
		}
		if err := p.Play(m); err != nil {
			fmt.Fprintln(g.Out, "illegal move:", err)
			continue
		}
		fmt.Fprintf(g.Out, "%d. %s %s\n", p.Plies(), p.ToMove().Flip(), notation.FormatColumn(p.Constants(), m))
	}
	return p
}
