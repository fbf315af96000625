package ai

import (
	"context"

	"lukechampine.com/frand"

	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
)

// RandomPlayer plays a uniformly random legal move, except that it
// always takes an immediate win.
type RandomPlayer[W bitboard.Word[W]] struct{}

func NewRandom[W bitboard.Word[W]]() Player[W] {
	return RandomPlayer[W]{}
}

func (RandomPlayer[W]) GetMove(_ context.Context, p *board.Position[W]) int {
	var moves []int
	for col := 0; col < p.Constants().Columns; col++ {
		if !p.IsPlayable(col) {
			continue
		}
		if p.IsWinningMove(col) {
			return col
		}
		moves = append(moves, col)
	}
	if len(moves) == 0 {
		return -1
	}
	return moves[frand.Intn(len(moves))]
}
