package ai

import (
	"context"
	"time"

	"github.com/nelhage/fourstones/bitboard"
	"github.com/nelhage/fourstones/board"
)

// Game values, from the point of view of the side to move.
const (
	Loss = -1
	Draw = 0
	Win  = 1
)

func ValueString(v int) string {
	switch v {
	case Loss:
		return "loss"
	case Draw:
		return "draw"
	case Win:
		return "win"
	default:
		return "unknown"
	}
}

type Player[W bitboard.Word[W]] interface {
	GetMove(ctx context.Context, p *board.Position[W]) int
}

type Stats struct {
	Visited   uint64
	Terminal  uint64
	TTHits    uint64
	EvensCuts uint64
	CutNodes  uint64
	Cut0      uint64

	Elapsed time.Duration
}

func (s *Stats) add(o *Stats) {
	s.Visited += o.Visited
	s.Terminal += o.Terminal
	s.TTHits += o.TTHits
	s.EvensCuts += o.EvensCuts
	s.CutNodes += o.CutNodes
	s.Cut0 += o.Cut0
}

type Result struct {
	Value int
	// Move is a best move, or -1 if the game is already over.
	Move  int
	Stats Stats
}

type MoveValue struct {
	Move  int
	Value int
}
