package board

import (
	"errors"
	"fmt"

	"github.com/nelhage/fourstones/bitboard"
)

type Color int

const (
	First  Color = 0
	Second Color = 1
)

func (c Color) String() string {
	switch c {
	case First:
		return "X"
	case Second:
		return "O"
	default:
		return fmt.Sprintf("Color(%d)", int(c))
	}
}

func (c Color) Flip() Color {
	return c ^ 1
}

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoMoves     = errors.New("no moves to take back")
	ErrGameOver    = errors.New("game is over")
)

// Position is a board together with the moves that led to it. All
// positions sharing a Constants may be used concurrently, but a single
// Position must not be.
type Position[W bitboard.Word[W]] struct {
	c *bitboard.Constants[W]

	color [2]W
	moves []int
	// height holds the bit index of the lowest free square of each
	// column
	height []uint
	plies  int
}

func New[W bitboard.Word[W]](c *bitboard.Constants[W]) *Position[W] {
	p := &Position[W]{
		c:      c,
		moves:  make([]int, 0, c.Size),
		height: make([]uint, c.Columns),
	}
	p.Reset()
	return p
}

func (p *Position[W]) Reset() {
	p.plies = 0
	p.moves = p.moves[:0]
	p.color[0], p.color[1] = *new(W), *new(W)
	for i := range p.height {
		p.height[i] = uint(i) * p.c.H1
		if p.c.IsGap(i) {
			// gap columns look full, so nothing is ever played there
			p.height[i] += uint(p.c.Height)
		}
	}
}

func (p *Position[W]) Constants() *bitboard.Constants[W] {
	return p.c
}

// Clone returns a deep copy that shares nothing mutable with p.
func (p *Position[W]) Clone() *Position[W] {
	out := &Position[W]{
		c:      p.c,
		color:  p.color,
		moves:  make([]int, len(p.moves), p.c.Size),
		height: make([]uint, len(p.height)),
		plies:  p.plies,
	}
	copy(out.moves, p.moves)
	copy(out.height, p.height)
	return out
}

func (p *Position[W]) ToMove() Color {
	return Color(p.plies & 1)
}

func (p *Position[W]) Plies() int {
	return p.plies
}

func (p *Position[W]) Color(c Color) W {
	return p.color[c]
}

// Moves returns the columns played so far, oldest first.
func (p *Position[W]) Moves() []int {
	out := make([]int, len(p.moves))
	copy(out, p.moves)
	return out
}

// ColumnFill returns the number of stones in col.
func (p *Position[W]) ColumnFill(col int) int {
	return int(p.height[col] % p.c.H1)
}

// IsPlayable reports whether col is on the board and has room.
func (p *Position[W]) IsPlayable(col int) bool {
	return col >= 0 && col < p.c.Columns && p.c.IsLegal(p.NextBoard(col))
}

// NextBoard returns the stones of the side to move after it plays
// col. The result may overflow; check it with IsLegal.
func (p *Position[W]) NextBoard(col int) W {
	return p.color[p.plies&1].Or(p.moveBit(col))
}

// MoveBit returns the square a stone dropped into col would land on.
func (p *Position[W]) MoveBit(col int) W {
	return p.moveBit(col)
}

func (p *Position[W]) moveBit(col int) W {
	var z W
	return z.SetBit(p.height[col])
}

// MakeMove drops a stone for the side to move into col. col must be
// playable; MakeMove does not check.
func (p *Position[W]) MakeMove(col int) {
	p.color[p.plies&1] = p.color[p.plies&1].Xor(p.moveBit(col))
	p.height[col]++
	p.moves = append(p.moves, col)
	p.plies++
}

// BackMove takes back the last move. At least one move must have
// been played.
func (p *Position[W]) BackMove() {
	p.plies--
	n := p.moves[p.plies]
	p.moves = p.moves[:p.plies]
	p.height[n]--
	p.color[p.plies&1] = p.color[p.plies&1].Xor(p.moveBit(n))
}

// Play is MakeMove for untrusted input. It refuses every move once
// either side has a line of four.
func (p *Position[W]) Play(col int) error {
	if _, won := p.Winner(); won {
		return fmt.Errorf("%w: column %d", ErrGameOver, col)
	}
	if !p.IsPlayable(col) {
		return fmt.Errorf("%w: column %d", ErrIllegalMove, col)
	}
	p.MakeMove(col)
	return nil
}

// Undo is BackMove for untrusted input.
func (p *Position[W]) Undo() error {
	if p.plies == 0 {
		return ErrNoMoves
	}
	p.BackMove()
	return nil
}

func (p *Position[W]) HasWon(mask W) W {
	return p.c.HasWon(mask)
}

func (p *Position[W]) IsLegalWinningBoard(mask W) bool {
	return p.c.IsLegalWinningBoard(mask)
}

// IsWinningMove reports whether playing col wins for the side to
// move.
func (p *Position[W]) IsWinningMove(col int) bool {
	return p.c.IsLegalWinningBoard(p.NextBoard(col))
}

// Heights returns a mask with one bit set per column, on the lowest
// free square.
func (p *Position[W]) Heights() W {
	return p.color[0].Add(p.color[1]).Add(p.c.Bottom)
}

// PositionCode uniquely identifies the stones on the board and the
// side to move. color[0]+color[1]+Bottom marks the lowest free square
// of every column; adding the mover's stones on top of that cannot
// carry into it.
func (p *Position[W]) PositionCode() W {
	return p.color[p.plies&1].Add(p.Heights())
}

// Winner reports whether either side has a line of four.
func (p *Position[W]) Winner() (Color, bool) {
	if !p.c.HasWon(p.color[First]).IsZero() {
		return First, true
	}
	if !p.c.HasWon(p.color[Second]).IsZero() {
		return Second, true
	}
	return First, false
}

// Full reports whether every playable square is taken.
func (p *Position[W]) Full() bool {
	return p.plies == p.c.Size
}

// GameOver reports whether the game has ended, and the winner if it
// did not end in a draw.
func (p *Position[W]) GameOver() (over bool, winner Color, draw bool) {
	if c, ok := p.Winner(); ok {
		return true, c, false
	}
	if p.Full() {
		return true, First, true
	}
	return false, First, false
}

// At returns the owner of the square at (col, row).
func (p *Position[W]) At(col, row int) (Color, bool) {
	sq := p.c.Square(col, row)
	switch {
	case p.color[First].Bit(sq):
		return First, true
	case p.color[Second].Bit(sq):
		return Second, true
	default:
		return First, false
	}
}
