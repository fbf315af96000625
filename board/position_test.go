package board

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelhage/fourstones/bitboard"
)

func newPosition(t testing.TB, w, h int, moves ...int) *Position[bitboard.Bits64] {
	c := bitboard.MustPrecompute[bitboard.Bits64](bitboard.Config{Width: w, Height: h})
	p := New(c)
	for _, m := range moves {
		require.NoError(t, p.Play(m), "play %d after %v", m, p.Moves())
	}
	return p
}

func TestScenario(t *testing.T) {
	p := newPosition(t, 7, 6, 3, 3, 3, 2, 4)
	assert.True(t, p.HasWon(p.Color(First)).IsZero())
	assert.Equal(t, bitboard.Bits64(0x4082140c081), p.PositionCode())
	assert.Equal(t, Second, p.ToMove())
	assert.Equal(t, []int{3, 3, 3, 2, 4}, p.Moves())
	assert.Equal(t, 3, p.ColumnFill(3))
	assert.Equal(t, 1, p.ColumnFill(2))

	before := p.PositionCode()
	p.MakeMove(5)
	assert.NotEqual(t, before, p.PositionCode())
	p.BackMove()
	assert.Equal(t, before, p.PositionCode())

	p = newPosition(t, 7, 6, 3, 2, 3, 2, 3, 2)
	assert.True(t, p.IsWinningMove(3))
	assert.False(t, p.IsWinningMove(4))
	p.MakeMove(3)
	assert.False(t, p.HasWon(p.Color(First)).IsZero())
	w, ok := p.Winner()
	assert.True(t, ok)
	assert.Equal(t, First, w)
}

func TestEmpty(t *testing.T) {
	p := newPosition(t, 7, 6)
	assert.Equal(t, bitboard.Bits64(0x40810204081), p.PositionCode())
	assert.Equal(t, First, p.ToMove())
	assert.Equal(t, 0, p.Plies())
	assert.Empty(t, p.Moves())
	over, _, _ := p.GameOver()
	assert.False(t, over)
}

func TestIsPlayable(t *testing.T) {
	p := newPosition(t, 7, 6)
	for _, col := range []int{-1, -100, 7, 8, 1000} {
		assert.False(t, p.IsPlayable(col), "column %d", col)
	}
	for col := 0; col < 7; col++ {
		assert.True(t, p.IsPlayable(col), "column %d", col)
	}
	for i := 0; i < 6; i++ {
		require.True(t, p.IsPlayable(0))
		p.MakeMove(0)
	}
	assert.False(t, p.IsPlayable(0))
	assert.Equal(t, 6, p.ColumnFill(0))

	err := p.Play(0)
	assert.True(t, errors.Is(err, ErrIllegalMove), "err=%v", err)
	assert.Equal(t, 6, p.Plies())

	p.Reset()
	assert.True(t, errors.Is(p.Undo(), ErrNoMoves))
}

func TestPlayAfterWin(t *testing.T) {
	p := newPosition(t, 7, 6, 0, 1, 0, 1, 0, 1, 0)
	code := p.PositionCode()
	for col := 0; col < 7; col++ {
		err := p.Play(col)
		assert.True(t, errors.Is(err, ErrGameOver), "column %d: err=%v", col, err)
	}
	assert.Equal(t, 7, p.Plies())
	assert.Equal(t, code, p.PositionCode())
	over, w, draw := p.GameOver()
	assert.True(t, over)
	assert.False(t, draw)
	assert.Equal(t, First, w)

	require.NoError(t, p.Undo())
	require.NoError(t, p.Play(6))
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1, 6}, p.Moves())
}

func TestMoveUndoInverse(t *testing.T) {
	r := rand.New(rand.NewSource(0x4f))
	for game := 0; game < 50; game++ {
		p := newPosition(t, 7, 6)
		for {
			var cols []int
			for col := 0; col < 7; col++ {
				// legality monotonicity
				require.Equal(t, p.ColumnFill(col) < 6, p.IsPlayable(col))
				if p.IsPlayable(col) {
					cols = append(cols, col)
				}
			}
			if len(cols) == 0 {
				break
			}

			snap := p.Clone()
			for _, col := range cols {
				p.MakeMove(col)
				p.BackMove()
				require.Equal(t, snap, p)
			}
			p.MakeMove(cols[r.Intn(len(cols))])
		}
		assert.True(t, p.Full())
		assert.True(t, p.Color(First).And(p.Color(Second)).IsZero())
		assert.Equal(t, p.Constants().Playable, p.Color(First).Or(p.Color(Second)))
		for p.Plies() > 0 {
			require.NoError(t, p.Undo())
		}
		assert.Equal(t, newPosition(t, 7, 6), p)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	p := newPosition(t, 7, 6, 3, 3)
	q := p.Clone()
	q.MakeMove(4)
	assert.Equal(t, 2, p.Plies())
	assert.Equal(t, []int{3, 3}, p.Moves())
	assert.Equal(t, 0, p.ColumnFill(4))
	assert.Equal(t, 1, q.ColumnFill(4))
}

func TestPositionCodeInjective(t *testing.T) {
	type state struct {
		x, o bitboard.Bits64
	}
	for _, tc := range []struct{ w, h, plies int }{
		{4, 4, 8},
		{7, 6, 5},
		{5, 3, 7},
	} {
		p := newPosition(t, tc.w, tc.h)
		seen := make(map[bitboard.Bits64]state)
		var walk func(depth int)
		walk = func(depth int) {
			st := state{p.Color(First), p.Color(Second)}
			code := p.PositionCode()
			if prev, ok := seen[code]; ok {
				require.Equal(t, prev, st, "collision on %s at %v", code, p.Moves())
			}
			seen[code] = st
			if depth == 0 {
				return
			}
			for col := 0; col < tc.w; col++ {
				if p.IsPlayable(col) {
					p.MakeMove(col)
					walk(depth - 1)
					p.BackMove()
				}
			}
		}
		walk(tc.plies)
		assert.NotEmpty(t, seen)
	}
}

func TestCubeMoves(t *testing.T) {
	c := bitboard.MustPrecompute[bitboard.Bits128](bitboard.Config{
		Width: 4, Height: 4, Depth: 4, Shape: bitboard.Cube,
	})
	p := New(c)
	for col := 0; col < c.Columns; col++ {
		if c.IsGap(col) {
			assert.False(t, p.IsPlayable(col), "gap column %d", col)
			assert.Equal(t, 4, p.ColumnFill(col))
			assert.Error(t, p.Play(col))
		} else {
			assert.True(t, p.IsPlayable(col), "column %d", col)
		}
	}

	// first player builds a depth line along x=0 on the bottom row
	var moves []int
	for l := 0; l < 4; l++ {
		moves = append(moves, c.ColumnAt(0, l), c.ColumnAt(1, l))
	}
	for i, m := range moves[:6] {
		require.NoError(t, p.Play(m), "move %d", i)
	}
	assert.True(t, p.HasWon(p.Color(First)).IsZero())
	assert.True(t, p.IsWinningMove(moves[6]))
	require.NoError(t, p.Play(moves[6]))
	w, ok := p.Winner()
	require.True(t, ok)
	assert.Equal(t, First, w)
	assert.True(t, errors.Is(p.Play(moves[7]), ErrGameOver))
	assert.Equal(t, 7, p.Plies())
}

func TestCubeFills(t *testing.T) {
	c := bitboard.MustPrecompute[bitboard.Bits128](bitboard.Config{
		Width: 4, Height: 4, Depth: 4, Shape: bitboard.Cube,
	})
	p := New(c)
	r := rand.New(rand.NewSource(7))
	codes := make(map[bitboard.Bits128]bool)
	for !p.Full() {
		codes[p.PositionCode()] = true
		var cols []int
		for col := 0; col < c.Columns; col++ {
			if p.IsPlayable(col) {
				cols = append(cols, col)
			}
		}
		require.NotEmpty(t, cols)
		p.MakeMove(cols[r.Intn(len(cols))])
	}
	assert.Equal(t, 64, p.Plies())
	assert.Len(t, codes, 64)
	assert.Equal(t, c.Playable, p.Color(First).Or(p.Color(Second)))
}
