package symmetry

import (
	"github.com/nelhage/fourstones/bitboard"
)

// Symmetry maps a column's (x, layer) coordinates onto its image.
// Rows never move: gravity fixes which way is up.
type Symmetry func(x, l int) (int, int)

func compose(ss ...Symmetry) Symmetry {
	return func(x, l int) (int, int) {
		for i := range ss {
			s := ss[len(ss)-i-1]
			x, l = s(x, l)
		}
		return x, l
	}
}

func symmetries(cfg bitboard.Config) []Symmetry {
	flip := func(i, n int) int {
		return n - 1 - i
	}

	identity := func(x, l int) (int, int) {
		return x, l
	}
	flipX := func(x, l int) (int, int) {
		return flip(x, cfg.Width), l
	}
	if cfg.Shape != bitboard.Cube {
		return []Symmetry{identity, flipX}
	}

	flipL := func(x, l int) (int, int) {
		return x, flip(l, cfg.Depth)
	}
	rotate2 := compose(flipX, flipL)
	if cfg.Width != cfg.Depth {
		return []Symmetry{identity, flipX, flipL, rotate2}
	}

	flipDiag1 := func(x, l int) (int, int) {
		return l, x
	}
	flipDiag2 := func(x, l int) (int, int) {
		return flip(l, cfg.Width), flip(x, cfg.Width)
	}
	rotCW := func(x, l int) (int, int) {
		return l, flip(x, cfg.Width)
	}
	rotCCW := func(x, l int) (int, int) {
		return flip(l, cfg.Width), x
	}
	return []Symmetry{
		identity,
		flipX,
		flipL,
		flipDiag1,
		flipDiag2,
		rotate2,
		rotCW,
		rotCCW,
	}
}

// Table holds the column permutation of every symmetry of a board.
// Index 0 is always the identity.
type Table[W bitboard.Word[W]] struct {
	c     *bitboard.Constants[W]
	perms [][]int
}

func New[W bitboard.Word[W]](c *bitboard.Constants[W]) *Table[W] {
	t := &Table[W]{c: c}
	for _, s := range symmetries(c.Config) {
		perm := make([]int, c.Columns)
		for col := range perm {
			if c.IsGap(col) {
				perm[col] = col
				continue
			}
			x, l := c.Coords(col)
			perm[col] = c.ColumnAt(s(x, l))
		}
		t.perms = append(t.perms, perm)
	}
	return t
}

func (t *Table[W]) Len() int {
	return len(t.perms)
}

func (t *Table[W]) Column(s, col int) int {
	return t.perms[s][col]
}

func (t *Table[W]) Moves(s int, ms []int) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = t.perms[s][m]
	}
	return out
}

// Transform moves every column of mask to its image under symmetry
// s. Columns are moved whole, so a position code transforms into the
// code of the transformed position.
func (t *Table[W]) Transform(s int, mask W) W {
	if s == 0 {
		return mask
	}
	var out W
	for col, to := range t.perms[s] {
		bits := mask.Rsh(uint(col) * t.c.H1).And(t.c.Column)
		out = out.Or(bits.Lsh(uint(to) * t.c.H1))
	}
	return out
}

// Canonical returns the smallest image of code under the board's
// symmetries.
func (t *Table[W]) Canonical(code W) W {
	best := code
	for s := 1; s < len(t.perms); s++ {
		if img := t.Transform(s, code); Less(img, best) {
			best = img
		}
	}
	return best
}

// CanonicalMoves returns the lexicographically smallest image of a
// move list.
func (t *Table[W]) CanonicalMoves(ms []int) []int {
	best := ms
	for s := 1; s < len(t.perms); s++ {
		img := t.Moves(s, ms)
		if lessMoves(img, best) {
			best = img
		}
	}
	out := make([]int, len(best))
	copy(out, best)
	return out
}

func Less[W bitboard.Word[W]](a, b W) bool {
	alo, ahi := a.Halves()
	blo, bhi := b.Halves()
	if ahi != bhi {
		return ahi < bhi
	}
	return alo < blo
}

func lessMoves(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
