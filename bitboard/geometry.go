package bitboard

import (
	"errors"
	"fmt"
)

// Bit layout for a 7x6 planar board. Each column holds Height
// squares plus one sentinel bit on top, which is always zero in a
// legal position:
//
//	 .  .  .  .  .  .  .  TOP
//	 5 12 19 26 33 40 47
//	 4 11 18 25 32 39 46
//	 3 10 17 24 31 38 45
//	 2  9 16 23 30 37 44
//	 1  8 15 22 29 36 43
//	 0  7 14 21 28 35 42  BOTTOM
//
// A cube lays its layers out left to right, Width columns each,
// separated by one empty gap column so that no line can run from one
// layer into the next.

type Shape int

const (
	Planar Shape = iota
	Cube
)

func (s Shape) String() string {
	switch s {
	case Planar:
		return "planar"
	case Cube:
		return "cube"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

type Config struct {
	Width  int
	Height int
	// Depth is the number of layers of a Cube board; ignored for
	// Planar boards.
	Depth int
	Shape Shape
}

func (c Config) layers() int {
	if c.Shape == Cube {
		return c.Depth
	}
	return 1
}

// Columns is the number of physical columns in the bit layout,
// including the gap columns of a cube.
func (c Config) Columns() int {
	if c.Shape == Cube {
		return c.Depth*(c.Width+1) - 1
	}
	return c.Width
}

// Bits is the number of bits the layout occupies.
func (c Config) Bits() uint {
	return uint(c.Columns() * (c.Height + 1))
}

// Wide reports whether the layout needs a 128-bit word.
func (c Config) Wide() bool {
	return c.Bits() > 64
}

func (c Config) String() string {
	if c.Shape == Cube {
		return fmt.Sprintf("%dx%dx%d", c.Width, c.Depth, c.Height)
	}
	return fmt.Sprintf("%dx%d", c.Width, c.Height)
}

var ErrBadConfig = errors.New("bad board configuration")

type Constants[W Word[W]] struct {
	Config

	Columns int
	H1      uint
	// Size is the number of playable squares.
	Size int
	// Size1 is the number of bits used, sentinels and gaps included.
	Size1 uint
	// Stride is the bit distance between two layers of a cube.
	Stride uint

	One      W
	Column   W
	All1     W
	Bottom   W
	Top      W
	Playable W
	AltO     W
	AltX     W
	TopPlus1 W

	// Directions lists the shift for every line direction the board
	// supports. Directions[0] is always the vertical.
	Directions []uint

	gap []bool
}

func Precompute[W Word[W]](cfg Config) (*Constants[W], error) {
	var z W
	if cfg.Width < 1 || cfg.Height < 1 {
		return nil, fmt.Errorf("%w: %s", ErrBadConfig, cfg)
	}
	if cfg.Shape == Cube && cfg.Depth < 1 {
		return nil, fmt.Errorf("%w: cube needs at least one layer", ErrBadConfig)
	}
	if cfg.Bits() > z.Size() {
		return nil, fmt.Errorf("%w: %s needs %d bits, word has %d",
			ErrBadConfig, cfg, cfg.Bits(), z.Size())
	}
	if cfg.Shape == Planar {
		cfg.Depth = 1
	}

	c := &Constants[W]{Config: cfg}
	c.Columns = cfg.Columns()
	c.H1 = uint(cfg.Height + 1)
	c.Size1 = cfg.Bits()
	c.Size = cfg.Width * cfg.layers() * cfg.Height
	c.One = z.SetBit(0)

	c.gap = make([]bool, c.Columns)
	if cfg.Shape == Cube {
		for col := cfg.Width; col < c.Columns; col += cfg.Width + 1 {
			c.gap[col] = true
		}
		c.Stride = uint(cfg.Width+1) * c.H1
	}

	for i := uint(0); i < c.H1; i++ {
		c.Column = c.Column.SetBit(i)
	}
	for i := uint(0); i < c.Size1; i++ {
		c.All1 = c.All1.SetBit(i)
	}

	// AltX holds the top playable row of every column and each second
	// row below it; AltO holds the remaining rows.
	altcol := (((uint64(1) << c.H1) - 1) >> 1) / 3
	for col := 0; col < c.Columns; col++ {
		base := uint(col) * c.H1
		c.Bottom = c.Bottom.SetBit(base)
		if c.gap[col] {
			continue
		}
		for r := uint(0); r < uint(cfg.Height); r++ {
			if altcol&(1<<r) != 0 {
				c.AltO = c.AltO.SetBit(base + r)
			}
		}
	}
	c.Top = c.Bottom.Lsh(uint(cfg.Height))
	c.Playable = c.All1.AndNot(c.Top)
	for col, g := range c.gap {
		if g {
			c.Playable = c.Playable.AndNot(c.Column.Lsh(uint(col) * c.H1))
		}
	}
	c.AltX = c.AltO.Lsh(1)
	c.TopPlus1 = c.Top.Add(c.One)

	c.Directions = directions(cfg, c.H1, c.Stride)
	return c, nil
}

// MustPrecompute is Precompute for configurations fixed at startup;
// a layout that does not fit the word is a programming error.
func MustPrecompute[W Word[W]](cfg Config) *Constants[W] {
	c, err := Precompute[W](cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func directions(cfg Config, h1, stride uint) []uint {
	h := h1 - 1
	h2 := h1 + 1
	dirs := []uint{
		1,  // vertical
		h1, // horizontal
		h,  // diagonal, falling to the right
		h2, // diagonal, rising to the right
	}
	if cfg.Shape != Cube {
		return dirs
	}
	return append(dirs,
		stride,
		stride+1,
		stride-1,
		stride+h1,
		stride-h1,
		stride+h2,
		stride+h,
		stride-h,
		stride-h2,
	)
}

// IsGap reports whether col is one of the always-empty columns
// separating the layers of a cube.
func (c *Constants[W]) IsGap(col int) bool {
	return c.gap[col]
}

// ColumnAt returns the physical column for (x, layer).
func (c *Constants[W]) ColumnAt(x, layer int) int {
	return layer*(c.Width+1) + x
}

// Coords is the inverse of ColumnAt.
func (c *Constants[W]) Coords(col int) (x, layer int) {
	if c.Shape != Cube {
		return col, 0
	}
	return col % (c.Width + 1), col / (c.Width + 1)
}

// Cells is the number of columns a player chooses from: Width on a
// planar board, Width*Depth on a cube.
func (c *Constants[W]) Cells() int {
	return c.Width * c.layers()
}

// Physical maps a column as players number it, x+Width*layer, to its
// column in the bit layout. It returns -1 if n is out of range.
func (c *Constants[W]) Physical(n int) int {
	if n < 0 || n >= c.Cells() {
		return -1
	}
	return c.ColumnAt(n%c.Width, n/c.Width)
}

// Logical is the inverse of Physical. Gap columns have no number and
// map to -1.
func (c *Constants[W]) Logical(col int) int {
	if col < 0 || col >= c.Columns || c.gap[col] {
		return -1
	}
	x, l := c.Coords(col)
	return l*c.Width + x
}

// Square returns the bit index of row in col.
func (c *Constants[W]) Square(col, row int) uint {
	return uint(col)*c.H1 + uint(row)
}

func (c *Constants[W]) IsLegal(mask W) bool {
	return mask.And(c.Top).IsZero()
}

// RunOfFour returns the lowest square of every run of four set bits
// spaced dir apart in mask.
func RunOfFour[W Word[W]](mask W, dir uint) W {
	t := mask.And(mask.Rsh(dir))
	return t.And(t.Rsh(2 * dir))
}

// HasWon returns the lowest squares of every line of four in mask,
// or zero if there are none.
func (c *Constants[W]) HasWon(mask W) W {
	var out W
	for _, d := range c.Directions {
		out = out.Or(RunOfFour(mask, d))
	}
	return out
}

func (c *Constants[W]) IsLegalWinningBoard(mask W) bool {
	return c.IsLegal(mask) && !c.HasWon(mask).IsZero()
}
