package bitboard

import (
	"errors"
	"strconv"
	"testing"
)

func TestPrecompute(t *testing.T) {
	c := MustPrecompute[Bits64](Config{Width: 7, Height: 6})
	if c.Bottom != 0x40810204081 {
		t.Error("c.Bottom(7x6):", strconv.FormatUint(uint64(c.Bottom), 2))
	}
	if c.Top != 0x1020408102040 {
		t.Error("c.Top(7x6):", strconv.FormatUint(uint64(c.Top), 2))
	}
	if c.All1 != 1<<49-1 {
		t.Error("c.All1(7x6):", strconv.FormatUint(uint64(c.All1), 2))
	}
	if c.Playable != c.All1&^c.Top {
		t.Error("c.Playable(7x6):", strconv.FormatUint(uint64(c.Playable), 2))
	}
	if c.Column != 0x7f {
		t.Error("c.Column(7x6):", strconv.FormatUint(uint64(c.Column), 2))
	}
	if c.AltO != 0x15*c.Bottom {
		t.Error("c.AltO(7x6):", strconv.FormatUint(uint64(c.AltO), 2))
	}
	if c.AltX != 0x2a*c.Bottom {
		t.Error("c.AltX(7x6):", strconv.FormatUint(uint64(c.AltX), 2))
	}
	if c.AltO|c.AltX != c.Playable {
		t.Error("parity masks do not partition the board")
	}
	if c.Size != 42 || c.Size1 != 49 || c.Columns != 7 {
		t.Errorf("sizes: size=%d size1=%d columns=%d", c.Size, c.Size1, c.Columns)
	}
	want := []uint{1, 7, 6, 8}
	if len(c.Directions) != len(want) {
		t.Fatalf("directions=%v", c.Directions)
	}
	for i := range want {
		if c.Directions[i] != want[i] {
			t.Errorf("directions=%v want %v", c.Directions, want)
		}
	}

	// odd heights leave the bottom row in AltO
	c = MustPrecompute[Bits64](Config{Width: 4, Height: 5})
	if c.AltO != 0xa*c.Bottom {
		t.Error("c.AltO(4x5):", strconv.FormatUint(uint64(c.AltO), 2))
	}
	if c.AltX != 0x14*c.Bottom {
		t.Error("c.AltX(4x5):", strconv.FormatUint(uint64(c.AltX), 2))
	}
}

func TestPrecomputeFullWord(t *testing.T) {
	c := MustPrecompute[Bits64](Config{Width: 8, Height: 7})
	if c.All1 != ^Bits64(0) {
		t.Error("c.All1(8x7):", strconv.FormatUint(uint64(c.All1), 2))
	}
	if c.Top != 0x8080808080808080 {
		t.Error("c.Top(8x7):", strconv.FormatUint(uint64(c.Top), 2))
	}
}

func TestPrecomputeErrors(t *testing.T) {
	cases := []Config{
		{Width: 0, Height: 6},
		{Width: 7, Height: 0},
		{Width: 4, Height: 4, Shape: Cube},
		{Width: 10, Height: 6},
		{Width: 4, Height: 4, Depth: 4, Shape: Cube},
	}
	for _, tc := range cases {
		_, err := Precompute[Bits64](tc)
		if !errors.Is(err, ErrBadConfig) {
			t.Errorf("Precompute(%+v): err=%v", tc, err)
		}
	}
	if _, err := Precompute[Bits128](Config{Width: 4, Height: 4, Depth: 4, Shape: Cube}); err != nil {
		t.Errorf("Precompute[Bits128](4x4x4): %v", err)
	}
}

func TestMustPrecomputePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustPrecompute did not panic on an oversized board")
		}
	}()
	MustPrecompute[Bits64](Config{Width: 10, Height: 6})
}

func TestCubeLayout(t *testing.T) {
	c := MustPrecompute[Bits128](Config{Width: 4, Height: 4, Depth: 4, Shape: Cube})
	if c.Columns != 19 || c.Size1 != 95 || c.Size != 64 {
		t.Fatalf("sizes: columns=%d size1=%d size=%d", c.Columns, c.Size1, c.Size)
	}
	if c.Stride != 25 {
		t.Errorf("stride=%d", c.Stride)
	}
	if len(c.Directions) != 13 {
		t.Fatalf("directions=%v", c.Directions)
	}
	seen := make(map[uint]bool)
	for _, d := range c.Directions {
		if seen[d] {
			t.Errorf("duplicate direction %d", d)
		}
		seen[d] = true
	}
	for col := 0; col < c.Columns; col++ {
		x, layer := c.Coords(col)
		if c.IsGap(col) != (x == c.Width) {
			t.Errorf("col %d: gap=%v x=%d", col, c.IsGap(col), x)
		}
		if !c.IsGap(col) && c.ColumnAt(x, layer) != col {
			t.Errorf("ColumnAt(%d, %d) = %d != %d", x, layer, c.ColumnAt(x, layer), col)
		}
		colMask := c.Column.Lsh(uint(col) * c.H1)
		if c.IsGap(col) && !c.Playable.And(colMask).IsZero() {
			t.Errorf("gap column %d is playable", col)
		}
	}
	if c.Playable.OnesCount() != c.Size {
		t.Errorf("playable=%d size=%d", c.Playable.OnesCount(), c.Size)
	}
	if c.AltO.Or(c.AltX) != c.Playable {
		t.Error("parity masks do not partition the cube")
	}
}

func TestLogicalColumns(t *testing.T) {
	cube := MustPrecompute[Bits128](Config{Width: 4, Height: 4, Depth: 4, Shape: Cube})
	if cube.Cells() != 16 {
		t.Fatalf("cells=%d", cube.Cells())
	}
	seen := make(map[int]bool)
	for n := 0; n < cube.Cells(); n++ {
		col := cube.Physical(n)
		if col < 0 || cube.IsGap(col) || seen[col] {
			t.Errorf("Physical(%d) = %d", n, col)
		}
		seen[col] = true
		if cube.Logical(col) != n {
			t.Errorf("Logical(Physical(%d)) = %d", n, cube.Logical(col))
		}
	}
	if cube.Physical(5) != 6 || cube.Physical(16) != -1 || cube.Physical(-1) != -1 {
		t.Errorf("Physical: %d %d %d", cube.Physical(5), cube.Physical(16), cube.Physical(-1))
	}
	if cube.Logical(4) != -1 {
		t.Errorf("gap column has number %d", cube.Logical(4))
	}

	flat := MustPrecompute[Bits64](Config{Width: 7, Height: 6})
	for n := 0; n < 7; n++ {
		if flat.Physical(n) != n || flat.Logical(n) != n {
			t.Errorf("planar column %d maps to %d, %d", n, flat.Physical(n), flat.Logical(n))
		}
	}
	if flat.Physical(7) != -1 {
		t.Errorf("Physical(7) = %d", flat.Physical(7))
	}
}

func TestRunOfFour(t *testing.T) {
	cases := []struct {
		mask Bits64
		dir  uint
		out  Bits64
	}{
		{0xf, 1, 0x1},
		{0x1f, 1, 0x3},
		{0x7, 1, 0},
		{1 | 1<<7 | 1<<14 | 1<<21, 7, 1},
		{1 | 1<<7 | 1<<14, 7, 0},
		{1<<3 | 1<<9 | 1<<15 | 1<<21, 6, 1 << 3},
	}
	for _, tc := range cases {
		got := RunOfFour(tc.mask, tc.dir)
		if got != tc.out {
			t.Errorf("RunOfFour(%s, %d)=%s != %s",
				strconv.FormatUint(uint64(tc.mask), 2), tc.dir,
				strconv.FormatUint(uint64(got), 2),
				strconv.FormatUint(uint64(tc.out), 2))
		}
	}
}

func TestSentinelStopsWrap(t *testing.T) {
	c := MustPrecompute[Bits64](Config{Width: 7, Height: 6})
	// rows 4 and 5 of column 0 followed by rows 0 and 1 of column 1
	mask := Bits64(1<<4 | 1<<5 | 1<<7 | 1<<8)
	if !c.HasWon(mask).IsZero() {
		t.Error("vertical run wrapped across a column boundary")
	}
	// a falling diagonal can only leave the bottom of the board
	// through a sentinel
	mask = Bits64(1<<2 | 1<<8 | 1<<14 | 1<<20)
	if c.IsLegalWinningBoard(mask) {
		t.Error("overflowed board counted as a win")
	}
	if !c.HasWon(mask &^ c.Top).IsZero() {
		t.Error("diagonal run wrapped below the board")
	}
}

func TestCubeGapStopsWrap(t *testing.T) {
	c := MustPrecompute[Bits128](Config{Width: 4, Height: 4, Depth: 4, Shape: Cube})
	var mask Bits128
	// x=2,3 of layer 0 then x=0,1 of layer 1 on the bottom row
	for _, col := range []int{c.ColumnAt(2, 0), c.ColumnAt(3, 0), c.ColumnAt(0, 1), c.ColumnAt(1, 1)} {
		mask = mask.SetBit(c.Square(col, 0))
	}
	if !c.HasWon(mask).IsZero() {
		t.Error("horizontal run wrapped across a layer boundary")
	}

	mask = Bits128{}
	for l := 0; l < 4; l++ {
		mask = mask.SetBit(c.Square(c.ColumnAt(3-l, l), l))
	}
	if c.HasWon(mask).IsZero() {
		t.Error("missed a space diagonal")
	}
}

func TestWords(t *testing.T) {
	var w Bits128
	w = w.SetBit(3).SetBit(70)
	if !w.Bit(3) || !w.Bit(70) || w.Bit(4) {
		t.Errorf("Bits128 bits: %s", w)
	}
	if w.OnesCount() != 2 || w.TrailingZeros() != 3 {
		t.Errorf("Bits128 count: %d tz: %d", w.OnesCount(), w.TrailingZeros())
	}
	if got := w.Rsh(70); got != (Bits128{Lo: 1}) {
		t.Errorf("Rsh: %s", got)
	}
	// carries propagate across the 64-bit boundary
	var lo Bits128
	lo.Lo = ^uint64(0)
	if got := lo.Add(Bits128{Lo: 1}); got != (Bits128{Hi: 1}) {
		t.Errorf("Add: %s", got)
	}
	if got := (Bits128{}).Sub(Bits128{Lo: 1}); got != (Bits128{Lo: ^uint64(0), Hi: ^uint64(0)}) {
		t.Errorf("Sub: %s", got)
	}
	if got := w.AndNot(Bits128{Lo: 1 << 3}); got != (Bits128{Hi: 1 << 6}) {
		t.Errorf("AndNot: %s", got)
	}
	if Hex(Bits64(0xab)) != "00000000000000ab" {
		t.Errorf("Hex(Bits64)=%s", Hex(Bits64(0xab)))
	}
	if Hex(Bits128{Hi: 1, Lo: 2}) != "00000000000000010000000000000002" {
		t.Errorf("Hex(Bits128)=%s", Hex(Bits128{Hi: 1, Lo: 2}))
	}
}
