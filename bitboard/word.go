package bitboard

import (
	"fmt"

	"lukechampine.com/uint128"
)

// Word is the integer a bitboard is packed into. Add and Sub wrap
// around at the word size; position codes depend on carries between
// columns, so the arithmetic matters and not just the bitwise
// operators.
type Word[W any] interface {
	comparable

	And(W) W
	Or(W) W
	Xor(W) W
	AndNot(W) W
	Add(W) W
	Sub(W) W
	Lsh(n uint) W
	Rsh(n uint) W

	SetBit(i uint) W
	Bit(i uint) bool
	IsZero() bool
	OnesCount() int
	TrailingZeros() uint

	// Halves returns the low and high 64 bits.
	Halves() (lo, hi uint64)
	// Size is the number of bits in the word.
	Size() uint
}

type Bits64 uint64

func (b Bits64) And(o Bits64) Bits64    { return b & o }
func (b Bits64) Or(o Bits64) Bits64     { return b | o }
func (b Bits64) Xor(o Bits64) Bits64    { return b ^ o }
func (b Bits64) AndNot(o Bits64) Bits64 { return b &^ o }
func (b Bits64) Add(o Bits64) Bits64    { return b + o }
func (b Bits64) Sub(o Bits64) Bits64    { return b - o }
func (b Bits64) Lsh(n uint) Bits64      { return b << n }
func (b Bits64) Rsh(n uint) Bits64      { return b >> n }

func (b Bits64) SetBit(i uint) Bits64 { return b | 1<<i }
func (b Bits64) Bit(i uint) bool      { return b&(1<<i) != 0 }
func (b Bits64) IsZero() bool         { return b == 0 }
func (b Bits64) OnesCount() int       { return Popcount(uint64(b)) }
func (b Bits64) TrailingZeros() uint  { return TrailingZeros(uint64(b)) }
func (b Bits64) Halves() (uint64, uint64) {
	return uint64(b), 0
}
func (Bits64) Size() uint { return 64 }

func (b Bits64) String() string {
	return fmt.Sprintf("%016x", uint64(b))
}

// Bits128 is used when a board needs more than 64 bits.
type Bits128 uint128.Uint128

func (b Bits128) u() uint128.Uint128 { return uint128.Uint128(b) }

func (b Bits128) And(o Bits128) Bits128 { return Bits128(b.u().And(o.u())) }
func (b Bits128) Or(o Bits128) Bits128  { return Bits128(b.u().Or(o.u())) }
func (b Bits128) Xor(o Bits128) Bits128 { return Bits128(b.u().Xor(o.u())) }
func (b Bits128) AndNot(o Bits128) Bits128 {
	return Bits128(b.u().And(uint128.New(^o.Lo, ^o.Hi)))
}
func (b Bits128) Add(o Bits128) Bits128 { return Bits128(b.u().AddWrap(o.u())) }
func (b Bits128) Sub(o Bits128) Bits128 { return Bits128(b.u().SubWrap(o.u())) }
func (b Bits128) Lsh(n uint) Bits128    { return Bits128(b.u().Lsh(n)) }
func (b Bits128) Rsh(n uint) Bits128    { return Bits128(b.u().Rsh(n)) }

func (b Bits128) SetBit(i uint) Bits128 {
	return b.Or(Bits128(uint128.From64(1).Lsh(i)))
}

func (b Bits128) Bit(i uint) bool {
	if i < 64 {
		return b.Lo&(1<<i) != 0
	}
	return b.Hi&(1<<(i-64)) != 0
}

func (b Bits128) IsZero() bool   { return b.u().IsZero() }
func (b Bits128) OnesCount() int { return Popcount(b.Lo) + Popcount(b.Hi) }
func (b Bits128) TrailingZeros() uint {
	if b.Lo != 0 {
		return TrailingZeros(b.Lo)
	}
	return 64 + TrailingZeros(b.Hi)
}
func (b Bits128) Halves() (uint64, uint64) {
	return b.Lo, b.Hi
}
func (Bits128) Size() uint { return 128 }

func (b Bits128) String() string {
	return fmt.Sprintf("%016x%016x", b.Hi, b.Lo)
}

// Hex formats any word as fixed-width hexadecimal, suitable as a
// stable textual key.
func Hex[W Word[W]](w W) string {
	lo, hi := w.Halves()
	var z W
	if z.Size() <= 64 {
		return fmt.Sprintf("%016x", lo)
	}
	return fmt.Sprintf("%016x%016x", hi, lo)
}
