package ai

import (
	"fmt"
	"sync/atomic"

	"github.com/nelhage/fourstones/bitboard"
)

const (
	defaultTableBits = 20
	minTableBits     = 10
	maxTableBits     = 30

	fnvBasis = 14695981039346656037
	fnvPrime = 1099511628211
)

type boundType byte

const (
	lowerBound boundType = iota
	exactBound
	upperBound
)

type tableEntry[W bitboard.Word[W]] struct {
	code  W
	value int8
	bound boundType
	used  bool
}

func hash64(basis uint64, w uint64) uint64 {
	h := basis
	h = (h ^ (w & 0xffff)) * fnvPrime
	h = (h ^ ((w >> 16) & 0xffff)) * fnvPrime
	h = (h ^ ((w >> 32) & 0xffff)) * fnvPrime
	h = (h ^ (w >> 48)) * fnvPrime
	return h
}

func hashCode[W bitboard.Word[W]](code W) uint64 {
	lo, hi := code.Halves()
	return hash64(hash64(fnvBasis, lo), hi)
}

func checkTableBits(bits int) {
	if bits < minTableBits || bits > maxTableBits {
		panic(fmt.Sprintf("table bits %d out of range [%d, %d]", bits, minTableBits, maxTableBits))
	}
}

func (s *Solver[W]) ttGet(code W) *tableEntry[W] {
	if s.cfg.NoTable {
		return nil
	}
	te := &s.table[hashCode(code)&s.tableMask]
	if !te.used || te.code != code {
		return nil
	}
	return te
}

func (s *Solver[W]) ttPut(code W) *tableEntry[W] {
	if s.cfg.NoTable {
		return nil
	}
	if atomic.LoadInt32(s.cancel) != 0 {
		return nil
	}
	return &s.table[hashCode(code)&s.tableMask]
}
