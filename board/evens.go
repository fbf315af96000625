package board

import "github.com/nelhage/fourstones/bitboard"

const (
	EvensLoss = -1
	EvensDraw = 0
	EvensWin  = 1
)

// Evens classifies the position by the second player's evens
// strategy: the second player claims every empty square in AltX and
// the first player everything else. It returns EvensDraw if the
// second player can hold the draw that way, EvensWin if the claimed
// squares also contain a line of four, and EvensLoss otherwise.
//
// The vertical direction is tested on its own, before the lines that
// run across columns; Directions[1] is compared against the claimed
// lines of every other direction and each later direction only
// against itself and Directions[1].
func (p *Position[W]) Evens() int {
	c := p.c
	taken := p.color[0].Add(p.Heights())
	xe := p.color[1].Or(c.AltX.AndNot(taken))
	oe := c.Playable.Sub(xe)
	if !bitboard.RunOfFour(oe, c.Directions[0]).IsZero() {
		return EvensLoss
	}

	dirs := c.Directions[1:]
	xeh := bitboard.RunOfFour(xe, dirs[0])
	oeh := bitboard.RunOfFour(oe, dirs[0])
	xeany := xeh
	for _, d := range dirs[1:] {
		xeany = xeany.Or(bitboard.RunOfFour(xe, d))
	}

	if !oeh.And(xeany.Sub(c.TopPlus1)).IsZero() {
		return EvensLoss
	}
	for _, d := range dirs[1:] {
		oed := bitboard.RunOfFour(oe, d)
		if oed.IsZero() {
			continue
		}
		xed := bitboard.RunOfFour(xe, d)
		if !oeh.Or(oed).And(xeh.Or(xed).Sub(c.TopPlus1)).IsZero() {
			return EvensLoss
		}
	}
	if !xeany.IsZero() {
		return EvensWin
	}
	return EvensDraw
}

// EvenFills reports whether every column holds an even number of
// stones. Together with an even board height this is when the second
// player can answer every move directly on top of it.
func (p *Position[W]) EvenFills() bool {
	odd := p.c.AltX
	if p.c.Height%2 == 1 {
		odd = p.c.AltO
	}
	return p.Heights().And(odd).IsZero()
}
